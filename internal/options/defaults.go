package options

import (
	"fmt"

	"github.com/creasty/defaults"
)

// DefaultFormat is the format a fresh session starts with.
const DefaultFormat = JPEG

// DefaultsFor returns the canonical encode options of format f, or nil
// for an unknown format. The values are declared as `default` tags on the
// option structs.
func DefaultsFor(f ImageFormat) EncodeOptions {
	switch f {
	case JPEG:
		var o JPEGOptions
		mustSet(&o)
		return o
	case PNG:
		var o PNGOptions
		mustSet(&o)
		return o
	case WebP:
		var o WebPOptions
		mustSet(&o)
		return o
	}
	return nil
}

// DefaultResize returns the canonical resize configuration.
func DefaultResize() ResizeSpec {
	var r ResizeSpec
	mustSet(&r)
	return r
}

// DefaultProcessing returns the configuration a fresh session starts with.
func DefaultProcessing() ProcessingOptions {
	return ProcessingOptions{
		Format: DefaultFormat,
		Encode: DefaultsFor(DefaultFormat),
		Resize: DefaultResize(),
	}
}

// mustSet only fails on a malformed default tag.
func mustSet(ptr any) {
	if err := defaults.Set(ptr); err != nil {
		panic(fmt.Sprintf("options: bad default tag on %T: %v", ptr, err))
	}
}
