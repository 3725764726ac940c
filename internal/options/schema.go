package options

// Kind is the semantic type of a configurable field.
type Kind string

const (
	Boolean          Kind = "boolean"
	BoundedInteger   Kind = "boundedInteger"
	BoundedFraction  Kind = "boundedFraction"
	EnumeratedString Kind = "enumeratedString"
)

// Field describes one configurable field. Min and Max are inclusive and
// fraction values must fall on Min + k*Step. Choices is only set for
// enumerated strings.
type Field struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Kind    Kind     `json:"kind"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Step    float64  `json:"step"`
	Choices []string `json:"choices,omitempty"`
}

func boolean(key, title string) Field {
	return Field{Key: key, Title: title, Kind: Boolean}
}

func integer(key, title string, min, max int) Field {
	return Field{Key: key, Title: title, Kind: BoundedInteger, Min: float64(min), Max: float64(max), Step: 1}
}

func fraction(key, title string, min, max, step float64) Field {
	return Field{Key: key, Title: title, Kind: BoundedFraction, Min: min, Max: max, Step: step}
}

func enum[T ~string](key, title string, choices []T) Field {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = string(c)
	}
	return Field{Key: key, Title: title, Kind: EnumeratedString, Choices: out}
}

var encodeSchemas = map[ImageFormat][]Field{
	JPEG: {
		integer("quality", "Quality", 0, 100),
		boolean("progressive", "Progressive"),
		boolean("trellisQuantisation", "Trellis quantisation"),
		boolean("overshootDeringing", "Overshoot deringing"),
		boolean("optimiseScans", "Optimise scans"),
		boolean("optimiseCoding", "Optimise coding"),
		integer("quantizationTable", "Quantization table", 0, 8),
	},
	PNG: {
		boolean("progressive", "Progressive interlace"),
		integer("compressionLevel", "Zlib compression", 0, 9),
		boolean("adaptiveFiltering", "Adaptive filtering"),
		integer("quality", "Quality", 0, 100),
		integer("effort", "CPU effort", 1, 10),
		integer("colours", "Colours", 0, 256),
		fraction("dither", "Dither", 0, 1, 0.1),
	},
	WebP: {
		integer("quality", "Quality", 0, 100),
		boolean("lossless", "Lossless"),
		boolean("nearLossless", "Near lossless"),
		boolean("smartSubsample", "Smart subsample"),
		integer("effort", "CPU effort", 0, 6),
		enum("preset", "Preset", Presets()),
	},
}

var resizeSchema = []Field{
	integer("width", "Blur width", 4, 128),
	enum("kernel", "Resize kernel", Kernels()),
}

// SchemaFor returns the ordered field descriptors of format f, or nil for
// an unknown format. The slice is a copy.
func SchemaFor(f ImageFormat) []Field {
	s, ok := encodeSchemas[f]
	if !ok {
		return nil
	}
	return append([]Field(nil), s...)
}

// ResizeSchema returns the field descriptors of ResizeSpec.
func ResizeSchema() []Field {
	return append([]Field(nil), resizeSchema...)
}

// Lookup returns the descriptor of key in schema.
func Lookup(schema []Field, key string) (Field, bool) {
	for _, f := range schema {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
