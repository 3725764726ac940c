package options

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProcessingOptions is the full configuration of one placeholder.
// Encode.Format() always equals Format; use WithFormat to switch formats.
type ProcessingOptions struct {
	Format ImageFormat   `json:"format"`
	Encode EncodeOptions `json:"encodeOptions"`
	Resize ResizeSpec    `json:"resizeOptions"`
}

// WithFormat returns a copy switched to format f. The encode options are
// replaced by the defaults of f, never carried over.
func (p ProcessingOptions) WithFormat(f ImageFormat) (ProcessingOptions, error) {
	enc := DefaultsFor(f)
	if enc == nil {
		return p, apperr.Errorf(apperr.InvalidConfiguration, "set format", "unknown format %q", f)
	}
	p.Format = f
	p.Encode = enc
	return p, nil
}

// WithEncode returns a copy with the given encode options. The variant
// must match the current format.
func (p ProcessingOptions) WithEncode(enc EncodeOptions) (ProcessingOptions, error) {
	if err := checkTag(p.Format, enc); err != nil {
		return p, err
	}
	p.Encode = Normalize(enc)
	return p, nil
}

// WithResize returns a copy with the given resize configuration.
func (p ProcessingOptions) WithResize(r ResizeSpec) ProcessingOptions {
	p.Resize = r
	return p
}

// CheckTag reports an InvalidConfiguration error when the encode options
// variant does not belong to the declared format.
func (p ProcessingOptions) CheckTag() error {
	return checkTag(p.Format, p.Encode)
}

func (p ProcessingOptions) String() string {
	return fmt.Sprintf("%s %+v @%s", p.Format, p.Encode, p.Resize)
}

func checkTag(f ImageFormat, enc EncodeOptions) error {
	if enc == nil {
		return apperr.Errorf(apperr.InvalidConfiguration, "check options", "missing encode options for %s", f)
	}
	if enc.Format() != f {
		return apperr.Errorf(apperr.InvalidConfiguration, "check options",
			"%s encode options given for format %s", enc.Format(), f)
	}
	return nil
}

// Normalize drops pointer variants so stored options compare by value.
func Normalize(enc EncodeOptions) EncodeOptions {
	return Match(enc,
		func(o JPEGOptions) EncodeOptions { return o },
		func(o PNGOptions) EncodeOptions { return o },
		func(o WebPOptions) EncodeOptions { return o },
	)
}

// UnmarshalJSON decodes the format first and seeds the encode and resize
// options from their defaults, so omitted fields keep default values.
func (p *ProcessingOptions) UnmarshalJSON(data []byte) error {
	var raw struct {
		Format ImageFormat         `json:"format"`
		Encode jsoniter.RawMessage `json:"encodeOptions"`
		Resize jsoniter.RawMessage `json:"resizeOptions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperr.New(apperr.InvalidConfiguration, "decode options", err)
	}
	if raw.Format == "" {
		raw.Format = DefaultFormat
	}
	f, err := ParseFormat(string(raw.Format))
	if err != nil {
		return err
	}

	enc, err := DecodeEncode(f, raw.Encode)
	if err != nil {
		return err
	}

	resize := DefaultResize()
	if len(raw.Resize) > 0 {
		if err := json.Unmarshal(raw.Resize, &resize); err != nil {
			return apperr.New(apperr.InvalidConfiguration, "decode resize options", err)
		}
	}

	*p = ProcessingOptions{Format: f, Encode: enc, Resize: resize}
	return nil
}

// Merge decodes JSON processing options on top of p. An absent format keeps
// p's format and a different one starts from that format's defaults, as in
// WithFormat. Encode and resize fields absent from data keep their values.
func (p ProcessingOptions) Merge(data []byte) (ProcessingOptions, error) {
	var raw struct {
		Format ImageFormat         `json:"format"`
		Encode jsoniter.RawMessage `json:"encodeOptions"`
		Resize jsoniter.RawMessage `json:"resizeOptions"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return p, apperr.New(apperr.InvalidConfiguration, "decode options", err)
		}
	}

	out := p
	if raw.Format != "" {
		f, err := ParseFormat(string(raw.Format))
		if err != nil {
			return p, err
		}
		if f != p.Format {
			if out, err = p.WithFormat(f); err != nil {
				return p, err
			}
		}
	}

	enc, err := MergeEncode(out.Encode, raw.Encode)
	if err != nil {
		return p, err
	}
	out.Encode = enc

	if len(raw.Resize) > 0 {
		if err := json.Unmarshal(raw.Resize, &out.Resize); err != nil {
			return p, apperr.New(apperr.InvalidConfiguration, "decode resize options", err)
		}
	}
	return out, nil
}

// DecodeEncode decodes JSON encode options of format f on top of its
// defaults. Empty data yields the defaults.
func DecodeEncode(f ImageFormat, data []byte) (EncodeOptions, error) {
	base := DefaultsFor(f)
	if base == nil {
		return nil, apperr.Errorf(apperr.InvalidConfiguration, "decode encode options", "unknown format %q", f)
	}
	return MergeEncode(base, data)
}

// MergeEncode decodes JSON encode options on top of base, so fields
// absent from data keep their base values. The result has base's format.
func MergeEncode(base EncodeOptions, data []byte) (EncodeOptions, error) {
	if base == nil {
		return nil, apperr.Errorf(apperr.InvalidConfiguration, "decode encode options", "missing base options")
	}

	type decoded struct {
		enc EncodeOptions
		err error
	}
	decode := func(ptr any) error {
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, ptr); err != nil {
			return apperr.New(apperr.InvalidConfiguration, "decode encode options", err)
		}
		return nil
	}
	d := Match(base,
		func(o JPEGOptions) decoded { err := decode(&o); return decoded{o, err} },
		func(o PNGOptions) decoded { err := decode(&o); return decoded{o, err} },
		func(o WebPOptions) decoded { err := decode(&o); return decoded{o, err} },
	)
	return d.enc, d.err
}
