// Package options holds the typed encoder and resize configuration of a
// placeholder: one variant of encode options per output format, the field
// schema that drives validation and form generation, and the canonical
// defaults.
package options

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

// ImageFormat is the output encoding of a placeholder.
type ImageFormat string

const (
	JPEG ImageFormat = "jpeg"
	PNG  ImageFormat = "png"
	WebP ImageFormat = "webp"
)

// Formats returns all formats in display order.
func Formats() []ImageFormat {
	return []ImageFormat{JPEG, PNG, WebP}
}

// Valid reports whether f is one of the known formats.
func (f ImageFormat) Valid() bool {
	switch f {
	case JPEG, PNG, WebP:
		return true
	}
	return false
}

// MIMEType returns the media type used in data URIs.
func (f ImageFormat) MIMEType() string {
	return "image/" + string(f)
}

// ParseFormat normalizes a user supplied format name. "jpg" is accepted
// as an alias for jpeg.
func ParseFormat(s string) (ImageFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "jpg" {
		s = "jpeg"
	}
	f := ImageFormat(s)
	if !f.Valid() {
		return "", apperr.Errorf(apperr.InvalidConfiguration, "parse format", "unknown format %q", s)
	}
	return f, nil
}

// Kernel names the resampling filter used when shrinking the source.
type Kernel string

const (
	Nearest  Kernel = "nearest"
	Cubic    Kernel = "cubic"
	Mitchell Kernel = "mitchell"
	Lanczos2 Kernel = "lanczos2"
	Lanczos3 Kernel = "lanczos3"
)

// Kernels returns all kernels in display order.
func Kernels() []Kernel {
	return []Kernel{Nearest, Cubic, Mitchell, Lanczos2, Lanczos3}
}

func (k Kernel) Valid() bool {
	for _, v := range Kernels() {
		if v == k {
			return true
		}
	}
	return false
}

// Preset is a WebP encoder tuning preset.
type Preset string

const (
	PresetDefault Preset = "default"
	PresetPicture Preset = "picture"
	PresetPhoto   Preset = "photo"
	PresetDrawing Preset = "drawing"
	PresetIcon    Preset = "icon"
	PresetText    Preset = "text"
)

// Presets returns all WebP presets in display order.
func Presets() []Preset {
	return []Preset{PresetDefault, PresetPicture, PresetPhoto, PresetDrawing, PresetIcon, PresetText}
}

func (p Preset) Valid() bool {
	for _, v := range Presets() {
		if v == p {
			return true
		}
	}
	return false
}

// ResizeSpec controls the downscale applied before encoding. Height
// follows the source aspect ratio.
type ResizeSpec struct {
	Width  int    `json:"width" default:"10"`
	Kernel Kernel `json:"kernel" default:"lanczos3"`
}

func (r ResizeSpec) String() string {
	return fmt.Sprintf("%dpx/%s", r.Width, r.Kernel)
}
