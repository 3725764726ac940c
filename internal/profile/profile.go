// Package profile holds named processing presets selectable from the CLI.
package profile

import (
	"sort"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/options"
)

// Profile is a named starting point for ProcessingOptions.
type Profile struct {
	Name        string
	Description string
	Options     options.ProcessingOptions
}

// DefaultName is the profile used when none is requested.
const DefaultName = "default"

// Built-in profiles.
var profiles = map[string]Profile{
	DefaultName: {
		Name:        DefaultName,
		Description: "jpeg q70, 10px lanczos3",
		Options:     options.DefaultProcessing(),
	},
	"tiny-webp": {
		Name:        "tiny-webp",
		Description: "smallest payload: webp q50, 8px",
		Options: options.ProcessingOptions{
			Format: options.WebP,
			Encode: options.WebPOptions{Quality: 50, Effort: 6, Preset: options.PresetPhoto, SmartSubsample: true},
			Resize: options.ResizeSpec{Width: 8, Kernel: options.Lanczos3},
		},
	},
	"lossless-png": {
		Name:        "lossless-png",
		Description: "full colour png, 16px mitchell",
		Options: options.ProcessingOptions{
			Format: options.PNG,
			Encode: options.PNGOptions{CompressionLevel: 9, AdaptiveFiltering: true, Quality: 100, Effort: 10, Colours: 256},
			Resize: options.ResizeSpec{Width: 16, Kernel: options.Mitchell},
		},
	},
	"crisp-jpeg": {
		Name:        "crisp-jpeg",
		Description: "jpeg q85 at 24px",
		Options: options.ProcessingOptions{
			Format: options.JPEG,
			Encode: options.JPEGOptions{Quality: 85, OptimiseCoding: true},
			Resize: options.ResizeSpec{Width: 24, Kernel: options.Lanczos3},
		},
	},
}

// Get returns the profile called name.
func Get(name string) (Profile, error) {
	if name == "" {
		name = DefaultName
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, apperr.Errorf(apperr.InvalidConfiguration, "profile", "unknown profile %q", name)
	}
	return p, nil
}

// Names returns the profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
