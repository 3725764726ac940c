package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/catalog"
	"github.com/AnyUserName/blurtune/internal/options"
	"github.com/AnyUserName/blurtune/internal/preview"
	"github.com/AnyUserName/blurtune/internal/profile"
)

var (
	genProfile string
	genFormat  string
	genWidth   int
	genKernel  string
	genSet     []string
	genSVG     bool
	genJSON    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <image>",
	Short: "Generate the placeholder of one catalog image",
	Long: `Generates the blur placeholder of <image> and prints its data URI.

Options start from --profile. --format switches format and resets the
encoder options to that format's defaults before any --set is applied.

Examples:
  blurtune generate hero.jpg
  blurtune generate hero.jpg --format png --set colours=16 --set dither=0.5
  blurtune generate hero.jpg --profile tiny-webp --width 12 --svg`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genProfile, "profile", "p", profile.DefaultName,
		"starting options: "+strings.Join(profile.Names(), ", "))
	f.StringVarP(&genFormat, "format", "f", "", "output format (jpeg, png, webp)")
	f.IntVarP(&genWidth, "width", "w", 0, "placeholder width in pixels")
	f.StringVarP(&genKernel, "kernel", "k", "", "resize kernel")
	f.StringArrayVar(&genSet, "set", nil, "encoder option key=value (repeatable)")
	f.BoolVar(&genSVG, "svg", false, "print the SVG blur wrapper instead of the URI")
	f.BoolVar(&genJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := cmd.Context()

	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	cat, _, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	res, err := newGenerator(cat, newRegistry()).Generate(ctx, name, opts)
	if err != nil {
		return err
	}

	switch {
	case genJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Image   string                    `json:"image"`
			Options options.ProcessingOptions `json:"options"`
			preview.Result
		}{name, opts, res})
	case genSVG:
		info, err := describe(ctx, cat, name)
		if err != nil {
			return err
		}
		fmt.Println(preview.SVG(res.URI, info.Width, info.Height, 0))
	default:
		fmt.Println(res.URI)
		logVerbose("%s: %d bytes encoded, %d URI chars, hash %s",
			opts, res.DecodedByteLength, len(res.URI), res.Hash)
	}
	return nil
}

// buildOptions applies the option flags on top of the selected profile.
func buildOptions(cmd *cobra.Command) (options.ProcessingOptions, error) {
	prof, err := profile.Get(genProfile)
	if err != nil {
		return options.ProcessingOptions{}, err
	}
	opts := prof.Options

	if cmd.Flags().Changed("format") {
		f, err := options.ParseFormat(genFormat)
		if err != nil {
			return opts, err
		}
		if opts, err = opts.WithFormat(f); err != nil {
			return opts, err
		}
	}

	resize := opts.Resize
	if cmd.Flags().Changed("width") {
		resize.Width = genWidth
	}
	if cmd.Flags().Changed("kernel") {
		resize.Kernel = options.Kernel(genKernel)
	}
	opts = opts.WithResize(resize)

	for _, kv := range genSet {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return opts, apperr.Errorf(apperr.InvalidConfiguration, "generate", "--set %q: want key=value", kv)
		}
		enc, err := options.SetField(opts.Encode, strings.TrimSpace(key), value)
		if err != nil {
			return opts, err
		}
		opts.Encode = enc
	}

	if err := options.ValidateProcessing(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// describe looks up the dimensions of name in the catalog.
func describe(ctx context.Context, cat catalog.Catalog, name string) (catalog.ImageInfo, error) {
	images, err := cat.List(ctx)
	if err != nil {
		return catalog.ImageInfo{}, err
	}
	return catalog.Find(images, name)
}
