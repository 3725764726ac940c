package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/blurtune/internal/options"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog images with their dimensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, where, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		images, err := cat.List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("  %s (%d images)\n\n", where, len(images))
		for _, img := range images {
			fmt.Printf("    %-40s %5d x %-5d\n", truncKey(img.Name, 40), img.Width, img.Height)
		}
		fmt.Println()
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema [format]",
	Short: "Print the editable options of a format, or of all formats",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		formats := options.Formats()
		if len(args) == 1 {
			f, err := options.ParseFormat(args[0])
			if err != nil {
				return err
			}
			formats = []options.ImageFormat{f}
		}

		for _, f := range formats {
			printSchema(string(f), options.SchemaFor(f), options.DefaultsFor(f))
		}
		printSchema("resize", options.ResizeSchema(), options.DefaultResize())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, schemaCmd)
}

func printSchema(title string, fields []options.Field, defaults any) {
	current := map[string]any{}
	if data, err := json.Marshal(defaults); err == nil {
		_ = json.Unmarshal(data, &current)
	}

	fmt.Printf("  %s\n", title)
	for _, f := range fields {
		var rng string
		switch f.Kind {
		case options.BoundedInteger:
			rng = fmt.Sprintf("%g..%g", f.Min, f.Max)
		case options.BoundedFraction:
			rng = fmt.Sprintf("%g..%g step %g", f.Min, f.Max, f.Step)
		case options.EnumeratedString:
			rng = fmt.Sprint(f.Choices)
		case options.Boolean:
			rng = "true|false"
		}
		fmt.Printf("    %-22s %-26s default %v\n", f.Key, rng, current[f.Key])
	}
	fmt.Println()
}
