package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/blurtune/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report>",
	Short: "Validate a batch report and round-trip every data URI",
	Long: `Checks a report written by "blurtune batch": every data URI must decode,
its MIME subtype must match the entry format, the payload length must equal
decoded_byte_length and the payload must hash to the recorded hash.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	r, err := report.ReadJSON(args[0])
	if err != nil {
		return err
	}

	errs := report.Validate(r)
	if len(errs) == 0 {
		fmt.Println("  ✓ Report is valid")
		fmt.Printf("  ✓ %d placeholders, all URIs round-trip\n", r.Stats.TotalEntries)
		return nil
	}

	fmt.Printf("  ✗ Report has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}
