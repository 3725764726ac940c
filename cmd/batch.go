package cmd

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/blurtune/internal/encoder"
	"github.com/AnyUserName/blurtune/internal/pipeline"
	"github.com/AnyUserName/blurtune/internal/profile"
	"github.com/AnyUserName/blurtune/internal/report"
)

var (
	batchOut     string
	batchProfile string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate placeholders for every catalog image and write a report",
	Long: `Generates the placeholder of every image in the catalog with the
options of --profile and writes a JSON report holding each data URI, its
decoded byte length and hash, plus aggregate statistics.

Images that fail are listed in the report; the run fails only if every
image fails.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "blurtune.report.json", "report path")
	batchCmd.Flags().StringVarP(&batchProfile, "profile", "p", profile.DefaultName,
		"processing profile: "+strings.Join(profile.Names(), ", "))
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	ctx := cmd.Context()

	prof, err := profile.Get(batchProfile)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(batchOut)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	cat, where, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	reg := newRegistry()

	var encoders []string
	for _, f := range reg.Available() {
		encoders = append(encoders, string(f))
	}

	logVerbose("catalog: %s", where)
	logVerbose("output:  %s", absOut)
	logVerbose("profile: %s (%s)", prof.Name, prof.Options)

	workers := cfg.Catalog.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := pipeline.New(pipeline.Config{
		Catalog:     cat,
		CatalogName: where,
		Codec:       encoder.NewCodec(reg),
		Encoders:    encoders,
		Profile:     prof.Name,
		Options:     prof.Options,
		Workers:     workers,
	}, log)

	r, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := report.WriteJSON(r, absOut); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printBatchReport(r, absOut, time.Since(start))
	return nil
}

func printBatchReport(r *report.Report, path string, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("  blurtune batch complete")
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Images:        %d\n", s.TotalEntries)
	if s.TotalFailures > 0 {
		fmt.Printf("  Failed:        %d\n", s.TotalFailures)
	}
	fmt.Printf("  Input size:    %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Encoded size:  %s\n", formatBytes(s.TotalDecodedBytes))
	fmt.Printf("  URI size:      %s\n", formatBytes(s.TotalURIBytes))
	fmt.Printf("  Options:       %s\n", r.Options)
	fmt.Printf("  Time:          %s\n", elapsed.Round(time.Millisecond))
	if r.BuildInfo != nil {
		fmt.Printf("  Workers:       %d\n", r.BuildInfo.Workers)
	}
	fmt.Println()

	// Top 10 heaviest placeholders.
	if len(r.Entries) > 0 {
		type entrySize struct {
			name string
			uri  int
		}
		items := make([]entrySize, 0, len(r.Entries))
		for name, e := range r.Entries {
			items = append(items, entrySize{name, len(e.URI)})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].uri != items[j].uri {
				return items[i].uri > items[j].uri
			}
			return items[i].name < items[j].name
		})
		n := min(len(items), 10)
		fmt.Printf("  Top %d heaviest URIs:\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-40s %8s\n", truncKey(it.name, 40), formatBytes(int64(it.uri)))
		}
		fmt.Println()
	}

	fmt.Printf("  Report:        %s\n", path)
	fmt.Println()
}
