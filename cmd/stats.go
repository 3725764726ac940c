package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/blurtune/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <report>",
	Short: "Display statistics for a batch report",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	r, err := report.ReadJSON(args[0])
	if err != nil {
		return err
	}
	printStats(r)
	return nil
}

func printStats(r *report.Report) {
	fmt.Println()
	fmt.Printf("  Report version:   %d\n", r.Version)
	fmt.Printf("  Generated:        %s\n", r.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", r.Profile)
	fmt.Printf("  Options:          %s\n", r.Options)
	if r.BuildInfo != nil {
		fmt.Printf("  Catalog:          %s\n", r.BuildInfo.Catalog)
		fmt.Printf("  Workers:          %d\n", r.BuildInfo.Workers)
		fmt.Printf("  Encoders:         %v\n", r.BuildInfo.Encoders)
	}
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Images:           %d\n", s.TotalEntries)
	fmt.Printf("  Failures:         %d\n", s.TotalFailures)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Encoded size:     %s\n", formatBytes(s.TotalDecodedBytes))
	fmt.Printf("  URI size:         %s\n", formatBytes(s.TotalURIBytes))
	if s.TotalEntries > 0 {
		fmt.Printf("  Mean URI:         %d chars\n", s.TotalURIBytes/int64(s.TotalEntries))
	}
	if s.TotalDecodedBytes > 0 {
		overhead := float64(s.TotalURIBytes)/float64(s.TotalDecodedBytes)*100 - 100
		fmt.Printf("  Base64 overhead:  %.1f%%\n", overhead)
	}
	fmt.Println()

	// URI size distribution in 256 byte buckets.
	buckets := map[int]int{}
	for _, e := range r.Entries {
		buckets[len(e.URI)/256]++
	}
	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	if len(keys) > 0 {
		fmt.Println("  URI size breakdown:")
		for _, k := range keys {
			fmt.Printf("    %5d-%-5d B  %4d images\n", k*256, (k+1)*256-1, buckets[k])
		}
		fmt.Println()
	}

	avg := 0
	for _, e := range r.Entries {
		if e.AvgColor != nil {
			avg++
		}
	}
	fmt.Printf("  Average colour coverage: %d / %d images\n", avg, len(r.Entries))

	if len(r.Failures) > 0 {
		names := make([]string, 0, len(r.Failures))
		for name := range r.Failures {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println()
		fmt.Printf("  Failures (%d):\n", len(names))
		for _, name := range names {
			fmt.Printf("    %s: %s\n", name, r.Failures[name])
		}
	}
	fmt.Println()
}
