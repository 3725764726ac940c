package report

import (
	"fmt"
	"sort"

	"github.com/AnyUserName/blurtune/internal/hasher"
	"github.com/AnyUserName/blurtune/internal/options"
	"github.com/AnyUserName/blurtune/internal/preview"
)

// Validate checks r for internal consistency and returns one message per
// problem. Every data URI is decoded and checked against its declared
// format, byte length and hash.
func Validate(r *Report) []string {
	var errs []string

	if r.Version != SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported report version: %d", r.Version))
	}
	if err := options.ValidateProcessing(r.Options); err != nil {
		errs = append(errs, fmt.Sprintf("options: %v", err))
	}

	names := make([]string, 0, len(r.Entries))
	for name := range r.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		errs = append(errs, validateEntry(name, r.Entries[name])...)
	}

	var want Stats
	want.TotalEntries = len(r.Entries)
	want.TotalFailures = len(r.Failures)
	if r.Stats.TotalEntries != want.TotalEntries {
		errs = append(errs, fmt.Sprintf("stats.total_entries mismatch: %d != %d", r.Stats.TotalEntries, want.TotalEntries))
	}
	if r.Stats.TotalFailures != want.TotalFailures {
		errs = append(errs, fmt.Sprintf("stats.total_failures mismatch: %d != %d", r.Stats.TotalFailures, want.TotalFailures))
	}
	return errs
}

func validateEntry(name string, e Entry) []string {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("entry %q: ", name)+fmt.Sprintf(format, args...))
	}

	if e.Original.Width <= 0 || e.Original.Height <= 0 {
		add("invalid original dimensions %dx%d", e.Original.Width, e.Original.Height)
	}
	if e.AspectRatio <= 0 {
		add("invalid aspect ratio %.4f", e.AspectRatio)
	}
	if e.Hash == "" {
		add("missing hash")
	}

	format, payload, err := preview.DecodeURI(e.URI)
	if err != nil {
		add("%v", err)
		return errs
	}
	if string(format) != e.Format {
		add("uri MIME subtype %q does not match format %q", format, e.Format)
	}
	if len(payload) != e.DecodedByteLength {
		add("decoded payload is %d bytes, report says %d", len(payload), e.DecodedByteLength)
	}
	if e.Hash != "" && !hasher.Equal(payload, e.Hash) {
		add("hash mismatch")
	}
	return errs
}
