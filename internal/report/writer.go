package report

import (
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/options"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// New creates an empty report for a run with the given options.
func New(profileName string, opts options.ProcessingOptions) *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		Options:     opts,
		Entries:     make(map[string]Entry),
	}
}

// ComputeStats recalculates aggregate statistics from entries.
func (r *Report) ComputeStats() {
	var s Stats
	s.TotalEntries = len(r.Entries)
	s.TotalFailures = len(r.Failures)
	for _, e := range r.Entries {
		s.TotalInputBytes += e.Original.Size
		s.TotalDecodedBytes += int64(e.DecodedByteLength)
		s.TotalURIBytes += int64(len(e.URI))
	}
	r.Stats = s
}

// WriteJSON serializes the report to path. Map keys are emitted sorted.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return apperr.New(apperr.IOError, "report.write", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.New(apperr.IOError, "report.write", err)
	}
	return nil
}

// ReadJSON loads a report written by WriteJSON. Unknown fields are ignored.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.New(apperr.NotFound, "report.read", err)
		}
		return nil, apperr.New(apperr.IOError, "report.read", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, apperr.New(apperr.InvalidConfiguration, "report.parse", err)
	}
	return &r, nil
}
