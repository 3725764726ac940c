// Package report describes the JSON document written by a batch run: one
// placeholder per catalog image plus aggregate statistics.
package report

import "github.com/AnyUserName/blurtune/internal/options"

// Report is the top-level output of a batch run.
type Report struct {
	Version     int                       `json:"version"`
	GeneratedAt string                    `json:"generated_at"`
	Profile     string                    `json:"profile"`
	Options     options.ProcessingOptions `json:"options"`
	BuildInfo   *BuildInfo                `json:"build_info,omitempty"`
	Entries     map[string]Entry          `json:"entries"`
	Failures    map[string]string         `json:"failures,omitempty"`
	Stats       Stats                     `json:"stats"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers  int      `json:"workers"`
	Catalog  string   `json:"catalog"`
	Encoders []string `json:"encoders"`
}

// Entry is the placeholder generated for one source image.
type Entry struct {
	Original          OriginalInfo `json:"original"`
	AspectRatio       float64      `json:"aspect_ratio"` // width / height
	AvgColor          *[3]uint8    `json:"avg_color,omitempty"`
	Format            string       `json:"format"`
	URI               string       `json:"uri"`
	DecodedByteLength int          `json:"decoded_byte_length"`
	Hash              string       `json:"hash"` // first 16 hex chars of xxhash64
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Size   int64 `json:"size"`
}

// Stats aggregates run metrics.
type Stats struct {
	TotalEntries      int   `json:"total_entries"`
	TotalFailures     int   `json:"total_failures,omitempty"`
	TotalInputBytes   int64 `json:"total_input_bytes"`
	TotalDecodedBytes int64 `json:"total_decoded_bytes"`
	TotalURIBytes     int64 `json:"total_uri_bytes"`
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1
