package encoder

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AnyUserName/blurtune/internal/options"
)

// Registry holds the available encoder for each format.
type Registry struct {
	mu       sync.RWMutex
	encoders map[options.ImageFormat]Encoder
}

// NewRegistry creates a registry, probing the built-in encoders for
// availability. cwebpPath may be empty to search PATH.
func NewRegistry(cwebpPath string) *Registry {
	r := &Registry{
		encoders: make(map[options.ImageFormat]Encoder),
	}

	// Register all encoders. Only available ones will be used.
	all := []Encoder{
		&JPEGEncoder{},
		&PNGEncoder{},
		&WebPEncoder{Path: cwebpPath},
	}
	for _, enc := range all {
		r.Register(enc)
	}
	return r
}

// Register adds enc if it is available, replacing any encoder of the same format.
func (r *Registry) Register(enc Encoder) {
	if !enc.Available() {
		return
	}
	r.mu.Lock()
	r.encoders[enc.Format()] = enc
	r.mu.Unlock()
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(format options.ImageFormat) Encoder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.encoders[format]
}

// Available returns all available formats in display order.
func (r *Registry) Available() []options.ImageFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []options.ImageFormat
	for _, f := range options.Formats() {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	names := make([]string, len(avail))
	for i, f := range avail {
		names[i] = string(f)
	}
	return fmt.Sprintf("encoders: %s", strings.Join(names, ", "))
}
