package encoder

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/AnyUserName/blurtune/internal/options"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// WebPEncoder encodes images to WebP by shelling out to cwebp.
// This approach avoids CGO while still exposing the full cwebp tuning surface.
// Install: brew install webp / apt install webp
type WebPEncoder struct {
	// Path overrides the cwebp binary looked up in PATH.
	Path string

	once      sync.Once
	available bool
	cwebpPath string
}

func (e *WebPEncoder) Format() options.ImageFormat { return options.WebP }

func (e *WebPEncoder) Available() bool {
	e.once.Do(func() {
		name := e.Path
		if name == "" {
			name = "cwebp"
		}
		path, err := exec.LookPath(name)
		if err == nil {
			e.available = true
			e.cwebpPath = path
		}
	})
	return e.available
}

func (e *WebPEncoder) Encode(ctx context.Context, img image.Image, opts options.EncodeOptions) ([]byte, error) {
	o, err := variant[options.WebPOptions](opts)
	if err != nil {
		return nil, err
	}
	if !e.Available() {
		return nil, fmt.Errorf("cwebp not found in PATH; install with: brew install webp")
	}

	// Write source as PNG to temp file (cwebp reads files).
	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("blurtune_src_%d_*.png", id))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("blurtune_dst_%d_*.webp", id))
	if err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	if err := png.Encode(srcFile, img); err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	srcFile.Close()

	args := append(cwebpArgs(o), srcPath, "-o", dstPath)
	cmd := exec.CommandContext(ctx, e.cwebpPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("cwebp: %w: %s", err, string(out))
	}

	return os.ReadFile(dstPath)
}

// cwebpArgs translates options into cwebp flags. -preset must come first.
func cwebpArgs(o options.WebPOptions) []string {
	args := []string{
		"-preset", string(o.Preset),
		"-q", strconv.Itoa(o.Quality),
		"-m", strconv.Itoa(o.Effort),
		"-quiet",
	}
	switch {
	case o.NearLossless:
		// Quality doubles as the near-lossless preprocessing level.
		args = append(args, "-near_lossless", strconv.Itoa(o.Quality))
	case o.Lossless:
		args = append(args, "-lossless")
	}
	if o.SmartSubsample {
		args = append(args, "-sharp_yuv")
	}
	return args
}
