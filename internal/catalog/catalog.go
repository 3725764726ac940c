// Package catalog enumerates the source images a placeholder can be
// generated from and reads their bytes.
package catalog

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

// ImageInfo describes one source image.
type ImageInfo struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Catalog lists source images and reads their bytes.
type Catalog interface {
	// List returns all images sorted by name. The first entry is the
	// default selection of a new session.
	List(ctx context.Context) ([]ImageInfo, error)

	// Read returns the raw bytes of the named image.
	Read(ctx context.Context, name string) ([]byte, error)
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsImage reports whether name carries a recognized image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// describe reads just enough of r to learn the image dimensions.
func describe(name string, r io.Reader) (ImageInfo, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return ImageInfo{}, apperr.New(apperr.InvalidDimensions, "describe "+name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, apperr.Errorf(apperr.InvalidDimensions, "describe "+name,
			"unexpected size %dx%d", cfg.Width, cfg.Height)
	}
	return ImageInfo{Name: name, Width: cfg.Width, Height: cfg.Height}, nil
}

type opener func(ctx context.Context, name string) (io.ReadCloser, error)

// describeAll reads the dimensions of every name using at most workers
// concurrent readers. The first failure fails the whole listing.
func describeAll(ctx context.Context, names []string, workers int, open opener) ([]ImageInfo, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	infos := make([]ImageInfo, len(names))
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, name := range names {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			rc, err := open(ctx, name)
			if err != nil {
				errs[idx] = err
				return
			}
			defer rc.Close()
			infos[idx], errs[idx] = describe(name, rc)
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// cleanName rejects names that would escape the catalog root.
func cleanName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." || path.IsAbs(clean) {
		return "", apperr.Errorf(apperr.NotFound, "catalog.read", "invalid image name %q", name)
	}
	return clean, nil
}

// Find returns the entry called name from infos.
func Find(infos []ImageInfo, name string) (ImageInfo, error) {
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return ImageInfo{}, apperr.New(apperr.NotFound, "catalog.find", fmt.Errorf("no image %q", name))
}
