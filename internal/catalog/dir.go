package catalog

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

// Dir is a catalog backed by a local directory tree. Image names are
// slash-separated paths relative to the root.
type Dir struct {
	root    string
	workers int
}

// NewDir returns a catalog over root. workers bounds concurrent metadata
// reads; 0 means NumCPU.
func NewDir(root string, workers int) *Dir {
	return &Dir{root: root, workers: workers}
}

// List walks the root and reads the dimensions of every image.
func (d *Dir) List(ctx context.Context) ([]ImageInfo, error) {
	names, err := d.scan()
	if err != nil {
		return nil, apperr.New(apperr.IOError, "catalog.list", err)
	}
	return describeAll(ctx, names, d.workers, d.open)
}

// scan walks the root directory and returns all image names.
func (d *Dir) scan() ([]string, error) {
	var names []string

	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(entry.Name(), ".") && p != d.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImage(entry.Name()) {
			return nil
		}

		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})

	return names, err
}

// Read returns the bytes of the named image.
func (d *Dir) Read(ctx context.Context, name string) ([]byte, error) {
	rc, err := d.open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperr.New(apperr.IOError, "catalog.read", err)
	}
	return data, nil
}

func (d *Dir) open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.New(apperr.NotFound, "catalog.read "+name, err)
		}
		return nil, apperr.New(apperr.IOError, "catalog.read "+name, err)
	}
	return f, nil
}
