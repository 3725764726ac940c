//go:build ignore

// gen_fixtures writes a small image catalog for trying "blurtune serve" and
// "blurtune batch" by hand.
// Usage: go run gen_fixtures.go <catalog_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

type fixture struct {
	name string
	img  image.Image
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <catalog_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]

	fixtures := []fixture{
		{"landscape.jpg", gradient(1600, 900)},
		{"portrait.jpg", gradient(600, 1200)},
		{"square.png", imaging.New(512, 512, color.NRGBA{R: 40, G: 120, B: 200, A: 255})},
		{"logo.png", alphaGradient(256, 256)},
		{"tall-strip.png", gradient(8, 400)},
	}
	for i := 1; i <= 3; i++ {
		fixtures = append(fixtures, fixture{
			name: fmt.Sprintf("cards/card-%d.png", i),
			img:  solidWithBorder(320, 240, uint8(i*60)),
		})
	}

	for _, f := range fixtures {
		path := filepath.Join(dir, filepath.FromSlash(f.name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			panic(err)
		}
		if err := imaging.Save(f.img, path, imaging.JPEGQuality(85)); err != nil {
			panic(err)
		}
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d images in %s\n", len(fixtures), dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255})
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				img.SetNRGBA(x, y, white)
			}
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}
