package encoder

import (
	"image"
	"image/color"
	"sort"
)

type rgba [4]int64

// buildPalette picks up to n colours: seeds from the most populated
// 4-bit-per-channel buckets, then refines with passes rounds of k-means.
// Inputs are thumbnail sized, so a full scan per pass is cheap.
func buildPalette(img image.Image, n, passes int) color.Palette {
	b := img.Bounds()
	pixels := make([]rgba, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pixels = append(pixels, rgba{int64(c.R), int64(c.G), int64(c.B), int64(c.A)})
		}
	}
	if len(pixels) == 0 {
		return color.Palette{color.NRGBA{}}
	}

	centroids := seedCentroids(pixels, n)
	assign := make([]int, len(pixels))
	for pass := 0; pass < passes; pass++ {
		for i, p := range pixels {
			assign[i] = nearest(centroids, p)
		}
		sums := make([]rgba, len(centroids))
		counts := make([]int64, len(centroids))
		for i, p := range pixels {
			k := assign[i]
			for c := 0; c < 4; c++ {
				sums[k][c] += p[c]
			}
			counts[k]++
		}
		for k := range centroids {
			if counts[k] == 0 {
				continue
			}
			for c := 0; c < 4; c++ {
				centroids[k][c] = sums[k][c] / counts[k]
			}
		}
	}

	pal := make(color.Palette, len(centroids))
	for i, c := range centroids {
		pal[i] = color.NRGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: uint8(c[3])}
	}
	return pal
}

func seedCentroids(pixels []rgba, n int) []rgba {
	type bucket struct {
		sum   rgba
		count int64
	}
	buckets := map[uint16]*bucket{}
	for _, p := range pixels {
		key := uint16(p[0]>>4)<<12 | uint16(p[1]>>4)<<8 | uint16(p[2]>>4)<<4 | uint16(p[3]>>4)
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{}
			buckets[key] = bk
		}
		for c := 0; c < 4; c++ {
			bk.sum[c] += p[c]
		}
		bk.count++
	}

	keys := make([]uint16, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	// Most populated first; key order breaks ties so output is deterministic.
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := buckets[keys[i]].count, buckets[keys[j]].count
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}

	out := make([]rgba, len(keys))
	for i, k := range keys {
		bk := buckets[k]
		for c := 0; c < 4; c++ {
			out[i][c] = bk.sum[c] / bk.count
		}
	}
	return out
}

func nearest(centroids []rgba, p rgba) int {
	best, bestDist := 0, int64(-1)
	for i, c := range centroids {
		var d int64
		for k := 0; k < 4; k++ {
			diff := c[k] - p[k]
			d += diff * diff
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
