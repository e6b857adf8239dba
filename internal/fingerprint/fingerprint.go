// Package fingerprint computes similarity signals for duplicate detection:
// 64-bit perceptual hashes (DCT-based pHash and difference dHash) and cosine
// similarity over image embeddings.
package fingerprint

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sort"
	"strconv"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Hashes holds the perceptual hashes of one image.
type Hashes struct {
	PHash string `json:"phash"` // hex-encoded 64-bit perceptual hash
	DHash string `json:"dhash"` // hex-encoded 64-bit difference hash

	PHashBits uint64 `json:"-"`
	DHashBits uint64 `json:"-"`
}

// Compute decodes the image and computes both perceptual hashes.
func Compute(imageData []byte) (*Hashes, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	p := phash(img)
	d := dhash(img)
	return &Hashes{
		PHash:     fmt.Sprintf("%016x", p),
		DHash:     fmt.Sprintf("%016x", d),
		PHashBits: p,
		DHashBits: d,
	}, nil
}

// ParseHash decodes a hex-encoded 64-bit hash as produced by Compute.
func ParseHash(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty hash")
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing hash %q: %w", s, err)
	}
	return v, nil
}

// HammingDistance counts differing bits between two 64-bit hashes.
func HammingDistance(a, b uint64) int {
	x := a ^ b
	n := 0
	for x != 0 {
		n++
		x &= x - 1
	}
	return n
}

// Similar reports whether two hashes are within threshold bits of each other.
// A threshold of 10 works well for near-duplicate photos.
func Similar(a, b uint64, threshold int) bool {
	return HammingDistance(a, b) <= threshold
}

// CosineSimilarity computes the cosine similarity of two embedding vectors.
// Returns 0 for mismatched or empty inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// phash computes a 64-bit DCT perceptual hash: resize to 32x32 grayscale,
// take the low-frequency 8x8 DCT block minus the DC term, threshold at the
// median.
func phash(img image.Image) uint64 {
	gray := grayscale(scale(img, 32, 32), 32, 32)
	dct := dct2d(gray, 32)

	coeffs := make([]float64, 0, 64)
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			if u == 0 && v == 0 {
				continue
			}
			coeffs = append(coeffs, dct[u*32+v])
		}
	}
	coeffs = append(coeffs, dct[8*32+8]) // pad back to 64 values

	median := medianOf(coeffs)
	var hash uint64
	for i, c := range coeffs {
		if c > median {
			hash |= 1 << (63 - i)
		}
	}
	return hash
}

// dhash computes a 64-bit difference hash from horizontal gradients of a
// 9x8 grayscale thumbnail.
func dhash(img image.Image) uint64 {
	gray := grayscale(scale(img, 9, 8), 9, 8)
	var hash uint64
	bit := 63
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if gray[y*9+x] > gray[y*9+x+1] {
				hash |= 1 << bit
			}
			bit--
		}
	}
	return hash
}

func scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// grayscale flattens an RGBA image into row-major luma values (BT.601).
func grayscale(img *image.RGBA, w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return out
}

// dct2d computes a size x size DCT-II over row-major grayscale values.
func dct2d(gray []float64, size int) []float64 {
	cosines := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			cosines[i*size+j] = math.Cos(math.Pi * float64(i) * (2*float64(j) + 1) / (2 * float64(size)))
		}
	}

	out := make([]float64, size*size)
	for u := 0; u < size; u++ {
		for v := 0; v < size; v++ {
			var sum float64
			for x := 0; x < size; x++ {
				for y := 0; y < size; y++ {
					sum += gray[x*size+y] * cosines[u*size+x] * cosines[v*size+y]
				}
			}
			out[u*size+v] = sum
		}
	}
	return out
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
