package fingerprint

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

// gradientPNG renders a horizontal gradient. With invert, the gradient runs
// right to left so every horizontal difference flips sign.
func gradientPNG(t *testing.T, invert bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			if invert {
				v = uint8(255 - x*4)
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestCompute(t *testing.T) {
	hashes, err := Compute(gradientPNG(t, false))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(hashes.PHash) != 16 || len(hashes.DHash) != 16 {
		t.Errorf("expected 16 hex chars, got phash=%q dhash=%q", hashes.PHash, hashes.DHash)
	}

	p, err := ParseHash(hashes.PHash)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if p != hashes.PHashBits {
		t.Errorf("hex encoding does not round-trip: %016x vs %016x", p, hashes.PHashBits)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	data := gradientPNG(t, false)
	a, err := Compute(data)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	b, err := Compute(data)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if a.PHashBits != b.PHashBits || a.DHashBits != b.DHashBits {
		t.Error("expected identical hashes for identical input")
	}
}

func TestCompute_OppositeGradientsDiffer(t *testing.T) {
	a, err := Compute(gradientPNG(t, false))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	b, err := Compute(gradientPNG(t, true))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if d := HammingDistance(a.DHashBits, b.DHashBits); d <= 10 {
		t.Errorf("expected opposite gradients far apart, dhash distance %d", d)
	}
}

func TestCompute_RejectsGarbage(t *testing.T) {
	if _, err := Compute([]byte("not an image")); err == nil {
		t.Error("expected decode error")
	}
}

func TestParseHash(t *testing.T) {
	if v, err := ParseHash("00000000000000ff"); err != nil || v != 0xff {
		t.Errorf("ParseHash = %x, %v", v, err)
	}
	if _, err := ParseHash(""); err == nil {
		t.Error("expected error for empty hash")
	}
	if _, err := ParseHash("zzzz"); err == nil {
		t.Error("expected error for non-hex hash")
	}
}

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		a, b uint64
		want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0xff, 0x00, 8},
		{0xffffffffffffffff, 0, 64},
		{0b1010, 0b0101, 4},
	}
	for _, tc := range tests {
		if got := HammingDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("HammingDistance(%x, %x) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}

	if !Similar(0xff00, 0xff03, 10) {
		t.Error("expected 2-bit distance to be similar at threshold 10")
	}
	if Similar(0xffffffffffffffff, 0, 10) {
		t.Error("expected 64-bit distance to be dissimilar")
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	if got := CosineSimilarity(a, a); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: got %f", got)
	}
	if got := CosineSimilarity(a, b); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: got %f", got)
	}
	if got := CosineSimilarity(a, []float32{1, 1}); got != 0 {
		t.Errorf("mismatched lengths: got %f", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors: got %f", got)
	}
	if got := CosineSimilarity(a, []float32{0, 0, 0}); got != 0 {
		t.Errorf("zero vector: got %f", got)
	}
}
