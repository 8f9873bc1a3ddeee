package variants

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pantrysnap/labelreader/constants"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBuildFastMode(t *testing.T) {
	b := NewBuilder(1600, nil)
	set, err := b.Build(encodePNG(t, 320, 240), constants.ModeFast)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.General) != 1 {
		t.Errorf("general variants = %d, want 1", len(set.General))
	}
	if len(set.Brand) != 1 || len(set.Size) != 1 {
		t.Errorf("brand=%d size=%d, want 1 each", len(set.Brand), len(set.Size))
	}
	if set.General[0].Desc != "full/sharpen" {
		t.Errorf("first general variant = %q", set.General[0].Desc)
	}
}

func TestBuildThoroughMode(t *testing.T) {
	b := NewBuilder(1600, nil)
	set, err := b.Build(encodePNG(t, 600, 900), constants.ModeThorough)
	if err != nil {
		t.Fatal(err)
	}
	// full + three bands + center + two thresholded bands
	if len(set.General) != 7 {
		t.Errorf("general variants = %d, want 7", len(set.General))
	}
	if len(set.Brand) != 3 {
		t.Errorf("brand variants = %d, want 3", len(set.Brand))
	}
	if len(set.Size) != 2 {
		t.Errorf("size variants = %d, want 2", len(set.Size))
	}
	for _, v := range set.General {
		if v.Img == nil {
			t.Fatalf("variant %q has no image", v.Desc)
		}
		if v.Rect.Dx() < minCropEdge || v.Rect.Dy() < minCropEdge {
			t.Errorf("variant %q rect %v below minimum", v.Desc, v.Rect)
		}
	}
}

func TestBoundLongestEdge(t *testing.T) {
	b := NewBuilder(500, nil)
	set, err := b.Build(encodePNG(t, 1000, 400), constants.ModeFast)
	if err != nil {
		t.Fatal(err)
	}
	if got := set.Primary.Bounds().Dx(); got != 500 {
		t.Errorf("bounded width = %d, want 500", got)
	}
}

// Tiny images degrade: undersized band crops are skipped and the brand
// zone falls back to the whole frame.
func TestTinyImageDegrades(t *testing.T) {
	b := NewBuilder(1600, nil)
	set, err := b.Build(encodePNG(t, 60, 60), constants.ModeThorough)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.General) != 1 {
		t.Errorf("general variants = %d, want full frame only", len(set.General))
	}
	if len(set.Brand) == 0 {
		t.Fatal("brand zone must still emit a variant")
	}
	if got := set.Brand[0].Rect; got.Dx() != 60 || got.Dy() != 60 {
		t.Errorf("brand fallback rect = %v, want full frame", got)
	}
}

func TestBuildRejectsGarbage(t *testing.T) {
	b := NewBuilder(1600, nil)
	if _, err := b.Build([]byte("not an image"), constants.ModeFast); err == nil {
		t.Error("expected decode error")
	}
}
