package rawimg

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/tiff"
)

func TestBufferOffset(t *testing.T) {
	b := New(4, 2, 3)
	b.Set(1, 1, 2, 0.5)
	if got := b.Offset(1, 1, 2); got != 17 {
		t.Errorf("Expected offset 17, got %d", got)
	}
	if got := b.At(1, 1, 2); got != 0.5 {
		t.Errorf("Expected 0.5, got %v", got)
	}
}

func TestBufferValidate(t *testing.T) {
	if err := New(2, 2, 3).Validate(); err != nil {
		t.Errorf("Expected valid buffer, got %v", err)
	}
	bad := Buffer{Width: 2, Height: 2, Channels: 3, Pix: make([]float32, 5)}
	if err := bad.Validate(); err == nil {
		t.Error("Expected an error for short pixel data")
	}
	if err := (Buffer{}).Validate(); err == nil {
		t.Error("Expected an error for empty dimensions")
	}
}

func TestEXRRoundTrip(t *testing.T) {
	for _, channels := range []int{1, 3, 4} {
		b := New(5, 3, channels)
		for i := range b.Pix {
			b.Pix[i] = float32(i) * 0.125
		}
		path := filepath.Join(t.TempDir(), "image.exr")
		if err := WriteFile(path, b); err != nil {
			t.Fatalf("WriteFile with %d channels: %v", channels, err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile with %d channels: %v", channels, err)
		}
		if diff := cmp.Diff(b, got); diff != "" {
			t.Errorf("EXR round trip with %d channels mismatch (-want +got):\n%s", channels, diff)
		}
	}
}

func TestWriteUnsupported(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "image.png"), New(1, 1, 3)); err == nil {
		t.Error("Expected an error for png output")
	}
	if err := WriteFile(filepath.Join(dir, "image.exr"), New(1, 1, 2)); err == nil {
		t.Error("Expected an error for two channel EXR output")
	}
}

func TestReadTIFF16(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA64{R: 0, G: 0, B: 0, A: 0xffff})
	img.Set(1, 0, color.RGBA64{R: 0x8000, G: 0x4000, B: 0x2000, A: 0xffff})
	img.Set(2, 0, color.RGBA64{R: 0xffff, G: 0xffff, B: 0xffff, A: 0xffff})

	path := filepath.Join(t.TempDir(), "ramp.uint16.tiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := tiff.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Width != 3 || got.Height != 1 || got.Channels != 3 {
		t.Fatalf("Expected 3x1x3, got %dx%dx%d", got.Width, got.Height, got.Channels)
	}
	want := []float32{
		0, 0, 0,
		float32(0x8000) / 65535.0, float32(0x4000) / 65535.0, float32(0x2000) / 65535.0,
		1, 1, 1,
	}
	if diff := cmp.Diff(want, got.Pix); diff != "" {
		t.Errorf("TIFF pixels mismatch (-want +got):\n%s", diff)
	}
}

func TestReadUnsupported(t *testing.T) {
	if _, err := ReadFile("image.png"); err == nil {
		t.Error("Expected an error for png input")
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.exr")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
