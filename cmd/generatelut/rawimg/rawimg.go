// Package rawimg holds float32 pixel buffers and reads and writes them as
// image files. OpenEXR is the working format; integer TIFFs produced by
// external bit-depth conversion can be read back as well.
package rawimg

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Buffer is a flat, row-major, channel-interleaved float32 image.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []float32
}

// New allocates a zeroed buffer.
func New(width, height, channels int) Buffer {
	return Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}
}

// Offset returns the index of channel c of pixel (x, y) in Pix.
func (b Buffer) Offset(x, y, c int) int {
	return (y*b.Width+x)*b.Channels + c
}

func (b Buffer) At(x, y, c int) float32 {
	return b.Pix[b.Offset(x, y, c)]
}

func (b Buffer) Set(x, y, c int, v float32) {
	b.Pix[b.Offset(x, y, c)] = v
}

// Validate checks that the declared dimensions match the pixel slice.
func (b Buffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 || b.Channels <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d with %d channels", b.Width, b.Height, b.Channels)
	}
	if want := b.Width * b.Height * b.Channels; len(b.Pix) != want {
		return fmt.Errorf("expected %d samples for %dx%dx%d image, got %d", want, b.Width, b.Height, b.Channels, len(b.Pix))
	}
	return nil
}

// ReadFile decodes the image at path, choosing the codec by file extension.
func ReadFile(path string) (Buffer, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".exr":
		return readEXR(path)
	case ".tif", ".tiff":
		return readTIFF(path)
	default:
		return Buffer{}, fmt.Errorf("read %s: unsupported image format %q", path, ext)
	}
}

// WriteFile encodes b at path. Only OpenEXR output is supported.
func WriteFile(path string, b Buffer) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".exr":
		return writeEXR(path, b)
	default:
		return fmt.Errorf("write %s: unsupported image format %q", path, ext)
	}
}
