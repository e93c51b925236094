package rawimg

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/tiff"
)

// readTIFF decodes 8 and 16 bit integer TIFFs into normalized RGB floats.
// Floating point TIFFs are not supported by the decoder.
func readTIFF(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, err
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return Buffer{}, fmt.Errorf("read %s: %w", path, err)
	}
	return fromImage(img), nil
}

func fromImage(img image.Image) Buffer {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy(), 3)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := b.Offset(x, y, 0)
			b.Pix[i] = float32(r) / 65535.0
			b.Pix[i+1] = float32(g) / 65535.0
			b.Pix[i+2] = float32(bl) / 65535.0
		}
	}
	return b
}
