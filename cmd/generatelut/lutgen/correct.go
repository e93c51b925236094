package lutgen

import (
	"github.com/sirupsen/logrus"

	"acesluts/cmd/generatelut/rawimg"
)

// NeedsCorrection reports whether a cube image of edge resolution is not laid
// out as resolution*resolution wide by resolution high.
func NeedsCorrection(img rawimg.Buffer, resolution int) bool {
	return img.Width != resolution*resolution || img.Height != resolution
}

// Correct swaps the declared width and height of a mis-shaped cube image.
// Samples keep their flat order; only the dimensions are relabelled. An image
// that already has the expected layout is returned as is with false.
func Correct(img rawimg.Buffer, resolution int) (rawimg.Buffer, bool) {
	if !NeedsCorrection(img, resolution) {
		return img, false
	}

	corrected := rawimg.New(img.Height, img.Width, img.Channels)
	for j := 0; j < corrected.Height; j++ {
		for i := 0; i < corrected.Width; i++ {
			for c := 0; c < corrected.Channels; c++ {
				idx := corrected.Offset(i, j, c)
				corrected.Pix[idx] = img.Pix[idx]
			}
		}
	}
	return corrected, true
}

// CorrectFile reads the transformed cube image and, if its layout is off,
// writes the corrected image to output and returns output. Otherwise input is
// returned and nothing is written.
func CorrectFile(input, output string, resolution int, log logrus.FieldLogger) (string, error) {
	img, err := rawimg.ReadFile(input)
	if err != nil {
		return "", ioError("correct_lut_image", input, err)
	}

	corrected, changed := Correct(img, resolution)
	if !changed {
		return input, nil
	}

	log.Warnf("Correcting image as resolution is off. Found %d x %d. Expected %d x %d",
		img.Width, img.Height, resolution*resolution, resolution)
	log.Infof("Generating %s", output)

	if err := rawimg.WriteFile(output, corrected); err != nil {
		return "", ioError("correct_lut_image", output, err)
	}
	return output, nil
}
