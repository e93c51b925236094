package lutgen

import (
	"acesluts/cmd/generatelut/rawimg"
)

// Ramp1D builds a resolution x 1 RGB image whose columns step evenly from
// min to max, both endpoints included.
func Ramp1D(resolution int, min, max float64) rawimg.Buffer {
	ramp := rawimg.New(resolution, 1, 3)
	for i := 0; i < resolution; i++ {
		value := float32(float64(i)/float64(resolution-1)*(max-min) + min)
		ramp.Set(i, 0, 0, value)
		ramp.Set(i, 0, 1, value)
		ramp.Set(i, 0, 2, value)
	}
	return ramp
}

// WriteRamp1D writes the identity ramp for a 1D LUT as a float image.
func WriteRamp1D(path string, resolution int, min, max float64) error {
	if resolution < 2 {
		return argError("generate_1d_ramp", "resolution must be at least 2, got %d", resolution)
	}
	if err := rawimg.WriteFile(path, Ramp1D(resolution, min, max)); err != nil {
		return ioError("generate_1d_ramp", path, err)
	}
	return nil
}
