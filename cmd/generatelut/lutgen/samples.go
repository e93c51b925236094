package lutgen

import (
	"os"

	"github.com/jszwec/csvutil"
)

// Sample is one row of the 1D LUT samples report.
type Sample struct {
	Index int      `csv:"index"`
	Input float64  `csv:"input"`
	R     float32  `csv:"r"`
	G     *float32 `csv:"g,omitempty"`
	B     *float32 `csv:"b,omitempty"`
}

// Samples pairs each LUT entry with the input value it was sampled at.
func (l SPI1D) Samples() []Sample {
	samples := make([]Sample, 0, len(l.Values))
	for i, row := range l.Values {
		s := Sample{Index: i, Input: l.From[0]}
		if l.Length > 1 {
			s.Input = float64(i)/float64(l.Length-1)*(l.From[1]-l.From[0]) + l.From[0]
		}
		s.R = row[0]
		if len(row) > 1 {
			s.G = &row[1]
		}
		if len(row) > 2 {
			s.B = &row[2]
		}
		samples = append(samples, s)
	}
	return samples
}

// WriteSamplesCSV writes the samples report for lut to filename.
func WriteSamplesCSV(filename string, lut SPI1D) error {
	b, err := csvutil.Marshal(lut.Samples())
	if err != nil {
		return ioError("write_samples_csv", filename, err)
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		return ioError("write_samples_csv", filename, err)
	}
	return nil
}
