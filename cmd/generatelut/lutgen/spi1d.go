package lutgen

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"acesluts/cmd/generatelut/rawimg"
)

// maxComponents is the channel cap of the SPI 1D format.
const maxComponents = 3

// SPI1D is a parsed or to-be-written SPI 1D LUT.
type SPI1D struct {
	From       [2]float64
	Length     int
	Components int
	// Values holds Length rows of Components samples each.
	Values [][]float32
}

// NewSPI1D takes the first min(3, channels) samples of each of the entries
// pixels in data.
func NewSPI1D(fromMin, fromMax float64, data []float32, entries, channels int) (SPI1D, error) {
	if entries <= 0 || channels <= 0 {
		return SPI1D{}, fmt.Errorf("invalid LUT shape: %d entries, %d channels", entries, channels)
	}
	if len(data) < entries*channels {
		return SPI1D{}, fmt.Errorf("expected %d samples for %d entries, got %d", entries*channels, entries, len(data))
	}

	components := min(maxComponents, channels)
	lut := SPI1D{
		From:       [2]float64{fromMin, fromMax},
		Length:     entries,
		Components: components,
		Values:     make([][]float32, entries),
	}
	for i := 0; i < entries; i++ {
		row := make([]float32, components)
		copy(row, data[i*channels:i*channels+components])
		lut.Values[i] = row
	}
	return lut, nil
}

// WriteTo encodes the LUT in SPI 1D text form.
func (l SPI1D) WriteTo(w io.Writer) (int64, error) {
	writer := bufio.NewWriter(w)
	var n int64
	put := func(s string) {
		m, _ := writer.WriteString(s)
		n += int64(m)
	}

	put("Version 1\n")
	put("From " + formatBound(l.From[0]) + " " + formatBound(l.From[1]) + "\n")
	put(fmt.Sprintf("Length %d\n", l.Length))
	put(fmt.Sprintf("Components %d\n", l.Components))
	put("{\n")
	for _, row := range l.Values {
		fields := make([]string, len(row))
		for j, v := range row {
			fields[j] = formatSample(v)
		}
		put("    " + strings.Join(fields, " ") + "\n")
	}
	put("}\n")
	return n, writer.Flush()
}

// WriteSPI1D writes entries pixels of data (channels samples each) to path.
func WriteSPI1D(path string, fromMin, fromMax float64, data []float32, entries, channels int) (SPI1D, error) {
	lut, err := NewSPI1D(fromMin, fromMax, data, entries, channels)
	if err != nil {
		return SPI1D{}, argError("write_spi1d", "%v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return SPI1D{}, ioError("write_spi1d", path, err)
	}
	defer f.Close()

	if _, err := lut.WriteTo(f); err != nil {
		return SPI1D{}, ioError("write_spi1d", path, err)
	}
	if err := f.Close(); err != nil {
		return SPI1D{}, ioError("write_spi1d", path, err)
	}
	return lut, nil
}

// Write1DFromImage turns a transformed ramp image into an SPI 1D file. An
// empty lutPath defaults to the image path with ".spi1d" appended.
func Write1DFromImage(imagePath, lutPath string, fromMin, fromMax float64) (SPI1D, error) {
	if lutPath == "" {
		lutPath = imagePath + ".spi1d"
	}
	img, err := rawimg.ReadFile(imagePath)
	if err != nil {
		return SPI1D{}, ioError("generate_1d_lut_from_image", imagePath, err)
	}
	return WriteSPI1D(lutPath, fromMin, fromMax, img.Pix, img.Width, img.Channels)
}

// ReadSPI1D parses an SPI 1D file.
func ReadSPI1D(r io.Reader) (SPI1D, error) {
	var lut SPI1D
	scanner := bufio.NewScanner(r)
	inData, closed := false, false
	ln := 0
	for scanner.Scan() {
		ln++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if inData {
			if line == "}" {
				inData, closed = false, true
				continue
			}
			row, err := parseRow(line, lut.Components)
			if err != nil {
				return SPI1D{}, fmt.Errorf("line %d: %w", ln, err)
			}
			lut.Values = append(lut.Values, row)
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "Version":
			if len(fields) != 2 || fields[1] != "1" {
				err = fmt.Errorf("unsupported version %q", line)
			}
		case "From":
			if len(fields) != 3 {
				err = fmt.Errorf("expected From <min> <max>, got %q", line)
				break
			}
			if lut.From[0], err = strconv.ParseFloat(fields[1], 64); err != nil {
				break
			}
			lut.From[1], err = strconv.ParseFloat(fields[2], 64)
		case "Length":
			lut.Length, err = headerInt(fields)
		case "Components":
			lut.Components, err = headerInt(fields)
		case "{":
			if lut.Components <= 0 {
				err = fmt.Errorf("data block before Components")
			}
			inData = true
		default:
			err = fmt.Errorf("unexpected %q", line)
		}
		if err != nil {
			return SPI1D{}, fmt.Errorf("line %d: %w", ln, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return SPI1D{}, err
	}
	if !closed {
		return SPI1D{}, fmt.Errorf("missing data block")
	}
	if len(lut.Values) != lut.Length {
		return SPI1D{}, fmt.Errorf("expected %d entries, got %d", lut.Length, len(lut.Values))
	}
	return lut, nil
}

func headerInt(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("expected %s <n>, got %q", fields[0], strings.Join(fields, " "))
	}
	return strconv.Atoi(fields[1])
}

func parseRow(line string, components int) ([]float32, error) {
	fields := strings.Fields(line)
	if len(fields) != components {
		return nil, fmt.Errorf("expected %d components, got %d", components, len(fields))
	}
	row := make([]float32, components)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		row[i] = float32(v)
	}
	return row, nil
}

// formatBound prints the shortest decimal that parses back to v, padded to at
// least six places.
func formatBound(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		s += "."
		dot = len(s) - 1
	}
	if places := len(s) - dot - 1; places < 6 {
		s += strings.Repeat("0", 6-places)
	}
	return s
}

// formatSample prints the shortest float32 representation, keeping a decimal
// point on whole numbers and switching to exponent form for very small or
// very large magnitudes.
func formatSample(v float32) string {
	f := float64(v)
	if abs := math.Abs(f); abs != 0 && !math.IsInf(f, 0) && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 32)
	}
	s := strconv.FormatFloat(f, 'f', -1, 32)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}
