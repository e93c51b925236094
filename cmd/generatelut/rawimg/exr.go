package rawimg

import (
	"fmt"
	"os"

	"github.com/mrjoshuak/go-openexr/exr"
)

// channelNames maps a channel count to the EXR channel names used for it.
var channelNames = map[int][]string{
	1: {"Y"},
	3: {"R", "G", "B"},
	4: {"R", "G", "B", "A"},
}

func exrChannels(h *exr.Header) ([]string, error) {
	cl := h.Channels()
	if cl.Get("R") != nil && cl.Get("G") != nil && cl.Get("B") != nil {
		if cl.Get("A") != nil {
			return channelNames[4], nil
		}
		return channelNames[3], nil
	}
	if cl.Get("Y") != nil {
		return channelNames[1], nil
	}
	return nil, fmt.Errorf("no RGB or Y channels")
}

func readEXR(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Buffer{}, err
	}

	file, err := exr.OpenReader(f, info.Size())
	if err != nil {
		return Buffer{}, fmt.Errorf("read %s: %w", path, err)
	}
	h := file.Header(0)
	if h == nil {
		return Buffer{}, fmt.Errorf("read %s: no header found", path)
	}
	if h.IsTiled() {
		return Buffer{}, fmt.Errorf("read %s: tiled EXR files are not supported", path)
	}
	names, err := exrChannels(h)
	if err != nil {
		return Buffer{}, fmt.Errorf("read %s: %w", path, err)
	}

	dw := h.DataWindow()
	width := int(dw.Width())
	height := int(dw.Height())

	planes := make([][]float32, len(names))
	fb := exr.NewFrameBuffer()
	for i, name := range names {
		planes[i] = make([]float32, width*height)
		fb.Set(name, exr.NewSliceFromFloat32(planes[i], width, height))
	}

	sr, err := exr.NewScanlineReader(file)
	if err != nil {
		return Buffer{}, fmt.Errorf("read %s: %w", path, err)
	}
	sr.SetFrameBuffer(fb)
	if err := sr.ReadPixels(int(dw.Min.Y), int(dw.Max.Y)); err != nil {
		return Buffer{}, fmt.Errorf("read %s: %w", path, err)
	}

	b := New(width, height, len(names))
	for c, plane := range planes {
		for i, v := range plane {
			b.Pix[i*b.Channels+c] = v
		}
	}
	return b, nil
}

func writeEXR(path string, b Buffer) error {
	names, ok := channelNames[b.Channels]
	if !ok {
		return fmt.Errorf("write %s: cannot store %d channels", path, b.Channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := exr.NewScanlineHeader(b.Width, b.Height)
	h.SetCompression(exr.CompressionNone)
	channels := exr.NewChannelList()
	for _, name := range names {
		channels.Add(exr.Channel{Name: name, Type: exr.PixelTypeFloat, XSampling: 1, YSampling: 1})
	}
	h.SetChannels(channels)

	fb := exr.NewFrameBuffer()
	n := b.Width * b.Height
	for c, name := range names {
		plane := make([]float32, n)
		for i := 0; i < n; i++ {
			plane[i] = b.Pix[i*b.Channels+c]
		}
		fb.Set(name, exr.NewSliceFromFloat32(plane, b.Width, b.Height))
	}

	sw, err := exr.NewScanlineWriter(f, h)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	sw.SetFrameBuffer(fb)

	yMin := int(h.DataWindow().Min.Y)
	yMax := int(h.DataWindow().Max.Y)
	if err := sw.WritePixels(yMin, yMax); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
