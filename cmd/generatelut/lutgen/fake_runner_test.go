package lutgen

import (
	"context"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/tiff"

	"acesluts/cmd/generatelut/extproc"
	"acesluts/cmd/generatelut/rawimg"
)

// fakeRunner stands in for ctlrender, oiiotool and ociolutimage. It records
// every command and produces the output files the real tools would.
type fakeRunner struct {
	calls []extproc.Command
	// fail names a tool whose invocation exits non-zero.
	fail string
	// transposed makes ctlrender emit a resolution x resolution^2 image.
	transposed bool
}

func (f *fakeRunner) Run(_ context.Context, cmd extproc.Command) (extproc.Result, error) {
	f.calls = append(f.calls, cmd)
	if cmd.Name == f.fail {
		res := extproc.Result{ExitCode: 1, Output: []byte("boom")}
		return res, &extproc.ExitError{Command: cmd, ExitCode: 1, Output: res.Output}
	}

	var err error
	switch cmd.Name {
	case "oiiotool":
		err = convert(cmd.Args[0], cmd.Args[4])
	case "ctlrender":
		err = f.render(cmd.Args[len(cmd.Args)-2], cmd.Args[len(cmd.Args)-1])
	case "ociolutimage":
		err = f.lutImage(cmd.Args)
	}
	if err != nil {
		return extproc.Result{ExitCode: 1}, &extproc.ExitError{Command: cmd, ExitCode: 1, Err: err}
	}
	return extproc.Result{}, nil
}

func (f *fakeRunner) names() []string {
	var names []string
	for _, c := range f.calls {
		names = append(names, c.Name)
	}
	return names
}

func (f *fakeRunner) lutImage(args []string) error {
	opts := map[string]string{}
	for i := 1; i+1 < len(args); i += 2 {
		opts[args[i]] = args[i+1]
	}
	size, err := strconv.Atoi(opts["--cubesize"])
	if err != nil {
		return err
	}
	if args[0] == "--generate" {
		return rawimg.WriteFile(opts["--output"], identityCube(size))
	}
	return copyFile(opts["--input"], opts["--output"])
}

// render reads any supported input and writes EXR, like ctlrender.
func (f *fakeRunner) render(in, out string) error {
	img, err := rawimg.ReadFile(in)
	if err != nil {
		return err
	}
	if f.transposed {
		img.Width, img.Height = img.Height, img.Width
	}
	return rawimg.WriteFile(out, img)
}

// convert writes a 16 bit TIFF for .tiff outputs and copies otherwise.
func convert(in, out string) error {
	if filepath.Ext(out) != ".tiff" {
		return copyFile(in, out)
	}
	img, err := rawimg.ReadFile(in)
	if err != nil {
		return err
	}
	rgba := image.NewRGBA64(image.Rect(0, 0, img.Width, img.Height))
	quantize := func(v float32) uint16 {
		return uint16(math.Round(math.Max(0, math.Min(1, float64(v))) * 65535))
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			rgba.SetRGBA64(x, y, color.RGBA64{
				R: quantize(img.At(x, y, 0)),
				G: quantize(img.At(x, y, 1)),
				B: quantize(img.At(x, y, 2)),
				A: 0xffff,
			})
		}
	}
	fh, err := os.Create(out)
	if err != nil {
		return err
	}
	defer fh.Close()
	if err := tiff.Encode(fh, rgba, nil); err != nil {
		return err
	}
	return fh.Close()
}

// identityCube lays out a cube of edge n as an n^2 x n image, red fastest.
func identityCube(n int) rawimg.Buffer {
	img := rawimg.New(n*n, n, 3)
	step := float32(1) / float32(n-1)
	for b := 0; b < n; b++ {
		for g := 0; g < n; g++ {
			for r := 0; r < n; r++ {
				x, y := r+g*n, b
				img.Set(x, y, 0, float32(r)*step)
				img.Set(x, y, 1, float32(g)*step)
				img.Set(x, y, 2, float32(b)*step)
			}
		}
	}
	return img
}

func copyFile(src, dst string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0644)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
