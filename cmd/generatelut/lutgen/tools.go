package lutgen

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"

	"acesluts/cmd/generatelut/extproc"
)

// DepthHalf is the identity bit depth that skips conversion.
const DepthHalf = "half"

// BitDepths lists the depths oiiotool accepts for -d.
var BitDepths = []string{"uint8", "sint8", "uint10", "uint12", "uint16", "sint16", "uint32", "sint32", "half", "float", "double"}

// ValidBitDepth reports whether depth is one of BitDepths.
func ValidBitDepth(depth string) bool {
	for _, d := range BitDepths {
		if d == depth {
			return true
		}
	}
	return false
}

// ctlModuleDir is the subdirectory of a CTL release holding shared modules.
const ctlModuleDir = "utilities"

// Tools names the external binaries.
type Tools struct {
	CTLRender    string `yaml:"ctlrender"`
	OIIOTool     string `yaml:"oiiotool"`
	OCIOLUTImage string `yaml:"ociolutimage"`
}

func DefaultTools() Tools {
	return Tools{
		CTLRender:    "ctlrender",
		OIIOTool:     "oiiotool",
		OCIOLUTImage: "ociolutimage",
	}
}

// Generator runs the LUT pipeline steps that need external tools.
type Generator struct {
	Runner extproc.Runner
	Tools  Tools
	// Env is added to every child environment; per-step variables win.
	Env map[string]string
	Log logrus.FieldLogger
}

// NewGenerator returns a Generator using the default tool names.
func NewGenerator(runner extproc.Runner, log logrus.FieldLogger) *Generator {
	return &Generator{Runner: runner, Tools: DefaultTools(), Log: log}
}

func (g *Generator) log() logrus.FieldLogger {
	if g.Log == nil {
		return logrus.StandardLogger()
	}
	return g.Log
}

func (g *Generator) run(ctx context.Context, op string, cmd extproc.Command) error {
	if len(g.Env) > 0 {
		env := make(map[string]string, len(g.Env)+len(cmd.Env))
		maps.Copy(env, g.Env)
		maps.Copy(env, cmd.Env)
		cmd.Env = env
	}
	g.log().WithField("cmd", cmd.String()).Infof("%s", cmd.Description)
	if _, err := g.Runner.Run(ctx, cmd); err != nil {
		return &OpError{Op: op, Kind: KindExternal, Err: err}
	}
	return nil
}

// ConvertBitDepth re-encodes input at depth into output with oiiotool.
func (g *Generator) ConvertBitDepth(ctx context.Context, input, output, depth string) error {
	if !ValidBitDepth(depth) {
		return argError("convert_bit_depth", "unknown bit depth %q", depth)
	}
	return g.run(ctx, "convert_bit_depth", extproc.Command{
		Description: "convert image bit depth",
		Name:        g.Tools.OIIOTool,
		Args:        []string{input, "-d", depth, "-o", output},
	})
}

// TransformRequest is an ordered CTL chain plus its render options.
type TransformRequest struct {
	CTLPaths    []string
	InputScale  float64
	OutputScale float64
	Params      map[string]float64
	// ReleaseDir is the CTL release root; empty leaves the module path alone.
	ReleaseDir string
}

// NewTransformRequest returns a request with unit scales and no parameters.
func NewTransformRequest(ctlPaths ...string) TransformRequest {
	return TransformRequest{
		CTLPaths:    ctlPaths,
		InputScale:  1.0,
		OutputScale: 1.0,
		Params:      map[string]float64{},
	}
}

// ModulePath derives CTL_MODULE_PATH from a release directory.
func ModulePath(releaseDir string) string {
	if filepath.Base(releaseDir) == ctlModuleDir {
		return releaseDir
	}
	return filepath.Join(releaseDir, ctlModuleDir)
}

// CTLArgs builds the ctlrender argument list for req.
func CTLArgs(input, output string, req TransformRequest) []string {
	var args []string
	for _, ctl := range req.CTLPaths {
		args = append(args, "-ctl", ctl)
	}
	args = append(args, "-force")
	args = append(args, "-input_scale", formatArg(req.InputScale))
	args = append(args, "-output_scale", formatArg(req.OutputScale))
	args = append(args, "-global_param1", "aIn", "1.0")

	names := maps.Keys(req.Params)
	sort.Strings(names)
	for _, name := range names {
		args = append(args, "-global_param1", name, formatArg(req.Params[name]))
	}
	return append(args, input, output)
}

// ApplyCTL renders input through the CTL chain into output. It reports false
// without running anything when the chain is empty.
func (g *Generator) ApplyCTL(ctx context.Context, input, output string, req TransformRequest) (bool, error) {
	if len(req.CTLPaths) == 0 {
		g.log().Debug("no CTL transforms given, skipping ctlrender")
		return false, nil
	}

	cmd := extproc.Command{
		Description: "a ctlrender process",
		Name:        g.Tools.CTLRender,
		Args:        CTLArgs(input, output, req),
	}
	if req.ReleaseDir != "" {
		cmd.Env = map[string]string{"CTL_MODULE_PATH": ModulePath(req.ReleaseDir)}
	}
	if err := g.run(ctx, "apply_ctl", cmd); err != nil {
		return false, err
	}
	return true, nil
}

func cubeArgs(resolution int) []string {
	return []string{
		"--cubesize", strconv.Itoa(resolution),
		"--maxwidth", strconv.Itoa(resolution * resolution),
	}
}

// GenerateIdentity3D writes an identity cube image of edge resolution.
func (g *Generator) GenerateIdentity3D(ctx context.Context, output string, resolution int) error {
	args := append([]string{"--generate"}, cubeArgs(resolution)...)
	args = append(args, "--output", output)
	return g.run(ctx, "generate_3d_identity", extproc.Command{
		Description: "generate a 3d LUT image",
		Name:        g.Tools.OCIOLUTImage,
		Args:        args,
	})
}

// Extract3D packs a cube image into a 3D LUT file. An empty output defaults
// to the image path with ".spi3d" appended.
func (g *Generator) Extract3D(ctx context.Context, image, output string, resolution int) error {
	if output == "" {
		output = image + ".spi3d"
	}
	args := append([]string{"--extract"}, cubeArgs(resolution)...)
	args = append(args, "--input", image, "--output", output)
	return g.run(ctx, "extract_3d_lut", extproc.Command{
		Description: "extract a 3d LUT",
		Name:        g.Tools.OCIOLUTImage,
		Args:        args,
	})
}

// formatArg prints v the way the renderer expects numeric arguments:
// shortest form, always with a decimal point.
func formatArg(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
