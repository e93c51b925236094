package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/exp/maps"

	"acesluts/cmd/generatelut/lutgen"
)

type options struct {
	lutPath      string
	ctlPaths     []string
	resolution1D int
	resolution3D int
	releasePath  string
	bitDepth     string
	keepTemp     bool
	minValue     float64
	maxValue     float64
	inputScale   float64
	outputScale  float64
	params       []string
	generate1D   bool
	generate3D   bool

	configPath string
	samplesCSV string
	verbose    bool
}

func defaultOptions() options {
	return options{
		resolution1D: 1024,
		resolution3D: 33,
		bitDepth:     "float",
		minValue:     0.0,
		maxValue:     1.0,
		inputScale:   1.0,
		outputScale:  1.0,
	}
}

func (o *options) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.lutPath, "lut", "l", o.lutPath, "output LUT path")
	fs.StringArrayVarP(&o.ctlPaths, "ctl", "c", o.ctlPaths, "CTL transform to apply, repeat to chain in order")
	fs.IntVar(&o.resolution1D, "lut_resolution_1d", o.resolution1D, "number of 1D LUT entries")
	fs.IntVar(&o.resolution3D, "lut_resolution_3d", o.resolution3D, "3D LUT cube edge")
	fs.StringVarP(&o.releasePath, "ctlReleasePath", "r", o.releasePath, "CTL release root holding the utilities modules")
	fs.StringVarP(&o.bitDepth, "bitDepth", "b", o.bitDepth, "bit depth of the image fed to ctlrender")
	fs.BoolVar(&o.keepTemp, "keepTempImages", o.keepTemp, "keep intermediate images")
	fs.Float64Var(&o.minValue, "minValue", o.minValue, "1D LUT input domain minimum")
	fs.Float64Var(&o.maxValue, "maxValue", o.maxValue, "1D LUT input domain maximum")
	fs.Float64Var(&o.inputScale, "inputScale", o.inputScale, "ctlrender input scale")
	fs.Float64Var(&o.outputScale, "outputScale", o.outputScale, "ctlrender output scale")
	fs.StringArrayVarP(&o.params, "ctlRenderParam", "p", o.params, "CTL global parameter as name=value, repeatable")
	fs.BoolVar(&o.generate1D, "generate1d", o.generate1D, "generate a 1D LUT")
	fs.BoolVar(&o.generate3D, "generate3d", o.generate3D, "generate a 3D LUT")

	fs.StringVar(&o.configPath, "config", o.configPath, "YAML config file")
	fs.StringVar(&o.samplesCSV, "samplesCsv", o.samplesCSV, "write a CSV report of the 1D LUT samples")
	fs.BoolVarP(&o.verbose, "verbose", "v", o.verbose, "debug logging")
}

// parseParams turns name=value pairs into a fresh parameter map. A repeated
// name keeps the last value.
func parseParams(pairs []string) (map[string]float64, error) {
	params := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &lutgen.OpError{
				Op:   "parse_ctl_render_param",
				Kind: lutgen.KindArgument,
				Err:  fmt.Errorf("expected name=value, got %q", pair),
			}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, &lutgen.OpError{
				Op:   "parse_ctl_render_param",
				Kind: lutgen.KindArgument,
				Err:  fmt.Errorf("parameter %s: %w", name, err),
			}
		}
		params[name] = v
	}
	return params, nil
}

func formatParams(params map[string]float64) string {
	keys := maps.Keys(params)
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, params[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func printSummary(w io.Writer, o options, params map[string]float64) {
	if o.generate1D {
		fmt.Fprintln(w, "1D LUT generation options")
	} else {
		fmt.Fprintln(w, "3D LUT generation options")
	}
	fmt.Fprintf(w, "lut                 : %s\n", o.lutPath)
	fmt.Fprintf(w, "ctls                : %v\n", o.ctlPaths)
	fmt.Fprintf(w, "lut res 1d          : %d\n", o.resolution1D)
	fmt.Fprintf(w, "lut res 3d          : %d\n", o.resolution3D)
	fmt.Fprintf(w, "min value           : %v\n", o.minValue)
	fmt.Fprintf(w, "max value           : %v\n", o.maxValue)
	fmt.Fprintf(w, "input scale         : %v\n", o.inputScale)
	fmt.Fprintf(w, "output scale        : %v\n", o.outputScale)
	fmt.Fprintf(w, "ctl render params   : %s\n", formatParams(params))
	fmt.Fprintf(w, "ctl release path    : %s\n", o.releasePath)
	fmt.Fprintf(w, "bit depth of input  : %s\n", o.bitDepth)
	fmt.Fprintf(w, "cleanup temp images : %t\n", !o.keepTemp)
}
