package main

import (
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"acesluts/cmd/generatelut/lutgen"
)

// Config is the optional YAML file given with --config.
type Config struct {
	Tools    lutgen.Tools      `yaml:"tools"`
	Env      map[string]string `yaml:"env"`
	Defaults Defaults          `yaml:"defaults"`
}

// Defaults overrides flag defaults. Flags set on the command line win.
type Defaults struct {
	CTLReleasePath *string  `yaml:"ctlReleasePath"`
	BitDepth       *string  `yaml:"bitDepth"`
	Resolution1D   *int     `yaml:"lut_resolution_1d"`
	Resolution3D   *int     `yaml:"lut_resolution_3d"`
	MinValue       *float64 `yaml:"minValue"`
	MaxValue       *float64 `yaml:"maxValue"`
	InputScale     *float64 `yaml:"inputScale"`
	OutputScale    *float64 `yaml:"outputScale"`
	KeepTempImages *bool    `yaml:"keepTempImages"`
}

func DefaultConfig() Config {
	return Config{Tools: lutgen.DefaultTools()}
}

// LoadConfig reads path over DefaultConfig. Tool names left blank keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &lutgen.OpError{
			Op:   "config.load",
			Kind: lutgen.KindArgument,
			Path: path,
			Err:  err,
		}
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, &lutgen.OpError{
			Op:   "config.load",
			Kind: lutgen.KindArgument,
			Path: path,
			Err:  err,
		}
	}

	def := lutgen.DefaultTools()
	if cfg.Tools.CTLRender == "" {
		cfg.Tools.CTLRender = def.CTLRender
	}
	if cfg.Tools.OIIOTool == "" {
		cfg.Tools.OIIOTool = def.OIIOTool
	}
	if cfg.Tools.OCIOLUTImage == "" {
		cfg.Tools.OCIOLUTImage = def.OCIOLUTImage
	}
	return cfg, nil
}

func (d Defaults) apply(fs *pflag.FlagSet, o *options) {
	set := func(name string, fn func()) {
		if !fs.Changed(name) {
			fn()
		}
	}
	if d.CTLReleasePath != nil {
		set("ctlReleasePath", func() { o.releasePath = *d.CTLReleasePath })
	}
	if d.BitDepth != nil {
		set("bitDepth", func() { o.bitDepth = *d.BitDepth })
	}
	if d.Resolution1D != nil {
		set("lut_resolution_1d", func() { o.resolution1D = *d.Resolution1D })
	}
	if d.Resolution3D != nil {
		set("lut_resolution_3d", func() { o.resolution3D = *d.Resolution3D })
	}
	if d.MinValue != nil {
		set("minValue", func() { o.minValue = *d.MinValue })
	}
	if d.MaxValue != nil {
		set("maxValue", func() { o.maxValue = *d.MaxValue })
	}
	if d.InputScale != nil {
		set("inputScale", func() { o.inputScale = *d.InputScale })
	}
	if d.OutputScale != nil {
		set("outputScale", func() { o.outputScale = *d.OutputScale })
	}
	if d.KeepTempImages != nil {
		set("keepTempImages", func() { o.keepTemp = *d.KeepTempImages })
	}
}
