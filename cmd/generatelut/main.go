package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"acesluts/cmd/generatelut/extproc"
	"acesluts/cmd/generatelut/lutgen"
)

var version = "0.01"

const noModeMessage = "\n\nNo LUT generated. You must choose either 1D or 3D LUT generation\n\n"

func main() {
	if err := Execute(); err != nil {
		logrus.WithError(err).Error("LUT generation failed")
		os.Exit(1)
	}
}

func Execute() error {
	return newRootCmd(&extproc.ExecRunner{Log: logrus.StandardLogger()}).Execute()
}

func newRootCmd(runner extproc.Runner) *cobra.Command {
	opts := defaultOptions()
	cmd := &cobra.Command{
		Use:   "generatelut",
		Short: "A utility to generate LUTs from CTL",
		Long: `Renders a ramp or identity cube through a chain of CTL transforms and bakes
the result into a 1D (spi1d) or 3D (spi3d) LUT.

CTL global parameters are given as name=value, one per --ctlRenderParam/-p,
for example -p exposure=-1 -p gamma=2.4.`,
		Example: `  generatelut --generate1d -l shaper.spi1d -c rrt.ctl --minValue -0.35828683 --maxValue 1.4679964
  generatelut --generate3d -l look.spi3d -c look.ctl -p exposure=-1 -r /opt/aces`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(cmd.ErrOrStderr(), opts.verbose)

			cfg := DefaultConfig()
			if opts.configPath != "" {
				var err error
				if cfg, err = LoadConfig(opts.configPath); err != nil {
					return err
				}
			}
			cfg.Defaults.apply(cmd.Flags(), &opts)

			return run(cmd.Context(), cmd.OutOrStdout(), runner, cfg, opts)
		},
	}
	opts.bind(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("generate1d", "generate3d")
	return cmd
}

func setupLogger(w io.Writer, verbose bool) {
	logrus.SetOutput(w)
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(logrus.InfoLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func run(ctx context.Context, out io.Writer, runner extproc.Runner, cfg Config, opts options) error {
	params, err := parseParams(opts.params)
	if err != nil {
		return err
	}

	printSummary(out, opts, params)
	if !opts.generate1D && !opts.generate3D {
		fmt.Fprint(out, noModeMessage)
		return nil
	}

	g := &lutgen.Generator{
		Runner: runner,
		Tools:  cfg.Tools,
		Env:    cfg.Env,
		Log:    logrus.StandardLogger(),
	}
	req := lutgen.TransformRequest{
		CTLPaths:    opts.ctlPaths,
		InputScale:  opts.inputScale,
		OutputScale: opts.outputScale,
		Params:      params,
		ReleaseDir:  opts.releasePath,
	}
	cleanup := !opts.keepTemp

	if opts.generate1D {
		spec := lutgen.Spec{
			Path:       opts.lutPath,
			Resolution: opts.resolution1D,
			Min:        opts.minValue,
			Max:        opts.maxValue,
			BitDepth:   opts.bitDepth,
		}
		res, err := g.Generate1D(ctx, spec, req, cleanup)
		if err != nil {
			return err
		}
		logrus.WithField("entries", res.Table.Length).Infof("Wrote %s", res.LUTPath)
		if opts.samplesCSV != "" {
			if err := lutgen.WriteSamplesCSV(opts.samplesCSV, *res.Table); err != nil {
				return err
			}
			logrus.Infof("Wrote samples report %s", opts.samplesCSV)
		}
		return nil
	}

	if opts.samplesCSV != "" {
		logrus.Warn("--samplesCsv only applies to 1D LUTs, ignoring")
	}
	spec := lutgen.Spec{
		Path:       opts.lutPath,
		Resolution: opts.resolution3D,
		BitDepth:   opts.bitDepth,
	}
	res, err := g.Generate3D(ctx, spec, req, cleanup)
	if err != nil {
		return err
	}
	logrus.Infof("Wrote %s", res.LUTPath)
	return nil
}
