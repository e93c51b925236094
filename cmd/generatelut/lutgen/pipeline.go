// Package lutgen generates 1D and 3D LUTs by pushing an identity image
// through a CTL transform chain and reading the result back as a LUT.
package lutgen

import (
	"context"
	"path/filepath"
)

// Spec describes the LUT to produce.
type Spec struct {
	Path string
	// Resolution is the entry count of a 1D LUT or the cube edge of a 3D LUT.
	Resolution int
	// Min and Max bound the 1D input domain.
	Min      float64
	Max      float64
	BitDepth string
}

// Result reports what a pipeline run produced.
type Result struct {
	LUTPath string
	// Intermediates lists every distinct temporary image created, in order.
	Intermediates []string
	// Removed lists the intermediates deleted by cleanup.
	Removed []string
	// Table is set for 1D runs.
	Table *SPI1D
}

func (s Spec) validate(op string) error {
	if s.Path == "" {
		return argError(op, "no LUT path given")
	}
	if s.Resolution < 2 {
		return argError(op, "resolution must be at least 2, got %d", s.Resolution)
	}
	if !ValidBitDepth(s.BitDepth) {
		return argError(op, "unknown bit depth %q", s.BitDepth)
	}
	return nil
}

func basePath(lutPath string) string {
	return lutPath[:len(lutPath)-len(filepath.Ext(lutPath))]
}

// Generate1D writes an SPI 1D LUT at spec.Path by running a ramp through the
// transforms in req. With cleanup set, the intermediate images are deleted
// once the LUT has been written.
func (g *Generator) Generate1D(ctx context.Context, spec Spec, req TransformRequest, cleanup bool) (Result, error) {
	if err := spec.validate("generate_1d_lut"); err != nil {
		return Result{}, err
	}
	log := g.log().WithField("lut", spec.Path)
	base := basePath(spec.Path)
	var tmp tempFiles

	// 1. Identity ramp
	identityFloat := base + ".float.exr"
	log.Infof("Generating 1d LUT image %s", identityFloat)
	if err := WriteRamp1D(identityFloat, spec.Resolution, spec.Min, spec.Max); err != nil {
		return Result{}, err
	}
	tmp.add(identityFloat)

	// 2. Optional bit depth conversion
	identity := identityFloat
	if spec.BitDepth != DepthHalf {
		identity = base + ".uint16.tiff"
		if err := g.ConvertBitDepth(ctx, identityFloat, identity, spec.BitDepth); err != nil {
			return Result{}, err
		}
		tmp.add(identity)
	}

	// 3. CTL chain
	transformed := base + ".transformed.exr"
	applied, err := g.ApplyCTL(ctx, identity, transformed, req)
	if err != nil {
		return Result{}, err
	}
	switch {
	case applied:
		tmp.add(transformed)
	case spec.BitDepth == "float" || spec.BitDepth == "double":
		// Both hold the float32 ramp exactly; the converted TIFF is not
		// readable in-process.
		transformed = identityFloat
	default:
		transformed = identity
	}

	// 4. Serialize
	table, err := Write1DFromImage(transformed, spec.Path, spec.Min, spec.Max)
	if err != nil {
		return Result{}, err
	}
	log.Infof("Wrote %d entry 1d LUT", table.Length)

	res := Result{LUTPath: spec.Path, Intermediates: tmp.list(), Table: &table}
	if cleanup {
		res.Removed, err = tmp.removeAll(spec.Path)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// Generate3D writes a 3D LUT at spec.Path from an identity cube of edge
// spec.Resolution run through the transforms in req.
func (g *Generator) Generate3D(ctx context.Context, spec Spec, req TransformRequest, cleanup bool) (Result, error) {
	if err := spec.validate("generate_3d_lut"); err != nil {
		return Result{}, err
	}
	log := g.log().WithField("lut", spec.Path)
	base := basePath(spec.Path)
	var tmp tempFiles

	// 1. Identity cube
	identityFloat := base + ".float.exr"
	if err := g.GenerateIdentity3D(ctx, identityFloat, spec.Resolution); err != nil {
		return Result{}, err
	}
	tmp.add(identityFloat)

	// 2. Optional bit depth conversion
	identity := identityFloat
	if spec.BitDepth != DepthHalf {
		identity = base + "." + spec.BitDepth + ".tiff"
		if err := g.ConvertBitDepth(ctx, identityFloat, identity, spec.BitDepth); err != nil {
			return Result{}, err
		}
		tmp.add(identity)
	}

	// 3. CTL chain
	transformed := base + ".transformed.exr"
	applied, err := g.ApplyCTL(ctx, identity, transformed, req)
	if err != nil {
		return Result{}, err
	}

	// 4. Layout correction. The identity cube comes straight from the
	// extractor, so only rendered images are checked.
	corrected := identity
	if applied {
		tmp.add(transformed)
		corrected, err = CorrectFile(transformed, base+".correct.exr", spec.Resolution, log)
		if err != nil {
			return Result{}, err
		}
		tmp.add(corrected)
	}

	// 5. Pack
	if err := g.Extract3D(ctx, corrected, spec.Path, spec.Resolution); err != nil {
		return Result{}, err
	}
	log.Infof("Wrote %d^3 3d LUT", spec.Resolution)

	res := Result{LUTPath: spec.Path, Intermediates: tmp.list()}
	if cleanup {
		res.Removed, err = tmp.removeAll(spec.Path)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}
