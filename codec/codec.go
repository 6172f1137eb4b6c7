// Package codec defines the capability interfaces for the external HTJ2K
// codec engine. The engine is treated as an opaque transform over files on
// disk: raw raster in, codestream out (and the reverse). The production
// implementation shells out to OpenJPH (see the openjph package); tests use
// the fakes in test_helpers.go.
package codec

import (
	"context"
	"fmt"
)

// Progression orders supported by the codec engine.
// The order of packets in the codestream affects progressive decode
// granularity; RPCL is the default for resolution-progressive access.
const (
	ProgOrderLRCP = "LRCP"
	ProgOrderRLCP = "RLCP"
	ProgOrderRPCL = "RPCL"
	ProgOrderPCRL = "PCRL"
	ProgOrderCPRL = "CPRL"
)

// Tile-part grouping modes. Grouping by resolution (R) writes one tile-part
// per resolution level, which is what makes partial-resolution reads cheap.
const (
	TilepartsR  = "R"
	TilepartsC  = "C"
	TilepartsRC = "RC"
)

// Encoder compresses a raw raster file into an HTJ2K codestream file.
// On success it returns the engine's reported encode time in seconds.
type Encoder interface {
	Encode(ctx context.Context, inputPath, outputPath string, params EncodeParams) (float64, error)
}

// Decoder expands an HTJ2K codestream file into a raw raster file.
// On success it returns the engine's reported decode time in seconds.
type Decoder interface {
	Decode(ctx context.Context, inputPath, outputPath string, params DecodeParams) (float64, error)
}

// EncodeParams is the flat, named parameter set handed to the codec engine.
// It mirrors the engine's textual argument protocol one to one.
type EncodeParams struct {
	// NumDecomps is the number of wavelet decomposition levels.
	NumDecomps int

	// ProgOrder is one of the ProgOrder* constants.
	ProgOrder string

	// BlockSize is the code-block {x,y} dimensions.
	BlockSize [2]int

	// Reversible selects the integer 5/3 wavelet (lossless). When false the
	// 9/7 wavelet is used and QStep must be set.
	Reversible bool

	// QStep is the base quantization step for irreversible encoding.
	// Mutually exclusive with Reversible.
	QStep float64

	// ColorTrans applies the RGB→YUV transform. Only meaningful for
	// 3-component input; ignored for grayscale rasters.
	ColorTrans bool

	// Tileparts is one of the Tileparts* constants, or empty for sequential
	// output with no tile-part grouping.
	Tileparts string

	// TLMMarker inserts TLM (tile-part length) markers into the codestream.
	TLMMarker bool

	// Precincts is the optional precinct size ladder, coarsest first.
	Precincts [][2]int

	// Optional geometry overrides.
	TileOffset  *[2]int
	TileSize    *[2]int
	ImageOffset *[2]int
}

// Validate checks the mutual-exclusivity and shape constraints that the
// engine itself would only reject with an opaque diagnostic.
func (p EncodeParams) Validate() error {
	if p.NumDecomps < 0 {
		return fmt.Errorf("%w: num_decomps must be non-negative, got %d", ErrInvalidParameter, p.NumDecomps)
	}
	switch p.ProgOrder {
	case ProgOrderLRCP, ProgOrderRLCP, ProgOrderRPCL, ProgOrderPCRL, ProgOrderCPRL:
	default:
		return fmt.Errorf("%w: unknown progression order %q", ErrInvalidParameter, p.ProgOrder)
	}
	if p.BlockSize[0] <= 0 || p.BlockSize[1] <= 0 {
		return fmt.Errorf("%w: block size must be positive, got {%d,%d}", ErrInvalidParameter, p.BlockSize[0], p.BlockSize[1])
	}
	if p.Reversible && p.QStep != 0 {
		return fmt.Errorf("%w: qstep is only meaningful for irreversible encoding", ErrInvalidParameter)
	}
	if !p.Reversible && p.QStep <= 0 {
		return fmt.Errorf("%w: irreversible encoding requires a positive qstep", ErrInvalidParameter)
	}
	switch p.Tileparts {
	case "", TilepartsR, TilepartsC, TilepartsRC:
	default:
		return fmt.Errorf("%w: unknown tile-part grouping %q", ErrInvalidParameter, p.Tileparts)
	}
	return nil
}

// DecodeParams is the parameter set for the decode direction.
type DecodeParams struct {
	// SkipRes lists resolutions to skip: one value applies to both reading
	// and reconstruction, two values split them. Empty means full resolution.
	SkipRes []int

	// Resilient asks the engine to keep going on recoverable codestream
	// damage instead of aborting.
	Resilient bool
}

// Validate checks the SkipRes shape constraint.
func (p DecodeParams) Validate() error {
	if len(p.SkipRes) > 2 {
		return fmt.Errorf("%w: skip_res takes one or two values, got %d", ErrInvalidParameter, len(p.SkipRes))
	}
	for _, v := range p.SkipRes {
		if v < 0 {
			return fmt.Errorf("%w: skip_res values must be non-negative, got %d", ErrInvalidParameter, v)
		}
	}
	return nil
}
