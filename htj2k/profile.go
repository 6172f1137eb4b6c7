// Package htj2k transcodes DICOM pixel data to and from HTJ2K codestreams.
// The wavelet and entropy coding is delegated to an external codec engine
// behind the codec package interfaces; this package owns the framing work:
// precision normalization, profile selection, raster staging, encapsulation,
// and tile-part indexing.
package htj2k

import (
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"

	"github.com/cocosip/go-dicom-htj2k/codec"
)

// DefaultQStep is the base quantization step for lossy encoding, tuned for
// 8-bit dynamic range.
const DefaultQStep = 0.0039

// defaultNumDecomps is the wavelet decomposition count shared by all
// profiles.
const defaultNumDecomps = 5

// Profile is one named compression configuration. Each profile maps 1:1 to a
// DICOM transfer syntax and carries exactly the engine parameters it needs.
// Profiles are values; they are created by SelectProfile and never mutated.
type Profile interface {
	// Name returns the profile's selector name.
	Name() string

	// TransferSyntax returns the transfer syntax the profile's output is
	// labeled with.
	TransferSyntax() *transfer.Syntax

	// EncodeParams returns the concrete engine parameter set.
	EncodeParams() codec.EncodeParams
}

// LosslessProfile is reversible encoding with 64x64 code-blocks,
// resolution-grouped tile-parts and TLM markers.
// Transfer syntax: HTJ2K Lossless Only (1.2.840.10008.1.2.4.201).
type LosslessProfile struct{}

// Name implements Profile.
func (LosslessProfile) Name() string { return "Lossless" }

// TransferSyntax implements Profile.
func (LosslessProfile) TransferSyntax() *transfer.Syntax { return transfer.HTJ2KLossless }

// EncodeParams implements Profile.
func (LosslessProfile) EncodeParams() codec.EncodeParams {
	return codec.EncodeParams{
		NumDecomps: defaultNumDecomps,
		ProgOrder:  codec.ProgOrderRPCL,
		BlockSize:  [2]int{64, 64},
		Reversible: true,
		Tileparts:  codec.TilepartsR,
		TLMMarker:  true,
	}
}

// RPCLProfile is reversible encoding tuned for progressive
// resolution-ordered access: 32x32 code-blocks, resolution-grouped
// tile-parts, TLM markers.
// Transfer syntax: HTJ2K Lossless RPCL (1.2.840.10008.1.2.4.202).
type RPCLProfile struct{}

// Name implements Profile.
func (RPCLProfile) Name() string { return "RPCL" }

// TransferSyntax implements Profile.
func (RPCLProfile) TransferSyntax() *transfer.Syntax { return transfer.HTJ2KLosslessRPCL }

// EncodeParams implements Profile.
func (RPCLProfile) EncodeParams() codec.EncodeParams {
	return codec.EncodeParams{
		NumDecomps: defaultNumDecomps,
		ProgOrder:  codec.ProgOrderRPCL,
		BlockSize:  [2]int{32, 32},
		Reversible: true,
		Tileparts:  codec.TilepartsR,
		TLMMarker:  true,
	}
}

// LossyProfile is irreversible encoding with a fixed quantization step and
// no tile-part or marker options forced.
// Transfer syntax: HTJ2K (1.2.840.10008.1.2.4.203).
type LossyProfile struct {
	// QStep overrides the quantization step; zero means DefaultQStep.
	QStep float64
}

// Name implements Profile.
func (LossyProfile) Name() string { return "Lossy" }

// TransferSyntax implements Profile.
func (LossyProfile) TransferSyntax() *transfer.Syntax { return transfer.HTJ2K }

// EncodeParams implements Profile.
func (p LossyProfile) EncodeParams() codec.EncodeParams {
	qstep := p.QStep
	if qstep <= 0 {
		qstep = DefaultQStep
	}
	return codec.EncodeParams{
		NumDecomps: defaultNumDecomps,
		ProgOrder:  codec.ProgOrderRPCL,
		BlockSize:  [2]int{64, 64},
		Reversible: false,
		QStep:      qstep,
	}
}

// SelectProfile maps a profile name to its configuration. Unknown names fall
// through to the Lossy default; callers that need a hard failure should
// check the name against SupportedProfiles first.
func SelectProfile(name string) Profile {
	switch name {
	case "Lossless":
		return LosslessProfile{}
	case "RPCL":
		return RPCLProfile{}
	default:
		return LossyProfile{}
	}
}

// SupportedProfiles lists the recognized profile selector names.
func SupportedProfiles() []string {
	return []string{"Lossless", "RPCL", "Lossy"}
}
