package htj2k

import (
	"context"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-dicom-htj2k/codec"
)

var _ dicomcodec.Codec = (*Codec)(nil)

// Codec plugs the HTJ2K transcoding pipeline into go-dicom's codec registry,
// one instance per supported transfer syntax.
//
// Supported Transfer Syntaxes:
// - 1.2.840.10008.1.2.4.201: HTJ2K Lossless
// - 1.2.840.10008.1.2.4.202: HTJ2K Lossless RPCL
// - 1.2.840.10008.1.2.4.203: HTJ2K (Lossy)
type Codec struct {
	transferSyntax *transfer.Syntax
	transcoder     *Transcoder
	defaultParams  *HTJ2KParameters
}

// NewLosslessCodec creates the codec for the HTJ2K Lossless Only syntax.
func NewLosslessCodec() *Codec {
	return NewCodecWithTransferSyntax(transfer.HTJ2KLossless)
}

// NewLosslessRPCLCodec creates the codec for the HTJ2K Lossless RPCL syntax.
func NewLosslessRPCLCodec() *Codec {
	return NewCodecWithTransferSyntax(transfer.HTJ2KLosslessRPCL)
}

// NewLossyCodec creates the codec for the general HTJ2K syntax.
func NewLossyCodec() *Codec {
	return NewCodecWithTransferSyntax(transfer.HTJ2K)
}

// NewCodecWithTransferSyntax allows constructing the codec for any supported
// HTJ2K transfer syntax.
func NewCodecWithTransferSyntax(ts *transfer.Syntax) *Codec {
	return &Codec{
		transferSyntax: ts,
		transcoder:     NewTranscoder(),
	}
}

// WithTranscoder replaces the codec's transcoder, which is how tests inject
// fake codec engines.
func (c *Codec) WithTranscoder(t *Transcoder) *Codec {
	c.transcoder = t
	return c
}

// WithDefaultParameters sets the parameters returned by GetDefaultParameters
// and used when Encode is called without parameters. The registry transcoder
// path has no per-call parameters, so this is how callers configure strict
// mode or a qstep for it.
func (c *Codec) WithDefaultParameters(params *HTJ2KParameters) *Codec {
	c.defaultParams = params
	return c
}

// Name returns the codec name
func (c *Codec) Name() string {
	switch c.transferSyntax {
	case transfer.HTJ2KLossless:
		return "HTJ2K Lossless"
	case transfer.HTJ2KLosslessRPCL:
		return "HTJ2K Lossless RPCL"
	default:
		return "HTJ2K"
	}
}

// TransferSyntax returns the transfer syntax this codec handles
func (c *Codec) TransferSyntax() *transfer.Syntax {
	return c.transferSyntax
}

// GetDefaultParameters returns the default codec parameters
func (c *Codec) GetDefaultParameters() dicomcodec.Parameters {
	if c.defaultParams != nil {
		return c.defaultParams
	}
	params := NewHTJ2KParameters()
	if entry, ok := Lookup(c.transferSyntax.UID().UID()); ok {
		params.Profile = entry.DefaultProfile.Name()
	}
	return params
}

// Encode encodes pixel data to an HTJ2K codestream per frame. Fragment
// encapsulation is left to the writer.
func (c *Codec) Encode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters dicomcodec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}
	frameInfo := oldPixelData.GetFrameInfo()
	if frameInfo == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}

	htj2kParams := c.extractParameters(parameters)
	if err := htj2kParams.Validate(); err != nil {
		return fmt.Errorf("invalid HTJ2K parameters: %w", err)
	}
	profile := htj2kParams.SelectedProfile()

	frameCount := oldPixelData.FrameCount()
	if frameCount == 0 {
		return fmt.Errorf("source pixel data is empty (no frames)")
	}
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}
		buf, err := bufferFromFrame(frameData, int(frameInfo.Width), int(frameInfo.Height), int(frameInfo.BitsAllocated))
		if err != nil {
			return fmt.Errorf("frame %d: %w", frameIndex, err)
		}
		img, err := Normalize(buf, htj2kParams.Strict, c.transcoder.warnings, c.transcoder.log)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frameIndex, err)
		}
		cs, _, err := c.transcoder.encodeImage(context.Background(), img, profile)
		if err != nil {
			return fmt.Errorf("HTJ2K encode failed for frame %d: %w", frameIndex, err)
		}
		if err := newPixelData.AddFrame(cs); err != nil {
			return fmt.Errorf("failed to add encoded frame %d: %w", frameIndex, err)
		}
	}
	return nil
}

// Decode decodes HTJ2K codestream frames to uncompressed pixel data
func (c *Codec) Decode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, _ dicomcodec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}

	frameCount := oldPixelData.FrameCount()
	if frameCount == 0 {
		return fmt.Errorf("source pixel data is empty (no frames)")
	}
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}
		if len(frameData) == 0 {
			return fmt.Errorf("frame %d pixel data is empty", frameIndex)
		}
		img, _, err := c.transcoder.decodeCodestream(context.Background(), frameData, codec.DecodeParams{})
		if err != nil {
			return fmt.Errorf("HTJ2K decode failed for frame %d: %w", frameIndex, err)
		}
		if err := newPixelData.AddFrame(img.Bytes()); err != nil {
			return fmt.Errorf("failed to add decoded frame %d: %w", frameIndex, err)
		}
	}
	return nil
}

// extractParameters resolves typed parameters, falling back to the generic
// interface and finally to the syntax's defaults.
func (c *Codec) extractParameters(parameters dicomcodec.Parameters) *HTJ2KParameters {
	if parameters == nil {
		if defaults, ok := c.GetDefaultParameters().(*HTJ2KParameters); ok {
			return defaults
		}
		return NewHTJ2KParameters()
	}
	if hp, ok := parameters.(*HTJ2KParameters); ok {
		return hp
	}
	htj2kParams := NewHTJ2KParameters()
	if entry, ok := Lookup(c.transferSyntax.UID().UID()); ok {
		htj2kParams.Profile = entry.DefaultProfile.Name()
	}
	if v := parameters.GetParameter("profile"); v != nil {
		if s, ok := v.(string); ok {
			htj2kParams.Profile = s
		}
	}
	if v := parameters.GetParameter("strict"); v != nil {
		if b, ok := v.(bool); ok {
			htj2kParams.Strict = b
		}
	}
	if v := parameters.GetParameter("qstep"); v != nil {
		switch x := v.(type) {
		case float64:
			htj2kParams.QStep = x
		case float32:
			htj2kParams.QStep = float64(x)
		}
	}
	return htj2kParams
}

// RegisterHTJ2KCodecs registers the three HTJ2K codecs with the global
// go-dicom registry.
func RegisterHTJ2KCodecs() {
	registry := dicomcodec.GetGlobalRegistry()
	registry.RegisterCodec(transfer.HTJ2KLossless, NewLosslessCodec())
	registry.RegisterCodec(transfer.HTJ2KLosslessRPCL, NewLosslessRPCLCodec())
	registry.RegisterCodec(transfer.HTJ2K, NewLossyCodec())
}

func init() {
	RegisterHTJ2KCodecs()
}
