package htj2k

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/rs/zerolog"

	"github.com/cocosip/go-dicom-htj2k/codec"
	"github.com/cocosip/go-dicom-htj2k/encaps"
	"github.com/cocosip/go-dicom-htj2k/htj2k/codestream"
	"github.com/cocosip/go-dicom-htj2k/openjph"
)

// Transcoder drives the round trip between raw pixel buffers and
// encapsulated HTJ2K pixel data. Each call is a linear, blocking sequence of
// steps; callers wanting parallelism run independent Transcoders. The only
// state shared across calls is the warning tracker.
type Transcoder struct {
	encoder  codec.Encoder
	decoder  codec.Decoder
	warnings *WarningState
	log      zerolog.Logger
	tempDir  string
}

// TranscoderOption configures a Transcoder.
type TranscoderOption func(*Transcoder)

// WithEncoder replaces the default OpenJPH encoder.
func WithEncoder(enc codec.Encoder) TranscoderOption {
	return func(t *Transcoder) { t.encoder = enc }
}

// WithDecoder replaces the default OpenJPH decoder.
func WithDecoder(dec codec.Decoder) TranscoderOption {
	return func(t *Transcoder) { t.decoder = dec }
}

// WithLogger sets the transcoder's logger.
func WithLogger(log zerolog.Logger) TranscoderOption {
	return func(t *Transcoder) { t.log = log }
}

// WithTempDir places intermediate raster and codestream files under dir
// instead of the OS default temporary directory.
func WithTempDir(dir string) TranscoderOption {
	return func(t *Transcoder) { t.tempDir = dir }
}

// NewTranscoder creates a Transcoder backed by the OpenJPH tools unless
// other codec implementations are injected.
func NewTranscoder(opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{
		warnings: &WarningState{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.encoder == nil || t.decoder == nil {
		tool := openjph.NewTool(openjph.WithLogger(t.log))
		if t.encoder == nil {
			t.encoder = tool
		}
		if t.decoder == nil {
			t.decoder = tool
		}
	}
	return t
}

// Warnings exposes the precision warning state for querying and resetting.
func (t *Transcoder) Warnings() *WarningState {
	return t.warnings
}

// Compressed is the DICOM-side result of a compression run.
type Compressed struct {
	// PixelData is the encapsulated fragment sequence ready to be stored as
	// the object's PixelData value.
	PixelData []byte

	// Codestream is the raw codestream before encapsulation.
	Codestream []byte

	// TransferSyntax is the syntax matching the profile that produced the
	// codestream.
	TransferSyntax *transfer.Syntax
}

// TileParts recovers the tile-part byte ranges of the compressed codestream
// for partial or progressive access.
func (c *Compressed) TileParts() ([]codestream.TilePart, error) {
	return codestream.TileParts(c.Codestream)
}

// CompressResult holds the metrics of one compression run.
type CompressResult struct {
	// ElapsedSeconds is the encode time reported by the codec engine.
	ElapsedSeconds float64

	// OriginalSize is the raw pixel data byte length before compression.
	OriginalSize int64

	// CompressedSize is the encapsulated pixel data byte length.
	CompressedSize int64

	// Ratio is OriginalSize / CompressedSize.
	Ratio float64
}

// DecompressResult holds the metrics of one decompression run. There is no
// ratio on this path; the source is already compressed.
type DecompressResult struct {
	// ElapsedSeconds is the decode time reported by the codec engine.
	ElapsedSeconds float64
}

// Decompressed is the result of expanding encapsulated HTJ2K pixel data.
type Decompressed struct {
	// PixelData is the raw little-endian sample bytes for the object's
	// PixelData value.
	PixelData []byte

	// Image is the reconstructed sample grid.
	Image *RawImage

	// TransferSyntax is the generic uncompressed syntax the object should be
	// relabeled with.
	TransferSyntax *transfer.Syntax
}

// Compress normalizes buf, encodes it under the given profile, and
// encapsulates the resulting codestream. Nothing is returned on failure; the
// caller's DICOM object stays untouched until the whole round trip has
// succeeded.
func (t *Transcoder) Compress(ctx context.Context, buf *PixelBuffer, profile Profile, strict bool) (*Compressed, *CompressResult, error) {
	img, err := Normalize(buf, strict, t.warnings, t.log)
	if err != nil {
		return nil, nil, err
	}

	cs, elapsed, err := t.encodeImage(ctx, img, profile)
	if err != nil {
		return nil, nil, err
	}

	encapsulated := encaps.Encapsulate([][]byte{cs})
	originalSize := int64(img.Width * img.Height * img.BytesPerSample())
	result := &CompressResult{
		ElapsedSeconds: elapsed,
		OriginalSize:   originalSize,
		CompressedSize: int64(len(encapsulated)),
		Ratio:          float64(originalSize) / float64(len(encapsulated)),
	}
	t.log.Info().
		Str("profile", profile.Name()).
		Int64("original_size", result.OriginalSize).
		Int64("compressed_size", result.CompressedSize).
		Float64("ratio", result.Ratio).
		Msg("compressed pixel data")

	return &Compressed{
		PixelData:      encapsulated,
		Codestream:     cs,
		TransferSyntax: profile.TransferSyntax(),
	}, result, nil
}

// Decompress validates the source transfer syntax, extracts the codestream
// from the encapsulated pixel data, and expands it back into a raw pixel
// buffer.
func (t *Transcoder) Decompress(ctx context.Context, pixelData []byte, transferSyntaxUID string) (*Decompressed, *DecompressResult, error) {
	if !Supported(transferSyntaxUID) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedTransferSyntax, transferSyntaxUID)
	}

	fragments, err := encaps.Decapsulate(pixelData)
	if err != nil {
		return nil, nil, err
	}
	cs := encaps.Reassemble(fragments)

	img, elapsed, err := t.decodeCodestream(ctx, cs, codec.DecodeParams{})
	if err != nil {
		return nil, nil, err
	}

	t.log.Info().
		Str("transfer_syntax", transferSyntaxUID).
		Float64("elapsed_seconds", elapsed).
		Msg("decompressed pixel data")

	return &Decompressed{
		PixelData:      img.Bytes(),
		Image:          img,
		TransferSyntax: transfer.ExplicitVRLittleEndian,
	}, &DecompressResult{ElapsedSeconds: elapsed}, nil
}

// encodeImage stages img as a PGM file in a scoped temporary directory,
// invokes the encoder, and reads back the codestream. The directory is
// removed on every exit path.
func (t *Transcoder) encodeImage(ctx context.Context, img *RawImage, profile Profile) ([]byte, float64, error) {
	dir, err := os.MkdirTemp(t.tempDir, "htj2k-encode-*")
	if err != nil {
		return nil, 0, fmt.Errorf("htj2k: failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "frame.pgm")
	outputPath := filepath.Join(dir, "frame.jph")
	if err := WritePGMFile(inputPath, img); err != nil {
		return nil, 0, fmt.Errorf("htj2k: failed to stage raster: %w", err)
	}

	elapsed, err := t.encoder.Encode(ctx, inputPath, outputPath, profile.EncodeParams())
	if err != nil {
		return nil, 0, err
	}

	cs, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: encoder produced no codestream: %v", codec.ErrCodecInvocation, err)
	}
	return cs, elapsed, nil
}

// decodeCodestream stages cs in a scoped temporary directory, invokes the
// decoder, and reads back the raster. The directory is removed on every exit
// path.
func (t *Transcoder) decodeCodestream(ctx context.Context, cs []byte, params codec.DecodeParams) (*RawImage, float64, error) {
	dir, err := os.MkdirTemp(t.tempDir, "htj2k-decode-*")
	if err != nil {
		return nil, 0, fmt.Errorf("htj2k: failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "frame.jph")
	outputPath := filepath.Join(dir, "frame.pgm")
	if err := os.WriteFile(inputPath, cs, 0o644); err != nil {
		return nil, 0, fmt.Errorf("htj2k: failed to stage codestream: %w", err)
	}

	elapsed, err := t.decoder.Decode(ctx, inputPath, outputPath, params)
	if err != nil {
		return nil, 0, err
	}

	img, err := ReadPGMFile(outputPath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decoder produced no raster: %v", codec.ErrCodecInvocation, err)
	}
	return img, elapsed, nil
}
