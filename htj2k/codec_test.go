package htj2k

import (
	"errors"
	"testing"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-dicom-htj2k/codec"
)

// testPixelData is a minimal in-memory PixelData for exercising the codec
// adapter.
type testPixelData struct {
	frames    [][]byte
	frameInfo *imagetypes.FrameInfo
}

func newTestPixelData(frameInfo *imagetypes.FrameInfo) *testPixelData {
	return &testPixelData{frameInfo: frameInfo}
}

func (p *testPixelData) GetFrame(frameIndex int) ([]byte, error) {
	if frameIndex < 0 || frameIndex >= len(p.frames) {
		return nil, nil
	}
	return p.frames[frameIndex], nil
}

func (p *testPixelData) AddFrame(frameData []byte) error {
	p.frames = append(p.frames, frameData)
	return nil
}

func (p *testPixelData) FrameCount() int {
	return len(p.frames)
}

func (p *testPixelData) GetFrameInfo() *imagetypes.FrameInfo {
	return p.frameInfo
}

func (p *testPixelData) IsEncapsulated() bool {
	return false
}

func testFrameInfo(width, height uint16) *imagetypes.FrameInfo {
	return &imagetypes.FrameInfo{
		Width:                     width,
		Height:                    height,
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           1,
		PixelRepresentation:       0,
		PlanarConfiguration:       0,
		PhotometricInterpretation: "MONOCHROME2",
	}
}

func gradientFrame(n int) []byte {
	frame := make([]byte, n)
	for i := range frame {
		frame[i] = byte(i % 256)
	}
	return frame
}

func echoTranscoder(t *testing.T) *Transcoder {
	t.Helper()
	return NewTranscoder(
		WithEncoder(&codec.FakeEncoder{Transform: func(raw []byte) []byte { return raw }}),
		WithDecoder(&codec.FakeDecoder{Transform: func(cs []byte) []byte { return cs }}),
		WithTempDir(t.TempDir()),
	)
}

func TestCodecNames(t *testing.T) {
	tests := []struct {
		c        *Codec
		wantName string
		wantUID  string
	}{
		{c: NewLosslessCodec(), wantName: "HTJ2K Lossless", wantUID: "1.2.840.10008.1.2.4.201"},
		{c: NewLosslessRPCLCodec(), wantName: "HTJ2K Lossless RPCL", wantUID: "1.2.840.10008.1.2.4.202"},
		{c: NewLossyCodec(), wantName: "HTJ2K", wantUID: "1.2.840.10008.1.2.4.203"},
	}
	for _, tt := range tests {
		if got := tt.c.Name(); got != tt.wantName {
			t.Errorf("Name() = %q, want %q", got, tt.wantName)
		}
		if got := tt.c.TransferSyntax().UID().UID(); got != tt.wantUID {
			t.Errorf("TransferSyntax() = %q, want %q", got, tt.wantUID)
		}
	}
}

func TestCodecDefaultParameters(t *testing.T) {
	tests := []struct {
		c           *Codec
		wantProfile string
	}{
		{c: NewLosslessCodec(), wantProfile: "Lossless"},
		{c: NewLosslessRPCLCodec(), wantProfile: "RPCL"},
		{c: NewLossyCodec(), wantProfile: "Lossy"},
	}
	for _, tt := range tests {
		params, ok := tt.c.GetDefaultParameters().(*HTJ2KParameters)
		if !ok {
			t.Fatal("GetDefaultParameters() did not return *HTJ2KParameters")
		}
		if params.Profile != tt.wantProfile {
			t.Errorf("default Profile = %q, want %q", params.Profile, tt.wantProfile)
		}
	}
}

func TestCodecEncodeDecodeRoundTrip(t *testing.T) {
	frameInfo := testFrameInfo(16, 16)
	frame := gradientFrame(16 * 16)

	src := newTestPixelData(frameInfo)
	if err := src.AddFrame(frame); err != nil {
		t.Fatal(err)
	}
	if err := src.AddFrame(frame); err != nil {
		t.Fatal(err)
	}

	c := NewLosslessRPCLCodec().WithTranscoder(echoTranscoder(t))

	encoded := newTestPixelData(frameInfo)
	if err := c.Encode(src, encoded, nil); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if encoded.FrameCount() != 2 {
		t.Fatalf("encoded FrameCount() = %d, want 2", encoded.FrameCount())
	}

	decoded := newTestPixelData(frameInfo)
	if err := c.Decode(encoded, decoded, nil); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if decoded.FrameCount() != 2 {
		t.Fatalf("decoded FrameCount() = %d, want 2", decoded.FrameCount())
	}

	got, err := decoded.GetFrame(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(frame) {
		t.Fatalf("decoded frame is %d bytes, want %d", len(got), len(frame))
	}
	for i := range frame {
		if got[i] != frame[i] {
			t.Fatalf("decoded byte %d = %#x, want %#x", i, got[i], frame[i])
		}
	}
}

func TestCodecEncodeStrictFailure(t *testing.T) {
	frameInfo := testFrameInfo(2, 2)
	frameInfo.BitsAllocated = 16
	frameInfo.BitsStored = 16
	frameInfo.HighBit = 15

	src := newTestPixelData(frameInfo)
	// Every unsigned 16-bit value is representable, so strict mode must pass.
	if err := src.AddFrame([]byte{0x00, 0x00, 0xFF, 0xFF, 0x01, 0x00, 0x00, 0x80}); err != nil {
		t.Fatal(err)
	}

	c := NewLosslessCodec().WithTranscoder(echoTranscoder(t))
	params := NewHTJ2KParameters().WithProfile("Lossless").WithStrict(true)
	if err := c.Encode(src, newTestPixelData(frameInfo), params); err != nil {
		t.Fatalf("Encode() strict error for in-range data: %v", err)
	}
}

func TestCodecEncodeValidatesInputs(t *testing.T) {
	c := NewLosslessCodec().WithTranscoder(echoTranscoder(t))
	frameInfo := testFrameInfo(2, 2)

	if err := c.Encode(nil, newTestPixelData(frameInfo), nil); err == nil {
		t.Error("Encode() accepted nil source")
	}
	if err := c.Encode(newTestPixelData(frameInfo), nil, nil); err == nil {
		t.Error("Encode() accepted nil destination")
	}
	if err := c.Encode(newTestPixelData(frameInfo), newTestPixelData(frameInfo), nil); err == nil {
		t.Error("Encode() accepted empty pixel data")
	}
	if err := c.Encode(newTestPixelData(nil), newTestPixelData(frameInfo), nil); err == nil {
		t.Error("Encode() accepted missing frame info")
	}

	// Frame size disagreeing with the frame info is rejected.
	src := newTestPixelData(frameInfo)
	if err := src.AddFrame([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := c.Encode(src, newTestPixelData(frameInfo), nil); err == nil {
		t.Error("Encode() accepted a frame shorter than the frame info implies")
	}
}

func TestCodecEncoderFailurePropagates(t *testing.T) {
	tr := NewTranscoder(
		WithEncoder(&codec.FakeEncoder{Err: codec.ErrCodecInvocation}),
		WithDecoder(&codec.FakeDecoder{}),
		WithTempDir(t.TempDir()),
	)
	c := NewLosslessCodec().WithTranscoder(tr)

	src := newTestPixelData(testFrameInfo(4, 4))
	if err := src.AddFrame(gradientFrame(16)); err != nil {
		t.Fatal(err)
	}
	err := c.Encode(src, newTestPixelData(testFrameInfo(4, 4)), nil)
	if !errors.Is(err, codec.ErrCodecInvocation) {
		t.Errorf("Encode() error = %v, want ErrCodecInvocation", err)
	}
}

// genericParameters implements only the generic parameter interface, the way
// a caller outside this package would pass options.
type genericParameters struct {
	values map[string]interface{}
}

func (g *genericParameters) GetParameter(name string) interface{} { return g.values[name] }
func (g *genericParameters) SetParameter(name string, value interface{}) {
	g.values[name] = value
}
func (g *genericParameters) Validate() error { return nil }

var _ dicomcodec.Parameters = (*genericParameters)(nil)

func TestCodecGenericParameterFallback(t *testing.T) {
	c := NewLossyCodec()

	params := c.extractParameters(&genericParameters{values: map[string]interface{}{
		"profile": "Lossless",
		"strict":  true,
		"qstep":   0.01,
	}})
	if params.Profile != "Lossless" {
		t.Errorf("Profile = %q, want Lossless", params.Profile)
	}
	if !params.Strict {
		t.Error("Strict not carried over")
	}
	if params.QStep != 0.01 {
		t.Errorf("QStep = %v, want 0.01", params.QStep)
	}

	// No recognized keys: the syntax's default profile applies.
	params = c.extractParameters(&genericParameters{values: map[string]interface{}{}})
	if params.Profile != "Lossy" {
		t.Errorf("Profile = %q, want syntax default Lossy", params.Profile)
	}
}

func TestRegisterHTJ2KCodecs(t *testing.T) {
	RegisterHTJ2KCodecs()
	registry := dicomcodec.GetGlobalRegistry()

	for _, ts := range []*transfer.Syntax{transfer.HTJ2KLossless, transfer.HTJ2KLosslessRPCL, transfer.HTJ2K} {
		c, found := registry.GetCodec(ts)
		if !found {
			t.Errorf("GetCodec(%s) found no codec", ts.UID().UID())
			continue
		}
		if c.TransferSyntax() != ts {
			t.Errorf("registered codec for %s reports %s", ts.UID().UID(), c.TransferSyntax().UID().UID())
		}
	}
}
