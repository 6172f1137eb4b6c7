package codec

import (
	"context"
	"os"
)

// FakeEncoder is a test implementation of Encoder that writes canned output
// instead of invoking the external engine.
type FakeEncoder struct {
	// Output is written verbatim to outputPath when Transform is nil.
	Output []byte

	// Transform, when set, derives the output bytes from the raw input file.
	Transform func(raw []byte) []byte

	// Elapsed is the reported encode time.
	Elapsed float64

	// Err, when set, is returned without writing any output.
	Err error

	// Calls counts Encode invocations.
	Calls int

	// LastParams records the parameters of the most recent call.
	LastParams EncodeParams
}

// Encode implements Encoder.
func (f *FakeEncoder) Encode(_ context.Context, inputPath, outputPath string, params EncodeParams) (float64, error) {
	f.Calls++
	f.LastParams = params
	if f.Err != nil {
		return 0, f.Err
	}
	data := f.Output
	if f.Transform != nil {
		raw, err := os.ReadFile(inputPath)
		if err != nil {
			return 0, err
		}
		data = f.Transform(raw)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return 0, err
	}
	return f.Elapsed, nil
}

// FakeDecoder is a test implementation of Decoder.
type FakeDecoder struct {
	// Output is written verbatim to outputPath when Transform is nil.
	Output []byte

	// Transform, when set, derives the output bytes from the codestream file.
	Transform func(codestream []byte) []byte

	// Elapsed is the reported decode time.
	Elapsed float64

	// Err, when set, is returned without writing any output.
	Err error

	// Calls counts Decode invocations.
	Calls int

	// LastParams records the parameters of the most recent call.
	LastParams DecodeParams
}

// Decode implements Decoder.
func (f *FakeDecoder) Decode(_ context.Context, inputPath, outputPath string, params DecodeParams) (float64, error) {
	f.Calls++
	f.LastParams = params
	if f.Err != nil {
		return 0, f.Err
	}
	data := f.Output
	if f.Transform != nil {
		cs, err := os.ReadFile(inputPath)
		if err != nil {
			return 0, err
		}
		data = f.Transform(cs)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return 0, err
	}
	return f.Elapsed, nil
}
