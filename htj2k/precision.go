package htj2k

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// PixelBuffer is a rectangular grid of raw integer samples as read from a
// DICOM object, before precision normalization. Samples may carry values the
// codec engine cannot represent; Normalize resolves that.
type PixelBuffer struct {
	Width   int
	Height  int
	Samples []int32
}

// RawImage is a precision-normalized sample grid in a codec-supported
// format: one grayscale component, 8-bit or 16-bit unsigned samples.
type RawImage struct {
	Width    int
	Height   int
	BitDepth int // 8 or 16
	Pix      []uint16
}

// BytesPerSample returns the storage width of one sample.
func (img *RawImage) BytesPerSample() int {
	if img.BitDepth > 8 {
		return 2
	}
	return 1
}

// Bytes renders the samples as raw little-endian pixel data, the layout DICOM
// uses for uncompressed PixelData.
func (img *RawImage) Bytes() []byte {
	if img.BitDepth <= 8 {
		out := make([]byte, len(img.Pix))
		for i, v := range img.Pix {
			out[i] = byte(v)
		}
		return out
	}
	out := make([]byte, 2*len(img.Pix))
	for i, v := range img.Pix {
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return out
}

// WarningState tracks whether the one-time precision warning has fired.
// One instance is owned by each Transcoder, so the "warn once" behavior is
// per-pipeline rather than hidden process-wide state, and tests can reset it.
type WarningState struct {
	mu    sync.Mutex
	fired bool
}

// Fired reports whether the precision warning has already been emitted.
func (w *WarningState) Fired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Reset clears the warning state so the next violation warns again.
func (w *WarningState) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fired = false
}

// fire marks the warning as emitted and reports whether this call was the
// first violation.
func (w *WarningState) fire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	first := !w.fired
	w.fired = true
	return first
}

// Normalize converts a pixel buffer into the smallest codec-supported sample
// format that represents its value range: 8-bit when every value fits in
// [0,255], otherwise 16-bit.
//
// Values outside [0,65535] cannot be represented at all. In strict mode that
// is ErrPrecision and the input is left untouched. Otherwise the offending
// samples are clipped (saturated, never wrapped) to the representable bound
// and a warning is emitted on the first violation only; warn tracks that
// state across calls.
//
// Normalization is applied unconditionally to every buffer, including ones
// already within range; the cost is one pass and it keeps the clipping
// policy in a single place.
func Normalize(buf *PixelBuffer, strict bool, warn *WarningState, log zerolog.Logger) (*RawImage, error) {
	if buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("htj2k: invalid buffer dimensions %dx%d", buf.Width, buf.Height)
	}
	if len(buf.Samples) != buf.Width*buf.Height {
		return nil, fmt.Errorf("htj2k: buffer holds %d samples, want %d", len(buf.Samples), buf.Width*buf.Height)
	}
	if warn == nil {
		warn = &WarningState{}
	}

	minVal, maxVal := buf.Samples[0], buf.Samples[0]
	for _, v := range buf.Samples {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if minVal < 0 || maxVal > 65535 {
		if strict {
			return nil, fmt.Errorf("%w: value range [%d,%d]", ErrPrecision, minVal, maxVal)
		}
		if warn.fire() {
			log.Warn().
				Int32("min", minVal).
				Int32("max", maxVal).
				Msg("pixel values outside unsigned 16-bit range will be clipped")
		}
	}

	bitDepth := 8
	if maxVal > 255 {
		bitDepth = 16
	}

	pix := make([]uint16, len(buf.Samples))
	for i, v := range buf.Samples {
		switch {
		case v < 0:
			pix[i] = 0
		case v > 65535:
			pix[i] = 65535
		default:
			pix[i] = uint16(v)
		}
	}

	return &RawImage{
		Width:    buf.Width,
		Height:   buf.Height,
		BitDepth: bitDepth,
		Pix:      pix,
	}, nil
}

// bufferFromFrame interprets raw little-endian DICOM frame bytes as a pixel
// buffer. bitsAllocated must be 8 or 16.
func bufferFromFrame(data []byte, width, height, bitsAllocated int) (*PixelBuffer, error) {
	var bytesPerSample int
	switch bitsAllocated {
	case 8:
		bytesPerSample = 1
	case 16:
		bytesPerSample = 2
	default:
		return nil, fmt.Errorf("htj2k: unsupported bits allocated %d", bitsAllocated)
	}
	want := width * height * bytesPerSample
	if len(data) != want {
		return nil, fmt.Errorf("htj2k: frame holds %d bytes, want %d for %dx%d at %d bits", len(data), want, width, height, bitsAllocated)
	}

	samples := make([]int32, width*height)
	if bytesPerSample == 1 {
		for i, b := range data {
			samples[i] = int32(b)
		}
	} else {
		for i := range samples {
			samples[i] = int32(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
		}
	}
	return &PixelBuffer{Width: width, Height: height, Samples: samples}, nil
}
