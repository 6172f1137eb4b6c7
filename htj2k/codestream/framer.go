package codestream

import (
	"errors"
	"fmt"
)

// ErrMalformedCodestream is returned when the marker scan cannot locate the
// structural markers a well-formed codestream must carry.
var ErrMalformedCodestream = errors.New("codestream: malformed or truncated codestream")

// TilePart is one contiguous tile-part region of a codestream, identified by
// the byte offset of its SOT marker and the exclusive end offset.
type TilePart struct {
	Start int
	End   int
}

// Size returns the tile-part length in bytes.
func (tp TilePart) Size() int {
	return tp.End - tp.Start
}

// TileParts recovers the tile-part byte ranges of a raw codestream.
//
// It performs a single left-to-right scan over the bytes with a two-byte
// sliding window, recording the offset of every start-of-tile-part (SOT) and
// end-of-codestream (EOC) marker. Markers are byte-aligned and
// non-overlapping by construction of the codestream format, so no
// backtracking is needed. Consecutive recorded offsets delimit the tile-part
// ranges in encounter order; under resolution-grouped tile-parts each range
// corresponds to one resolution level of the progressive stream.
//
// A stream with no EOC marker, or with no tile-parts at all, is truncated or
// corrupt and yields ErrMalformedCodestream; an empty range list is never a
// valid result.
func TileParts(data []byte) ([]TilePart, error) {
	var offsets []int
	sawEOC := false
	for i := 0; i+1 < len(data); i++ {
		if data[i] != 0xFF {
			continue
		}
		switch uint16(data[i])<<8 | uint16(data[i+1]) {
		case MarkerSOT:
			offsets = append(offsets, i)
		case MarkerEOC:
			offsets = append(offsets, i)
			sawEOC = true
		}
	}
	if !sawEOC {
		return nil, fmt.Errorf("%w: no EOC marker found", ErrMalformedCodestream)
	}
	if len(offsets) < 2 {
		return nil, fmt.Errorf("%w: no tile-parts found", ErrMalformedCodestream)
	}

	parts := make([]TilePart, 0, len(offsets)-1)
	for i := 0; i+1 < len(offsets); i++ {
		parts = append(parts, TilePart{Start: offsets[i], End: offsets[i+1]})
	}
	return parts, nil
}

// Subresolution returns the image resolution at a zero-indexed wavelet
// decomposition level: each axis is halved d times with integer
// floor-division. It tells which spatial resolution a tile-part corresponds
// to under resolution-ordered progressive decoding.
func Subresolution(x, y, d int) (int, int) {
	return x >> uint(d), y >> uint(d)
}
