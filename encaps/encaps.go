// Package encaps converts between raw codestreams and DICOM's encapsulated
// PixelData representation: a Basic Offset Table item followed by one or more
// length-prefixed fragments, closed by a sequence delimitation item.
// Reference: DICOM PS3.5 Annex A.4.
package encaps

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrEmptyPixelData is returned when an encapsulated value carries no
	// fragments to decapsulate.
	ErrEmptyPixelData = errors.New("encaps: no fragments in encapsulated pixel data")

	// ErrMalformedEncapsulation is returned when the item structure is
	// truncated or carries an unexpected tag.
	ErrMalformedEncapsulation = errors.New("encaps: malformed encapsulated pixel data")
)

// Item and delimiter tags, written little-endian (group then element).
const (
	itemGroup        uint16 = 0xFFFE
	itemElement      uint16 = 0xE000
	delimiterElement uint16 = 0xE0DD
)

// Encapsulate wraps codestream frames as encapsulated PixelData: an empty
// Basic Offset Table item, one fragment per frame, and the sequence
// delimitation item. Odd-length frames are padded with a single zero byte so
// every item length stays even as DICOM requires.
func Encapsulate(frames [][]byte) []byte {
	size := 8 + 8 // empty BOT item + sequence delimiter
	for _, frame := range frames {
		size += 8 + len(frame) + len(frame)%2
	}

	out := make([]byte, 0, size)
	out = appendItemHeader(out, itemElement, 0) // empty Basic Offset Table
	for _, frame := range frames {
		padded := len(frame) + len(frame)%2
		out = appendItemHeader(out, itemElement, uint32(padded))
		out = append(out, frame...)
		if len(frame)%2 != 0 {
			out = append(out, 0x00)
		}
	}
	out = appendItemHeader(out, delimiterElement, 0)
	return out
}

// Decapsulate parses encapsulated PixelData and returns its fragments in
// sequence order, excluding the Basic Offset Table. A value with no
// fragments yields ErrEmptyPixelData.
func Decapsulate(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPixelData
	}

	var fragments [][]byte
	first := true
	offset := 0
	for offset < len(data) {
		if offset+8 > len(data) {
			return nil, fmt.Errorf("%w: truncated item header at offset %d", ErrMalformedEncapsulation, offset)
		}
		group := binary.LittleEndian.Uint16(data[offset:])
		element := binary.LittleEndian.Uint16(data[offset+2:])
		length := binary.LittleEndian.Uint32(data[offset+4:])
		offset += 8

		if group != itemGroup {
			return nil, fmt.Errorf("%w: unexpected tag (%04X,%04X) at offset %d", ErrMalformedEncapsulation, group, element, offset-8)
		}
		if element == delimiterElement {
			break
		}
		if element != itemElement {
			return nil, fmt.Errorf("%w: unexpected tag (%04X,%04X) at offset %d", ErrMalformedEncapsulation, group, element, offset-8)
		}
		if offset+int(length) > len(data) {
			return nil, fmt.Errorf("%w: item length %d exceeds remaining data", ErrMalformedEncapsulation, length)
		}

		if first {
			// Basic Offset Table; its offsets are not needed for linear
			// reassembly.
			first = false
		} else {
			fragments = append(fragments, data[offset:offset+int(length)])
		}
		offset += int(length)
	}

	if first || len(fragments) == 0 {
		return nil, ErrEmptyPixelData
	}
	return fragments, nil
}

// Reassemble concatenates fragments in sequence order into one codestream.
// Fragment boundaries carry no meaning of their own; a multi-fragment frame
// is simply split storage.
func Reassemble(fragments [][]byte) []byte {
	if len(fragments) == 1 {
		return fragments[0]
	}
	size := 0
	for _, f := range fragments {
		size += len(f)
	}
	out := make([]byte, 0, size)
	for _, f := range fragments {
		out = append(out, f...)
	}
	return out
}

func appendItemHeader(out []byte, element uint16, length uint32) []byte {
	out = binary.LittleEndian.AppendUint16(out, itemGroup)
	out = binary.LittleEndian.AppendUint16(out, element)
	out = binary.LittleEndian.AppendUint32(out, length)
	return out
}
