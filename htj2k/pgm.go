package htj2k

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// PGM (portable graymap, P5) is the raw intermediate format exchanged with
// the codec engine: grayscale, one sample per pixel, 8-bit samples for
// maxval <= 255 and big-endian 16-bit samples above that.

// WritePGM writes img in binary PGM format.
func WritePGM(w io.Writer, img *RawImage) error {
	maxval := 255
	if img.BitDepth > 8 {
		maxval = 65535
	}
	if _, err := fmt.Fprintf(w, "P5\n%d %d\n%d\n", img.Width, img.Height, maxval); err != nil {
		return err
	}

	var buf []byte
	if img.BitDepth <= 8 {
		buf = make([]byte, len(img.Pix))
		for i, v := range img.Pix {
			buf[i] = byte(v)
		}
	} else {
		buf = make([]byte, 2*len(img.Pix))
		for i, v := range img.Pix {
			buf[2*i] = byte(v >> 8)
			buf[2*i+1] = byte(v)
		}
	}
	_, err := w.Write(buf)
	return err
}

// WritePGMFile writes img to path in binary PGM format.
func WritePGMFile(path string, img *RawImage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePGM(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadPGM parses a binary PGM raster.
func ReadPGM(r io.Reader) (*RawImage, error) {
	br := bufio.NewReader(r)

	magic, err := readPGMToken(br)
	if err != nil {
		return nil, err
	}
	if magic != "P5" {
		return nil, fmt.Errorf("htj2k: not a binary PGM raster (magic %q)", magic)
	}

	var width, height, maxval int
	for _, dst := range []*int{&width, &height, &maxval} {
		tok, err := readPGMToken(br)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Sscanf(tok, "%d", dst); err != nil {
			return nil, fmt.Errorf("htj2k: invalid PGM header token %q", tok)
		}
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("htj2k: invalid PGM dimensions %dx%d", width, height)
	}
	if maxval <= 0 || maxval > 65535 {
		return nil, fmt.Errorf("htj2k: unsupported PGM maxval %d", maxval)
	}

	bitDepth := 8
	bytesPerSample := 1
	if maxval > 255 {
		bitDepth = 16
		bytesPerSample = 2
	}

	data := make([]byte, width*height*bytesPerSample)
	if _, err := io.ReadFull(br, data); err != nil {
		return nil, fmt.Errorf("htj2k: truncated PGM raster: %w", err)
	}

	pix := make([]uint16, width*height)
	if bytesPerSample == 1 {
		for i, b := range data {
			pix[i] = uint16(b)
		}
	} else {
		for i := range pix {
			pix[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
		}
	}

	return &RawImage{Width: width, Height: height, BitDepth: bitDepth, Pix: pix}, nil
}

// ReadPGMFile parses the binary PGM raster at path.
func ReadPGMFile(path string) (*RawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPGM(f)
}

// readPGMToken returns the next whitespace-delimited header token, skipping
// # comment lines.
func readPGMToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", fmt.Errorf("htj2k: truncated PGM header: %w", err)
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}
