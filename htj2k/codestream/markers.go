// Package codestream provides structural access to HTJ2K codestreams:
// marker constants, tile-part boundary recovery, and resolution arithmetic.
// It never decodes packet contents; the codestream stays opaque.
package codestream

// JPEG 2000 / HTJ2K marker codes.
// Reference: ISO/IEC 15444-1:2019 Table A.1, ISO/IEC 15444-15:2019

// Delimiting markers
const (
	// MarkerSOC - Start of codestream
	MarkerSOC uint16 = 0xFF4F

	// MarkerSOT - Start of tile-part
	MarkerSOT uint16 = 0xFF90

	// MarkerSOD - Start of data
	MarkerSOD uint16 = 0xFF93

	// MarkerEOC - End of codestream
	MarkerEOC uint16 = 0xFFD9
)

// Fixed information and pointer marker segments
const (
	// MarkerSIZ - Image and tile size
	MarkerSIZ uint16 = 0xFF51

	// MarkerCOD - Coding style default
	MarkerCOD uint16 = 0xFF52

	// MarkerQCD - Quantization default
	MarkerQCD uint16 = 0xFF5C

	// MarkerTLM - Tile-part lengths
	MarkerTLM uint16 = 0xFF55

	// MarkerCAP - Extended capabilities (signals HT block coding)
	MarkerCAP uint16 = 0xFF50
)

// MarkerName returns the name of a marker code
func MarkerName(marker uint16) string {
	switch marker {
	case MarkerSOC:
		return "SOC"
	case MarkerSOT:
		return "SOT"
	case MarkerSOD:
		return "SOD"
	case MarkerEOC:
		return "EOC"
	case MarkerSIZ:
		return "SIZ"
	case MarkerCOD:
		return "COD"
	case MarkerQCD:
		return "QCD"
	case MarkerTLM:
		return "TLM"
	case MarkerCAP:
		return "CAP"
	default:
		return "UNKNOWN"
	}
}

// HasLength returns true if the marker has a length field
func HasLength(marker uint16) bool {
	switch marker {
	case MarkerSOC, MarkerSOD, MarkerEOC:
		return false
	default:
		return true
	}
}
