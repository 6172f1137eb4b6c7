package htj2k

import "errors"

var (
	// ErrPrecision is returned in strict mode when pixel values fall outside
	// the supported 16-bit unsigned range
	ErrPrecision = errors.New("htj2k: pixel values exceed supported unsigned 16-bit range")

	// ErrUnsupportedTransferSyntax is returned when decompression is
	// requested for a transfer syntax that is not a recognized HTJ2K profile
	ErrUnsupportedTransferSyntax = errors.New("htj2k: unsupported transfer syntax")
)
