package codec

import "errors"

var (
	// ErrInvalidParameter is returned when encode/decode parameters violate
	// mutual-exclusivity or shape constraints
	ErrInvalidParameter = errors.New("codec: invalid parameter")

	// ErrCodecInvocation is returned when the external codec engine reports
	// failure or produces no success output
	ErrCodecInvocation = errors.New("codec: external codec invocation failed")
)
