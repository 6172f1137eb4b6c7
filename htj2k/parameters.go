package htj2k

import (
	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
)

// Ensure HTJ2KParameters implements codec.Parameters
var _ dicomcodec.Parameters = (*HTJ2KParameters)(nil)

// HTJ2KParameters carries the encoding options exposed through go-dicom's
// generic parameter interface.
type HTJ2KParameters struct {
	// Profile selects the compression profile by name ("Lossless", "RPCL",
	// "Lossy"). Unrecognized names fall through to Lossy, matching
	// SelectProfile.
	Profile string

	// Strict makes precision violations an error instead of clipping.
	Strict bool

	// QStep overrides the lossy quantization step; zero means DefaultQStep.
	// Ignored by the lossless profiles.
	QStep float64

	// internal storage for compatibility with generic parameter interface
	params map[string]interface{}
}

// NewHTJ2KParameters creates parameters with default values.
func NewHTJ2KParameters() *HTJ2KParameters {
	return &HTJ2KParameters{
		Profile: "RPCL",
		params:  make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters).
func (p *HTJ2KParameters) GetParameter(name string) interface{} {
	switch name {
	case "profile":
		return p.Profile
	case "strict":
		return p.Strict
	case "qstep":
		return p.QStep
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters).
func (p *HTJ2KParameters) SetParameter(name string, value interface{}) {
	switch name {
	case "profile":
		if v, ok := value.(string); ok {
			p.Profile = v
		}
	case "strict":
		if v, ok := value.(bool); ok {
			p.Strict = v
		}
	case "qstep":
		switch v := value.(type) {
		case float64:
			p.QStep = v
		case float32:
			p.QStep = float64(v)
		}
	default:
		p.params[name] = value
	}
}

// Validate checks the parameters and normalizes invalid values.
func (p *HTJ2KParameters) Validate() error {
	if p.Profile == "" {
		p.Profile = "RPCL"
	}
	if p.QStep < 0 {
		p.QStep = 0
	}
	return nil
}

// SelectedProfile resolves the configured profile, applying the qstep
// override for lossy encoding.
func (p *HTJ2KParameters) SelectedProfile() Profile {
	profile := SelectProfile(p.Profile)
	if lossy, ok := profile.(LossyProfile); ok && p.QStep > 0 {
		lossy.QStep = p.QStep
		return lossy
	}
	return profile
}

// WithProfile sets the profile name and returns the parameters for chaining.
func (p *HTJ2KParameters) WithProfile(name string) *HTJ2KParameters {
	p.Profile = name
	return p
}

// WithStrict sets strict mode and returns the parameters for chaining.
func (p *HTJ2KParameters) WithStrict(strict bool) *HTJ2KParameters {
	p.Strict = strict
	return p
}

// WithQStep sets the lossy quantization step and returns the parameters for
// chaining.
func (p *HTJ2KParameters) WithQStep(qstep float64) *HTJ2KParameters {
	p.QStep = qstep
	return p
}
