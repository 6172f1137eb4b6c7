package codec

import (
	"errors"
	"testing"
)

func validEncodeParams() EncodeParams {
	return EncodeParams{
		NumDecomps: 5,
		ProgOrder:  ProgOrderRPCL,
		BlockSize:  [2]int{64, 64},
		Reversible: true,
	}
}

func TestEncodeParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EncodeParams)
		wantErr bool
	}{
		{
			name:   "valid reversible",
			mutate: func(p *EncodeParams) {},
		},
		{
			name: "valid irreversible with qstep",
			mutate: func(p *EncodeParams) {
				p.Reversible = false
				p.QStep = 0.0039
			},
		},
		{
			name: "reversible with qstep is mutually exclusive",
			mutate: func(p *EncodeParams) {
				p.QStep = 0.0039
			},
			wantErr: true,
		},
		{
			name: "irreversible without qstep",
			mutate: func(p *EncodeParams) {
				p.Reversible = false
			},
			wantErr: true,
		},
		{
			name: "unknown progression order",
			mutate: func(p *EncodeParams) {
				p.ProgOrder = "PLRC"
			},
			wantErr: true,
		},
		{
			name: "zero block size",
			mutate: func(p *EncodeParams) {
				p.BlockSize = [2]int{0, 64}
			},
			wantErr: true,
		},
		{
			name: "negative decompositions",
			mutate: func(p *EncodeParams) {
				p.NumDecomps = -1
			},
			wantErr: true,
		},
		{
			name: "unknown tileparts grouping",
			mutate: func(p *EncodeParams) {
				p.Tileparts = "X"
			},
			wantErr: true,
		},
		{
			name: "tileparts by resolution",
			mutate: func(p *EncodeParams) {
				p.Tileparts = TilepartsR
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validEncodeParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("Validate() error = %v, want ErrInvalidParameter", err)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestDecodeParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  DecodeParams
		wantErr bool
	}{
		{name: "empty", params: DecodeParams{}},
		{name: "one skip value", params: DecodeParams{SkipRes: []int{2}}},
		{name: "two skip values", params: DecodeParams{SkipRes: []int{2, 1}}},
		{name: "three skip values", params: DecodeParams{SkipRes: []int{2, 1, 0}}, wantErr: true},
		{name: "negative skip value", params: DecodeParams{SkipRes: []int{-1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("Validate() error = %v, want ErrInvalidParameter", err)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
