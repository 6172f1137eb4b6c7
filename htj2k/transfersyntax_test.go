package htj2k

import (
	"sort"
	"testing"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		name string
		uid  string
		want bool
	}{
		{name: "lossless", uid: "1.2.840.10008.1.2.4.201", want: true},
		{name: "lossless rpcl", uid: "1.2.840.10008.1.2.4.202", want: true},
		{name: "lossy", uid: "1.2.840.10008.1.2.4.203", want: true},
		{name: "explicit vr little endian", uid: "1.2.840.10008.1.2.1", want: false},
		{name: "classic jpeg2000", uid: "1.2.840.10008.1.2.4.90", want: false},
		{name: "empty", uid: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Supported(tt.uid); got != tt.want {
				t.Errorf("Supported(%q) = %v, want %v", tt.uid, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	entry, ok := Lookup("1.2.840.10008.1.2.4.202")
	if !ok {
		t.Fatal("Lookup() did not find the RPCL syntax")
	}
	if entry.Reversibility != ReversibilityLossless {
		t.Errorf("Reversibility = %v, want lossless", entry.Reversibility)
	}
	if entry.DefaultProfile.Name() != "RPCL" {
		t.Errorf("DefaultProfile = %q, want RPCL", entry.DefaultProfile.Name())
	}

	entry, ok = Lookup("1.2.840.10008.1.2.4.203")
	if !ok {
		t.Fatal("Lookup() did not find the lossy syntax")
	}
	if entry.Reversibility != ReversibilityLossy {
		t.Errorf("Reversibility = %v, want lossy", entry.Reversibility)
	}

	if _, ok := Lookup("1.2.840.10008.1.2.1"); ok {
		t.Error("Lookup() accepted an uncompressed syntax")
	}
}

func TestSupportedUIDs(t *testing.T) {
	uids := SupportedUIDs()
	if len(uids) != 3 {
		t.Fatalf("SupportedUIDs() returned %d entries, want 3", len(uids))
	}
	if !sort.StringsAreSorted(uids) {
		t.Errorf("SupportedUIDs() not sorted: %v", uids)
	}
	for _, uid := range uids {
		if !Supported(uid) {
			t.Errorf("SupportedUIDs() entry %q not Supported()", uid)
		}
	}
}

func TestReversibilityString(t *testing.T) {
	if ReversibilityLossless.String() != "lossless" {
		t.Errorf("lossless String() = %q", ReversibilityLossless.String())
	}
	if ReversibilityLossy.String() != "lossy" {
		t.Errorf("lossy String() = %q", ReversibilityLossy.String())
	}
}
