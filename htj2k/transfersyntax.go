package htj2k

import (
	"sort"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
)

// Reversibility classifies what a transfer syntax promises about the encoded
// data.
type Reversibility int

const (
	// ReversibilityLossless means the syntax only carries reversibly encoded
	// codestreams.
	ReversibilityLossless Reversibility = iota

	// ReversibilityLossy means the syntax may carry irreversibly encoded
	// codestreams.
	ReversibilityLossy
)

// String returns the reversibility class name.
func (r Reversibility) String() string {
	if r == ReversibilityLossless {
		return "lossless"
	}
	return "lossy"
}

// TransferSyntaxProfile describes one supported HTJ2K transfer syntax: its
// human-readable name, reversibility class, and the default compression
// profile that produces it.
type TransferSyntaxProfile struct {
	UID            string
	Name           string
	Reversibility  Reversibility
	DefaultProfile Profile
}

// transferSyntaxProfiles is the process-wide table of supported HTJ2K
// transfer syntaxes, keyed by UID. Read-only after initialization; the set
// is fixed by the DICOM standard.
var transferSyntaxProfiles = map[string]TransferSyntaxProfile{
	transfer.HTJ2KLossless.UID().UID(): {
		UID:            transfer.HTJ2KLossless.UID().UID(),
		Name:           "High-Throughput JPEG 2000 (Lossless Only)",
		Reversibility:  ReversibilityLossless,
		DefaultProfile: LosslessProfile{},
	},
	transfer.HTJ2KLosslessRPCL.UID().UID(): {
		UID:            transfer.HTJ2KLosslessRPCL.UID().UID(),
		Name:           "High-Throughput JPEG 2000 with RPCL Options (Lossless Only)",
		Reversibility:  ReversibilityLossless,
		DefaultProfile: RPCLProfile{},
	},
	transfer.HTJ2K.UID().UID(): {
		UID:            transfer.HTJ2K.UID().UID(),
		Name:           "High-Throughput JPEG 2000",
		Reversibility:  ReversibilityLossy,
		DefaultProfile: LossyProfile{},
	},
}

// Supported reports whether uid names a transfer syntax this pipeline can
// decompress.
func Supported(uid string) bool {
	_, ok := transferSyntaxProfiles[uid]
	return ok
}

// Lookup returns the profile table entry for uid.
func Lookup(uid string) (TransferSyntaxProfile, bool) {
	p, ok := transferSyntaxProfiles[uid]
	return p, ok
}

// SupportedUIDs returns the supported transfer syntax UIDs in sorted order.
func SupportedUIDs() []string {
	uids := make([]string, 0, len(transferSyntaxProfiles))
	for uid := range transferSyntaxProfiles {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}
