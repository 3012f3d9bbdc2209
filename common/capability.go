package common

// Capability bit positions for a destination's capability flags (spec §3).
// Stored as a Bitmap so a destination record and an access-control method
// mask share the same underlying representation.
const (
	CapColor = iota
	CapDuplex
	CapStaple
	CapBind
	CapPunch
	CapCover
	CapSort
	CapClass
	CapRemote
	CapImplicit
)

// NewCapabilitySet returns a Bitmap sized for the fixed set of capability
// flags above.
func NewCapabilitySet() Bitmap {
	return NewBitMap(CapImplicit + 1)
}
