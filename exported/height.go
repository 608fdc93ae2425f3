package exported

import (
	"encoding/binary"
	"fmt"
)

// Height is a (revision number, revision height) pair ordered
// lexicographically.
type Height struct {
	RevisionNumber uint64 `json:"revision_number,string"`
	RevisionHeight uint64 `json:"revision_height,string"`
}

func NewHeight(revisionNumber, revisionHeight uint64) Height {
	return Height{RevisionNumber: revisionNumber, RevisionHeight: revisionHeight}
}

// Compare returns -1, 0 or 1.
func (h Height) Compare(other Height) int {
	switch {
	case h.RevisionNumber != other.RevisionNumber:
		if h.RevisionNumber < other.RevisionNumber {
			return -1
		}
		return 1
	case h.RevisionHeight < other.RevisionHeight:
		return -1
	case h.RevisionHeight > other.RevisionHeight:
		return 1
	}
	return 0
}

func (h Height) LT(other Height) bool { return h.Compare(other) < 0 }
func (h Height) LTE(other Height) bool { return h.Compare(other) <= 0 }
func (h Height) GT(other Height) bool { return h.Compare(other) > 0 }
func (h Height) GTE(other Height) bool { return h.Compare(other) >= 0 }
func (h Height) EQ(other Height) bool { return h.Compare(other) == 0 }

func (h Height) IsZero() bool {
	return h.RevisionNumber == 0 && h.RevisionHeight == 0
}

func (h Height) Increment() Height {
	return Height{RevisionNumber: h.RevisionNumber, RevisionHeight: h.RevisionHeight + 1}
}

func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// Bytes is the 16 byte big-endian encoding, which sorts like the height.
func (h Height) Bytes() []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], h.RevisionNumber)
	binary.BigEndian.PutUint64(b[8:], h.RevisionHeight)
	return b[:]
}

// HeightFromBytes decodes Bytes.
func HeightFromBytes(b []byte) (Height, error) {
	if len(b) != 16 {
		return Height{}, fmt.Errorf("height encoding of %d bytes", len(b))
	}
	return Height{
		RevisionNumber: binary.BigEndian.Uint64(b[:8]),
		RevisionHeight: binary.BigEndian.Uint64(b[8:]),
	}, nil
}
