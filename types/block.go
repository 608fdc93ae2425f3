package types

import (
	"github.com/ethereum/go-ethereum/common"
	ssz "github.com/ferranbt/fastssz"
)

const beaconBlockHeaderSize = 112

type BeaconBlockHeader struct {
	Slot          Slot        `json:"slot,string"`
	ProposerIndex uint64      `json:"proposer_index,string"`
	ParentRoot    common.Hash `json:"parent_root"`
	StateRoot     common.Hash `json:"state_root"`
	BodyRoot      common.Hash `json:"body_root"`
}

// IsEmpty reports whether the header is the zero value.
func (b *BeaconBlockHeader) IsEmpty() bool {
	return *b == BeaconBlockHeader{}
}

func (b *BeaconBlockHeader) SizeSSZ() int {
	return beaconBlockHeaderSize
}

func (b *BeaconBlockHeader) MarshalSSZ() ([]byte, error) {
	return b.MarshalSSZTo(make([]byte, 0, beaconBlockHeaderSize))
}

func (b *BeaconBlockHeader) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = ssz.MarshalUint64(dst, uint64(b.Slot))
	dst = ssz.MarshalUint64(dst, b.ProposerIndex)
	dst = append(dst, b.ParentRoot[:]...)
	dst = append(dst, b.StateRoot[:]...)
	dst = append(dst, b.BodyRoot[:]...)
	return dst, nil
}

func (b *BeaconBlockHeader) UnmarshalSSZ(buf []byte) error {
	if len(buf) != beaconBlockHeaderSize {
		return ssz.ErrSize
	}
	b.Slot = Slot(ssz.UnmarshallUint64(buf[0:8]))
	b.ProposerIndex = ssz.UnmarshallUint64(buf[8:16])
	copy(b.ParentRoot[:], buf[16:48])
	copy(b.StateRoot[:], buf[48:80])
	copy(b.BodyRoot[:], buf[80:112])
	return nil
}

// HashTreeRoot returns the SSZ root of the header, i.e. the beacon block root.
func (b *BeaconBlockHeader) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

func (b *BeaconBlockHeader) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(b.Slot))
	hh.PutUint64(b.ProposerIndex)
	hh.PutBytes(b.ParentRoot[:])
	hh.PutBytes(b.StateRoot[:])
	hh.PutBytes(b.BodyRoot[:])
	hh.Merkleize(indx)
	return nil
}

// Root is HashTreeRoot as a common.Hash. Hashing a fixed size header cannot fail.
func (b *BeaconBlockHeader) Root() common.Hash {
	root, err := b.HashTreeRoot()
	if err != nil {
		return common.Hash{}
	}
	return root
}
