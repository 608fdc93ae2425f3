package types

import (
	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	eth2types "github.com/prysmaticlabs/eth2-types"
)

type Slot = eth2types.Slot

type Epoch = eth2types.Epoch

// ErrDecode is wrapped by every error caused by malformed input, before any
// verification takes place.
var ErrDecode = errors.New("decode error")

func decodeErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDecode, format, args...)
}

// BLSPubKey is a compressed BLS12-381 G1 point.
type BLSPubKey [config.BLS_PUBKEY_LENGTH]byte

func (p BLSPubKey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(p[:]).MarshalText()
}

func (p *BLSPubKey) UnmarshalText(text []byte) error {
	return hexutil.UnmarshalFixedText("BLSPubKey", text, p[:])
}

func (p BLSPubKey) String() string { return hexutil.Encode(p[:]) }

// BLSSignature is a compressed BLS12-381 G2 point.
type BLSSignature [config.BLS_SIGNATURE_LENGTH]byte

func (s BLSSignature) MarshalText() ([]byte, error) {
	return hexutil.Bytes(s[:]).MarshalText()
}

func (s *BLSSignature) UnmarshalText(text []byte) error {
	return hexutil.UnmarshalFixedText("BLSSignature", text, s[:])
}

type Domain [32]byte

type SigningData struct {
	ObjectRoot common.Hash
	Domain     Domain
}

func (s *SigningData) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

func (s *SigningData) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutBytes(s.ObjectRoot[:])
	hh.PutBytes(s.Domain[:])
	hh.Merkleize(indx)
	return nil
}

type ForkData struct {
	CurrentVersion        config.Version
	GenesisValidatorsRoot common.Hash
}

func (f *ForkData) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(f)
}

func (f *ForkData) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutBytes(f.CurrentVersion[:])
	hh.PutBytes(f.GenesisValidatorsRoot[:])
	hh.Merkleize(indx)
	return nil
}
