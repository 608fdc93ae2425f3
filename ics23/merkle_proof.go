package ics23

import (
	"bytes"
	"strings"

	ics "github.com/cosmos/ics23/go"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// ErrDecode is wrapped by every MerkleProof decoding failure.
var ErrDecode = errors.New("invalid merkle proof encoding")

const proofsField = 1

// MerklePath is the key path of a value through nested stores, outermost
// store first.
type MerklePath struct {
	KeyPath [][]byte
}

func NewMerklePath(keys ...string) MerklePath {
	path := MerklePath{KeyPath: make([][]byte, len(keys))}
	for i, k := range keys {
		path.KeyPath[i] = []byte(k)
	}
	return path
}

// ApplyPrefix nests path below the store prefix.
func ApplyPrefix(prefix []byte, path MerklePath) MerklePath {
	keys := make([][]byte, 0, len(path.KeyPath)+1)
	keys = append(keys, prefix)
	return MerklePath{KeyPath: append(keys, path.KeyPath...)}
}

func (p MerklePath) Empty() bool {
	return len(p.KeyPath) == 0
}

// Last returns the innermost key.
func (p MerklePath) Last() []byte {
	if p.Empty() {
		return nil
	}
	return p.KeyPath[len(p.KeyPath)-1]
}

func (p MerklePath) String() string {
	parts := make([]string, len(p.KeyPath))
	for i, k := range p.KeyPath {
		parts[i] = string(k)
	}
	return "/" + strings.Join(parts, "/")
}

// MerkleProof chains commitment proofs through nested stores. Proofs[0]
// proves the innermost key, every following proof commits the root
// computed by the previous one.
type MerkleProof struct {
	Proofs []*ics.CommitmentProof
}

// Marshal encodes the proof as the protobuf message
// `message MerkleProof { repeated CommitmentProof proofs = 1; }`.
func (p *MerkleProof) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(nil)
	for i, cp := range p.Proofs {
		enc, err := cp.Marshal()
		if err != nil {
			return nil, errors.Wrapf(err, "proof %d", i)
		}
		if err := buf.EncodeVarint(proofsField<<3 | proto.WireBytes); err != nil {
			return nil, err
		}
		if err := buf.EncodeRawBytes(enc); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (p *MerkleProof) Unmarshal(data []byte) error {
	var proofs []*ics.CommitmentProof
	for len(data) > 0 {
		tag, n := proto.DecodeVarint(data)
		if n == 0 {
			return errors.Wrap(ErrDecode, "truncated tag")
		}
		if tag != proofsField<<3|proto.WireBytes {
			return errors.Wrapf(ErrDecode, "unexpected field tag %d", tag)
		}
		data = data[n:]
		length, n := proto.DecodeVarint(data)
		if n == 0 || uint64(len(data)-n) < length {
			return errors.Wrap(ErrDecode, "truncated proof")
		}
		data = data[n:]
		cp := new(ics.CommitmentProof)
		if err := cp.Unmarshal(data[:length]); err != nil {
			return errors.Wrapf(ErrDecode, "commitment proof %d: %v", len(proofs), err)
		}
		proofs = append(proofs, cp)
		data = data[length:]
	}
	p.Proofs = proofs
	return nil
}

// DecodeMerkleProof decodes a proof and rejects empty ones.
func DecodeMerkleProof(data []byte) (*MerkleProof, error) {
	var p MerkleProof
	if err := p.Unmarshal(data); err != nil {
		return nil, err
	}
	if len(p.Proofs) == 0 {
		return nil, ErrEmptyProof
	}
	return &p, nil
}

func (p *MerkleProof) checkLengths(specs []*ics.ProofSpec, path MerklePath) error {
	if len(p.Proofs) == 0 {
		return ErrEmptyProof
	}
	if path.Empty() {
		return ErrEmptyPath
	}
	if len(p.Proofs) != len(specs) || len(p.Proofs) != len(path.KeyPath) {
		return ErrProofLengthMismatch{Proofs: len(p.Proofs), Specs: len(specs), Keys: len(path.KeyPath)}
	}
	return nil
}

// VerifyMembership proves value at path under root.
func (p *MerkleProof) VerifyMembership(specs []*ics.ProofSpec, root []byte, path MerklePath, value []byte) error {
	if err := p.checkLengths(specs, path); err != nil {
		return err
	}
	if len(value) == 0 {
		return ErrEmptyValue
	}
	return verifyChained(p.Proofs, specs, path.KeyPath, value, root)
}

// VerifyNonMembership proves that path is absent: the innermost proof is a
// non-existence proof, the rest commit its root to root.
func (p *MerkleProof) VerifyNonMembership(specs []*ics.ProofSpec, root []byte, path MerklePath) error {
	if err := p.checkLengths(specs, path); err != nil {
		return err
	}
	nonExist := p.Proofs[0].GetNonexist()
	if nonExist == nil {
		return ErrMissingNonExistenceProof
	}
	subroot, err := NonExistenceRoot(nonExist)
	if err != nil {
		return err
	}
	keys := path.KeyPath
	if err := VerifyNonExistence(nonExist, specs[0], subroot, keys[len(keys)-1]); err != nil {
		return err
	}
	if len(p.Proofs) == 1 {
		if !bytes.Equal(subroot, root) {
			return ErrCalculatedRootMismatch{Expected: root, Calculated: subroot}
		}
		return nil
	}
	return verifyChained(p.Proofs[1:], specs[1:], keys[:len(keys)-1], subroot, root)
}

// verifyChained checks proofs[i] against keys[len(keys)-1-i] and feeds every
// computed subroot in as the value of the next proof.
func verifyChained(proofs []*ics.CommitmentProof, specs []*ics.ProofSpec, keys [][]byte, value, root []byte) error {
	for i, cp := range proofs {
		exist := cp.GetExist()
		if exist == nil {
			return errors.Wrapf(ErrMissingExistenceProof, "proof %d", i)
		}
		subroot, err := CalculateRoot(exist)
		if err != nil {
			return errors.Wrapf(err, "proof %d", i)
		}
		if err := VerifyExistence(exist, specs[i], subroot, keys[len(keys)-1-i], value); err != nil {
			return errors.Wrapf(err, "proof %d", i)
		}
		value = subroot
	}
	if !bytes.Equal(value, root) {
		return ErrCalculatedRootMismatch{Expected: root, Calculated: value}
	}
	return nil
}
