// Package ics23 evaluates ICS-23 commitment proofs: single existence and
// non-existence proofs checked against a ProofSpec, and chained proofs
// through nested stores.
package ics23

import (
	"bytes"

	ics "github.com/cosmos/ics23/go"
	"github.com/pkg/errors"
)

// CheckAgainstSpec rejects proofs that are well formed but were not built
// with the hashing scheme the spec authorizes.
func CheckAgainstSpec(p *ics.ExistenceProof, spec *ics.ProofSpec) error {
	if len(p.Key) == 0 {
		return ErrEmptyKey
	}
	if len(p.Value) == 0 {
		return ErrEmptyValue
	}
	if p.Leaf == nil {
		return ErrMissingLeaf
	}
	if spec.InnerSpec == nil {
		return ErrMissingInnerSpec
	}
	if err := checkLeaf(p.Leaf, spec.LeafSpec); err != nil {
		return err
	}
	depth := len(p.Path)
	if spec.MinDepth > 0 && depth < int(spec.MinDepth) {
		return ErrInnerDepthTooShort{Depth: depth, Min: int(spec.MinDepth)}
	}
	if spec.MaxDepth > 0 && depth > int(spec.MaxDepth) {
		return ErrInnerDepthTooLong{Depth: depth, Max: int(spec.MaxDepth)}
	}
	for _, inner := range p.Path {
		if err := checkInner(inner, spec); err != nil {
			return err
		}
	}
	// IAVL prefixes encode height, size and version, which only the library
	// parses.
	if spec.SpecEquals(ics.IavlSpec) {
		if err := p.CheckAgainstSpec(spec); err != nil {
			return errors.Wrap(ErrIavlOpMismatch, err.Error())
		}
	}
	return nil
}

func checkLeaf(leaf, spec *ics.LeafOp) error {
	if spec == nil {
		return ErrLeafOpMismatch{Field: "spec"}
	}
	switch {
	case leaf.Hash != spec.Hash:
		return ErrLeafOpMismatch{Field: "hash"}
	case leaf.PrehashKey != spec.PrehashKey:
		return ErrLeafOpMismatch{Field: "prehash_key"}
	case leaf.PrehashValue != spec.PrehashValue:
		return ErrLeafOpMismatch{Field: "prehash_value"}
	case leaf.Length != spec.Length:
		return ErrLeafOpMismatch{Field: "length"}
	case !bytes.HasPrefix(leaf.Prefix, spec.Prefix):
		return ErrLeafOpMismatch{Field: "prefix"}
	}
	return nil
}

func checkInner(inner *ics.InnerOp, spec *ics.ProofSpec) error {
	is := spec.InnerSpec
	if inner.Hash != is.Hash {
		return ErrInnerOpHashAndSpecMismatch{Spec: is.Hash, Proof: inner.Hash}
	}
	if spec.LeafSpec != nil && len(spec.LeafSpec.Prefix) > 0 && bytes.HasPrefix(inner.Prefix, spec.LeafSpec.Prefix) {
		return ErrInnerOpPrefixHasLeafPrefix
	}
	if len(inner.Prefix) < int(is.MinPrefixLength) {
		return ErrInnerOpPrefixTooShort{Length: len(inner.Prefix), Min: int(is.MinPrefixLength)}
	}
	if is.ChildSize <= 0 {
		return ErrInvalidChildSize
	}
	maxLeftChildBytes := (len(is.ChildOrder) - 1) * int(is.ChildSize)
	if max := int(is.MaxPrefixLength) + maxLeftChildBytes; len(inner.Prefix) > max {
		return ErrInnerOpPrefixTooLong{Length: len(inner.Prefix), Max: max}
	}
	if len(inner.Suffix)%int(is.ChildSize) != 0 {
		return ErrInnerOpSuffixMalformed{Length: len(inner.Suffix), ChildSize: int(is.ChildSize)}
	}
	return nil
}

// CalculateRoot applies the leaf op to (key, value) and folds every inner op
// in path order.
func CalculateRoot(p *ics.ExistenceProof) ([]byte, error) {
	if p.Leaf == nil {
		return nil, ErrMissingLeaf
	}
	res, err := p.Leaf.Apply(p.Key, p.Value)
	if err != nil {
		return nil, errors.Wrap(err, "leaf")
	}
	for i, step := range p.Path {
		res, err = step.Apply(res)
		if err != nil {
			return nil, errors.Wrapf(err, "inner op %d", i)
		}
	}
	return res, nil
}

// VerifyExistence checks the proof against the spec and that it commits
// (key, value) under root.
func VerifyExistence(p *ics.ExistenceProof, spec *ics.ProofSpec, root, key, value []byte) error {
	if err := CheckAgainstSpec(p, spec); err != nil {
		return err
	}
	if !bytes.Equal(p.Key, key) {
		return ErrKeyMismatch
	}
	if !bytes.Equal(p.Value, value) {
		return ErrValueMismatch
	}
	calculated, err := CalculateRoot(p)
	if err != nil {
		return err
	}
	if !bytes.Equal(calculated, root) {
		return ErrCalculatedRootMismatch{Expected: root, Calculated: calculated}
	}
	return nil
}

// VerifyNonExistence checks both neighbours against the spec, then lets the
// library check key ordering and neighbour adjacency.
func VerifyNonExistence(p *ics.NonExistenceProof, spec *ics.ProofSpec, root, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	for _, neighbour := range []*ics.ExistenceProof{p.Left, p.Right} {
		if neighbour == nil {
			continue
		}
		if err := CheckAgainstSpec(neighbour, spec); err != nil {
			return errors.Wrap(err, "neighbour")
		}
	}
	if err := p.Verify(spec, root, key); err != nil {
		return errors.Wrap(err, "non-existence proof")
	}
	return nil
}

// NonExistenceRoot computes the root a non-existence proof commits to.
func NonExistenceRoot(p *ics.NonExistenceProof) ([]byte, error) {
	switch {
	case p.Left != nil:
		return CalculateRoot(p.Left)
	case p.Right != nil:
		return CalculateRoot(p.Right)
	}
	return nil, errors.New("non-existence proof has no neighbours")
}
