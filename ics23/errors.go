package ics23

import (
	"fmt"

	ics "github.com/cosmos/ics23/go"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

var (
	ErrEmptyKey                   = errors.New("existence proof key is empty")
	ErrEmptyValue                 = errors.New("existence proof value is empty")
	ErrMissingLeaf                = errors.New("existence proof has no leaf op")
	ErrMissingInnerSpec           = errors.New("proof spec has no inner spec")
	ErrInvalidChildSize           = errors.New("proof spec child size must be positive")
	ErrInnerOpPrefixHasLeafPrefix = errors.New("inner op prefix starts with the leaf prefix")
	ErrMissingExistenceProof      = errors.New("commitment proof is not an existence proof")
	ErrMissingNonExistenceProof   = errors.New("commitment proof is not a non-existence proof")
	ErrEmptyProof                 = errors.New("merkle proof is empty")
	ErrEmptyPath                  = errors.New("merkle path is empty")
	ErrKeyMismatch                = errors.New("proven key differs from the requested key")
	ErrValueMismatch              = errors.New("proven value differs from the requested value")
	ErrIavlOpMismatch             = errors.New("op prefix is not a valid IAVL node encoding")
)

// ErrLeafOpMismatch names the leaf op field that differs from the spec.
type ErrLeafOpMismatch struct {
	Field string
}

func (e ErrLeafOpMismatch) Error() string {
	return fmt.Sprintf("leaf op %s does not match the proof spec", e.Field)
}

type ErrInnerOpHashAndSpecMismatch struct {
	Spec  ics.HashOp
	Proof ics.HashOp
}

func (e ErrInnerOpHashAndSpecMismatch) Error() string {
	return fmt.Sprintf("inner op hash %v does not match spec hash %v", e.Proof, e.Spec)
}

type ErrInnerOpPrefixTooShort struct {
	Length, Min int
}

func (e ErrInnerOpPrefixTooShort) Error() string {
	return fmt.Sprintf("inner op prefix length %d below minimum %d", e.Length, e.Min)
}

type ErrInnerOpPrefixTooLong struct {
	Length, Max int
}

func (e ErrInnerOpPrefixTooLong) Error() string {
	return fmt.Sprintf("inner op prefix length %d above maximum %d", e.Length, e.Max)
}

type ErrInnerOpSuffixMalformed struct {
	Length, ChildSize int
}

func (e ErrInnerOpSuffixMalformed) Error() string {
	return fmt.Sprintf("inner op suffix length %d is not a multiple of child size %d", e.Length, e.ChildSize)
}

type ErrInnerDepthTooShort struct {
	Depth, Min int
}

func (e ErrInnerDepthTooShort) Error() string {
	return fmt.Sprintf("proof depth %d below minimum %d", e.Depth, e.Min)
}

type ErrInnerDepthTooLong struct {
	Depth, Max int
}

func (e ErrInnerDepthTooLong) Error() string {
	return fmt.Sprintf("proof depth %d above maximum %d", e.Depth, e.Max)
}

type ErrCalculatedRootMismatch struct {
	Expected   []byte
	Calculated []byte
}

func (e ErrCalculatedRootMismatch) Error() string {
	return fmt.Sprintf("calculated root %s does not match %s", hexutil.Encode(e.Calculated), hexutil.Encode(e.Expected))
}

type ErrProofLengthMismatch struct {
	Proofs, Specs, Keys int
}

func (e ErrProofLengthMismatch) Error() string {
	return fmt.Sprintf("proof length mismatch: %d proofs, %d specs, %d keys", e.Proofs, e.Specs, e.Keys)
}
