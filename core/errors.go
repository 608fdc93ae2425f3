package core

import (
	"fmt"

	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrFinalizedHeaderNotFound       = errors.New("finalized header not found")
	ErrCannotRotateNextSyncCommittee = errors.New("cannot rotate to an unknown next sync committee")
	ErrNextSyncCommitteeMismatch     = errors.New("next sync committee differs from the stored one")
	ErrIrrelevantUpdate              = errors.New("update neither advances finality nor adds a next sync committee")
	ErrInvalidSignature              = errors.New("invalid sync committee signature")
	ErrInvalidExecutionHeader        = errors.New("invalid execution header")
	ErrBootstrapRootMismatch         = errors.New("bootstrap header does not match the trusted block root")
	ErrAccountNotFound               = errors.New("account not found in state trie")
	ErrStorageSlotPresent            = errors.New("storage slot is set")
)

// ErrInconsistentSlotOrder is returned unless
// currentSlot >= signatureSlot > attestedSlot >= finalizedSlot.
type ErrInconsistentSlotOrder struct {
	CurrentSlot   types.Slot
	SignatureSlot types.Slot
	AttestedSlot  types.Slot
	FinalizedSlot types.Slot
}

func (e ErrInconsistentSlotOrder) Error() string {
	return fmt.Sprintf("inconsistent slot order: current %d, signature %d, attested %d, finalized %d",
		e.CurrentSlot, e.SignatureSlot, e.AttestedSlot, e.FinalizedSlot)
}

type ErrLessThanMinimalParticipants struct {
	Participants uint64
	Minimum      uint64
}

func (e ErrLessThanMinimalParticipants) Error() string {
	return fmt.Sprintf("%d sync committee participants, minimum is %d", e.Participants, e.Minimum)
}

type ErrInsufficientParticipants struct {
	Participants  uint64
	CommitteeSize uint64
}

func (e ErrInsufficientParticipants) Error() string {
	return fmt.Sprintf("%d of %d sync committee members participated, below the signature threshold", e.Participants, e.CommitteeSize)
}

// ErrInvalidFinalizedPeriod is returned when an update finalizes a header
// outside the store period and the one after it.
type ErrInvalidFinalizedPeriod struct {
	StorePeriod  uint64
	UpdatePeriod uint64
}

func (e ErrInvalidFinalizedPeriod) Error() string {
	return fmt.Sprintf("update finalizes period %d, store is at period %d", e.UpdatePeriod, e.StorePeriod)
}

// ErrUnknownSyncCommittee is returned when no stored committee can have
// signed an update.
type ErrUnknownSyncCommittee struct {
	StorePeriod     uint64
	SignaturePeriod uint64
}

func (e ErrUnknownSyncCommittee) Error() string {
	return fmt.Sprintf("no known sync committee for signature period %d, store is at period %d", e.SignaturePeriod, e.StorePeriod)
}

type ErrAccountStorageRootMismatch struct {
	Expected common.Hash
	Proven   common.Hash
}

func (e ErrAccountStorageRootMismatch) Error() string {
	return fmt.Sprintf("account storage root mismatch: expected %v, proven %v", e.Expected, e.Proven)
}

type ErrStorageValueMismatch struct {
	Expected []byte
	Proven   []byte
}

func (e ErrStorageValueMismatch) Error() string {
	return fmt.Sprintf("storage value mismatch: expected %x, proven %x", e.Expected, e.Proven)
}
