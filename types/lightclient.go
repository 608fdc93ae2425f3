package types

import (
	"fmt"

	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/crypto/bls"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
)

// ErrAggregatePubKeyMismatch is returned when a committee's aggregate key is
// not the sum of its member keys.
type ErrAggregatePubKeyMismatch struct {
	Expected BLSPubKey
	Actual   BLSPubKey
}

func (e ErrAggregatePubKeyMismatch) Error() string {
	return fmt.Sprintf("aggregate public key mismatch: expected %v, computed %v", e.Expected, e.Actual)
}

type SyncCommittee struct {
	PubKeys            []BLSPubKey `json:"pubkeys"`
	AggregatePublicKey BLSPubKey   `json:"aggregate_pubkey"`
}

func (s *SyncCommittee) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

func (s *SyncCommittee) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	{
		subIndx := hh.Index()
		for _, pk := range s.PubKeys {
			hh.PutBytes(pk[:])
		}
		hh.Merkleize(subIndx)
	}
	hh.PutBytes(s.AggregatePublicKey[:])
	hh.Merkleize(indx)
	return nil
}

// Validate checks that the aggregate public key is the aggregation of the
// member keys.
func (s *SyncCommittee) Validate() error {
	raw := make([][]byte, len(s.PubKeys))
	for i := range s.PubKeys {
		raw[i] = s.PubKeys[i][:]
	}
	agg, err := bls.AggregatePublicKeys(raw)
	if err != nil {
		return errors.Wrap(err, "could not aggregate sync committee")
	}
	var actual BLSPubKey
	copy(actual[:], agg.Marshal())
	if actual != s.AggregatePublicKey {
		return ErrAggregatePubKeyMismatch{Expected: s.AggregatePublicKey, Actual: actual}
	}
	return nil
}

func (s *SyncCommittee) Equal(other *SyncCommittee) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.AggregatePublicKey != other.AggregatePublicKey || len(s.PubKeys) != len(other.PubKeys) {
		return false
	}
	for i := range s.PubKeys {
		if s.PubKeys[i] != other.PubKeys[i] {
			return false
		}
	}
	return true
}

func (s *SyncCommittee) Copy() *SyncCommittee {
	if s == nil {
		return nil
	}
	return &SyncCommittee{
		PubKeys:            append([]BLSPubKey(nil), s.PubKeys...),
		AggregatePublicKey: s.AggregatePublicKey,
	}
}

type participationBits interface {
	BitAt(idx uint64) bool
	Len() uint64
	Count() uint64
}

type SyncAggregate struct {
	SyncCommitteeBits      hexutil.Bytes `json:"sync_committee_bits"`
	SyncCommitteeSignature BLSSignature  `json:"sync_committee_signature"`
}

func (s *SyncAggregate) bits() participationBits {
	switch len(s.SyncCommitteeBits) {
	case 512 / 8:
		return bitfield.Bitvector512(s.SyncCommitteeBits)
	case 32 / 8:
		return bitfield.Bitvector32(s.SyncCommitteeBits)
	}
	return nil
}

// NumParticipants is the popcount of the participation bits.
func (s *SyncAggregate) NumParticipants() uint64 {
	if b := s.bits(); b != nil {
		return b.Count()
	}
	return 0
}

// Participants returns the committee positions whose bit is set.
func (s *SyncAggregate) Participants() []uint64 {
	b := s.bits()
	if b == nil {
		return nil
	}
	out := make([]uint64, 0, b.Count())
	for i := uint64(0); i < b.Len(); i++ {
		if b.BitAt(i) {
			out = append(out, i)
		}
	}
	return out
}

type LightClientHeader struct {
	Beacon          BeaconBlockHeader       `json:"beacon"`
	Execution       *ExecutionPayloadHeader `json:"execution,omitempty"`
	ExecutionBranch []common.Hash           `json:"execution_branch,omitempty"`
}

// ConsensusUpdate is implemented by every update shape a light client
// accepts. GetNextSyncCommittee is nil when the update carries no committee.
type ConsensusUpdate interface {
	Fork() config.Fork
	GetAttestedHeader() *LightClientHeader
	GetNextSyncCommittee() *SyncCommittee
	GetNextSyncCommitteeBranch() []common.Hash
	GetFinalizedHeader() *LightClientHeader
	GetFinalityBranch() []common.Hash
	GetSyncAggregate() *SyncAggregate
	GetSignatureSlot() Slot
}

// LightClientUpdate proves a finalized header and, optionally, the next sync
// committee of the attested period.
type LightClientUpdate struct {
	Version                 config.Fork       `json:"-"`
	AttestedHeader          LightClientHeader `json:"attested_header"`
	NextSyncCommittee       *SyncCommittee    `json:"next_sync_committee,omitempty"`
	NextSyncCommitteeBranch []common.Hash     `json:"next_sync_committee_branch,omitempty"`
	FinalizedHeader         LightClientHeader `json:"finalized_header"`
	FinalityBranch          []common.Hash     `json:"finality_branch"`
	SyncAggregate           SyncAggregate     `json:"sync_aggregate"`
	SignatureSlot           Slot              `json:"signature_slot,string"`
}

func (u *LightClientUpdate) Fork() config.Fork                         { return u.Version }
func (u *LightClientUpdate) GetAttestedHeader() *LightClientHeader     { return &u.AttestedHeader }
func (u *LightClientUpdate) GetNextSyncCommittee() *SyncCommittee      { return u.NextSyncCommittee }
func (u *LightClientUpdate) GetNextSyncCommitteeBranch() []common.Hash { return u.NextSyncCommitteeBranch }
func (u *LightClientUpdate) GetFinalizedHeader() *LightClientHeader    { return &u.FinalizedHeader }
func (u *LightClientUpdate) GetFinalityBranch() []common.Hash          { return u.FinalityBranch }
func (u *LightClientUpdate) GetSyncAggregate() *SyncAggregate          { return &u.SyncAggregate }
func (u *LightClientUpdate) GetSignatureSlot() Slot                    { return u.SignatureSlot }

// LightClientFinalityUpdate only proves a finalized header.
type LightClientFinalityUpdate struct {
	Version         config.Fork       `json:"-"`
	AttestedHeader  LightClientHeader `json:"attested_header"`
	FinalizedHeader LightClientHeader `json:"finalized_header"`
	FinalityBranch  []common.Hash     `json:"finality_branch"`
	SyncAggregate   SyncAggregate     `json:"sync_aggregate"`
	SignatureSlot   Slot              `json:"signature_slot,string"`
}

func (u *LightClientFinalityUpdate) Fork() config.Fork                         { return u.Version }
func (u *LightClientFinalityUpdate) GetAttestedHeader() *LightClientHeader     { return &u.AttestedHeader }
func (u *LightClientFinalityUpdate) GetNextSyncCommittee() *SyncCommittee      { return nil }
func (u *LightClientFinalityUpdate) GetNextSyncCommitteeBranch() []common.Hash { return nil }
func (u *LightClientFinalityUpdate) GetFinalizedHeader() *LightClientHeader    { return &u.FinalizedHeader }
func (u *LightClientFinalityUpdate) GetFinalityBranch() []common.Hash          { return u.FinalityBranch }
func (u *LightClientFinalityUpdate) GetSyncAggregate() *SyncAggregate          { return &u.SyncAggregate }
func (u *LightClientFinalityUpdate) GetSignatureSlot() Slot                    { return u.SignatureSlot }

type LightClientBootstrap struct {
	Version                    config.Fork       `json:"-"`
	Header                     LightClientHeader `json:"header"`
	CurrentSyncCommittee       SyncCommittee     `json:"current_sync_committee"`
	CurrentSyncCommitteeBranch []common.Hash     `json:"current_sync_committee_branch"`
}

// LightClientStore is the persisted state of an Ethereum light client.
// CurrentSyncCommittee always belongs to the period of FinalizedHeader, and
// NextSyncCommittee, when set, to the period after it.
type LightClientStore struct {
	FinalizedHeader      LightClientHeader `json:"finalized_header"`
	CurrentSyncCommittee SyncCommittee     `json:"current_sync_committee"`
	NextSyncCommittee    *SyncCommittee    `json:"next_sync_committee,omitempty"`
}

func (s *LightClientStore) CurrentSlot() Slot {
	return s.FinalizedHeader.Beacon.Slot
}

func (s *LightClientStore) GetCurrentSyncCommittee() *SyncCommittee {
	return &s.CurrentSyncCommittee
}

func (s *LightClientStore) GetNextSyncCommittee() *SyncCommittee {
	return s.NextSyncCommittee
}

func (s *LightClientStore) SetFinalizedHeader(header *LightClientHeader) {
	s.FinalizedHeader = *header
}

func (s *LightClientStore) SetCurrentSyncCommittee(committee *SyncCommittee) {
	s.CurrentSyncCommittee = *committee.Copy()
}

func (s *LightClientStore) SetNextSyncCommittee(committee *SyncCommittee) {
	s.NextSyncCommittee = committee.Copy()
}

func (s *LightClientStore) Copy() *LightClientStore {
	return &LightClientStore{
		FinalizedHeader:      s.FinalizedHeader,
		CurrentSyncCommittee: *s.CurrentSyncCommittee.Copy(),
		NextSyncCommittee:    s.NextSyncCommittee.Copy(),
	}
}
