package ethereum

import (
	"encoding/json"
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const ClientType = "ethereum"

// ClientState is the singleton configuration record of a client.
type ClientState struct {
	ChainID               string               `json:"chain_id"`
	ChainContext          *config.ChainContext `json:"chain_context"`
	GenesisValidatorsRoot common.Hash          `json:"genesis_validators_root"`
	LatestSlot            types.Slot           `json:"latest_slot"`
	LatestHeight          exported.Height      `json:"latest_height"`
	FrozenHeight          exported.Height      `json:"frozen_height"`
	IBCAddress            common.Address       `json:"ibc_address"`
	IBCCommitmentSlot     common.Hash          `json:"ibc_commitment_slot"`
	TrustingPeriod        time.Duration        `json:"trusting_period"`
	MaxClockDrift         time.Duration        `json:"max_clock_drift"`
}

func (cs *ClientState) Validate() error {
	if cs.ChainID == "" {
		return errors.Wrap(exported.ErrInvalidClientState, "empty chain id")
	}
	if cs.ChainContext == nil {
		return errors.Wrap(exported.ErrInvalidClientState, "missing chain context")
	}
	if err := cs.ChainContext.Validate(); err != nil {
		return errors.Wrap(exported.ErrInvalidClientState, err.Error())
	}
	if cs.GenesisValidatorsRoot == (common.Hash{}) {
		return errors.Wrap(exported.ErrInvalidClientState, "empty genesis validators root")
	}
	if cs.IBCAddress == (common.Address{}) {
		return errors.Wrap(exported.ErrInvalidClientState, "empty IBC contract address")
	}
	if cs.TrustingPeriod <= 0 {
		return errors.Wrapf(exported.ErrInvalidClientState, "trusting period %v", cs.TrustingPeriod)
	}
	if cs.MaxClockDrift < 0 {
		return errors.Wrapf(exported.ErrInvalidClientState, "max clock drift %v", cs.MaxClockDrift)
	}
	return nil
}

func (cs *ClientState) IsFrozen() bool {
	return !cs.FrozenHeight.IsZero()
}

// ConsensusState is what the client trusts at one execution block height.
type ConsensusState struct {
	Slot        types.Slot  `json:"slot"`
	StateRoot   common.Hash `json:"state_root"`
	StorageRoot common.Hash `json:"storage_root"`
	// Timestamp of the execution payload in seconds.
	Timestamp            uint64          `json:"timestamp"`
	CurrentSyncCommittee types.BLSPubKey `json:"current_sync_committee"`
	NextSyncCommittee    types.BLSPubKey `json:"next_sync_committee"`
}

func (c *ConsensusState) Validate() error {
	if c.StateRoot == (common.Hash{}) {
		return errors.Wrap(exported.ErrInvalidConsensusState, "empty state root")
	}
	if c.StorageRoot == (common.Hash{}) {
		return errors.Wrap(exported.ErrInvalidConsensusState, "empty storage root")
	}
	if c.Timestamp == 0 {
		return errors.Wrap(exported.ErrInvalidConsensusState, "zero timestamp")
	}
	return nil
}

// conflicts reports whether two consensus states for the same height
// describe different execution blocks.
func (c *ConsensusState) conflicts(other *ConsensusState) bool {
	return c.Slot != other.Slot ||
		c.StateRoot != other.StateRoot ||
		c.StorageRoot != other.StorageRoot ||
		c.Timestamp != other.Timestamp
}

// AccountUpdate proves the storage root of the IBC contract against the
// execution state root of an update's finalized header.
type AccountUpdate struct {
	StorageRoot  common.Hash     `json:"storage_root"`
	AccountProof []hexutil.Bytes `json:"account_proof"`
}

func (a *AccountUpdate) proof() [][]byte {
	proof := make([][]byte, len(a.AccountProof))
	for i, node := range a.AccountProof {
		proof[i] = node
	}
	return proof
}

// Header advances the client by one finalized execution block. The
// consensus update is either a full update or a finality update.
type Header struct {
	ConsensusUpdate types.ConsensusUpdate
	AccountUpdate   AccountUpdate
}

type headerJSON struct {
	ConsensusUpdate json.RawMessage `json:"consensus_update"`
	AccountUpdate   AccountUpdate   `json:"account_update"`
}

func (h *Header) ClientType() string { return ClientType }

func (h *Header) ValidateBasic() error {
	if h == nil || missingUpdate(h.ConsensusUpdate) {
		return errors.Wrap(exported.ErrInvalidClientMessage, "missing consensus update")
	}
	if h.ConsensusUpdate.GetFinalizedHeader().Execution == nil {
		return errors.Wrap(exported.ErrInvalidClientMessage, "finalized header without execution payload")
	}
	if len(h.AccountUpdate.AccountProof) == 0 {
		return errors.Wrap(exported.ErrInvalidClientMessage, "empty account proof")
	}
	return nil
}

// Height is the finalized execution block number.
func (h *Header) Height() exported.Height {
	return exported.NewHeight(0, h.ConsensusUpdate.GetFinalizedHeader().Execution.BlockNumber)
}

func (h *Header) MarshalJSON() ([]byte, error) {
	update, err := encodeUpdate(h.ConsensusUpdate)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&headerJSON{ConsensusUpdate: update, AccountUpdate: h.AccountUpdate})
}

// Misbehaviour is a pair of updates the sync committee should never have
// signed together.
type Misbehaviour struct {
	UpdateA types.ConsensusUpdate
	UpdateB types.ConsensusUpdate
}

type misbehaviourJSON struct {
	UpdateA json.RawMessage `json:"update_a"`
	UpdateB json.RawMessage `json:"update_b"`
}

func (m *Misbehaviour) ClientType() string { return ClientType }

func (m *Misbehaviour) ValidateBasic() error {
	if m == nil || missingUpdate(m.UpdateA) || missingUpdate(m.UpdateB) {
		return errors.Wrap(exported.ErrInvalidClientMessage, "misbehaviour needs two updates")
	}
	a, b := m.UpdateA.GetFinalizedHeader(), m.UpdateB.GetFinalizedHeader()
	if a.Execution == nil || b.Execution == nil {
		return errors.Wrap(exported.ErrInvalidClientMessage, "finalized header without execution payload")
	}
	if b.Execution.BlockNumber < a.Execution.BlockNumber {
		return exported.ErrInvalidMisbehaviourHeaderSequence
	}
	return nil
}

func (m *Misbehaviour) MarshalJSON() ([]byte, error) {
	a, err := encodeUpdate(m.UpdateA)
	if err != nil {
		return nil, err
	}
	b, err := encodeUpdate(m.UpdateB)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&misbehaviourJSON{UpdateA: a, UpdateB: b})
}

// missingUpdate also catches typed nil pointers.
func missingUpdate(u types.ConsensusUpdate) bool {
	switch u := u.(type) {
	case *types.LightClientUpdate:
		return u == nil
	case *types.LightClientFinalityUpdate:
		return u == nil
	}
	return u == nil
}

func encodeUpdate(u types.ConsensusUpdate) (json.RawMessage, error) {
	if missingUpdate(u) {
		return json.RawMessage("null"), nil
	}
	return types.EncodeConsensusUpdate(u)
}

func decodeUpdate(ctx *config.ChainContext, data json.RawMessage) (types.ConsensusUpdate, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, errors.Wrap(types.ErrDecode, "missing update")
	}
	return types.DecodeConsensusUpdate(ctx, data)
}

// DecodeHeader decodes a JSON header and checks the update's shape.
func DecodeHeader(ctx *config.ChainContext, data []byte) (*Header, error) {
	var dec headerJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return nil, errors.Wrap(types.ErrDecode, err.Error())
	}
	update, err := decodeUpdate(ctx, dec.ConsensusUpdate)
	if err != nil {
		return nil, errors.Wrap(err, "consensus update")
	}
	return &Header{ConsensusUpdate: update, AccountUpdate: dec.AccountUpdate}, nil
}

// DecodeMisbehaviour decodes a JSON misbehaviour and checks both updates'
// shape.
func DecodeMisbehaviour(ctx *config.ChainContext, data []byte) (*Misbehaviour, error) {
	var dec misbehaviourJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return nil, errors.Wrap(types.ErrDecode, err.Error())
	}
	a, err := decodeUpdate(ctx, dec.UpdateA)
	if err != nil {
		return nil, errors.Wrap(err, "update a")
	}
	b, err := decodeUpdate(ctx, dec.UpdateB)
	if err != nil {
		return nil, errors.Wrap(err, "update b")
	}
	return &Misbehaviour{UpdateA: a, UpdateB: b}, nil
}
