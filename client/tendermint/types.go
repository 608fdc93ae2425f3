package tendermint

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/exported"
	ics "github.com/cosmos/ics23/go"
	"github.com/pkg/errors"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmmath "github.com/tendermint/tendermint/libs/math"
	"github.com/tendermint/tendermint/light"
	tmtypes "github.com/tendermint/tendermint/types"
)

const ClientType = "tendermint"

var revisionFormat = regexp.MustCompile(`^.*[^\n-]-{1}[1-9][0-9]*$`)

// RevisionNumber parses the revision from a chain id of the form
// {name}-{revision}. Chain ids without a revision are at revision 0.
func RevisionNumber(chainID string) uint64 {
	if !revisionFormat.MatchString(chainID) {
		return 0
	}
	n, err := strconv.ParseUint(chainID[strings.LastIndex(chainID, "-")+1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ClientState is the singleton configuration record of a client.
type ClientState struct {
	ChainID         string           `json:"chain_id"`
	TrustLevel      tmmath.Fraction  `json:"trust_level"`
	TrustingPeriod  time.Duration    `json:"trusting_period"`
	UnbondingPeriod time.Duration    `json:"unbonding_period"`
	MaxClockDrift   time.Duration    `json:"max_clock_drift"`
	FrozenHeight    exported.Height  `json:"frozen_height"`
	LatestHeight    exported.Height  `json:"latest_height"`
	ProofSpecs      []*ics.ProofSpec `json:"proof_specs"`
}

func (cs *ClientState) Validate() error {
	if strings.TrimSpace(cs.ChainID) == "" {
		return errors.Wrap(exported.ErrInvalidClientState, "empty chain id")
	}
	if len(cs.ChainID) > tmtypes.MaxChainIDLen {
		return errors.Wrapf(exported.ErrInvalidClientState, "chain id longer than %d", tmtypes.MaxChainIDLen)
	}
	if err := light.ValidateTrustLevel(cs.TrustLevel); err != nil {
		return errors.Wrap(exported.ErrInvalidClientState, err.Error())
	}
	switch {
	case cs.TrustingPeriod <= 0:
		return errors.Wrapf(exported.ErrInvalidClientState, "trusting period %v", cs.TrustingPeriod)
	case cs.UnbondingPeriod <= 0:
		return errors.Wrapf(exported.ErrInvalidClientState, "unbonding period %v", cs.UnbondingPeriod)
	case cs.TrustingPeriod >= cs.UnbondingPeriod:
		return errors.Wrapf(exported.ErrInvalidClientState, "trusting period %v not below unbonding period %v", cs.TrustingPeriod, cs.UnbondingPeriod)
	case cs.MaxClockDrift <= 0:
		return errors.Wrapf(exported.ErrInvalidClientState, "max clock drift %v", cs.MaxClockDrift)
	}
	if cs.LatestHeight.RevisionHeight == 0 {
		return errors.Wrap(exported.ErrInvalidClientState, "zero latest height")
	}
	if rev := RevisionNumber(cs.ChainID); cs.LatestHeight.RevisionNumber != rev {
		return errors.Wrapf(exported.ErrInvalidClientState, "latest height revision %d, chain id revision %d", cs.LatestHeight.RevisionNumber, rev)
	}
	if len(cs.ProofSpecs) == 0 {
		return errors.Wrap(exported.ErrInvalidClientState, "no proof specs")
	}
	for i, spec := range cs.ProofSpecs {
		if spec == nil {
			return errors.Wrapf(exported.ErrInvalidClientState, "proof spec %d is nil", i)
		}
	}
	return nil
}

func (cs *ClientState) IsFrozen() bool {
	return !cs.FrozenHeight.IsZero()
}

// ConsensusState is what the client trusts at one height.
type ConsensusState struct {
	Timestamp          time.Time        `json:"timestamp"`
	Root               tmbytes.HexBytes `json:"root"`
	NextValidatorsHash tmbytes.HexBytes `json:"next_validators_hash"`
}

func (c *ConsensusState) Validate() error {
	if len(c.Root) == 0 {
		return errors.Wrap(exported.ErrInvalidConsensusState, "empty root")
	}
	if len(c.NextValidatorsHash) == 0 {
		return errors.Wrap(exported.ErrInvalidConsensusState, "empty next validators hash")
	}
	if err := tmtypes.ValidateHash(c.NextValidatorsHash); err != nil {
		return errors.Wrap(exported.ErrInvalidConsensusState, err.Error())
	}
	if c.Timestamp.Unix() <= 0 {
		return errors.Wrap(exported.ErrInvalidConsensusState, "timestamp not after unix epoch")
	}
	return nil
}

func (c *ConsensusState) conflicts(other *ConsensusState) bool {
	return !c.Timestamp.Equal(other.Timestamp) ||
		!bytes.Equal(c.Root, other.Root) ||
		!bytes.Equal(c.NextValidatorsHash, other.NextValidatorsHash)
}

// Header is a signed header together with the validator set that signed it
// and the trusted height and validators it is verified against.
type Header struct {
	SignedHeader      *tmtypes.SignedHeader
	ValidatorSet      *tmtypes.ValidatorSet
	TrustedHeight     exported.Height
	TrustedValidators *tmtypes.ValidatorSet
}

func (h *Header) ClientType() string { return ClientType }

func (h *Header) Height() exported.Height {
	return exported.NewHeight(RevisionNumber(h.SignedHeader.ChainID), uint64(h.SignedHeader.Height))
}

func (h *Header) Time() time.Time {
	return h.SignedHeader.Time
}

// ConsensusState is the state the client stores once the header is
// accepted.
func (h *Header) ConsensusState() *ConsensusState {
	return &ConsensusState{
		Timestamp:          h.SignedHeader.Time,
		Root:               h.SignedHeader.AppHash,
		NextValidatorsHash: h.SignedHeader.NextValidatorsHash,
	}
}

func (h *Header) ValidateBasic() error {
	if h.SignedHeader == nil || h.SignedHeader.Header == nil || h.SignedHeader.Commit == nil {
		return errors.Wrap(exported.ErrInvalidClientMessage, "missing signed header")
	}
	if err := h.SignedHeader.ValidateBasic(h.SignedHeader.ChainID); err != nil {
		return errors.Wrap(exported.ErrInvalidClientMessage, err.Error())
	}
	height := h.Height()
	if h.TrustedHeight.RevisionNumber != height.RevisionNumber {
		return errors.Wrapf(exported.ErrInvalidClientMessage, "trusted revision %d, header revision %d", h.TrustedHeight.RevisionNumber, height.RevisionNumber)
	}
	if h.TrustedHeight.GTE(height) {
		return errors.Wrapf(exported.ErrInvalidClientMessage, "trusted height %v not below header height %v", h.TrustedHeight, height)
	}
	if h.ValidatorSet == nil {
		return errors.Wrap(exported.ErrInvalidClientMessage, "missing validator set")
	}
	if !bytes.Equal(h.SignedHeader.ValidatorsHash, h.ValidatorSet.Hash()) {
		return errors.Wrapf(exported.ErrInvalidClientMessage, "validator set hash %X, header commits to %X", h.ValidatorSet.Hash(), h.SignedHeader.ValidatorsHash)
	}
	if h.TrustedValidators == nil {
		return errors.Wrap(exported.ErrInvalidClientMessage, "missing trusted validators")
	}
	return nil
}

// Misbehaviour is a pair of headers that cannot both be honest. HeaderB
// is not below HeaderA.
type Misbehaviour struct {
	HeaderA *Header
	HeaderB *Header
}

func (m *Misbehaviour) ClientType() string { return ClientType }

func (m *Misbehaviour) ValidateBasic() error {
	if m.HeaderA == nil || m.HeaderB == nil {
		return errors.Wrap(exported.ErrInvalidClientMessage, "missing misbehaviour header")
	}
	names := [...]string{"header a", "header b"}
	for i, h := range []*Header{m.HeaderA, m.HeaderB} {
		name := names[i]
		if err := h.ValidateBasic(); err != nil {
			return errors.Wrap(err, name)
		}
		sh := h.SignedHeader
		if err := h.ValidatorSet.VerifyCommitLight(sh.ChainID, sh.Commit.BlockID, sh.Height, sh.Commit); err != nil {
			return errors.Wrapf(exported.ErrInvalidClientMessage, "%s: %v", name, err)
		}
	}
	if m.HeaderA.SignedHeader.ChainID != m.HeaderB.SignedHeader.ChainID {
		return errors.Wrap(exported.ErrInvalidClientMessage, "headers are from different chains")
	}
	if m.HeaderB.Height().LT(m.HeaderA.Height()) {
		return errors.Wrapf(exported.ErrInvalidMisbehaviourHeaderSequence, "header b at %v below header a at %v", m.HeaderB.Height(), m.HeaderA.Height())
	}
	return nil
}

// evidence reports whether the headers conflict: different blocks at one
// height, or a higher block that is not later in BFT time.
func (m *Misbehaviour) evidence() bool {
	a, b := m.HeaderA, m.HeaderB
	if a.Height().EQ(b.Height()) {
		return !bytes.Equal(a.SignedHeader.Hash(), b.SignedHeader.Hash())
	}
	return !b.Time().After(a.Time())
}
