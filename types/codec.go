package types

import (
	"encoding/json"

	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/merkle"
	"github.com/pkg/errors"
)

// versioned is the beacon API envelope {"version": fork, "data": object}.
type versioned struct {
	Version config.Fork     `json:"version"`
	Data    json.RawMessage `json:"data"`
}

func asDecodeError(err error) error {
	if errors.Is(err, ErrDecode) {
		return err
	}
	return errors.Wrapf(ErrDecode, "%v", err)
}

func marshalVersioned(fork config.Fork, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&versioned{Version: fork, Data: data})
}

func unmarshalVersioned(input []byte, v interface{}) (config.Fork, error) {
	var env versioned
	if err := json.Unmarshal(input, &env); err != nil {
		return 0, asDecodeError(err)
	}
	if len(env.Data) == 0 {
		return 0, decodeErrorf("missing data")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return 0, asDecodeError(err)
	}
	return env.Version, nil
}

func (u *LightClientUpdate) MarshalJSON() ([]byte, error) {
	type plain LightClientUpdate
	return marshalVersioned(u.Version, (*plain)(u))
}

func (u *LightClientUpdate) UnmarshalJSON(input []byte) error {
	type plain LightClientUpdate
	var dec plain
	fork, err := unmarshalVersioned(input, &dec)
	if err != nil {
		return err
	}
	*u = LightClientUpdate(dec)
	u.Version = fork
	return nil
}

func (u *LightClientFinalityUpdate) MarshalJSON() ([]byte, error) {
	type plain LightClientFinalityUpdate
	return marshalVersioned(u.Version, (*plain)(u))
}

func (u *LightClientFinalityUpdate) UnmarshalJSON(input []byte) error {
	type plain LightClientFinalityUpdate
	var dec plain
	fork, err := unmarshalVersioned(input, &dec)
	if err != nil {
		return err
	}
	*u = LightClientFinalityUpdate(dec)
	u.Version = fork
	return nil
}

func (b *LightClientBootstrap) MarshalJSON() ([]byte, error) {
	type plain LightClientBootstrap
	return marshalVersioned(b.Version, (*plain)(b))
}

func (b *LightClientBootstrap) UnmarshalJSON(input []byte) error {
	type plain LightClientBootstrap
	var dec plain
	fork, err := unmarshalVersioned(input, &dec)
	if err != nil {
		return err
	}
	*b = LightClientBootstrap(dec)
	b.Version = fork
	return nil
}

// DecodeLightClientUpdate decodes a versioned JSON update and checks every
// fixed length against the chain context.
func DecodeLightClientUpdate(ctx *config.ChainContext, data []byte) (*LightClientUpdate, error) {
	var u LightClientUpdate
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, asDecodeError(err)
	}
	if err := ValidateShape(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func DecodeLightClientFinalityUpdate(ctx *config.ChainContext, data []byte) (*LightClientFinalityUpdate, error) {
	var u LightClientFinalityUpdate
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, asDecodeError(err)
	}
	if err := ValidateShape(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func DecodeLightClientBootstrap(ctx *config.ChainContext, data []byte) (*LightClientBootstrap, error) {
	var b LightClientBootstrap
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, asDecodeError(err)
	}
	if err := b.ValidateShape(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

// Update kinds of a tagged consensus update.
const (
	KindUpdate         = "update"
	KindFinalityUpdate = "finality_update"
)

// taggedUpdate is {"kind": kind, "update": versioned update}.
type taggedUpdate struct {
	Kind   string          `json:"kind"`
	Update json.RawMessage `json:"update"`
}

// EncodeConsensusUpdate encodes either update variant with its kind so
// DecodeConsensusUpdate can restore it.
func EncodeConsensusUpdate(u ConsensusUpdate) ([]byte, error) {
	var kind string
	switch u := u.(type) {
	case *LightClientUpdate:
		if u == nil {
			return nil, errors.New("nil update")
		}
		kind = KindUpdate
	case *LightClientFinalityUpdate:
		if u == nil {
			return nil, errors.New("nil update")
		}
		kind = KindFinalityUpdate
	default:
		return nil, errors.Errorf("unsupported update %T", u)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&taggedUpdate{Kind: kind, Update: data})
}

// DecodeConsensusUpdate decodes a tagged update and checks its shape.
func DecodeConsensusUpdate(ctx *config.ChainContext, data []byte) (ConsensusUpdate, error) {
	var tagged taggedUpdate
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, asDecodeError(err)
	}
	var (
		u   ConsensusUpdate
		err error
	)
	switch tagged.Kind {
	case KindUpdate:
		u, err = DecodeLightClientUpdate(ctx, tagged.Update)
	case KindFinalityUpdate:
		u, err = DecodeLightClientFinalityUpdate(ctx, tagged.Update)
	default:
		return nil, decodeErrorf("unknown update kind %q", tagged.Kind)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func forkAtSlot(ctx *config.ChainContext, slot Slot) config.Fork {
	return ctx.ForkAtEpoch(uint64(slot) / ctx.SlotsPerEpoch).Fork
}

// ValidateShape checks the fixed lengths of an update: the fork matches the
// attested slot, branches have the depth of their generalized index and
// committees and participation bits have the configured size. Every
// violation wraps ErrDecode.
func ValidateShape(ctx *config.ChainContext, u ConsensusUpdate) error {
	fork := u.Fork()
	if fork < config.Altair {
		return decodeErrorf("light client updates start at altair, got %v", fork)
	}
	if expected := forkAtSlot(ctx, u.GetAttestedHeader().Beacon.Slot); expected != fork {
		return decodeErrorf("update version %v, attested slot %d is in %v", fork, u.GetAttestedHeader().Beacon.Slot, expected)
	}
	if err := validateHeaderShape(fork, u.GetAttestedHeader()); err != nil {
		return errors.Wrap(err, "attested header")
	}
	finalized := u.GetFinalizedHeader()
	if err := validateHeaderShape(forkAtSlot(ctx, finalized.Beacon.Slot), finalized); err != nil {
		return errors.Wrap(err, "finalized header")
	}
	if depth := merkle.FloorLog2(config.FinalizedRootGindex(fork)); len(u.GetFinalityBranch()) != depth {
		return decodeErrorf("finality branch length %d, expected %d", len(u.GetFinalityBranch()), depth)
	}
	if committee := u.GetNextSyncCommittee(); committee != nil {
		if err := validateCommitteeShape(ctx, committee); err != nil {
			return errors.Wrap(err, "next sync committee")
		}
		if depth := merkle.FloorLog2(config.NextSyncCommitteeGindex(fork)); len(u.GetNextSyncCommitteeBranch()) != depth {
			return decodeErrorf("next sync committee branch length %d, expected %d", len(u.GetNextSyncCommitteeBranch()), depth)
		}
	} else if len(u.GetNextSyncCommitteeBranch()) != 0 {
		return decodeErrorf("next sync committee branch without committee")
	}
	if bits := uint64(len(u.GetSyncAggregate().SyncCommitteeBits)); bits*8 != ctx.SyncCommitteeSize {
		return decodeErrorf("sync committee bits length %d, expected %d", bits, ctx.SyncCommitteeSize/8)
	}
	return nil
}

// ValidateShape checks the bootstrap's fork, header shape, committee size and
// branch depth.
func (b *LightClientBootstrap) ValidateShape(ctx *config.ChainContext) error {
	if b.Version < config.Altair {
		return decodeErrorf("light client bootstraps start at altair, got %v", b.Version)
	}
	if expected := forkAtSlot(ctx, b.Header.Beacon.Slot); expected != b.Version {
		return decodeErrorf("bootstrap version %v, header slot %d is in %v", b.Version, b.Header.Beacon.Slot, expected)
	}
	if err := validateHeaderShape(b.Version, &b.Header); err != nil {
		return err
	}
	if err := validateCommitteeShape(ctx, &b.CurrentSyncCommittee); err != nil {
		return errors.Wrap(err, "current sync committee")
	}
	if depth := merkle.FloorLog2(config.CurrentSyncCommitteeGindex(b.Version)); len(b.CurrentSyncCommitteeBranch) != depth {
		return decodeErrorf("current sync committee branch length %d, expected %d", len(b.CurrentSyncCommitteeBranch), depth)
	}
	return nil
}

func validateHeaderShape(fork config.Fork, h *LightClientHeader) error {
	if h.Beacon.IsEmpty() {
		return nil
	}
	if fork < config.Capella {
		if h.Execution != nil || len(h.ExecutionBranch) != 0 {
			return decodeErrorf("execution header before capella")
		}
		return nil
	}
	if h.Execution == nil {
		return decodeErrorf("missing execution header")
	}
	if depth := merkle.FloorLog2(config.EXECUTION_PAYLOAD_GINDEX); len(h.ExecutionBranch) != depth {
		return decodeErrorf("execution branch length %d, expected %d", len(h.ExecutionBranch), depth)
	}
	if len(h.Execution.ExtraData) > config.MAX_EXTRA_DATA_BYTES {
		return decodeErrorf("extra data length %d", len(h.Execution.ExtraData))
	}
	return nil
}

func validateCommitteeShape(ctx *config.ChainContext, c *SyncCommittee) error {
	if uint64(len(c.PubKeys)) != ctx.SyncCommitteeSize {
		return decodeErrorf("sync committee size %d, expected %d", len(c.PubKeys), ctx.SyncCommitteeSize)
	}
	return nil
}

// DecodeLightClientStore decodes a persisted store.
func DecodeLightClientStore(ctx *config.ChainContext, data []byte) (*LightClientStore, error) {
	var s LightClientStore
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, asDecodeError(err)
	}
	if err := validateCommitteeShape(ctx, &s.CurrentSyncCommittee); err != nil {
		return nil, err
	}
	if s.NextSyncCommittee != nil {
		if err := validateCommitteeShape(ctx, s.NextSyncCommittee); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
