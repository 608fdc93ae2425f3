// Package ethereum is an IBC light client for Ethereum. It follows the
// beacon chain through sync committee updates and proves IBC commitments
// against the storage of the IBC contract.
package ethereum

import (
	"encoding/json"
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/core"
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/store"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "ethereum")

// LightClient operates on the records of one client in kv. Calls against
// the same client must not run concurrently.
type LightClient struct {
	kv    store.KVStore
	clock func() time.Time
}

type Option func(*LightClient)

// WithClock sets the host clock used by membership queries.
func WithClock(clock func() time.Time) Option {
	return func(c *LightClient) { c.clock = clock }
}

func NewLightClient(kv store.KVStore, opts ...Option) *LightClient {
	c := &LightClient{kv: kv, clock: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize creates the client from a JSON encoded bootstrap matching
// trustedBlockRoot. The consensus state must describe the bootstrap's
// execution block.
func (c *LightClient) Initialize(clientState *ClientState, consensusState *ConsensusState, encodedBootstrap []byte, trustedBlockRoot common.Hash) error {
	if has, err := c.kv.Has(store.ClientStateKey()); err != nil {
		return err
	} else if has {
		return exported.ErrClientAlreadyInitialized
	}
	if err := clientState.Validate(); err != nil {
		return err
	}
	if err := consensusState.Validate(); err != nil {
		return err
	}
	ctx := clientState.ChainContext
	bootstrap, err := types.DecodeLightClientBootstrap(ctx, encodedBootstrap)
	if err != nil {
		return errors.Wrap(err, "bootstrap")
	}
	lcs, err := core.InitializeStore(ctx, trustedBlockRoot, bootstrap)
	if err != nil {
		return errors.Wrap(err, "invalid bootstrap")
	}
	exec := bootstrap.Header.Execution
	if exec == nil {
		return errors.Wrap(exported.ErrInvalidConsensusState, "bootstrap without execution payload")
	}
	switch {
	case consensusState.Slot != bootstrap.Header.Beacon.Slot:
		return errors.Wrapf(exported.ErrInvalidConsensusState, "slot %d, bootstrap at %d", consensusState.Slot, bootstrap.Header.Beacon.Slot)
	case consensusState.StateRoot != exec.StateRoot:
		return errors.Wrap(exported.ErrInvalidConsensusState, "state root differs from bootstrap")
	case consensusState.Timestamp != exec.Timestamp:
		return errors.Wrap(exported.ErrInvalidConsensusState, "timestamp differs from bootstrap")
	case consensusState.CurrentSyncCommittee != lcs.CurrentSyncCommittee.AggregatePublicKey:
		return errors.Wrap(exported.ErrInvalidConsensusState, "current sync committee differs from bootstrap")
	}

	height := exported.NewHeight(0, exec.BlockNumber)
	clientState.LatestHeight = height
	clientState.LatestSlot = bootstrap.Header.Beacon.Slot
	clientState.FrozenHeight = exported.Height{}
	if err := c.setLightClientStore(lcs); err != nil {
		return err
	}
	if err := c.setConsensusState(height, consensusState); err != nil {
		return err
	}
	if err := c.setClientState(clientState); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"chainID": clientState.ChainID,
		"height":  height,
		"slot":    clientState.LatestSlot,
	}).Info("Initialized client")
	return nil
}

// Status is Frozen after misbehaviour and Expired once the latest consensus
// state is older than the trusting period.
func (c *LightClient) Status(now time.Time) exported.Status {
	cs, err := c.ClientState()
	if err != nil {
		return exported.Unknown
	}
	if cs.IsFrozen() {
		return exported.Frozen
	}
	latest, err := c.ConsensusState(cs.LatestHeight)
	if err != nil {
		return exported.Unknown
	}
	if isExpired(latest, cs.TrustingPeriod, now) {
		return exported.Expired
	}
	return exported.Active
}

func isExpired(cs *ConsensusState, trustingPeriod time.Duration, now time.Time) bool {
	expiry := time.Unix(int64(cs.Timestamp), 0).Add(trustingPeriod)
	return !expiry.After(now)
}

func (c *LightClient) LatestHeight() exported.Height {
	cs, err := c.ClientState()
	if err != nil {
		return exported.Height{}
	}
	return cs.LatestHeight
}

// TimestampAtHeight returns the execution timestamp at height in
// nanoseconds.
func (c *LightClient) TimestampAtHeight(height exported.Height) (uint64, error) {
	cs, err := c.ConsensusState(height)
	if err != nil {
		return 0, err
	}
	return uint64(time.Unix(int64(cs.Timestamp), 0).UnixNano()), nil
}

func (c *LightClient) ClientState() (*ClientState, error) {
	data, err := c.kv.Get(store.ClientStateKey())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, exported.ErrClientNotInitialized
		}
		return nil, err
	}
	var cs ClientState
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, errors.Wrap(err, "could not decode client state")
	}
	return &cs, nil
}

func (c *LightClient) ConsensusState(height exported.Height) (*ConsensusState, error) {
	data, err := c.kv.Get(store.ConsensusStateKey(height))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrapf(exported.ErrConsensusStateNotFound, "height %v", height)
		}
		return nil, err
	}
	var cs ConsensusState
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, errors.Wrap(err, "could not decode consensus state")
	}
	return &cs, nil
}

func (c *LightClient) lightClientStore(cs *ClientState) (*types.LightClientStore, error) {
	data, err := c.kv.Get(store.LightClientStoreKey())
	if err != nil {
		return nil, err
	}
	return types.DecodeLightClientStore(cs.ChainContext, data)
}

func (c *LightClient) setClientState(cs *ClientState) error {
	return c.setJSON(store.ClientStateKey(), cs)
}

func (c *LightClient) setConsensusState(height exported.Height, cs *ConsensusState) error {
	return c.setJSON(store.ConsensusStateKey(height), cs)
}

func (c *LightClient) setLightClientStore(lcs *types.LightClientStore) error {
	return c.setJSON(store.LightClientStoreKey(), lcs)
}

func (c *LightClient) setJSON(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.kv.Set(key, data)
}

// activeClientState loads the client state and fails unless the client is
// Active at now.
func (c *LightClient) activeClientState(now time.Time) (*ClientState, error) {
	cs, err := c.ClientState()
	if err != nil {
		return nil, err
	}
	if err := exported.StatusError(c.Status(now)); err != nil {
		return nil, err
	}
	return cs, nil
}
