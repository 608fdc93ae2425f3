// Package tendermint is an IBC light client for CometBFT chains. Headers
// are verified with the tendermint light client rules against a trusted
// consensus state and IBC state is proven with ICS-23 proofs against the
// app hash.
package tendermint

import (
	"encoding/json"
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "tendermint")

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

// Initialize creates the client with a consensus state trusted at the
// client state's latest height.
func (c *LightClient) Initialize(clientState *ClientState, consensusState *ConsensusState) error {
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
	clientState.FrozenHeight = exported.Height{}
	if err := c.setConsensusState(clientState.LatestHeight, consensusState); err != nil {
		return err
	}
	if err := c.setClientState(clientState); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"chainID": clientState.ChainID,
		"height":  clientState.LatestHeight,
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
		return exported.Expired
	}
	if isExpired(latest, cs.TrustingPeriod, now) {
		return exported.Expired
	}
	return exported.Active
}

func isExpired(cs *ConsensusState, trustingPeriod time.Duration, now time.Time) bool {
	return !cs.Timestamp.Add(trustingPeriod).After(now)
}

func (c *LightClient) LatestHeight() exported.Height {
	cs, err := c.ClientState()
	if err != nil {
		return exported.Height{}
	}
	return cs.LatestHeight
}

// TimestampAtHeight returns the block time at height in nanoseconds.
func (c *LightClient) TimestampAtHeight(height exported.Height) (uint64, error) {
	cs, err := c.ConsensusState(height)
	if err != nil {
		return 0, err
	}
	return uint64(cs.Timestamp.UnixNano()), nil
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
	return decodeConsensusState(data)
}

func decodeConsensusState(data []byte) (*ConsensusState, error) {
	var cs ConsensusState
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, errors.Wrap(err, "could not decode consensus state")
	}
	return &cs, nil
}

func (c *LightClient) setClientState(cs *ClientState) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return err
	}
	return c.kv.Set(store.ClientStateKey(), data)
}

func (c *LightClient) setConsensusState(height exported.Height, cs *ConsensusState) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return err
	}
	return c.kv.Set(store.ConsensusStateKey(height), data)
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
