package tendermint

import (
	"bytes"
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tendermint/tendermint/light"
	tmtypes "github.com/tendermint/tendermint/types"
)

// VerifyClientMessage verifies a Header or Misbehaviour against the
// consensus states it trusts. The client must be Active at now.
func (c *LightClient) VerifyClientMessage(msg exported.ClientMessage, now time.Time) error {
	err := c.verifyClientMessage(msg, now)
	if err != nil {
		messagesRejected.WithLabelValues(messageType(msg)).Inc()
		log.WithError(err).WithField("type", messageType(msg)).Warn("Rejected client message")
	}
	return err
}

func messageType(msg exported.ClientMessage) string {
	switch msg.(type) {
	case *Header:
		return "header"
	case *Misbehaviour:
		return "misbehaviour"
	}
	return "unknown"
}

func (c *LightClient) verifyClientMessage(msg exported.ClientMessage, now time.Time) error {
	cs, err := c.activeClientState(now)
	if err != nil {
		return err
	}
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	switch msg := msg.(type) {
	case *Header:
		return c.verifyHeader(cs, msg, now)
	case *Misbehaviour:
		return c.verifyMisbehaviour(cs, msg, now)
	}
	return errors.Wrapf(exported.ErrInvalidClientMessage, "unexpected message %T", msg)
}

// checkTrustedValidators ties the header's trusted validators to the
// consensus state at its trusted height.
func checkTrustedValidators(h *Header, trusted *ConsensusState) error {
	if hash := h.TrustedValidators.Hash(); !bytes.Equal(hash, trusted.NextValidatorsHash) {
		return errors.Wrapf(exported.ErrInvalidClientMessage, "trusted validators hash %X, consensus state at %v expects %X", hash, h.TrustedHeight, trusted.NextValidatorsHash)
	}
	return nil
}

func (c *LightClient) verifyHeader(cs *ClientState, h *Header, now time.Time) error {
	if h.SignedHeader.ChainID != cs.ChainID {
		return errors.Wrapf(exported.ErrInvalidClientMessage, "header for chain %q, client tracks %q", h.SignedHeader.ChainID, cs.ChainID)
	}
	trusted, err := c.ConsensusState(h.TrustedHeight)
	if err != nil {
		return errors.Wrap(err, "trusted height")
	}
	if err := checkTrustedValidators(h, trusted); err != nil {
		return err
	}
	// Only the fields light.Verify reads from the trusted header are set.
	trustedHeader := &tmtypes.SignedHeader{
		Header: &tmtypes.Header{
			ChainID:            cs.ChainID,
			Height:             int64(h.TrustedHeight.RevisionHeight),
			Time:               trusted.Timestamp,
			NextValidatorsHash: trusted.NextValidatorsHash,
		},
	}
	err = light.Verify(trustedHeader, h.TrustedValidators, h.SignedHeader, h.ValidatorSet,
		cs.TrustingPeriod, now, cs.MaxClockDrift, cs.TrustLevel)
	if err != nil {
		return errors.Wrapf(err, "header at %v from trusted height %v", h.Height(), h.TrustedHeight)
	}
	return nil
}

// UpdateState stores the consensus state of a verified header and prunes
// expired consensus states. It returns the heights written, none when the
// height was already stored.
func (c *LightClient) UpdateState(msg exported.ClientMessage, now time.Time) ([]exported.Height, error) {
	h, ok := msg.(*Header)
	if !ok {
		return nil, errors.Wrapf(exported.ErrInvalidClientMessage, "cannot update state with %T", msg)
	}
	cs, err := c.activeClientState(now)
	if err != nil {
		return nil, err
	}
	if err := c.pruneExpired(cs, now); err != nil {
		return nil, errors.Wrap(err, "could not prune consensus states")
	}

	height := h.Height()
	has, err := c.kv.Has(store.ConsensusStateKey(height))
	if err != nil {
		return nil, err
	}
	if has {
		log.WithField("height", height).Debug("Header already applied")
		return []exported.Height{}, nil
	}
	if err := c.setConsensusState(height, h.ConsensusState()); err != nil {
		return nil, err
	}
	if height.GT(cs.LatestHeight) {
		cs.LatestHeight = height
		if err := c.setClientState(cs); err != nil {
			return nil, err
		}
	}

	updatesApplied.Inc()
	log.WithFields(logrus.Fields{
		"height":        height,
		"trustedHeight": h.TrustedHeight,
		"time":          h.Time(),
	}).Info("Updated client")
	return []exported.Height{height}, nil
}

// pruneExpired deletes the consensus states that expired at now, oldest
// first. The state at the latest height is kept.
func (c *LightClient) pruneExpired(cs *ClientState, now time.Time) error {
	var (
		expired []exported.Height
		iterErr error
	)
	err := c.kv.Iterate(store.ConsensusStatePrefix(), func(key, value []byte) bool {
		height, err := store.HeightFromConsensusStateKey(key)
		if err != nil {
			iterErr = err
			return false
		}
		if !height.LT(cs.LatestHeight) {
			return false
		}
		consensusState, err := decodeConsensusState(value)
		if err != nil {
			iterErr = err
			return false
		}
		if !isExpired(consensusState, cs.TrustingPeriod, now) {
			return false
		}
		expired = append(expired, height)
		return true
	})
	if err == nil {
		err = iterErr
	}
	if err != nil {
		return err
	}
	for _, height := range expired {
		if err := c.kv.Delete(store.ConsensusStateKey(height)); err != nil {
			return err
		}
	}
	if len(expired) > 0 {
		consensusStatesPruned.Add(float64(len(expired)))
		log.WithFields(logrus.Fields{
			"count":  len(expired),
			"oldest": expired[0],
			"newest": expired[len(expired)-1],
		}).Debug("Pruned expired consensus states")
	}
	return nil
}
