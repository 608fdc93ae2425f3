package tendermint

import (
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var frozenHeight = exported.NewHeight(0, 1)

// verifyMisbehaviour checks that enough of each header's trusted validators
// signed it and that the headers conflict.
func (c *LightClient) verifyMisbehaviour(cs *ClientState, m *Misbehaviour, now time.Time) error {
	if err := c.verifyMisbehaviourHeader(cs, m.HeaderA, now); err != nil {
		return errors.Wrap(err, "header a")
	}
	if err := c.verifyMisbehaviourHeader(cs, m.HeaderB, now); err != nil {
		return errors.Wrap(err, "header b")
	}
	if !m.evidence() {
		return exported.ErrMisbehaviourNotFound
	}
	return nil
}

func (c *LightClient) verifyMisbehaviourHeader(cs *ClientState, h *Header, now time.Time) error {
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
	if now.Sub(trusted.Timestamp) >= cs.TrustingPeriod {
		return errors.Wrapf(exported.ErrInvalidClientMessage, "consensus state at trusted height %v is outside the trusting period", h.TrustedHeight)
	}
	if err := h.TrustedValidators.VerifyCommitLightTrusting(cs.ChainID, h.SignedHeader.Commit, cs.TrustLevel); err != nil {
		return errors.Wrapf(exported.ErrInvalidClientMessage, "trusted validators did not sign header at %v: %v", h.Height(), err)
	}
	return nil
}

// CheckForMisbehaviour reports whether a verified message proves
// misbehaviour. Headers do so when they contradict the consensus state at
// their height or break time monotonicity with their stored neighbours.
func (c *LightClient) CheckForMisbehaviour(msg exported.ClientMessage) bool {
	switch msg := msg.(type) {
	case *Misbehaviour:
		return msg.evidence()
	case *Header:
		return c.headerMisbehaves(msg)
	}
	return false
}

func (c *LightClient) headerMisbehaves(h *Header) bool {
	height := h.Height()
	consensusState := h.ConsensusState()
	if existing, err := c.ConsensusState(height); err == nil {
		return existing.conflicts(consensusState)
	}
	prev, next, err := store.Neighbours(c.kv, height)
	if err != nil {
		return false
	}
	if !prev.IsZero() {
		if before, err := c.ConsensusState(prev); err == nil && !before.Timestamp.Before(consensusState.Timestamp) {
			return true
		}
	}
	if !next.IsZero() {
		if after, err := c.ConsensusState(next); err == nil && !after.Timestamp.After(consensusState.Timestamp) {
			return true
		}
	}
	return false
}

// UpdateStateOnMisbehaviour freezes the client.
func (c *LightClient) UpdateStateOnMisbehaviour(msg exported.ClientMessage) error {
	cs, err := c.ClientState()
	if err != nil {
		return err
	}
	cs.FrozenHeight = frozenHeight
	if err := c.setClientState(cs); err != nil {
		return err
	}
	misbehaviourDetected.Inc()
	log.WithFields(logrus.Fields{
		"chainID": cs.ChainID,
		"type":    messageType(msg),
	}).Info("Froze client after misbehaviour")
	return nil
}
