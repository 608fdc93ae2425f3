package ethereum

import (
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/core"
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var frozenHeight = exported.NewHeight(0, 1)

// verifyMisbehaviour checks both updates against the stored committees and
// that they actually conflict.
func (c *LightClient) verifyMisbehaviour(cs *ClientState, lcs *types.LightClientStore, m *Misbehaviour, now time.Time) error {
	if err := c.verifyUpdate(cs, lcs, m.UpdateA, now); err != nil {
		return errors.Wrap(err, "update a")
	}
	if err := c.verifyUpdate(cs, lcs, m.UpdateB, now); err != nil {
		return errors.Wrap(err, "update b")
	}
	if !core.UpdatesConflict(cs.ChainContext, m.UpdateA, m.UpdateB) {
		return exported.ErrMisbehaviourNotFound
	}
	return nil
}

// CheckForMisbehaviour reports whether a verified message proves
// misbehaviour: a conflicting pair of updates, or a header contradicting the
// consensus state already stored at its height.
func (c *LightClient) CheckForMisbehaviour(msg exported.ClientMessage) bool {
	if msg == nil || msg.ValidateBasic() != nil {
		return false
	}
	cs, err := c.ClientState()
	if err != nil {
		return false
	}
	switch msg := msg.(type) {
	case *Misbehaviour:
		return core.UpdatesConflict(cs.ChainContext, msg.UpdateA, msg.UpdateB)
	case *Header:
		existing, err := c.ConsensusState(msg.Height())
		if err != nil {
			return false
		}
		finalized := msg.ConsensusUpdate.GetFinalizedHeader()
		return existing.conflicts(&ConsensusState{
			Slot:        finalized.Beacon.Slot,
			StateRoot:   finalized.Execution.StateRoot,
			StorageRoot: msg.AccountUpdate.StorageRoot,
			Timestamp:   finalized.Execution.Timestamp,
		})
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
