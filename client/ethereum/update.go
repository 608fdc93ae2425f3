package ethereum

import (
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/core"
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/store"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// VerifyClientMessage verifies a Header or Misbehaviour against the stored
// sync committees. The client must be Active at now.
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
	lcs, err := c.lightClientStore(cs)
	if err != nil {
		return err
	}
	switch msg := msg.(type) {
	case *Header:
		return c.verifyHeader(cs, lcs, msg, now)
	case *Misbehaviour:
		return c.verifyMisbehaviour(cs, lcs, msg, now)
	}
	return errors.Wrapf(exported.ErrInvalidClientMessage, "unexpected message %T", msg)
}

func (c *LightClient) verifyUpdate(cs *ClientState, lcs *types.LightClientStore, update types.ConsensusUpdate, now time.Time) error {
	currentSlot := core.CurrentSlot(cs.ChainContext, now.Add(cs.MaxClockDrift))
	return core.VerifyUpdate(cs.ChainContext, lcs, update, currentSlot, cs.GenesisValidatorsRoot)
}

func (c *LightClient) verifyHeader(cs *ClientState, lcs *types.LightClientStore, h *Header, now time.Time) error {
	if err := c.verifyUpdate(cs, lcs, h.ConsensusUpdate, now); err != nil {
		return err
	}
	stateRoot := h.ConsensusUpdate.GetFinalizedHeader().Execution.StateRoot
	if err := core.VerifyAccountStorageRoot(stateRoot, cs.IBCAddress, h.AccountUpdate.StorageRoot, h.AccountUpdate.proof()); err != nil {
		return errors.Wrap(err, "account update")
	}
	return nil
}

// UpdateState applies a verified header and stores the consensus state of
// its finalized execution block. It returns the heights written, none when
// the header was already applied.
func (c *LightClient) UpdateState(msg exported.ClientMessage, now time.Time) ([]exported.Height, error) {
	h, ok := msg.(*Header)
	if !ok {
		return nil, errors.Wrapf(exported.ErrInvalidClientMessage, "cannot update state with %T", msg)
	}
	if err := h.ValidateBasic(); err != nil {
		return nil, err
	}
	cs, err := c.activeClientState(now)
	if err != nil {
		return nil, err
	}
	ctx := cs.ChainContext
	if err := core.ValidateBasic(ctx, h.ConsensusUpdate, core.CurrentSlot(ctx, now.Add(cs.MaxClockDrift))); err != nil {
		return nil, err
	}
	lcs, err := c.lightClientStore(cs)
	if err != nil {
		return nil, err
	}
	before := lcs.GetCurrentSyncCommittee().AggregatePublicKey
	updated, err := core.ApplySyncCommitteeUpdate(ctx, lcs, h.ConsensusUpdate)
	if err != nil {
		return nil, err
	}

	height := h.Height()
	has, err := c.kv.Has(store.ConsensusStateKey(height))
	if err != nil {
		return nil, err
	}
	if !updated && has {
		log.WithField("height", height).Debug("Header did not change the client")
		return []exported.Height{}, nil
	}

	finalized := h.ConsensusUpdate.GetFinalizedHeader()
	consensusState := &ConsensusState{
		Slot:                 finalized.Beacon.Slot,
		StateRoot:            finalized.Execution.StateRoot,
		StorageRoot:          h.AccountUpdate.StorageRoot,
		Timestamp:            finalized.Execution.Timestamp,
		CurrentSyncCommittee: lcs.GetCurrentSyncCommittee().AggregatePublicKey,
	}
	if next := lcs.GetNextSyncCommittee(); next != nil {
		consensusState.NextSyncCommittee = next.AggregatePublicKey
	}
	if err := c.setLightClientStore(lcs); err != nil {
		return nil, err
	}
	if err := c.setConsensusState(height, consensusState); err != nil {
		return nil, err
	}
	if height.GT(cs.LatestHeight) {
		cs.LatestHeight = height
		cs.LatestSlot = finalized.Beacon.Slot
		if err := c.setClientState(cs); err != nil {
			return nil, err
		}
	}

	updatesApplied.Inc()
	fields := logrus.Fields{
		"height":          height,
		"finalizedSlot":   finalized.Beacon.Slot,
		"finalizedPeriod": core.ComputeSyncCommitteePeriodAtSlot(ctx, lcs.CurrentSlot()),
	}
	if lcs.GetCurrentSyncCommittee().AggregatePublicKey != before {
		committeeRotations.Inc()
		log.WithFields(fields).Info("Rotated sync committee")
	}
	log.WithFields(fields).Info("Updated client")
	return []exported.Height{height}, nil
}
