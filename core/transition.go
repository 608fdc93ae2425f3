package core

import (
	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/merkle"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ApplySyncCommitteeUpdate folds a verified update into the store and
// reports whether anything changed.
//
// The finalized period of the update must be the store period or the one
// after it. While the next committee is unknown only the store period is
// accepted and the update's next committee is recorded. Once it is known,
// an update of the following period rotates it into the current slot.
func ApplySyncCommitteeUpdate(ctx *config.ChainContext, keeper SyncCommitteeKeeper, update types.ConsensusUpdate) (bool, error) {
	var (
		finalized    = update.GetFinalizedHeader()
		storePeriod  = ComputeSyncCommitteePeriodAtSlot(ctx, keeper.CurrentSlot())
		updatePeriod = ComputeSyncCommitteePeriodAtSlot(ctx, finalized.Beacon.Slot)
		next         = update.GetNextSyncCommittee()
		updated      bool
	)
	if updatePeriod != storePeriod && updatePeriod != storePeriod+1 {
		return false, ErrInvalidFinalizedPeriod{StorePeriod: storePeriod, UpdatePeriod: updatePeriod}
	}

	switch nextKnown := keeper.GetNextSyncCommittee() != nil; {
	case !nextKnown && updatePeriod == storePeriod:
		if next != nil {
			keeper.SetNextSyncCommittee(next)
			updated = true
		}
	case nextKnown && updatePeriod == storePeriod+1:
		keeper.SetCurrentSyncCommittee(keeper.GetNextSyncCommittee())
		keeper.SetNextSyncCommittee(next)
		updated = true
	case nextKnown && updatePeriod == storePeriod:
	default:
		return false, ErrCannotRotateNextSyncCommittee
	}

	if finalized.Beacon.Slot > keeper.CurrentSlot() {
		keeper.SetFinalizedHeader(finalized)
		updated = true
	}
	return updated, nil
}

// InitializeStore creates a store from a bootstrap whose header root is
// trustedBlockRoot.
func InitializeStore(ctx *config.ChainContext, trustedBlockRoot common.Hash, bootstrap *types.LightClientBootstrap) (*types.LightClientStore, error) {
	header := &bootstrap.Header
	if err := IsValidLightClientHeader(ctx, header); err != nil {
		return nil, err
	}
	if root := header.Beacon.Root(); root != trustedBlockRoot {
		return nil, errors.Wrapf(ErrBootstrapRootMismatch, "header root %v, trusted %v", root, trustedBlockRoot)
	}
	committee := &bootstrap.CurrentSyncCommittee
	if err := committee.Validate(); err != nil {
		return nil, errors.Wrap(err, "current sync committee")
	}
	root, err := committee.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	gindex := config.CurrentSyncCommitteeGindex(ComputeForkAtSlot(ctx, header.Beacon.Slot))
	if err := merkle.VerifyGindex(root, bootstrap.CurrentSyncCommitteeBranch, gindex, header.Beacon.StateRoot); err != nil {
		return nil, errors.Wrap(err, "current sync committee branch")
	}
	store := &types.LightClientStore{}
	store.SetFinalizedHeader(header)
	store.SetCurrentSyncCommittee(committee)
	return store, nil
}
