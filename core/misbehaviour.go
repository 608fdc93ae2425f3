package core

import (
	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/types"
)

// UpdatesConflict reports whether two updates, each valid on its own,
// together prove that the sync committee signed contradicting statements:
// two different headers finalized at the same slot, or two different next
// committees for the same attested period. Genesis slot finalized headers
// prove nothing and never conflict.
func UpdatesConflict(ctx *config.ChainContext, a, b types.ConsensusUpdate) bool {
	fa, fb := a.GetFinalizedHeader(), b.GetFinalizedHeader()
	if fa.Beacon.Slot == config.GENESIS_SLOT || fb.Beacon.Slot == config.GENESIS_SLOT {
		return false
	}
	if fa.Beacon.Slot == fb.Beacon.Slot && !sameHeader(ctx, fa, fb) {
		return true
	}
	na, nb := a.GetNextSyncCommittee(), b.GetNextSyncCommittee()
	if na == nil || nb == nil {
		return false
	}
	pa := ComputeSyncCommitteePeriodAtSlot(ctx, a.GetAttestedHeader().Beacon.Slot)
	pb := ComputeSyncCommitteePeriodAtSlot(ctx, b.GetAttestedHeader().Beacon.Slot)
	return pa == pb && !na.Equal(nb)
}

func sameHeader(ctx *config.ChainContext, a, b *types.LightClientHeader) bool {
	if a.Beacon.Root() != b.Beacon.Root() {
		return false
	}
	if a.Execution == nil || b.Execution == nil {
		return a.Execution == b.Execution
	}
	fork := ComputeForkAtSlot(ctx, a.Beacon.Slot)
	ra, errA := a.Execution.HashTreeRoot(fork)
	rb, errB := b.Execution.HashTreeRoot(fork)
	return errA == nil && errB == nil && ra == rb
}
