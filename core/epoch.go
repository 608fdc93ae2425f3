package core

import (
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/types"
)

func ComputeEpochAtSlot(ctx *config.ChainContext, slot types.Slot) types.Epoch {
	return types.Epoch(uint64(slot) / ctx.SlotsPerEpoch)
}

func ComputeStartSlotAtEpoch(ctx *config.ChainContext, epoch types.Epoch) types.Slot {
	return types.Slot(uint64(epoch) * ctx.SlotsPerEpoch)
}

// ComputeSyncCommitteePeriod returns the sync committee period of an epoch.
func ComputeSyncCommitteePeriod(ctx *config.ChainContext, epoch types.Epoch) uint64 {
	return uint64(epoch) / ctx.EpochsPerSyncCommitteePeriod
}

func ComputeSyncCommitteePeriodAtSlot(ctx *config.ChainContext, slot types.Slot) uint64 {
	return uint64(slot) / ctx.SlotsPerPeriod()
}

// ComputeForkAtSlot returns the fork active at the epoch of slot.
func ComputeForkAtSlot(ctx *config.ChainContext, slot types.Slot) config.Fork {
	return ctx.ForkAtEpoch(uint64(ComputeEpochAtSlot(ctx, slot))).Fork
}

// CurrentSlot is the wall clock slot at now. Times before genesis map to the
// genesis slot.
func CurrentSlot(ctx *config.ChainContext, now time.Time) types.Slot {
	unix := now.Unix()
	if unix < 0 || uint64(unix) < ctx.GenesisTime {
		return config.GENESIS_SLOT
	}
	return types.Slot(config.GENESIS_SLOT + (uint64(unix)-ctx.GenesisTime)/ctx.SecondsPerSlot)
}

// SlotTimestamp is the unix time at which slot starts.
func SlotTimestamp(ctx *config.ChainContext, slot types.Slot) uint64 {
	return ctx.GenesisTime + uint64(slot)*ctx.SecondsPerSlot
}
