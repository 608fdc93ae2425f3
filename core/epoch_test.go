package core_test

import (
	"testing"
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/core"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriods(t *testing.T) {
	minimal, mainnet := config.Minimal(), config.Mainnet()
	tests := []struct {
		ctx    *config.ChainContext
		slot   types.Slot
		epoch  types.Epoch
		period uint64
	}{
		{minimal, 0, 0, 0},
		{minimal, 63, 7, 0},
		{minimal, 64, 8, 1},
		{minimal, 130, 16, 2},
		{mainnet, 8191, 255, 0},
		{mainnet, 8192, 256, 1},
		{mainnet, 9_000_000, 281_250, 1098},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.epoch, core.ComputeEpochAtSlot(tt.ctx, tt.slot), "slot %d", tt.slot)
		assert.Equal(t, tt.period, core.ComputeSyncCommitteePeriodAtSlot(tt.ctx, tt.slot), "slot %d", tt.slot)
		assert.Equal(t, tt.period, core.ComputeSyncCommitteePeriod(tt.ctx, tt.epoch), "epoch %d", tt.epoch)
	}
	require.Equal(t, types.Slot(64), core.ComputeStartSlotAtEpoch(minimal, 8))
}

func TestForkAtSlot(t *testing.T) {
	mainnet := config.Mainnet()
	require.Equal(t, config.Phase0, core.ComputeForkAtSlot(mainnet, 0))
	require.Equal(t, config.Altair, core.ComputeForkAtSlot(mainnet, 74240*32))
	require.Equal(t, config.Bellatrix, core.ComputeForkAtSlot(mainnet, 144896*32))
	require.Equal(t, config.Capella, core.ComputeForkAtSlot(mainnet, 194048*32))
	require.Equal(t, config.Deneb, core.ComputeForkAtSlot(mainnet, 269568*32))
	require.Equal(t, config.Deneb, core.ComputeForkAtSlot(mainnet, 364032*32-1))
	require.Equal(t, config.Electra, core.ComputeForkAtSlot(mainnet, 364032*32))
	require.Equal(t, config.Deneb, core.ComputeForkAtSlot(config.Minimal(), 1_000_000))
}

func TestCurrentSlot(t *testing.T) {
	ctx := config.Minimal()
	genesis := time.Unix(int64(ctx.GenesisTime), 0)
	require.Equal(t, types.Slot(0), core.CurrentSlot(ctx, genesis.Add(-time.Hour)))
	require.Equal(t, types.Slot(0), core.CurrentSlot(ctx, genesis))
	require.Equal(t, types.Slot(0), core.CurrentSlot(ctx, genesis.Add(5*time.Second)))
	require.Equal(t, types.Slot(10), core.CurrentSlot(ctx, genesis.Add(time.Minute)))
	require.Equal(t, ctx.GenesisTime+60, core.SlotTimestamp(ctx, 10))
}

func TestSyncCommitteeDomain(t *testing.T) {
	ctx := config.Mainnet()
	gvr := common.Hash{1}
	// the signature slot's parent picks the fork version
	altairStart := types.Slot(74240 * 32)
	pre, err := core.SyncCommitteeDomain(ctx, altairStart, gvr)
	require.NoError(t, err)
	post, err := core.SyncCommitteeDomain(ctx, altairStart+1, gvr)
	require.NoError(t, err)
	require.NotEqual(t, pre, post)
	require.Equal(t, byte(0x07), pre[0])

	zero, err := core.SyncCommitteeDomain(ctx, 0, gvr)
	require.NoError(t, err)
	one, err := core.SyncCommitteeDomain(ctx, 1, gvr)
	require.NoError(t, err)
	require.Equal(t, zero, one)
}
