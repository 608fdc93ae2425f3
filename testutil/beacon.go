// Package testutil builds deterministic fixtures for light client tests:
// BLS sync committees, signed updates with real Merkle branches, Merkle
// Patricia proofs, ICS-23 trees and CometBFT commits.
package testutil

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/core"
	"github.com/MariusVanDerWijden/ibc-lc/crypto/bls"
	"github.com/MariusVanDerWijden/ibc-lc/merkle"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

// Committee is a sync committee together with its secret keys.
type Committee struct {
	Keys          []*bls.SecretKey
	SyncCommittee *types.SyncCommittee
}

// NewCommittee derives size keys from seed.
func NewCommittee(t testing.TB, size int, seed byte) *Committee {
	c := &Committee{SyncCommittee: &types.SyncCommittee{PubKeys: make([]types.BLSPubKey, size)}}
	pubs := make([]*bls.PublicKey, size)
	for i := 0; i < size; i++ {
		var buf [3]byte
		buf[0] = seed
		binary.BigEndian.PutUint16(buf[1:], uint16(i))
		ikm := sha256.Sum256(buf[:])
		sk, err := bls.SecretKeyFromSeed(ikm[:])
		require.NoError(t, err)
		c.Keys = append(c.Keys, sk)
		pubs[i] = sk.PublicKey()
		copy(c.SyncCommittee.PubKeys[i][:], pubs[i].Marshal())
	}
	agg, err := bls.Aggregate(pubs)
	require.NoError(t, err)
	copy(c.SyncCommittee.AggregatePublicKey[:], agg.Marshal())
	return c
}

// Chain signs updates for one beacon chain.
type Chain struct {
	Ctx                   *config.ChainContext
	GenesisValidatorsRoot common.Hash
}

func NewChain(ctx *config.ChainContext) *Chain {
	return &Chain{Ctx: ctx, GenesisValidatorsRoot: common.HexToHash("0x4b363db94e286120d76eb905340fdd4e54bfe9f06bf33ff6cf5ad27f511bfe95")}
}

// Execution describes the execution payload of a header.
type Execution struct {
	BlockNumber uint64
	StateRoot   common.Hash
	Timestamp   uint64
}

func (e Execution) payload() *types.ExecutionPayloadHeader {
	return &types.ExecutionPayloadHeader{
		ParentHash:    common.Hash(uint256.NewInt(e.BlockNumber).Bytes32()),
		StateRoot:     e.StateRoot,
		BlockNumber:   e.BlockNumber,
		GasLimit:      30000000,
		Timestamp:     e.Timestamp,
		BaseFeePerGas: uint256.NewInt(7),
		BlockHash:     common.BytesToHash(sha256Bytes("block", e.BlockNumber, e.StateRoot[:])),
	}
}

func sha256Bytes(tag string, n uint64, extra []byte) []byte {
	h := sha256.New()
	h.Write([]byte(tag))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	h.Write(buf[:])
	h.Write(extra)
	return h.Sum(nil)
}

// Header builds a light client header at slot whose state root is
// stateRoot. From Capella on it carries the execution payload and its body
// branch.
func (c *Chain) Header(t testing.TB, slot types.Slot, stateRoot common.Hash, exec Execution) types.LightClientHeader {
	header := types.LightClientHeader{
		Beacon: types.BeaconBlockHeader{
			Slot:          slot,
			ProposerIndex: uint64(slot) % 64,
			ParentRoot:    common.BytesToHash(sha256Bytes("parent", uint64(slot), nil)),
			StateRoot:     stateRoot,
		},
	}
	fork := core.ComputeForkAtSlot(c.Ctx, slot)
	body := merkle.NewTree().Set(8, common.BytesToHash(sha256Bytes("randao", uint64(slot), nil)))
	if fork >= config.Capella {
		header.Execution = exec.payload()
		root, err := header.Execution.HashTreeRoot(fork)
		require.NoError(t, err)
		body.Set(config.EXECUTION_PAYLOAD_GINDEX, root)
		header.ExecutionBranch = body.Branch(config.EXECUTION_PAYLOAD_GINDEX)
	}
	header.Beacon.BodyRoot = body.Root()
	return header
}

// UpdateParams describes an update to build. Signers sign with their first
// Participants keys.
type UpdateParams struct {
	AttestedSlot      types.Slot
	FinalizedSlot     types.Slot
	SignatureSlot     types.Slot
	Finalized         Execution
	NextSyncCommittee *types.SyncCommittee
	Signers           *Committee
	Participants      int
}

// Update builds an update whose branches verify and whose aggregate
// signature is produced by the requested signers.
func (c *Chain) Update(t testing.TB, p UpdateParams) *types.LightClientUpdate {
	fork := core.ComputeForkAtSlot(c.Ctx, p.AttestedSlot)
	finalizedState := common.BytesToHash(sha256Bytes("state", uint64(p.FinalizedSlot), nil))
	finalized := c.Header(t, p.FinalizedSlot, finalizedState, p.Finalized)

	state := merkle.NewTree()
	finalizedGindex := config.FinalizedRootGindex(fork)
	state.Set(finalizedGindex, finalized.Beacon.Root())
	// the finalized checkpoint epoch sits left of the root
	state.Set(finalizedGindex-1, common.BytesToHash(sha256Bytes("epoch", uint64(p.FinalizedSlot), nil)))
	nextGindex := config.NextSyncCommitteeGindex(fork)
	if p.NextSyncCommittee != nil {
		root, err := p.NextSyncCommittee.HashTreeRoot()
		require.NoError(t, err)
		state.Set(nextGindex, root)
	}
	attestedExec := p.Finalized
	attestedExec.BlockNumber += uint64(p.AttestedSlot - p.FinalizedSlot)
	attestedExec.StateRoot = common.BytesToHash(sha256Bytes("exec", attestedExec.BlockNumber, nil))
	attested := c.Header(t, p.AttestedSlot, state.Root(), attestedExec)

	update := &types.LightClientUpdate{
		Version:         fork,
		AttestedHeader:  attested,
		FinalizedHeader: finalized,
		FinalityBranch:  state.Branch(finalizedGindex),
		SignatureSlot:   p.SignatureSlot,
	}
	if p.NextSyncCommittee != nil {
		update.NextSyncCommittee = p.NextSyncCommittee.Copy()
		update.NextSyncCommitteeBranch = state.Branch(nextGindex)
	}
	update.SyncAggregate = c.Sign(t, p.Signers, p.Participants, attested.Beacon.Root(), p.SignatureSlot)
	return update
}

// FinalityUpdate drops the next sync committee of u.
func FinalityUpdate(u *types.LightClientUpdate) *types.LightClientFinalityUpdate {
	return &types.LightClientFinalityUpdate{
		Version:         u.Version,
		AttestedHeader:  u.AttestedHeader,
		FinalizedHeader: u.FinalizedHeader,
		FinalityBranch:  u.FinalityBranch,
		SyncAggregate:   u.SyncAggregate,
		SignatureSlot:   u.SignatureSlot,
	}
}

// Sign lets the first n members of signers sign root at signatureSlot.
func (c *Chain) Sign(t testing.TB, signers *Committee, n int, root common.Hash, signatureSlot types.Slot) types.SyncAggregate {
	agg := types.SyncAggregate{SyncCommitteeBits: make([]byte, c.Ctx.SyncCommitteeSize/8)}
	if n == 0 || signers == nil {
		return agg
	}
	domain, err := core.SyncCommitteeDomain(c.Ctx, signatureSlot, c.GenesisValidatorsRoot)
	require.NoError(t, err)
	signingRoot, err := core.ComputeSigningRoot(root, domain)
	require.NoError(t, err)
	sigs := make([]*bls.Signature, n)
	for i := 0; i < n; i++ {
		agg.SyncCommitteeBits[i/8] |= 1 << (i % 8)
		sigs[i] = signers.Keys[i].Sign(signingRoot[:])
	}
	sig, err := bls.AggregateSignatures(sigs)
	require.NoError(t, err)
	copy(agg.SyncCommitteeSignature[:], sig.Marshal())
	return agg
}

// Bootstrap returns a bootstrap at slot for committee and the trusted block
// root it matches.
func (c *Chain) Bootstrap(t testing.TB, slot types.Slot, committee *types.SyncCommittee, exec Execution) (*types.LightClientBootstrap, common.Hash) {
	fork := core.ComputeForkAtSlot(c.Ctx, slot)
	root, err := committee.HashTreeRoot()
	require.NoError(t, err)
	gindex := config.CurrentSyncCommitteeGindex(fork)
	state := merkle.NewTree().Set(gindex, root)
	header := c.Header(t, slot, state.Root(), exec)
	return &types.LightClientBootstrap{
		Version:                    fork,
		Header:                     header,
		CurrentSyncCommittee:       *committee.Copy(),
		CurrentSyncCommitteeBranch: state.Branch(gindex),
	}, header.Beacon.Root()
}
