package core_test

import (
	"testing"

	"github.com/MariusVanDerWijden/ibc-lc/core"
	"github.com/MariusVanDerWijden/ibc-lc/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var (
	ibcAddress     = common.HexToAddress("0xff77d90d6aa12db33d3ba50a34fb25401f6e4c4f")
	commitmentSlot = common.Hash{}
)

func TestCommitmentKey(t *testing.T) {
	path := []byte("commitments/ports/transfer/channels/channel-0/sequences/1")
	key := core.CommitmentKey(path, commitmentSlot)
	require.Equal(t, crypto.Keccak256Hash(crypto.Keccak256(path), make([]byte, 32)), key)
	require.NotEqual(t, key, core.CommitmentKey(path, common.BigToHash(common.Big1)))
	require.Equal(t, crypto.Keccak256Hash([]byte("packet")), core.CommitmentValue([]byte("packet")))
}

func TestStorageProofs(t *testing.T) {
	storage := testutil.NewTrie(t)
	present := core.CommitmentKey([]byte("clients/07-tendermint-0/clientState"), commitmentSlot)
	value := core.CommitmentValue([]byte("client state"))
	storage.SetStorage(t, present, value[:])
	for i := byte(0); i < 16; i++ {
		storage.SetStorage(t, common.Hash{i}, []byte{i + 1})
	}
	absent := core.CommitmentKey([]byte("clients/07-tendermint-1/clientState"), commitmentSlot)
	root := storage.Root()

	proof := storage.Prove(t, present[:])
	require.NoError(t, core.VerifyStorageProof(root, present, value[:], proof))

	var mismatch core.ErrStorageValueMismatch
	require.ErrorAs(t, core.VerifyStorageProof(root, present, []byte{1}, proof), &mismatch)
	require.Error(t, core.VerifyStorageProof(root, present, nil, proof))
	require.Error(t, core.VerifyStorageProof(root, present, make([]byte, 33), proof))
	require.Error(t, core.VerifyStorageProof(common.Hash{1}, present, value[:], proof))
	require.Error(t, core.VerifyStorageProof(root, present, value[:], nil))

	// short values are big-endian words
	small := storage.Prove(t, common.Hash{3}.Bytes())
	require.NoError(t, core.VerifyStorageProof(root, common.Hash{3}, []byte{4}, small))
	require.NoError(t, core.VerifyStorageProof(root, common.Hash{3}, common.LeftPadBytes([]byte{4}, 32), small))

	require.NoError(t, core.VerifyStorageAbsence(root, absent, storage.Prove(t, absent[:])))
	require.ErrorIs(t, core.VerifyStorageAbsence(root, present, proof), core.ErrStorageSlotPresent)

	var notFound core.ErrStorageValueMismatch
	require.ErrorAs(t, core.VerifyStorageProof(root, absent, value[:], storage.Prove(t, absent[:])), &notFound)
	require.Empty(t, notFound.Proven)
}

func TestAccountProofs(t *testing.T) {
	storage := testutil.NewTrie(t)
	storage.SetStorage(t, common.Hash{1}, []byte{1})

	state := testutil.NewTrie(t)
	state.SetAccount(t, ibcAddress, 1, storage.Root())
	for i := byte(1); i < 8; i++ {
		state.SetAccount(t, common.Address{i}, uint64(i), common.Hash{i})
	}
	root := state.Root()
	proof := state.Prove(t, ibcAddress[:])

	require.NoError(t, core.VerifyAccountStorageRoot(root, ibcAddress, storage.Root(), proof))

	var mismatch core.ErrAccountStorageRootMismatch
	require.ErrorAs(t, core.VerifyAccountStorageRoot(root, ibcAddress, common.Hash{2}, proof), &mismatch)
	require.Equal(t, storage.Root(), mismatch.Proven)

	other := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	require.ErrorIs(t, core.VerifyAccountStorageRoot(root, other, storage.Root(), state.Prove(t, other[:])), core.ErrAccountNotFound)
	require.Error(t, core.VerifyAccountStorageRoot(common.Hash{9}, ibcAddress, storage.Root(), proof))
}
