package testutil

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/stretchr/testify/require"
)

type proofList [][]byte

func (n *proofList) Put(key []byte, value []byte) error {
	*n = append(*n, value)
	return nil
}

func (n *proofList) Delete(key []byte) error {
	panic("not supported")
}

// Trie is a secure Merkle Patricia trie: keys are hashed with keccak256
// before insertion, as in the Ethereum state and storage tries.
type Trie struct {
	tr *trie.Trie
}

func NewTrie(t testing.TB) *Trie {
	tr, err := trie.New(common.Hash{}, trie.NewDatabase(memorydb.New()))
	require.NoError(t, err)
	return &Trie{tr: tr}
}

func (s *Trie) set(t testing.TB, key []byte, value []byte) {
	require.NoError(t, s.tr.TryUpdate(crypto.Keccak256(key), value))
}

// SetStorage stores the big-endian word value at slot key.
func (s *Trie) SetStorage(t testing.TB, key common.Hash, value []byte) {
	enc, err := rlp.EncodeToBytes(common.TrimLeftZeroes(value))
	require.NoError(t, err)
	s.set(t, key[:], enc)
}

// SetAccount stores an account with the given storage root.
func (s *Trie) SetAccount(t testing.TB, address common.Address, nonce uint64, storageRoot common.Hash) {
	enc, err := rlp.EncodeToBytes(&gethtypes.StateAccount{
		Nonce:    nonce,
		Balance:  big.NewInt(1e18),
		Root:     storageRoot,
		CodeHash: crypto.Keccak256(nil),
	})
	require.NoError(t, err)
	s.set(t, address[:], enc)
}

func (s *Trie) Root() common.Hash {
	return s.tr.Hash()
}

// Prove returns the proof nodes for key, which may be absent.
func (s *Trie) Prove(t testing.TB, key []byte) [][]byte {
	var proof proofList
	require.NoError(t, s.tr.Prove(crypto.Keccak256(key), 0, &proof))
	return proof
}
