package core

import (
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// proofDB indexes proof nodes by their hash, the way trie.VerifyProof looks
// them up.
func proofDB(proof [][]byte) *memorydb.Database {
	db := memorydb.New()
	for _, node := range proof {
		db.Put(crypto.Keccak256(node), node)
	}
	return db
}

func verifyTrieProof(root common.Hash, key []byte, proof [][]byte) ([]byte, error) {
	if len(proof) == 0 {
		return nil, errors.New("empty merkle patricia proof")
	}
	value, err := trie.VerifyProof(root, key, proofDB(proof))
	if err != nil {
		return nil, errors.Wrap(err, "invalid merkle patricia proof")
	}
	return value, nil
}

// VerifyAccountStorageRoot proves that the account at address has the given
// storage root in the state trie with root stateRoot.
func VerifyAccountStorageRoot(stateRoot common.Hash, address common.Address, storageRoot common.Hash, proof [][]byte) error {
	enc, err := verifyTrieProof(stateRoot, crypto.Keccak256(address[:]), proof)
	if err != nil {
		return err
	}
	if enc == nil {
		return errors.Wrapf(ErrAccountNotFound, "address %v", address)
	}
	var account gethtypes.StateAccount
	if err := rlp.DecodeBytes(enc, &account); err != nil {
		return errors.Wrap(err, "could not decode account")
	}
	if account.Root != storageRoot {
		return ErrAccountStorageRootMismatch{Expected: storageRoot, Proven: account.Root}
	}
	return nil
}

// VerifyStorageProof proves that slot key holds value, a big-endian word of
// at most 32 bytes, in the storage trie with root storageRoot.
func VerifyStorageProof(storageRoot common.Hash, key common.Hash, value []byte, proof [][]byte) error {
	if len(value) > 32 {
		return errors.Errorf("storage value of %d bytes", len(value))
	}
	enc, err := verifyTrieProof(storageRoot, crypto.Keccak256(key[:]), proof)
	if err != nil {
		return err
	}
	var proven []byte
	if enc != nil {
		if err := rlp.DecodeBytes(enc, &proven); err != nil {
			return errors.Wrap(err, "could not decode storage value")
		}
	}
	expected := new(uint256.Int).SetBytes(value)
	if expected.IsZero() {
		return errors.New("zero storage values are proven by VerifyStorageAbsence")
	}
	if len(proven) > 32 || !new(uint256.Int).SetBytes(proven).Eq(expected) {
		return ErrStorageValueMismatch{Expected: value, Proven: proven}
	}
	return nil
}

// VerifyStorageAbsence proves that slot key is unset in the storage trie
// with root storageRoot.
func VerifyStorageAbsence(storageRoot common.Hash, key common.Hash, proof [][]byte) error {
	enc, err := verifyTrieProof(storageRoot, crypto.Keccak256(key[:]), proof)
	if err != nil {
		return err
	}
	if enc != nil {
		return errors.Wrapf(ErrStorageSlotPresent, "slot %v", key)
	}
	return nil
}

// CommitmentKey is the storage slot of an IBC commitment path in the
// commitments mapping at commitmentSlot.
func CommitmentKey(path []byte, commitmentSlot common.Hash) common.Hash {
	return crypto.Keccak256Hash(crypto.Keccak256(path), commitmentSlot[:])
}

// CommitmentValue is the word stored for a committed value.
func CommitmentValue(value []byte) common.Hash {
	return crypto.Keccak256Hash(value)
}
