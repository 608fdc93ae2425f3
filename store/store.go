// Package store is the key-value persistence behind light clients: an
// in-memory map, a bbolt file, per-client prefixed views and an LRU read
// cache. Iteration is always in ascending key order.
package store

import (
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

// KVStore is a sorted key-value store. Values returned by Get are owned by
// the caller.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Iterate calls fn for every key with the given prefix in ascending
	// order until fn returns false.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
}

var (
	clientStateKey      = []byte("clientState")
	lightClientStoreKey = []byte("lightClientStore")
	consensusPrefix     = []byte("consensusStates/")
)

func ClientStateKey() []byte       { return clientStateKey }
func LightClientStoreKey() []byte  { return lightClientStoreKey }
func ConsensusStatePrefix() []byte { return consensusPrefix }

// ConsensusStateKey orders consensus states by height.
func ConsensusStateKey(height exported.Height) []byte {
	return append(append([]byte{}, consensusPrefix...), height.Bytes()...)
}

// HeightFromConsensusStateKey inverts ConsensusStateKey.
func HeightFromConsensusStateKey(key []byte) (exported.Height, error) {
	if len(key) != len(consensusPrefix)+16 || string(key[:len(consensusPrefix)]) != string(consensusPrefix) {
		return exported.Height{}, errors.Errorf("not a consensus state key: %x", key)
	}
	return exported.HeightFromBytes(key[len(consensusPrefix):])
}

// Neighbours returns the heights of the stored consensus states directly
// below and above height. Missing neighbours are zero.
func Neighbours(s KVStore, height exported.Height) (prev, next exported.Height, err error) {
	var iterErr error
	err = s.Iterate(consensusPrefix, func(key, _ []byte) bool {
		h, err := HeightFromConsensusStateKey(key)
		if err != nil {
			iterErr = err
			return false
		}
		switch {
		case h.LT(height):
			prev = h
		case h.GT(height):
			next = h
			return false
		}
		return true
	})
	if err == nil {
		err = iterErr
	}
	return prev, next, err
}
