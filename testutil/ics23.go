package testutil

import (
	"bytes"
	"crypto/sha256"
	"sort"

	"github.com/MariusVanDerWijden/ibc-lc/ics23"
	ics "github.com/cosmos/ics23/go"
	"github.com/pkg/errors"
)

// SimpleTree is a sorted key/value tree hashed the way ics23.TendermintSpec
// expects: leaves through the spec's leaf op, inner nodes as
// sha256(0x01 || left || right).
type SimpleTree struct {
	keys   [][]byte
	values [][]byte
	levels [][][]byte
}

// NewSimpleTree builds a tree over kv. The number of entries must be a power
// of two.
func NewSimpleTree(kv map[string][]byte) (*SimpleTree, error) {
	n := len(kv)
	if n == 0 || n&(n-1) != 0 {
		return nil, errors.Errorf("tree size %d is not a power of two", n)
	}
	t := &SimpleTree{}
	for k := range kv {
		t.keys = append(t.keys, []byte(k))
	}
	sort.Slice(t.keys, func(i, j int) bool { return bytes.Compare(t.keys[i], t.keys[j]) < 0 })
	leaves := make([][]byte, n)
	for i, k := range t.keys {
		v := kv[string(k)]
		t.values = append(t.values, v)
		leaf, err := ics.TendermintSpec.LeafSpec.Apply(k, v)
		if err != nil {
			return nil, err
		}
		leaves[i] = leaf
	}
	t.levels = [][][]byte{leaves}
	for layer := leaves; len(layer) > 1; {
		next := make([][]byte, len(layer)/2)
		for i := range next {
			next[i] = innerHash(layer[2*i], layer[2*i+1])
		}
		t.levels = append(t.levels, next)
		layer = next
	}
	return t, nil
}

func innerHash(left, right []byte) []byte {
	h := sha256.New()
	h.Write([]byte{0x01})
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

func (t *SimpleTree) Root() []byte {
	return t.levels[len(t.levels)-1][0]
}

func (t *SimpleTree) index(key []byte) int {
	return sort.Search(len(t.keys), func(i int) bool { return bytes.Compare(t.keys[i], key) >= 0 })
}

func (t *SimpleTree) existence(i int) *ics.ExistenceProof {
	p := &ics.ExistenceProof{
		Key:   t.keys[i],
		Value: t.values[i],
		Leaf:  ics.TendermintSpec.LeafSpec,
	}
	idx := i
	for _, layer := range t.levels[:len(t.levels)-1] {
		sibling := layer[idx^1]
		op := &ics.InnerOp{Hash: ics.HashOp_SHA256}
		if idx%2 == 0 {
			op.Prefix = []byte{0x01}
			op.Suffix = sibling
		} else {
			op.Prefix = append([]byte{0x01}, sibling...)
		}
		p.Path = append(p.Path, op)
		idx /= 2
	}
	return p
}

// ExistenceProof proves a key stored in the tree.
func (t *SimpleTree) ExistenceProof(key []byte) (*ics.CommitmentProof, error) {
	i := t.index(key)
	if i == len(t.keys) || !bytes.Equal(t.keys[i], key) {
		return nil, errors.Errorf("key %q not in tree", key)
	}
	return &ics.CommitmentProof{Proof: &ics.CommitmentProof_Exist{Exist: t.existence(i)}}, nil
}

// NonExistenceProof proves a key absent from the tree by its neighbours.
func (t *SimpleTree) NonExistenceProof(key []byte) (*ics.CommitmentProof, error) {
	i := t.index(key)
	if i < len(t.keys) && bytes.Equal(t.keys[i], key) {
		return nil, errors.Errorf("key %q is in tree", key)
	}
	p := &ics.NonExistenceProof{Key: key}
	if i > 0 {
		p.Left = t.existence(i - 1)
	}
	if i < len(t.keys) {
		p.Right = t.existence(i)
	}
	return &ics.CommitmentProof{Proof: &ics.CommitmentProof_Nonexist{Nonexist: p}}, nil
}

// AppState is a root store committing to four module stores, the layout of
// a Cosmos SDK multistore. Only the named module holds real keys.
type AppState struct {
	Name   string
	Module *SimpleTree
	Root   *SimpleTree
}

// NewAppState commits kv as the module store name.
func NewAppState(name string, kv map[string][]byte) (*AppState, error) {
	module, err := NewSimpleTree(kv)
	if err != nil {
		return nil, err
	}
	roots := map[string][]byte{
		"acc":  []byte("acc root"),
		"bank": []byte("bank root"),
		"mint": []byte("mint root"),
	}
	if _, ok := roots[name]; ok {
		return nil, errors.Errorf("module name %q is reserved", name)
	}
	roots[name] = module.Root()
	root, err := NewSimpleTree(roots)
	if err != nil {
		return nil, err
	}
	return &AppState{Name: name, Module: module, Root: root}, nil
}

// AppHash is the root a block header commits to.
func (a *AppState) AppHash() []byte {
	return a.Root.Root()
}

// Proof returns the encoded chained proof of key in the module store: an
// existence proof when the key is stored, a non-existence proof otherwise.
func (a *AppState) Proof(key string) ([]byte, error) {
	inner, err := a.Module.ExistenceProof([]byte(key))
	if err != nil {
		if inner, err = a.Module.NonExistenceProof([]byte(key)); err != nil {
			return nil, err
		}
	}
	outer, err := a.Root.ExistenceProof([]byte(a.Name))
	if err != nil {
		return nil, err
	}
	mp := &ics23.MerkleProof{Proofs: []*ics.CommitmentProof{inner, outer}}
	return mp.Marshal()
}
