package merkle

import "github.com/ethereum/go-ethereum/common"

// Tree is a sparse binary tree addressed by generalized index. Nodes that
// are neither set nor above a set node hash to zero. It is used to build
// branches for proofs over partially known SSZ objects.
type Tree struct {
	leaves map[uint64]common.Hash
}

func NewTree() *Tree {
	return &Tree{leaves: make(map[uint64]common.Hash)}
}

// Set places a leaf at a generalized index. Leaves must not be ancestors of
// one another.
func (t *Tree) Set(gindex uint64, leaf common.Hash) *Tree {
	t.leaves[gindex] = leaf
	return t
}

func (t *Tree) Root() common.Hash {
	return t.node(1)
}

// Branch returns the siblings from gindex up to the root.
func (t *Tree) Branch(gindex uint64) []common.Hash {
	if gindex <= 1 {
		return nil
	}
	branch := make([]common.Hash, 0, FloorLog2(gindex))
	for g := gindex; g > 1; g >>= 1 {
		branch = append(branch, t.node(g^1))
	}
	return branch
}

func (t *Tree) node(g uint64) common.Hash {
	if leaf, ok := t.leaves[g]; ok {
		return leaf
	}
	if !t.hasDescendant(g) {
		return common.Hash{}
	}
	return Hash(t.node(2*g), t.node(2*g+1))
}

func (t *Tree) hasDescendant(g uint64) bool {
	for k := range t.leaves {
		for k > g {
			k >>= 1
		}
		if k == g {
			return true
		}
	}
	return false
}
