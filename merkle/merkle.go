// Package merkle verifies binary Merkle branches of SSZ hash-tree-roots.
package merkle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/minio/sha256-simd"
)

// ErrInvalidBranchLength is returned when a branch does not have exactly one
// sibling per tree level.
type ErrInvalidBranchLength struct {
	Expected int
	Actual   int
}

func (e ErrInvalidBranchLength) Error() string {
	return fmt.Sprintf("invalid merkle branch length: expected %d, got %d", e.Expected, e.Actual)
}

// ErrMerkleVerificationFailed is returned when the root recomputed from a
// leaf and its branch differs from the trusted root.
type ErrMerkleVerificationFailed struct {
	Leaf     common.Hash
	Index    uint64
	Depth    int
	Root     common.Hash
	Computed common.Hash
}

func (e ErrMerkleVerificationFailed) Error() string {
	return fmt.Sprintf("merkle verification failed: leaf %v at index %d depth %d computes %v, root is %v",
		e.Leaf, e.Index, e.Depth, e.Computed, e.Root)
}

// Hash returns sha256(a || b).
func Hash(a, b common.Hash) common.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return sha256.Sum256(buf[:])
}

// ComputeRoot folds the branch into leaf. Bit i of index selects whether the
// running node is the right (1) or left (0) child at level i.
func ComputeRoot(leaf common.Hash, branch []common.Hash, index uint64) common.Hash {
	node := leaf
	for i, sibling := range branch {
		if (index>>uint(i))&1 == 1 {
			node = Hash(sibling, node)
		} else {
			node = Hash(node, sibling)
		}
	}
	return node
}

// VerifyMerkleBranch checks that leaf sits at index in a tree of the given
// depth with the given root.
func VerifyMerkleBranch(leaf common.Hash, branch []common.Hash, depth int, index uint64, root common.Hash) error {
	if len(branch) != depth {
		return ErrInvalidBranchLength{Expected: depth, Actual: len(branch)}
	}
	if computed := ComputeRoot(leaf, branch, index); computed != root {
		return ErrMerkleVerificationFailed{Leaf: leaf, Index: index, Depth: depth, Root: root, Computed: computed}
	}
	return nil
}

// IsValidMerkleBranch is VerifyMerkleBranch as a predicate.
func IsValidMerkleBranch(leaf common.Hash, branch []common.Hash, depth int, index uint64, root common.Hash) bool {
	return VerifyMerkleBranch(leaf, branch, depth, index, root) == nil
}

// VerifyGindex verifies leaf against root at a generalized index.
func VerifyGindex(leaf common.Hash, branch []common.Hash, gindex uint64, root common.Hash) error {
	return VerifyMerkleBranch(leaf, branch, FloorLog2(gindex), SubtreeIndex(gindex), root)
}
