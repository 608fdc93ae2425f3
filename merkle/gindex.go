package merkle

import "math/bits"

// FloorLog2 is the depth of a generalized index. FloorLog2(0) is -1.
func FloorLog2(gindex uint64) int {
	return bits.Len64(gindex) - 1
}

// SubtreeIndex is the position of a generalized index within its level.
func SubtreeIndex(gindex uint64) uint64 {
	if gindex == 0 {
		return 0
	}
	return gindex % (uint64(1) << uint(FloorLog2(gindex)))
}

// Concat composes generalized indices: the index of b inside the subtree
// rooted at a.
func Concat(a, b uint64) uint64 {
	depth := FloorLog2(b)
	return a<<uint(depth) | SubtreeIndex(b)
}
