package ics23_test

import (
	"testing"

	"github.com/MariusVanDerWijden/ibc-lc/ics23"
	"github.com/MariusVanDerWijden/ibc-lc/testutil"
	ics "github.com/cosmos/ics23/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, kv map[string][]byte) *testutil.SimpleTree {
	tree, err := testutil.NewSimpleTree(kv)
	require.NoError(t, err)
	return tree
}

func storeTree(t *testing.T) *testutil.SimpleTree {
	return newTree(t, map[string][]byte{
		"clients/a": []byte("state a"),
		"clients/c": []byte("state c"),
		"clients/e": []byte("state e"),
		"clients/g": []byte("state g"),
	})
}

func existence(t *testing.T, tree *testutil.SimpleTree, key string) *ics.ExistenceProof {
	p, err := tree.ExistenceProof([]byte(key))
	require.NoError(t, err)
	return p.GetExist()
}

func TestVerifyExistence(t *testing.T) {
	tree := storeTree(t)
	spec := ics.TendermintSpec
	p := existence(t, tree, "clients/c")

	require.NoError(t, ics23.VerifyExistence(p, spec, tree.Root(), []byte("clients/c"), []byte("state c")))
	assert.True(t, ics.VerifyMembership(spec, tree.Root(), &ics.CommitmentProof{Proof: &ics.CommitmentProof_Exist{Exist: p}}, []byte("clients/c"), []byte("state c")))

	root, err := ics23.CalculateRoot(p)
	require.NoError(t, err)
	assert.Equal(t, tree.Root(), root)

	assert.ErrorIs(t, ics23.VerifyExistence(p, spec, tree.Root(), []byte("clients/a"), []byte("state c")), ics23.ErrKeyMismatch)
	assert.ErrorIs(t, ics23.VerifyExistence(p, spec, tree.Root(), []byte("clients/c"), []byte("state a")), ics23.ErrValueMismatch)

	wrongRoot := append([]byte(nil), tree.Root()...)
	wrongRoot[0] ^= 0xff
	var mismatch ics23.ErrCalculatedRootMismatch
	require.True(t, errors.As(ics23.VerifyExistence(p, spec, wrongRoot, []byte("clients/c"), []byte("state c")), &mismatch))
	assert.Equal(t, tree.Root(), mismatch.Calculated)

	// a tampered sibling changes the computed root
	p.Path[0].Prefix[5] ^= 0x01
	require.True(t, errors.As(ics23.VerifyExistence(p, spec, tree.Root(), []byte("clients/c"), []byte("state c")), &mismatch))
}

func TestCheckAgainstSpec(t *testing.T) {
	tree := storeTree(t)
	tests := []struct {
		name   string
		spec   *ics.ProofSpec
		mutate func(p *ics.ExistenceProof)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "valid",
			mutate: func(p *ics.ExistenceProof) {},
			check:  func(t *testing.T, err error) { require.NoError(t, err) },
		},
		{
			name:   "empty key",
			mutate: func(p *ics.ExistenceProof) { p.Key = nil },
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, ics23.ErrEmptyKey) },
		},
		{
			name:   "empty value",
			mutate: func(p *ics.ExistenceProof) { p.Value = nil },
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, ics23.ErrEmptyValue) },
		},
		{
			name:   "missing leaf",
			mutate: func(p *ics.ExistenceProof) { p.Leaf = nil },
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, ics23.ErrMissingLeaf) },
		},
		{
			name: "leaf hash",
			mutate: func(p *ics.ExistenceProof) {
				p.Leaf = &ics.LeafOp{Hash: ics.HashOp_SHA512, PrehashValue: ics.HashOp_SHA256, Length: ics.LengthOp_VAR_PROTO, Prefix: []byte{0}}
			},
			check: func(t *testing.T, err error) {
				var e ics23.ErrLeafOpMismatch
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "hash", e.Field)
			},
		},
		{
			name:   "inner hash",
			mutate: func(p *ics.ExistenceProof) { p.Path[1].Hash = ics.HashOp_SHA512 },
			check: func(t *testing.T, err error) {
				var e ics23.ErrInnerOpHashAndSpecMismatch
				require.True(t, errors.As(err, &e))
				assert.Equal(t, ics.HashOp_SHA256, e.Spec)
				assert.Equal(t, ics.HashOp_SHA512, e.Proof)
			},
		},
		{
			name:   "inner prefix starts with leaf prefix",
			mutate: func(p *ics.ExistenceProof) { p.Path[0].Prefix = []byte{0x00} },
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, ics23.ErrInnerOpPrefixHasLeafPrefix) },
		},
		{
			name:   "inner prefix too short",
			mutate: func(p *ics.ExistenceProof) { p.Path[0].Prefix = nil },
			check: func(t *testing.T, err error) {
				var e ics23.ErrInnerOpPrefixTooShort
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 1, e.Min)
			},
		},
		{
			name:   "inner prefix too long",
			mutate: func(p *ics.ExistenceProof) { p.Path[0].Prefix = append([]byte{0x01}, make([]byte, 33)...) },
			check: func(t *testing.T, err error) {
				var e ics23.ErrInnerOpPrefixTooLong
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 33, e.Max)
				assert.Equal(t, 34, e.Length)
			},
		},
		{
			name:   "inner suffix not a multiple of child size",
			mutate: func(p *ics.ExistenceProof) { p.Path[0].Suffix = make([]byte, 31) },
			check: func(t *testing.T, err error) {
				var e ics23.ErrInnerOpSuffixMalformed
				require.True(t, errors.As(err, &e))
			},
		},
		{
			name:   "path shorter than min depth",
			spec:   &ics.ProofSpec{LeafSpec: ics.TendermintSpec.LeafSpec, InnerSpec: ics.TendermintSpec.InnerSpec, MinDepth: 3},
			mutate: func(p *ics.ExistenceProof) {},
			check: func(t *testing.T, err error) {
				var e ics23.ErrInnerDepthTooShort
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 2, e.Depth)
			},
		},
		{
			name:   "path longer than max depth",
			spec:   &ics.ProofSpec{LeafSpec: ics.TendermintSpec.LeafSpec, InnerSpec: ics.TendermintSpec.InnerSpec, MaxDepth: 1},
			mutate: func(p *ics.ExistenceProof) {},
			check: func(t *testing.T, err error) {
				var e ics23.ErrInnerDepthTooLong
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 1, e.Max)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.spec
			if spec == nil {
				spec = ics.TendermintSpec
			}
			p := existence(t, tree, "clients/e")
			tt.mutate(p)
			tt.check(t, ics23.CheckAgainstSpec(p, spec))
		})
	}
}

func TestCheckAgainstIavlSpec(t *testing.T) {
	leaf := &ics.LeafOp{
		Hash:         ics.HashOp_SHA256,
		PrehashKey:   ics.HashOp_NO_HASH,
		PrehashValue: ics.HashOp_SHA256,
		Length:       ics.LengthOp_VAR_PROTO,
		Prefix:       []byte{0},
	}
	p := &ics.ExistenceProof{Key: []byte("k"), Value: []byte("v"), Leaf: leaf}
	require.ErrorIs(t, ics23.CheckAgainstSpec(p, ics.IavlSpec), ics23.ErrIavlOpMismatch)

	// height 0, size 1, version 1
	leaf.Prefix = []byte{0x00, 0x02, 0x02}
	require.NoError(t, ics23.CheckAgainstSpec(p, ics.IavlSpec))

	leaf.Prefix = []byte{0x00, 0x02, 0x02, 0x07}
	require.ErrorIs(t, ics23.CheckAgainstSpec(p, ics.IavlSpec), ics23.ErrIavlOpMismatch)
}

func TestVerifyNonExistence(t *testing.T) {
	tree := storeTree(t)
	spec := ics.TendermintSpec
	for _, key := range []string{"clients/b", "clients/f", "a", "clients/z"} {
		t.Run(key, func(t *testing.T) {
			cp, err := tree.NonExistenceProof([]byte(key))
			require.NoError(t, err)
			p := cp.GetNonexist()
			require.NoError(t, ics23.VerifyNonExistence(p, spec, tree.Root(), []byte(key)))

			root, err := ics23.NonExistenceRoot(p)
			require.NoError(t, err)
			assert.Equal(t, tree.Root(), root)

			// the neighbours do not bracket a present key
			require.Error(t, ics23.VerifyNonExistence(p, spec, tree.Root(), []byte("clients/c")))
		})
	}
	_, err := tree.NonExistenceProof([]byte("clients/c"))
	require.Error(t, err)

	cp, err := tree.NonExistenceProof([]byte("clients/d"))
	require.NoError(t, err)
	require.ErrorIs(t, ics23.VerifyNonExistence(cp.GetNonexist(), spec, tree.Root(), nil), ics23.ErrEmptyKey)
}

// nestedStores commits a module store under the key "ibc" of a root store.
func nestedStores(t *testing.T) (module, root *testutil.SimpleTree) {
	module = storeTree(t)
	root = newTree(t, map[string][]byte{
		"acc":  []byte("acc root"),
		"bank": []byte("bank root"),
		"ibc":  module.Root(),
		"mint": []byte("mint root"),
	})
	return module, root
}

func chainedProof(t *testing.T, inner *ics.CommitmentProof, root *testutil.SimpleTree) *ics23.MerkleProof {
	outer, err := root.ExistenceProof([]byte("ibc"))
	require.NoError(t, err)
	return &ics23.MerkleProof{Proofs: []*ics.CommitmentProof{inner, outer}}
}

func TestMerkleProofMembership(t *testing.T) {
	module, root := nestedStores(t)
	specs := []*ics.ProofSpec{ics.TendermintSpec, ics.TendermintSpec}
	path := ics23.ApplyPrefix([]byte("ibc"), ics23.NewMerklePath("clients/e"))
	assert.Equal(t, "/ibc/clients/e", path.String())
	assert.Equal(t, []byte("clients/e"), path.Last())

	inner, err := module.ExistenceProof([]byte("clients/e"))
	require.NoError(t, err)
	proof := chainedProof(t, inner, root)
	require.NoError(t, proof.VerifyMembership(specs, root.Root(), path, []byte("state e")))

	// wire round trip
	enc, err := proof.Marshal()
	require.NoError(t, err)
	dec, err := ics23.DecodeMerkleProof(enc)
	require.NoError(t, err)
	require.NoError(t, dec.VerifyMembership(specs, root.Root(), path, []byte("state e")))

	require.ErrorIs(t, proof.VerifyMembership(specs, root.Root(), path, []byte("state a")), ics23.ErrValueMismatch)
	require.ErrorIs(t, proof.VerifyMembership(specs, root.Root(), path, nil), ics23.ErrEmptyValue)
	require.ErrorIs(t, proof.VerifyMembership(specs, root.Root(), ics23.ApplyPrefix([]byte("bank"), ics23.NewMerklePath("clients/e")), []byte("state e")), ics23.ErrKeyMismatch)

	var mismatch ics23.ErrCalculatedRootMismatch
	require.True(t, errors.As(proof.VerifyMembership(specs, module.Root(), path, []byte("state e")), &mismatch))

	var lengths ics23.ErrProofLengthMismatch
	require.True(t, errors.As(proof.VerifyMembership(specs[:1], root.Root(), path, []byte("state e")), &lengths))
	assert.Equal(t, ics23.ErrProofLengthMismatch{Proofs: 2, Specs: 1, Keys: 2}, lengths)
	require.True(t, errors.As(proof.VerifyMembership(specs, root.Root(), ics23.NewMerklePath("clients/e"), []byte("state e")), &lengths))

	require.ErrorIs(t, (&ics23.MerkleProof{}).VerifyMembership(specs, root.Root(), path, []byte("state e")), ics23.ErrEmptyProof)
	require.ErrorIs(t, proof.VerifyMembership(specs, root.Root(), ics23.MerklePath{}, []byte("state e")), ics23.ErrEmptyPath)

	// a non-existence proof cannot prove membership
	absent, err := module.NonExistenceProof([]byte("clients/d"))
	require.NoError(t, err)
	require.ErrorIs(t, chainedProof(t, absent, root).VerifyMembership(specs, root.Root(), path, []byte("state e")), ics23.ErrMissingExistenceProof)
}

func TestMerkleProofNonMembership(t *testing.T) {
	module, root := nestedStores(t)
	specs := []*ics.ProofSpec{ics.TendermintSpec, ics.TendermintSpec}
	path := ics23.ApplyPrefix([]byte("ibc"), ics23.NewMerklePath("clients/d"))

	absent, err := module.NonExistenceProof([]byte("clients/d"))
	require.NoError(t, err)
	proof := chainedProof(t, absent, root)
	require.NoError(t, proof.VerifyNonMembership(specs, root.Root(), path))

	// single store
	single := &ics23.MerkleProof{Proofs: []*ics.CommitmentProof{absent}}
	require.NoError(t, single.VerifyNonMembership(specs[:1], module.Root(), ics23.NewMerklePath("clients/d")))
	var mismatch ics23.ErrCalculatedRootMismatch
	require.True(t, errors.As(single.VerifyNonMembership(specs[:1], root.Root(), ics23.NewMerklePath("clients/d")), &mismatch))

	// the key is present
	require.Error(t, proof.VerifyNonMembership(specs, root.Root(), ics23.ApplyPrefix([]byte("ibc"), ics23.NewMerklePath("clients/c"))))

	present, err := module.ExistenceProof([]byte("clients/c"))
	require.NoError(t, err)
	require.ErrorIs(t, chainedProof(t, present, root).VerifyNonMembership(specs, root.Root(), path), ics23.ErrMissingNonExistenceProof)
}

func TestDecodeMerkleProofErrors(t *testing.T) {
	_, err := ics23.DecodeMerkleProof(nil)
	require.ErrorIs(t, err, ics23.ErrEmptyProof)

	tests := map[string][]byte{
		"wrong field":     {2<<3 | 2, 0},
		"truncated":       {1<<3 | 2, 10, 1, 2},
		"truncated tag":   {0x80},
		"not a proof":     {1<<3 | 2, 2, 0xff, 0xff},
		"varint wiretype": {1 << 3, 1},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ics23.DecodeMerkleProof(data)
			require.ErrorIs(t, err, ics23.ErrDecode)
		})
	}
}
