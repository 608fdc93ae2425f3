package testutil

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/ed25519"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	tmversion "github.com/tendermint/tendermint/proto/tendermint/version"
	tmtypes "github.com/tendermint/tendermint/types"
	"github.com/tendermint/tendermint/version"
)

// Validators is a CometBFT validator set together with its private keys.
type Validators struct {
	Keys []crypto.PrivKey
	Set  *tmtypes.ValidatorSet
}

// NewValidators derives n equally weighted validators from seed.
func NewValidators(n int, seed byte) *Validators {
	v := &Validators{}
	vals := make([]*tmtypes.Validator, n)
	for i := 0; i < n; i++ {
		key := ed25519.GenPrivKeyFromSecret([]byte{seed, byte(i)})
		v.Keys = append(v.Keys, key)
		vals[i] = tmtypes.NewValidator(key.PubKey(), 10)
	}
	v.Set = tmtypes.NewValidatorSet(vals)
	return v
}

func Hash(s string) []byte {
	h := sha256.Sum256([]byte(s))
	return h[:]
}

// HeaderParams describes a header to sign.
type HeaderParams struct {
	ChainID string
	Height  int64
	Time    time.Time
	AppHash []byte
	// NextValidators defaults to the signing set.
	NextValidators *tmtypes.ValidatorSet
}

// SignedHeader builds a header for p and lets every validator commit to it.
func (v *Validators) SignedHeader(t testing.TB, p HeaderParams) *tmtypes.SignedHeader {
	return v.PartiallySignedHeader(t, p, 0, len(v.Keys))
}

// PartiallySignedHeader lets the validators first to last (exclusive)
// commit to the header.
func (v *Validators) PartiallySignedHeader(t testing.TB, p HeaderParams, first, last int) *tmtypes.SignedHeader {
	t.Helper()
	next := p.NextValidators
	if next == nil {
		next = v.Set
	}
	header := &tmtypes.Header{
		Version:            tmversion.Consensus{Block: version.BlockProtocol, App: 0},
		ChainID:            p.ChainID,
		Height:             p.Height,
		Time:               p.Time,
		ValidatorsHash:     v.Set.Hash(),
		NextValidatorsHash: next.Hash(),
		ConsensusHash:      Hash("consensus params"),
		AppHash:            p.AppHash,
		ProposerAddress:    v.Set.Validators[0].Address,
	}
	return &tmtypes.SignedHeader{Header: header, Commit: v.sign(t, header, first, last)}
}

func (v *Validators) sign(t testing.TB, header *tmtypes.Header, first, last int) *tmtypes.Commit {
	sigs := make([]tmtypes.CommitSig, len(v.Keys))
	for i := range sigs {
		sigs[i] = tmtypes.NewCommitSigAbsent()
	}
	blockID := tmtypes.BlockID{
		Hash:          header.Hash(),
		PartSetHeader: tmtypes.PartSetHeader{Total: 1, Hash: Hash("parts")},
	}
	for i := first; i < last && i < len(v.Keys); i++ {
		key := v.Keys[i]
		addr := key.PubKey().Address()
		idx, _ := v.Set.GetByAddress(addr)
		vote := &tmtypes.Vote{
			ValidatorAddress: addr,
			ValidatorIndex:   idx,
			Height:           header.Height,
			Round:            1,
			Timestamp:        header.Time.Add(time.Second),
			Type:             tmproto.PrecommitType,
			BlockID:          blockID,
		}
		sig, err := key.Sign(tmtypes.VoteSignBytes(header.ChainID, vote.ToProto()))
		require.NoError(t, err)
		vote.Signature = sig
		sigs[idx] = vote.CommitSig()
	}
	return &tmtypes.Commit{
		Height:     header.Height,
		Round:      1,
		BlockID:    blockID,
		Signatures: sigs,
	}
}
