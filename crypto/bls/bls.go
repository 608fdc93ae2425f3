// Package bls wraps the blst BLS12-381 bindings with the subset of the
// Ethereum signature scheme a sync committee light client needs.
package bls

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	blst "github.com/supranational/blst/bindings/go"
)

const (
	PublicKeyLength = 48
	SignatureLength = 96
	SecretKeyLength = 32
)

type blstPublicKey = blst.P1Affine
type blstSignature = blst.P2Affine
type blstAggregatePublicKey = blst.P1Aggregate
type blstAggregateSignature = blst.P2Aggregate

// dst is the domain separation tag of the proof-of-possession scheme.
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

var (
	ErrInfinitePubKey    = errors.New("received an infinite public key")
	ErrInfiniteSignature = errors.New("received an infinite signature")
	ErrZeroKey           = errors.New("received secret key is zero")
	ErrNoPublicKeys      = errors.New("no public keys to aggregate")
)

var pubkeyCache, _ = lru.New(2048)

// PublicKey used in the BLS signature scheme.
type PublicKey struct {
	p *blstPublicKey
}

// PublicKeyFromBytes decompresses and validates a 48 byte public key.
func PublicKeyFromBytes(pubKey []byte) (*PublicKey, error) {
	if len(pubKey) != PublicKeyLength {
		return nil, fmt.Errorf("public key must be %d bytes", PublicKeyLength)
	}
	if cv, ok := pubkeyCache.Get(string(pubKey)); ok {
		return cv.(*PublicKey).Copy(), nil
	}
	p := new(blstPublicKey).Uncompress(pubKey)
	if p == nil {
		return nil, errors.New("could not unmarshal bytes into public key")
	}
	pubKeyObj := &PublicKey{p: p}
	if pubKeyObj.IsInfinite() {
		return nil, ErrInfinitePubKey
	}
	if !p.KeyValidate() {
		return nil, errors.New("public key not in the G1 subgroup")
	}
	pubkeyCache.Add(string(pubKey), pubKeyObj.Copy())
	return pubKeyObj, nil
}

// AggregatePublicKeys aggregates the provided raw public keys into a single key.
func AggregatePublicKeys(pubs [][]byte) (*PublicKey, error) {
	if len(pubs) == 0 {
		return nil, ErrNoPublicKeys
	}
	keys := make([]*PublicKey, 0, len(pubs))
	for i, pubkey := range pubs {
		pubKeyObj, err := PublicKeyFromBytes(pubkey)
		if err != nil {
			return nil, errors.Wrapf(err, "public key %d", i)
		}
		keys = append(keys, pubKeyObj)
	}
	return Aggregate(keys)
}

// Aggregate sums already decoded public keys.
func Aggregate(keys []*PublicKey) (*PublicKey, error) {
	if len(keys) == 0 {
		return nil, ErrNoPublicKeys
	}
	mulP1 := make([]*blstPublicKey, 0, len(keys))
	for _, k := range keys {
		mulP1 = append(mulP1, k.p)
	}
	agg := new(blstAggregatePublicKey)
	if !agg.Aggregate(mulP1, false) {
		return nil, errors.New("could not aggregate public keys")
	}
	return &PublicKey{p: agg.ToAffine()}, nil
}

// Marshal a public key into its compressed form.
func (p *PublicKey) Marshal() []byte {
	return p.p.Compress()
}

// Copy the public key to a new pointer reference.
func (p *PublicKey) Copy() *PublicKey {
	np := *p.p
	return &PublicKey{p: &np}
}

// IsInfinite checks if the public key is infinite.
func (p *PublicKey) IsInfinite() bool {
	zeroKey := new(blstPublicKey)
	return p.p.Equals(zeroKey)
}

func (p *PublicKey) Equals(other *PublicKey) bool {
	return p.p.Equals(other.p)
}

// Signature used in the BLS signature scheme.
type Signature struct {
	s *blstSignature
}

// SignatureFromBytes decompresses a 96 byte signature and checks that it is
// in the G2 subgroup.
func SignatureFromBytes(sig []byte) (*Signature, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes", SignatureLength)
	}
	signature := new(blstSignature).Uncompress(sig)
	if signature == nil {
		return nil, errors.New("could not unmarshal bytes into signature")
	}
	if !signature.SigValidate(false) {
		return nil, errors.New("signature not in the G2 subgroup")
	}
	return &Signature{s: signature}, nil
}

// FastAggregateVerify verifies that the signature was produced over msg by
// every one of the given public keys.
func (s *Signature) FastAggregateVerify(pubKeys []*PublicKey, msg [32]byte) bool {
	if len(pubKeys) == 0 {
		return false
	}
	rawKeys := make([]*blstPublicKey, len(pubKeys))
	for i := 0; i < len(pubKeys); i++ {
		rawKeys[i] = pubKeys[i].p
	}
	return s.s.FastAggregateVerify(true, rawKeys, msg[:], dst)
}

// Verify a single signature.
func (s *Signature) Verify(pubKey *PublicKey, msg []byte) bool {
	return s.s.Verify(false, pubKey.p, false, msg, dst)
}

func (s *Signature) Marshal() []byte {
	return s.s.Compress()
}

// AggregateSignatures sums signatures over the same message.
func AggregateSignatures(sigs []*Signature) (*Signature, error) {
	if len(sigs) == 0 {
		return nil, errors.New("no signatures to aggregate")
	}
	raw := make([]*blstSignature, len(sigs))
	for i, sig := range sigs {
		raw[i] = sig.s
	}
	agg := new(blstAggregateSignature)
	if !agg.Aggregate(raw, false) {
		return nil, errors.New("could not aggregate signatures")
	}
	return &Signature{s: agg.ToAffine()}, nil
}

// SecretKey signs messages. Light clients only use it to build test fixtures.
type SecretKey struct {
	p *blst.SecretKey
}

// SecretKeyFromSeed derives a key from at least 32 bytes of input keying material.
func SecretKeyFromSeed(ikm []byte) (*SecretKey, error) {
	if len(ikm) < SecretKeyLength {
		return nil, fmt.Errorf("seed must be at least %d bytes", SecretKeyLength)
	}
	sk := blst.KeyGen(ikm)
	if sk == nil {
		return nil, errors.New("could not derive secret key")
	}
	if bytes.Equal(sk.Serialize(), make([]byte, SecretKeyLength)) {
		return nil, ErrZeroKey
	}
	return &SecretKey{p: sk}, nil
}

func (s *SecretKey) PublicKey() *PublicKey {
	return &PublicKey{p: new(blstPublicKey).From(s.p)}
}

func (s *SecretKey) Sign(msg []byte) *Signature {
	return &Signature{s: new(blstSignature).Sign(s.p, msg, dst)}
}
