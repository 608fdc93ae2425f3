package tendermint_test

import (
	"testing"
	"time"

	"github.com/MariusVanDerWijden/ibc-lc/client/tendermint"
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/ics23"
	"github.com/MariusVanDerWijden/ibc-lc/store"
	"github.com/MariusVanDerWijden/ibc-lc/testutil"
	ics "github.com/cosmos/ics23/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tmmath "github.com/tendermint/tendermint/libs/math"
	"github.com/tendermint/tendermint/light"
)

const chainID = "testchain-1"

const (
	packetKey = "commitments/ports/transfer/channels/channel-0/sequences/1"
	absentKey = "commitments/ports/transfer/channels/channel-0/sequences/2"
)

var (
	genesis       = time.Unix(1700000000, 0).UTC()
	trustedHeight = exported.NewHeight(1, 10)
)

type testClient struct {
	*tendermint.LightClient
	t    *testing.T
	kv   store.KVStore
	vals *testutil.Validators
	app  *testutil.AppState
	now  time.Time
}

func clientState() *tendermint.ClientState {
	return &tendermint.ClientState{
		ChainID:         chainID,
		TrustLevel:      light.DefaultTrustLevel,
		TrustingPeriod:  24 * time.Hour,
		UnbondingPeriod: 48 * time.Hour,
		MaxClockDrift:   10 * time.Second,
		LatestHeight:    trustedHeight,
		ProofSpecs:      []*ics.ProofSpec{ics.TendermintSpec, ics.TendermintSpec},
	}
}

func newTestClient(t *testing.T) *testClient {
	app, err := testutil.NewAppState("ibc", map[string][]byte{
		"clients/07-tendermint-0/clientState": []byte("client state"),
		"connections/connection-0":            []byte("connection end"),
		packetKey:                             []byte("packet commitment"),
		"commitments/ports/transfer/channels/channel-0/sequences/3": []byte("packet commitment 3"),
	})
	require.NoError(t, err)
	tc := &testClient{
		t:    t,
		kv:   store.NewMemStore(),
		vals: testutil.NewValidators(4, 1),
		app:  app,
		now:  genesis.Add(time.Hour),
	}
	tc.LightClient = tendermint.NewLightClient(tc.kv, tendermint.WithClock(func() time.Time { return tc.now }))
	require.NoError(t, tc.Initialize(clientState(), &tendermint.ConsensusState{
		Timestamp:          genesis,
		Root:               testutil.Hash("genesis app hash"),
		NextValidatorsHash: tc.vals.Set.Hash(),
	}))
	return tc
}

// header signed by all validators, trusting the consensus state at 1-10.
func (tc *testClient) header(height int64, tm time.Time, appHash []byte) *tendermint.Header {
	sh := tc.vals.SignedHeader(tc.t, testutil.HeaderParams{
		ChainID: chainID,
		Height:  height,
		Time:    tm,
		AppHash: appHash,
	})
	return &tendermint.Header{
		SignedHeader:      sh,
		ValidatorSet:      tc.vals.Set,
		TrustedHeight:     trustedHeight,
		TrustedValidators: tc.vals.Set,
	}
}

func (tc *testClient) update(h *tendermint.Header) []exported.Height {
	require.NoError(tc.t, tc.VerifyClientMessage(h, tc.now))
	require.False(tc.t, tc.CheckForMisbehaviour(h))
	heights, err := tc.UpdateState(h, tc.now)
	require.NoError(tc.t, err)
	return heights
}

func TestInitialize(t *testing.T) {
	tc := newTestClient(t)
	assert.Equal(t, exported.Active, tc.Status(tc.now))
	assert.Equal(t, trustedHeight, tc.LatestHeight())
	ts, err := tc.TimestampAtHeight(trustedHeight)
	require.NoError(t, err)
	assert.Equal(t, uint64(genesis.UnixNano()), ts)

	_, err = tc.TimestampAtHeight(exported.NewHeight(1, 9))
	require.ErrorIs(t, err, exported.ErrConsensusStateNotFound)

	err = tc.Initialize(clientState(), &tendermint.ConsensusState{
		Timestamp:          genesis,
		Root:               testutil.Hash("root"),
		NextValidatorsHash: tc.vals.Set.Hash(),
	})
	require.ErrorIs(t, err, exported.ErrClientAlreadyInitialized)

	uninitialized := tendermint.NewLightClient(store.NewMemStore())
	assert.Equal(t, exported.Unknown, uninitialized.Status(tc.now))
	assert.True(t, uninitialized.LatestHeight().IsZero())
}

func TestClientStateValidate(t *testing.T) {
	require.NoError(t, clientState().Validate())
	tests := []struct {
		name   string
		modify func(cs *tendermint.ClientState)
	}{
		{"empty chain id", func(cs *tendermint.ClientState) { cs.ChainID = " " }},
		{"trust level too low", func(cs *tendermint.ClientState) { cs.TrustLevel = tmmath.Fraction{Numerator: 1, Denominator: 4} }},
		{"trust level above one", func(cs *tendermint.ClientState) { cs.TrustLevel = tmmath.Fraction{Numerator: 4, Denominator: 3} }},
		{"zero trusting period", func(cs *tendermint.ClientState) { cs.TrustingPeriod = 0 }},
		{"trusting period not below unbonding", func(cs *tendermint.ClientState) { cs.TrustingPeriod = cs.UnbondingPeriod }},
		{"zero max clock drift", func(cs *tendermint.ClientState) { cs.MaxClockDrift = 0 }},
		{"zero latest height", func(cs *tendermint.ClientState) { cs.LatestHeight = exported.NewHeight(1, 0) }},
		{"revision mismatch", func(cs *tendermint.ClientState) { cs.LatestHeight = exported.NewHeight(0, 10) }},
		{"no proof specs", func(cs *tendermint.ClientState) { cs.ProofSpecs = nil }},
		{"nil proof spec", func(cs *tendermint.ClientState) { cs.ProofSpecs = []*ics.ProofSpec{nil} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := clientState()
			tt.modify(cs)
			require.ErrorIs(t, cs.Validate(), exported.ErrInvalidClientState)
		})
	}
}

func TestRevisionNumber(t *testing.T) {
	assert.Equal(t, uint64(1), tendermint.RevisionNumber("testchain-1"))
	assert.Equal(t, uint64(42), tendermint.RevisionNumber("cosmoshub-42"))
	assert.Equal(t, uint64(3), tendermint.RevisionNumber("a-b-3"))
	assert.Equal(t, uint64(0), tendermint.RevisionNumber("testchain"))
	assert.Equal(t, uint64(0), tendermint.RevisionNumber("testchain-0"))
	assert.Equal(t, uint64(0), tendermint.RevisionNumber("testchain-01"))
	assert.Equal(t, uint64(0), tendermint.RevisionNumber("-1"))
}

func TestUpdateState(t *testing.T) {
	tc := newTestClient(t)

	// adjacent
	h11 := tc.header(11, genesis.Add(10*time.Minute), tc.app.AppHash())
	heights := tc.update(h11)
	assert.Equal(t, []exported.Height{exported.NewHeight(1, 11)}, heights)
	assert.Equal(t, exported.NewHeight(1, 11), tc.LatestHeight())
	cs, err := tc.ConsensusState(exported.NewHeight(1, 11))
	require.NoError(t, err)
	assert.True(t, cs.Timestamp.Equal(h11.Time()))
	assert.Equal(t, tc.app.AppHash(), []byte(cs.Root))

	// applying it again writes nothing
	heights, err = tc.UpdateState(h11, tc.now)
	require.NoError(t, err)
	assert.Empty(t, heights)

	// skipping from 10 to 20
	h20 := tc.header(20, genesis.Add(20*time.Minute), testutil.Hash("app 20"))
	assert.Equal(t, []exported.Height{exported.NewHeight(1, 20)}, tc.update(h20))
	assert.Equal(t, exported.NewHeight(1, 20), tc.LatestHeight())

	// filling in below the latest height keeps it
	h15 := tc.header(15, genesis.Add(15*time.Minute), testutil.Hash("app 15"))
	h15.TrustedHeight = exported.NewHeight(1, 11)
	assert.Equal(t, []exported.Height{exported.NewHeight(1, 15)}, tc.update(h15))
	assert.Equal(t, exported.NewHeight(1, 20), tc.LatestHeight())

	ts, err := tc.TimestampAtHeight(exported.NewHeight(1, 15))
	require.NoError(t, err)
	assert.Equal(t, uint64(genesis.Add(15*time.Minute).UnixNano()), ts)

	_, err = tc.UpdateState(&tendermint.Misbehaviour{HeaderA: h11, HeaderB: h15}, tc.now)
	require.ErrorIs(t, err, exported.ErrInvalidClientMessage)
}

func TestVerifyHeaderRejects(t *testing.T) {
	tc := newTestClient(t)
	at := genesis.Add(10 * time.Minute)
	others := testutil.NewValidators(4, 2)

	t.Run("header from the future", func(t *testing.T) {
		h := tc.header(11, tc.now.Add(time.Minute), testutil.Hash("app"))
		var invalid light.ErrInvalidHeader
		require.ErrorAs(t, tc.VerifyClientMessage(h, tc.now), &invalid)
	})
	t.Run("header not after trusted time", func(t *testing.T) {
		h := tc.header(11, genesis, testutil.Hash("app"))
		var invalid light.ErrInvalidHeader
		require.ErrorAs(t, tc.VerifyClientMessage(h, tc.now), &invalid)
	})
	t.Run("unknown trusted height", func(t *testing.T) {
		h := tc.header(11, at, testutil.Hash("app"))
		h.TrustedHeight = exported.NewHeight(1, 9)
		require.ErrorIs(t, tc.VerifyClientMessage(h, tc.now), exported.ErrConsensusStateNotFound)
	})
	t.Run("untrusted validators", func(t *testing.T) {
		h := tc.header(11, at, testutil.Hash("app"))
		h.TrustedValidators = others.Set
		require.ErrorIs(t, tc.VerifyClientMessage(h, tc.now), exported.ErrInvalidClientMessage)
	})
	t.Run("signed by a different set", func(t *testing.T) {
		sh := others.SignedHeader(t, testutil.HeaderParams{ChainID: chainID, Height: 15, Time: at, AppHash: testutil.Hash("app")})
		h := &tendermint.Header{SignedHeader: sh, ValidatorSet: others.Set, TrustedHeight: trustedHeight, TrustedValidators: tc.vals.Set}
		var untrusted light.ErrNewValSetCantBeTrusted
		require.ErrorAs(t, tc.VerifyClientMessage(h, tc.now), &untrusted)
	})
	t.Run("half of the validators signed", func(t *testing.T) {
		sh := tc.vals.PartiallySignedHeader(t, testutil.HeaderParams{ChainID: chainID, Height: 15, Time: at, AppHash: testutil.Hash("app")}, 0, 2)
		h := &tendermint.Header{SignedHeader: sh, ValidatorSet: tc.vals.Set, TrustedHeight: trustedHeight, TrustedValidators: tc.vals.Set}
		var invalid light.ErrInvalidHeader
		require.ErrorAs(t, tc.VerifyClientMessage(h, tc.now), &invalid)
	})
	t.Run("other chain", func(t *testing.T) {
		sh := tc.vals.SignedHeader(t, testutil.HeaderParams{ChainID: "otherchain-1", Height: 11, Time: at, AppHash: testutil.Hash("app")})
		h := &tendermint.Header{SignedHeader: sh, ValidatorSet: tc.vals.Set, TrustedHeight: trustedHeight, TrustedValidators: tc.vals.Set}
		require.ErrorIs(t, tc.VerifyClientMessage(h, tc.now), exported.ErrInvalidClientMessage)
	})
	t.Run("trusted height not below header", func(t *testing.T) {
		h := tc.header(10, at, testutil.Hash("app"))
		require.ErrorIs(t, tc.VerifyClientMessage(h, tc.now), exported.ErrInvalidClientMessage)
	})
	t.Run("validator set does not match header", func(t *testing.T) {
		h := tc.header(11, at, testutil.Hash("app"))
		h.ValidatorSet = others.Set
		require.ErrorIs(t, tc.VerifyClientMessage(h, tc.now), exported.ErrInvalidClientMessage)
	})
	t.Run("missing signed header", func(t *testing.T) {
		h := &tendermint.Header{ValidatorSet: tc.vals.Set, TrustedHeight: trustedHeight, TrustedValidators: tc.vals.Set}
		require.ErrorIs(t, tc.VerifyClientMessage(h, tc.now), exported.ErrInvalidClientMessage)
	})

	// nothing was written
	assert.Equal(t, trustedHeight, tc.LatestHeight())
}

func TestExpiry(t *testing.T) {
	tc := newTestClient(t)
	expiry := genesis.Add(24 * time.Hour)
	assert.Equal(t, exported.Active, tc.Status(expiry.Add(-time.Nanosecond)))
	assert.Equal(t, exported.Expired, tc.Status(expiry))

	h := tc.header(11, genesis.Add(10*time.Minute), testutil.Hash("app"))
	require.ErrorIs(t, tc.VerifyClientMessage(h, expiry), exported.ErrClientExpired)
	_, err := tc.UpdateState(h, expiry)
	require.ErrorIs(t, err, exported.ErrClientExpired)

	tc.now = expiry
	proof, err := tc.app.Proof(packetKey)
	require.NoError(t, err)
	path := ics23.ApplyPrefix([]byte("ibc"), ics23.NewMerklePath(packetKey))
	require.ErrorIs(t, tc.VerifyMembership(trustedHeight, proof, path, []byte("packet commitment")), exported.ErrClientExpired)
}

func TestPruneExpiredConsensusStates(t *testing.T) {
	tc := newTestClient(t)
	tc.update(tc.header(11, genesis.Add(10*time.Minute), testutil.Hash("app 11")))

	// the state at 1-10 expired, the one at 1-11 has five minutes left
	tc.now = genesis.Add(24*time.Hour + 5*time.Minute)
	require.Equal(t, exported.Active, tc.Status(tc.now))
	h := tc.header(12, genesis.Add(24*time.Hour), testutil.Hash("app 12"))
	h.TrustedHeight = exported.NewHeight(1, 11)
	assert.Equal(t, []exported.Height{exported.NewHeight(1, 12)}, tc.update(h))

	_, err := tc.ConsensusState(trustedHeight)
	require.ErrorIs(t, err, exported.ErrConsensusStateNotFound)
	_, err = tc.ConsensusState(exported.NewHeight(1, 11))
	require.NoError(t, err)
	_, err = tc.ConsensusState(exported.NewHeight(1, 12))
	require.NoError(t, err)
}

func TestMembership(t *testing.T) {
	tc := newTestClient(t)
	height := exported.NewHeight(1, 11)
	tc.update(tc.header(11, genesis.Add(10*time.Minute), tc.app.AppHash()))

	path := ics23.ApplyPrefix([]byte("ibc"), ics23.NewMerklePath(packetKey))
	proof, err := tc.app.Proof(packetKey)
	require.NoError(t, err)
	require.NoError(t, tc.VerifyMembership(height, proof, path, []byte("packet commitment")))
	require.ErrorIs(t, tc.VerifyMembership(height, proof, path, []byte("other commitment")), ics23.ErrValueMismatch)

	// the genesis state commits to a different app hash
	var mismatch ics23.ErrCalculatedRootMismatch
	require.ErrorAs(t, tc.VerifyMembership(trustedHeight, proof, path, []byte("packet commitment")), &mismatch)

	absentPath := ics23.ApplyPrefix([]byte("ibc"), ics23.NewMerklePath(absentKey))
	absent, err := tc.app.Proof(absentKey)
	require.NoError(t, err)
	require.NoError(t, tc.VerifyNonMembership(height, absent, absentPath))
	require.ErrorIs(t, tc.VerifyNonMembership(height, proof, path), ics23.ErrMissingNonExistenceProof)
	require.ErrorIs(t, tc.VerifyMembership(height, absent, absentPath, []byte("packet commitment")), ics23.ErrMissingExistenceProof)

	require.ErrorIs(t, tc.VerifyMembership(exported.NewHeight(1, 12), proof, path, []byte("packet commitment")), exported.ErrInvalidProof)
	require.ErrorIs(t, tc.VerifyMembership(exported.NewHeight(1, 5), proof, path, []byte("packet commitment")), exported.ErrConsensusStateNotFound)
	require.ErrorIs(t, tc.VerifyMembership(height, []byte{0x0a, 0xff}, path, []byte("packet commitment")), ics23.ErrDecode)
	require.ErrorIs(t, tc.VerifyNonMembership(height, nil, absentPath), ics23.ErrEmptyProof)
}

func TestMisbehaviourFreezesClient(t *testing.T) {
	tc := newTestClient(t)
	tc.update(tc.header(11, genesis.Add(10*time.Minute), tc.app.AppHash()))

	at := genesis.Add(15 * time.Minute)
	m := &tendermint.Misbehaviour{
		HeaderA: tc.header(15, at, testutil.Hash("app a")),
		HeaderB: tc.header(15, at, testutil.Hash("app b")),
	}
	require.NoError(t, tc.VerifyClientMessage(m, tc.now))
	require.True(t, tc.CheckForMisbehaviour(m))
	require.NoError(t, tc.UpdateStateOnMisbehaviour(m))

	assert.Equal(t, exported.Frozen, tc.Status(tc.now))
	proof, err := tc.app.Proof(packetKey)
	require.NoError(t, err)
	path := ics23.ApplyPrefix([]byte("ibc"), ics23.NewMerklePath(packetKey))
	require.ErrorIs(t, tc.VerifyMembership(exported.NewHeight(1, 11), proof, path, []byte("packet commitment")), exported.ErrClientFrozen)
	require.ErrorIs(t, tc.VerifyNonMembership(exported.NewHeight(1, 11), proof, path), exported.ErrClientFrozen)

	h := tc.header(16, genesis.Add(16*time.Minute), testutil.Hash("app 16"))
	require.ErrorIs(t, tc.VerifyClientMessage(h, tc.now), exported.ErrClientFrozen)
	_, err = tc.UpdateState(h, tc.now)
	require.ErrorIs(t, err, exported.ErrClientFrozen)
}

func TestMisbehaviourEvidence(t *testing.T) {
	tc := newTestClient(t)
	at := genesis.Add(15 * time.Minute)
	h15 := tc.header(15, at, testutil.Hash("app 15"))

	t.Run("same header twice", func(t *testing.T) {
		m := &tendermint.Misbehaviour{HeaderA: h15, HeaderB: h15}
		require.ErrorIs(t, tc.VerifyClientMessage(m, tc.now), exported.ErrMisbehaviourNotFound)
		assert.False(t, tc.CheckForMisbehaviour(m))
	})
	t.Run("higher header not later", func(t *testing.T) {
		m := &tendermint.Misbehaviour{HeaderA: h15, HeaderB: tc.header(16, at, testutil.Hash("app 16"))}
		require.NoError(t, tc.VerifyClientMessage(m, tc.now))
		assert.True(t, tc.CheckForMisbehaviour(m))
	})
	t.Run("consistent headers", func(t *testing.T) {
		m := &tendermint.Misbehaviour{HeaderA: h15, HeaderB: tc.header(16, at.Add(time.Second), testutil.Hash("app 16"))}
		require.ErrorIs(t, tc.VerifyClientMessage(m, tc.now), exported.ErrMisbehaviourNotFound)
		assert.False(t, tc.CheckForMisbehaviour(m))
	})
	t.Run("headers out of order", func(t *testing.T) {
		m := &tendermint.Misbehaviour{HeaderA: tc.header(16, at, testutil.Hash("app 16")), HeaderB: h15}
		require.ErrorIs(t, tc.VerifyClientMessage(m, tc.now), exported.ErrInvalidMisbehaviourHeaderSequence)
	})
	t.Run("missing header", func(t *testing.T) {
		require.ErrorIs(t, tc.VerifyClientMessage(&tendermint.Misbehaviour{HeaderA: h15}, tc.now), exported.ErrInvalidClientMessage)
	})
	t.Run("header not signed by trusted validators", func(t *testing.T) {
		others := testutil.NewValidators(4, 2)
		sh := others.SignedHeader(t, testutil.HeaderParams{ChainID: chainID, Height: 15, Time: at, AppHash: testutil.Hash("forged")})
		forged := &tendermint.Header{SignedHeader: sh, ValidatorSet: others.Set, TrustedHeight: trustedHeight, TrustedValidators: tc.vals.Set}
		m := &tendermint.Misbehaviour{HeaderA: h15, HeaderB: forged}
		require.ErrorIs(t, tc.VerifyClientMessage(m, tc.now), exported.ErrInvalidClientMessage)
	})
	t.Run("trusted state outside trusting period", func(t *testing.T) {
		m := &tendermint.Misbehaviour{HeaderA: h15, HeaderB: tc.header(15, at, testutil.Hash("app b"))}
		now := genesis.Add(24*time.Hour - time.Second)
		require.NoError(t, tc.VerifyClientMessage(m, now))
		tc.update(tc.header(11, genesis.Add(10*time.Minute), testutil.Hash("app 11")))
		// 1-10 is still stored but too old to vouch for a header
		require.ErrorIs(t, tc.VerifyClientMessage(m, genesis.Add(24*time.Hour+time.Second)), exported.ErrInvalidClientMessage)
	})
	assert.Equal(t, exported.Active, tc.Status(tc.now))
}

func TestHeaderMisbehaviour(t *testing.T) {
	tc := newTestClient(t)
	h11 := tc.header(11, genesis.Add(10*time.Minute), testutil.Hash("app 11"))
	tc.update(h11)
	tc.update(tc.header(20, genesis.Add(20*time.Minute), testutil.Hash("app 20")))

	// a second block at an existing height
	conflicting := tc.header(11, genesis.Add(10*time.Minute), testutil.Hash("other app 11"))
	require.NoError(t, tc.VerifyClientMessage(conflicting, tc.now))
	assert.True(t, tc.CheckForMisbehaviour(conflicting))
	assert.False(t, tc.CheckForMisbehaviour(h11))

	// time must increase with height
	assert.True(t, tc.CheckForMisbehaviour(tc.header(15, genesis.Add(5*time.Minute), testutil.Hash("app 15"))))
	assert.True(t, tc.CheckForMisbehaviour(tc.header(15, genesis.Add(25*time.Minute), testutil.Hash("app 15"))))
	assert.True(t, tc.CheckForMisbehaviour(tc.header(15, genesis.Add(20*time.Minute), testutil.Hash("app 15"))))
	assert.False(t, tc.CheckForMisbehaviour(tc.header(15, genesis.Add(15*time.Minute), testutil.Hash("app 15"))))
	assert.False(t, tc.CheckForMisbehaviour(tc.header(21, genesis.Add(21*time.Minute), testutil.Hash("app 21"))))

	require.NoError(t, tc.UpdateStateOnMisbehaviour(conflicting))
	assert.Equal(t, exported.Frozen, tc.Status(tc.now))
}

func TestDecodeHeader(t *testing.T) {
	tc := newTestClient(t)
	h := tc.header(11, genesis.Add(10*time.Minute), tc.app.AppHash())
	enc, err := h.Marshal()
	require.NoError(t, err)
	dec, err := tendermint.DecodeHeader(enc)
	require.NoError(t, err)
	assert.Equal(t, h.Height(), dec.Height())
	assert.Equal(t, h.TrustedHeight, dec.TrustedHeight)
	assert.Equal(t, h.SignedHeader.Hash(), dec.SignedHeader.Hash())
	assert.Equal(t, h.ValidatorSet.Hash(), dec.ValidatorSet.Hash())
	assert.Equal(t, h.TrustedValidators.Hash(), dec.TrustedValidators.Hash())
	assert.Equal(t, []exported.Height{exported.NewHeight(1, 11)}, tc.update(dec))

	m := &tendermint.Misbehaviour{
		HeaderA: tc.header(15, genesis.Add(15*time.Minute), testutil.Hash("app a")),
		HeaderB: tc.header(15, genesis.Add(15*time.Minute), testutil.Hash("app b")),
	}
	menc, err := m.Marshal()
	require.NoError(t, err)
	mdec, err := tendermint.DecodeMisbehaviour(menc)
	require.NoError(t, err)
	assert.Equal(t, m.HeaderA.SignedHeader.Hash(), mdec.HeaderA.SignedHeader.Hash())
	assert.Equal(t, m.HeaderB.SignedHeader.Hash(), mdec.HeaderB.SignedHeader.Hash())
	require.NoError(t, tc.VerifyClientMessage(mdec, tc.now))

	for name, data := range map[string][]byte{
		"empty":       nil,
		"truncated":   enc[:len(enc)-1],
		"wire type":   {0x08, 0x01},
		"bad tag":     {0xff},
		"bad payload": {0x0a, 0x02, 0xff, 0xff},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tendermint.DecodeHeader(data)
			require.ErrorIs(t, err, tendermint.ErrDecode)
		})
	}
	_, err = tendermint.DecodeMisbehaviour(enc)
	require.ErrorIs(t, err, tendermint.ErrDecode)
}
