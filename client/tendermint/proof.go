package tendermint

import (
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/ics23"
	"github.com/pkg/errors"
)

// VerifyMembership proves value at path in the app state at height.
func (c *LightClient) VerifyMembership(height exported.Height, proof []byte, path ics23.MerklePath, value []byte) error {
	err := c.verifyMembership(height, proof, path, value)
	membershipVerifications.WithLabelValues("membership", result(err)).Inc()
	return err
}

func (c *LightClient) verifyMembership(height exported.Height, proof []byte, path ics23.MerklePath, value []byte) error {
	cs, consensusState, mp, err := c.proofContext(height, proof)
	if err != nil {
		return err
	}
	if err := mp.VerifyMembership(cs.ProofSpecs, consensusState.Root, path, value); err != nil {
		return errors.Wrapf(err, "path %v at %v", path, height)
	}
	return nil
}

// VerifyNonMembership proves that path is absent from the app state at
// height.
func (c *LightClient) VerifyNonMembership(height exported.Height, proof []byte, path ics23.MerklePath) error {
	err := c.verifyNonMembership(height, proof, path)
	membershipVerifications.WithLabelValues("non-membership", result(err)).Inc()
	return err
}

func (c *LightClient) verifyNonMembership(height exported.Height, proof []byte, path ics23.MerklePath) error {
	cs, consensusState, mp, err := c.proofContext(height, proof)
	if err != nil {
		return err
	}
	if err := mp.VerifyNonMembership(cs.ProofSpecs, consensusState.Root, path); err != nil {
		return errors.Wrapf(err, "path %v at %v", path, height)
	}
	return nil
}

func (c *LightClient) proofContext(height exported.Height, proof []byte) (*ClientState, *ConsensusState, *ics23.MerkleProof, error) {
	cs, err := c.activeClientState(c.clock())
	if err != nil {
		return nil, nil, nil, err
	}
	if cs.LatestHeight.LT(height) {
		return nil, nil, nil, errors.Wrapf(exported.ErrInvalidProof, "proof height %v above latest height %v", height, cs.LatestHeight)
	}
	consensusState, err := c.ConsensusState(height)
	if err != nil {
		return nil, nil, nil, err
	}
	mp, err := ics23.DecodeMerkleProof(proof)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "merkle proof")
	}
	return cs, consensusState, mp, nil
}
