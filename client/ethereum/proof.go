package ethereum

import (
	"github.com/MariusVanDerWijden/ibc-lc/core"
	"github.com/MariusVanDerWijden/ibc-lc/exported"
	"github.com/MariusVanDerWijden/ibc-lc/ics23"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// EncodeStorageProof encodes the nodes of a storage proof as an RLP list.
func EncodeStorageProof(proof [][]byte) ([]byte, error) {
	return rlp.EncodeToBytes(proof)
}

func decodeStorageProof(data []byte) ([][]byte, error) {
	var proof [][]byte
	if err := rlp.DecodeBytes(data, &proof); err != nil {
		return nil, errors.Wrap(exported.ErrInvalidProof, err.Error())
	}
	if len(proof) == 0 {
		return nil, errors.Wrap(exported.ErrInvalidProof, "empty storage proof")
	}
	return proof, nil
}

// commitmentKey is the storage slot of the last element of path, the
// commitment path inside the IBC contract.
func (c *LightClient) commitmentKey(cs *ClientState, path ics23.MerklePath) (common.Hash, error) {
	if path.Empty() {
		return common.Hash{}, errors.Wrap(exported.ErrInvalidPath, "empty path")
	}
	return core.CommitmentKey(path.Last(), cs.IBCCommitmentSlot), nil
}

// VerifyMembership proves that the IBC contract committed value at path at
// height.
func (c *LightClient) VerifyMembership(height exported.Height, proof []byte, path ics23.MerklePath, value []byte) error {
	err := c.verifyMembership(height, proof, path, value)
	membershipVerifications.WithLabelValues("membership", result(err)).Inc()
	return err
}

func (c *LightClient) verifyMembership(height exported.Height, proof []byte, path ics23.MerklePath, value []byte) error {
	cs, consensusState, key, nodes, err := c.proofContext(height, proof, path)
	if err != nil {
		return err
	}
	if len(value) == 0 {
		return errors.Wrap(exported.ErrInvalidProof, "empty value")
	}
	committed := core.CommitmentValue(value)
	if err := core.VerifyStorageProof(consensusState.StorageRoot, key, committed[:], nodes); err != nil {
		return errors.Wrapf(err, "path %v in contract %v", path, cs.IBCAddress)
	}
	return nil
}

// VerifyNonMembership proves that nothing was committed at path at height.
func (c *LightClient) VerifyNonMembership(height exported.Height, proof []byte, path ics23.MerklePath) error {
	err := c.verifyNonMembership(height, proof, path)
	membershipVerifications.WithLabelValues("non-membership", result(err)).Inc()
	return err
}

func (c *LightClient) verifyNonMembership(height exported.Height, proof []byte, path ics23.MerklePath) error {
	cs, consensusState, key, nodes, err := c.proofContext(height, proof, path)
	if err != nil {
		return err
	}
	if err := core.VerifyStorageAbsence(consensusState.StorageRoot, key, nodes); err != nil {
		return errors.Wrapf(err, "path %v in contract %v", path, cs.IBCAddress)
	}
	return nil
}

func (c *LightClient) proofContext(height exported.Height, proof []byte, path ics23.MerklePath) (*ClientState, *ConsensusState, common.Hash, [][]byte, error) {
	cs, err := c.activeClientState(c.clock())
	if err != nil {
		return nil, nil, common.Hash{}, nil, err
	}
	consensusState, err := c.ConsensusState(height)
	if err != nil {
		return nil, nil, common.Hash{}, nil, err
	}
	key, err := c.commitmentKey(cs, path)
	if err != nil {
		return nil, nil, common.Hash{}, nil, err
	}
	nodes, err := decodeStorageProof(proof)
	if err != nil {
		return nil, nil, common.Hash{}, nil, err
	}
	return cs, consensusState, key, nodes, nil
}
