package core

import (
	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/merkle"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

func computeForkDataRoot(version config.Version, genesisValidatorsRoot common.Hash) (common.Hash, error) {
	data := types.ForkData{CurrentVersion: version, GenesisValidatorsRoot: genesisValidatorsRoot}
	return data.HashTreeRoot()
}

// ComputeDomain is domainType || forkDataRoot[:28].
func ComputeDomain(domainType [4]byte, version config.Version, genesisValidatorsRoot common.Hash) (types.Domain, error) {
	root, err := computeForkDataRoot(version, genesisValidatorsRoot)
	if err != nil {
		return types.Domain{}, err
	}
	var domain types.Domain
	copy(domain[:4], domainType[:])
	copy(domain[4:], root[:28])
	return domain, nil
}

func ComputeSigningRoot(objectRoot common.Hash, domain types.Domain) (common.Hash, error) {
	data := types.SigningData{ObjectRoot: objectRoot, Domain: domain}
	return data.HashTreeRoot()
}

// SyncCommitteeDomain returns the domain a sync committee signs with at
// signatureSlot. The signature covers the block of the previous slot, so
// the fork version is the one active at that slot.
func SyncCommitteeDomain(ctx *config.ChainContext, signatureSlot types.Slot, genesisValidatorsRoot common.Hash) (types.Domain, error) {
	slot := signatureSlot
	if slot < 1 {
		slot = 1
	}
	version := ctx.ForkVersion(uint64(ComputeEpochAtSlot(ctx, slot-1)))
	return ComputeDomain(config.DOMAIN_SYNC_COMMITTEE, version, genesisValidatorsRoot)
}

// IsValidLightClientHeader checks the execution part of a header. From
// Capella on the execution payload header is proven against the beacon
// body root, before Capella it must be absent.
func IsValidLightClientHeader(ctx *config.ChainContext, header *types.LightClientHeader) error {
	fork := ComputeForkAtSlot(ctx, header.Beacon.Slot)
	if fork < config.Capella {
		if header.Execution != nil || len(header.ExecutionBranch) != 0 {
			return errors.Wrapf(ErrInvalidExecutionHeader, "execution header at %v", fork)
		}
		return nil
	}
	if header.Execution == nil {
		return errors.Wrapf(ErrInvalidExecutionHeader, "missing execution header at %v", fork)
	}
	root, err := header.Execution.HashTreeRoot(fork)
	if err != nil {
		return errors.Wrap(ErrInvalidExecutionHeader, err.Error())
	}
	if err := merkle.VerifyGindex(root, header.ExecutionBranch, config.EXECUTION_PAYLOAD_GINDEX, header.Beacon.BodyRoot); err != nil {
		return errors.Wrap(err, "execution payload branch")
	}
	return nil
}
