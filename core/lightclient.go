package core

import (
	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/MariusVanDerWijden/ibc-lc/crypto/bls"
	"github.com/MariusVanDerWijden/ibc-lc/merkle"
	"github.com/MariusVanDerWijden/ibc-lc/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// SyncCommitteeView is the read side of a light client store.
type SyncCommitteeView interface {
	CurrentSlot() types.Slot
	GetCurrentSyncCommittee() *types.SyncCommittee
	// GetNextSyncCommittee is nil while the next committee is unknown.
	GetNextSyncCommittee() *types.SyncCommittee
}

// SyncCommitteeKeeper is the store as seen by ApplySyncCommitteeUpdate,
// the only code that writes to it.
type SyncCommitteeKeeper interface {
	SyncCommitteeView
	SetFinalizedHeader(header *types.LightClientHeader)
	SetCurrentSyncCommittee(committee *types.SyncCommittee)
	SetNextSyncCommittee(committee *types.SyncCommittee)
}

var _ SyncCommitteeKeeper = (*types.LightClientStore)(nil)

// ValidateBasic checks that an update is internally consistent and
// sufficiently attested. It does not touch the signature.
func ValidateBasic(ctx *config.ChainContext, update types.ConsensusUpdate, currentSlot types.Slot) error {
	finalized := update.GetFinalizedHeader()
	if finalized.Beacon.IsEmpty() {
		return ErrFinalizedHeaderNotFound
	}
	// A genesis checkpoint proves no header, so its fields are unchecked.
	if finalized.Beacon.Slot == config.GENESIS_SLOT {
		return errors.Wrap(ErrFinalizedHeaderNotFound, "finalized header at genesis slot")
	}
	if next := update.GetNextSyncCommittee(); next != nil {
		if err := next.Validate(); err != nil {
			return errors.Wrap(err, "next sync committee")
		}
	}
	var (
		signatureSlot = update.GetSignatureSlot()
		attestedSlot  = update.GetAttestedHeader().Beacon.Slot
		finalizedSlot = finalized.Beacon.Slot
	)
	if !(currentSlot >= signatureSlot && signatureSlot > attestedSlot && attestedSlot >= finalizedSlot) {
		return ErrInconsistentSlotOrder{
			CurrentSlot:   currentSlot,
			SignatureSlot: signatureSlot,
			AttestedSlot:  attestedSlot,
			FinalizedSlot: finalizedSlot,
		}
	}
	participants := update.GetSyncAggregate().NumParticipants()
	if participants < ctx.MinSyncCommitteeParticipants {
		return ErrLessThanMinimalParticipants{Participants: participants, Minimum: ctx.MinSyncCommitteeParticipants}
	}
	threshold := ctx.SignatureThreshold
	if participants*threshold.Denominator < ctx.SyncCommitteeSize*threshold.Numerator {
		return ErrInsufficientParticipants{Participants: participants, CommitteeSize: ctx.SyncCommitteeSize}
	}
	return nil
}

// VerifyUpdate fully verifies an update against the store: ValidateBasic,
// committee selection, relevance, header validity, the finality and next
// committee branches and finally the aggregate signature.
func VerifyUpdate(ctx *config.ChainContext, view SyncCommitteeView, update types.ConsensusUpdate, currentSlot types.Slot, genesisValidatorsRoot common.Hash) error {
	if err := ValidateBasic(ctx, update, currentSlot); err != nil {
		return err
	}
	var (
		attested        = update.GetAttestedHeader()
		finalized       = update.GetFinalizedHeader()
		next            = update.GetNextSyncCommittee()
		storePeriod     = ComputeSyncCommitteePeriodAtSlot(ctx, view.CurrentSlot())
		signaturePeriod = ComputeSyncCommitteePeriodAtSlot(ctx, update.GetSignatureSlot())
		attestedPeriod  = ComputeSyncCommitteePeriodAtSlot(ctx, attested.Beacon.Slot)
		nextKnown       = view.GetNextSyncCommittee() != nil
	)
	if !(signaturePeriod == storePeriod || (nextKnown && signaturePeriod == storePeriod+1)) {
		return ErrUnknownSyncCommittee{StorePeriod: storePeriod, SignaturePeriod: signaturePeriod}
	}

	addsNextCommittee := next != nil && !nextKnown && attestedPeriod == storePeriod
	if attested.Beacon.Slot <= view.CurrentSlot() && !addsNextCommittee {
		return ErrIrrelevantUpdate
	}

	if err := IsValidLightClientHeader(ctx, attested); err != nil {
		return errors.Wrap(err, "attested header")
	}
	if err := IsValidLightClientHeader(ctx, finalized); err != nil {
		return errors.Wrap(err, "finalized header")
	}

	fork := update.Fork()
	if err := merkle.VerifyGindex(finalized.Beacon.Root(), update.GetFinalityBranch(), config.FinalizedRootGindex(fork), attested.Beacon.StateRoot); err != nil {
		return errors.Wrap(err, "finality branch")
	}

	if next != nil {
		if attestedPeriod == storePeriod && nextKnown && !next.Equal(view.GetNextSyncCommittee()) {
			return ErrNextSyncCommitteeMismatch
		}
		root, err := next.HashTreeRoot()
		if err != nil {
			return errors.Wrap(err, "next sync committee root")
		}
		if err := merkle.VerifyGindex(root, update.GetNextSyncCommitteeBranch(), config.NextSyncCommitteeGindex(fork), attested.Beacon.StateRoot); err != nil {
			return errors.Wrap(err, "next sync committee branch")
		}
	}

	committee := view.GetCurrentSyncCommittee()
	if signaturePeriod != storePeriod {
		committee = view.GetNextSyncCommittee()
	}
	return verifySyncAggregate(ctx, committee, update.GetSyncAggregate(), attested.Beacon.Root(), update.GetSignatureSlot(), genesisValidatorsRoot)
}

func verifySyncAggregate(ctx *config.ChainContext, committee *types.SyncCommittee, aggregate *types.SyncAggregate, attestedRoot common.Hash, signatureSlot types.Slot, genesisValidatorsRoot common.Hash) error {
	participants := aggregate.Participants()
	pubkeys := make([]*bls.PublicKey, 0, len(participants))
	for _, i := range participants {
		if i >= uint64(len(committee.PubKeys)) {
			return errors.Errorf("participant %d outside committee of %d", i, len(committee.PubKeys))
		}
		pk, err := bls.PublicKeyFromBytes(committee.PubKeys[i][:])
		if err != nil {
			return errors.Wrapf(err, "committee member %d", i)
		}
		pubkeys = append(pubkeys, pk)
	}
	domain, err := SyncCommitteeDomain(ctx, signatureSlot, genesisValidatorsRoot)
	if err != nil {
		return err
	}
	signingRoot, err := ComputeSigningRoot(attestedRoot, domain)
	if err != nil {
		return err
	}
	sig, err := bls.SignatureFromBytes(aggregate.SyncCommitteeSignature[:])
	if err != nil {
		return errors.Wrap(ErrInvalidSignature, err.Error())
	}
	if !sig.FastAggregateVerify(pubkeys, signingRoot) {
		return ErrInvalidSignature
	}
	return nil
}
