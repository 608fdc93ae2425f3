package config

// Mainnet returns the Ethereum mainnet chain context.
func Mainnet() *ChainContext {
	return &ChainContext{
		PresetBase:                   "mainnet",
		ConfigName:                   "mainnet",
		SlotsPerEpoch:                32,
		EpochsPerSyncCommitteePeriod: 256,
		SyncCommitteeSize:            512,
		SecondsPerSlot:               12,
		GenesisTime:                  1606824023,
		Forks: []ForkParams{
			{Fork: Phase0, Version: Version{0x00, 0x00, 0x00, 0x00}, Epoch: 0},
			{Fork: Altair, Version: Version{0x01, 0x00, 0x00, 0x00}, Epoch: 74240},
			{Fork: Bellatrix, Version: Version{0x02, 0x00, 0x00, 0x00}, Epoch: 144896},
			{Fork: Capella, Version: Version{0x03, 0x00, 0x00, 0x00}, Epoch: 194048},
			{Fork: Deneb, Version: Version{0x04, 0x00, 0x00, 0x00}, Epoch: 269568},
			{Fork: Electra, Version: Version{0x05, 0x00, 0x00, 0x00}, Epoch: 364032},
		},
		MinSyncCommitteeParticipants: 1,
		SignatureThreshold:           Fraction{Numerator: 2, Denominator: 3},
	}
}

// Minimal returns the minimal preset used by test networks. Every fork up to
// Deneb is active from genesis.
func Minimal() *ChainContext {
	return &ChainContext{
		PresetBase:                   "minimal",
		ConfigName:                   "minimal",
		SlotsPerEpoch:                8,
		EpochsPerSyncCommitteePeriod: 8,
		SyncCommitteeSize:            32,
		SecondsPerSlot:               6,
		GenesisTime:                  1578009600,
		Forks: []ForkParams{
			{Fork: Phase0, Version: Version{0x00, 0x00, 0x00, 0x01}, Epoch: 0},
			{Fork: Altair, Version: Version{0x01, 0x00, 0x00, 0x01}, Epoch: 0},
			{Fork: Bellatrix, Version: Version{0x02, 0x00, 0x00, 0x01}, Epoch: 0},
			{Fork: Capella, Version: Version{0x03, 0x00, 0x00, 0x01}, Epoch: 0},
			{Fork: Deneb, Version: Version{0x04, 0x00, 0x00, 0x01}, Epoch: 0},
			{Fork: Electra, Version: Version{0x05, 0x00, 0x00, 0x01}, Epoch: FAR_FUTURE_EPOCH},
		},
		MinSyncCommitteeParticipants: 1,
		SignatureThreshold:           Fraction{Numerator: 2, Denominator: 3},
	}
}
