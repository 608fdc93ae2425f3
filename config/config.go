package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Fraction is a numerator/denominator pair, e.g. a 2/3 signature threshold.
type Fraction struct {
	Numerator   uint64 `yaml:"NUMERATOR" json:"numerator"`
	Denominator uint64 `yaml:"DENOMINATOR" json:"denominator"`
}

// ChainContext holds the consensus parameters of one beacon chain. It is
// loaded once when a client is created and never mutated afterwards.
type ChainContext struct {
	PresetBase                   string       `yaml:"PRESET_BASE" json:"preset_base"`
	ConfigName                   string       `yaml:"CONFIG_NAME" json:"config_name"`
	SlotsPerEpoch                uint64       `yaml:"SLOTS_PER_EPOCH" json:"slots_per_epoch"`
	EpochsPerSyncCommitteePeriod uint64       `yaml:"EPOCHS_PER_SYNC_COMMITTEE_PERIOD" json:"epochs_per_sync_committee_period"`
	SyncCommitteeSize            uint64       `yaml:"SYNC_COMMITTEE_SIZE" json:"sync_committee_size"`
	SecondsPerSlot               uint64       `yaml:"SECONDS_PER_SLOT" json:"seconds_per_slot"`
	GenesisTime                  uint64       `yaml:"GENESIS_TIME" json:"genesis_time"`
	Forks                        []ForkParams `yaml:"FORKS" json:"forks"`
	MinSyncCommitteeParticipants uint64       `yaml:"MIN_SYNC_COMMITTEE_PARTICIPANTS" json:"min_sync_committee_participants"`
	SignatureThreshold           Fraction     `yaml:"SIGNATURE_THRESHOLD" json:"signature_threshold"`
}

// Copy returns a deep copy of the context.
func (c *ChainContext) Copy() *ChainContext {
	cpy := *c
	cpy.Forks = append([]ForkParams(nil), c.Forks...)
	return &cpy
}

// Validate checks the context for values that would break period arithmetic
// or the fork schedule.
func (c *ChainContext) Validate() error {
	switch {
	case c.SlotsPerEpoch == 0:
		return errors.New("slots per epoch must be positive")
	case c.EpochsPerSyncCommitteePeriod == 0:
		return errors.New("epochs per sync committee period must be positive")
	case c.SecondsPerSlot == 0:
		return errors.New("seconds per slot must be positive")
	case c.SyncCommitteeSize != 32 && c.SyncCommitteeSize != 512:
		return errors.Errorf("unsupported sync committee size %d", c.SyncCommitteeSize)
	case c.MinSyncCommitteeParticipants > c.SyncCommitteeSize:
		return errors.Errorf("min sync committee participants %d exceeds committee size %d", c.MinSyncCommitteeParticipants, c.SyncCommitteeSize)
	case c.SignatureThreshold.Denominator == 0:
		return errors.New("signature threshold denominator must be positive")
	case c.SignatureThreshold.Numerator > c.SignatureThreshold.Denominator:
		return errors.Errorf("signature threshold %d/%d exceeds one", c.SignatureThreshold.Numerator, c.SignatureThreshold.Denominator)
	case len(c.Forks) == 0:
		return errors.New("empty fork schedule")
	case c.Forks[0].Epoch != GENESIS_EPOCH:
		return errors.Errorf("first fork %v must start at genesis, got epoch %d", c.Forks[0].Fork, c.Forks[0].Epoch)
	}
	for i := 1; i < len(c.Forks); i++ {
		prev, cur := c.Forks[i-1], c.Forks[i]
		if cur.Fork <= prev.Fork {
			return errors.Errorf("fork %v listed after %v", cur.Fork, prev.Fork)
		}
		if cur.Epoch < prev.Epoch {
			return errors.Errorf("fork %v at epoch %d precedes %v at epoch %d", cur.Fork, cur.Epoch, prev.Fork, prev.Epoch)
		}
	}
	return nil
}

// SlotsPerPeriod is the number of slots in one sync committee period.
func (c *ChainContext) SlotsPerPeriod() uint64 {
	return c.SlotsPerEpoch * c.EpochsPerSyncCommitteePeriod
}

// ForkAtEpoch returns the latest fork scheduled at or before epoch.
func (c *ChainContext) ForkAtEpoch(epoch uint64) ForkParams {
	fork := c.Forks[0]
	for _, f := range c.Forks[1:] {
		if f.Epoch > epoch {
			break
		}
		fork = f
	}
	return fork
}

// ForkVersion returns the fork version active at epoch.
func (c *ChainContext) ForkVersion(epoch uint64) Version {
	return c.ForkAtEpoch(epoch).Version
}

// ParseChainContext decodes a YAML chain config. Values missing from the
// document are taken from the preset named by PRESET_BASE (mainnet by
// default).
func ParseChainContext(data []byte) (*ChainContext, error) {
	var base struct {
		PresetBase string `yaml:"PRESET_BASE"`
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, errors.Wrap(err, "could not parse chain config")
	}
	var conf *ChainContext
	switch base.PresetBase {
	case "", "mainnet":
		conf = Mainnet()
	case "minimal":
		conf = Minimal()
	default:
		return nil, errors.Errorf("unknown preset base %q", base.PresetBase)
	}
	if err := yaml.UnmarshalStrict(data, conf); err != nil {
		return nil, errors.Wrap(err, "could not parse chain config")
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid chain config")
	}
	return conf, nil
}

// LoadChainContext reads and parses a YAML chain config file.
func LoadChainContext(path string) (*ChainContext, error) {
	data, err := ioutil.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrapf(err, "could not read chain config %s", path)
	}
	return ParseChainContext(data)
}
