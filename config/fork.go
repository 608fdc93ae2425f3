package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// FAR_FUTURE_EPOCH marks a fork that is not scheduled.
const FAR_FUTURE_EPOCH = math.MaxUint64

type Fork uint8

const (
	Phase0 Fork = iota
	Altair
	Bellatrix
	Capella
	Deneb
	Electra
)

var forkNames = []string{"phase0", "altair", "bellatrix", "capella", "deneb", "electra"}

func (f Fork) String() string {
	if int(f) < len(forkNames) {
		return forkNames[f]
	}
	return fmt.Sprintf("fork(%d)", uint8(f))
}

// ForkFromString parses a fork name, case insensitive.
func ForkFromString(name string) (Fork, error) {
	for i, n := range forkNames {
		if strings.EqualFold(n, name) {
			return Fork(i), nil
		}
	}
	return 0, errors.Errorf("unknown fork %q", name)
}

func (f Fork) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

func (f *Fork) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	fork, err := ForkFromString(name)
	if err != nil {
		return err
	}
	*f = fork
	return nil
}

func (f Fork) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Fork) UnmarshalText(text []byte) error {
	fork, err := ForkFromString(string(text))
	if err != nil {
		return err
	}
	*f = fork
	return nil
}

// Version is a 4 byte fork version.
type Version [4]byte

func (v Version) String() string {
	return hexutil.Encode(v[:])
}

func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

func (v *Version) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return v.UnmarshalText([]byte(s))
}

func (v Version) MarshalText() ([]byte, error) {
	return hexutil.Bytes(v[:]).MarshalText()
}

func (v *Version) UnmarshalText(text []byte) error {
	return hexutil.UnmarshalFixedText("Version", text, v[:])
}

// ForkParams schedules one fork: from Epoch on, Version is the fork version.
type ForkParams struct {
	Fork    Fork    `yaml:"NAME" json:"name"`
	Version Version `yaml:"VERSION" json:"version"`
	Epoch   uint64  `yaml:"EPOCH" json:"epoch"`
}

// FinalizedRootGindex returns the generalized index of the finalized
// checkpoint root in the beacon state of the given fork.
func FinalizedRootGindex(f Fork) uint64 {
	if f >= Electra {
		return FINALIZED_ROOT_GINDEX_ELECTRA
	}
	return FINALIZED_ROOT_GINDEX
}

func CurrentSyncCommitteeGindex(f Fork) uint64 {
	if f >= Electra {
		return CURRENT_SYNC_COMMITTEE_GINDEX_ELECTRA
	}
	return CURRENT_SYNC_COMMITTEE_GINDEX
}

func NextSyncCommitteeGindex(f Fork) uint64 {
	if f >= Electra {
		return NEXT_SYNC_COMMITTEE_GINDEX_ELECTRA
	}
	return NEXT_SYNC_COMMITTEE_GINDEX
}
