// Package exported holds the surface shared by every light client flavor:
// heights, client status and the errors callers match on.
package exported

import (
	"fmt"

	"github.com/pkg/errors"
)

// Status of a light client.
type Status string

const (
	Active  Status = "Active"
	Frozen  Status = "Frozen"
	Expired Status = "Expired"
	Unknown Status = "Unknown"
)

func (s Status) String() string { return string(s) }

var (
	ErrClientFrozen                      = errors.New("client is frozen")
	ErrClientExpired                     = errors.New("client is expired")
	ErrClientNotActive                   = errors.New("client is not active")
	ErrClientNotInitialized              = errors.New("client is not initialized")
	ErrClientAlreadyInitialized          = errors.New("client is already initialized")
	ErrConsensusStateNotFound            = errors.New("consensus state not found")
	ErrInvalidClientMessage              = errors.New("invalid client message")
	ErrInvalidMisbehaviourHeaderSequence = errors.New("misbehaviour headers are not ordered by height")
	ErrMisbehaviourNotFound              = errors.New("misbehaviour not found")
	ErrInvalidProof                      = errors.New("invalid proof")
	ErrInvalidPath                       = errors.New("invalid path")
	ErrInvalidClientState                = errors.New("invalid client state")
	ErrInvalidConsensusState             = errors.New("invalid consensus state")
)

// ClientMessage is a header or misbehaviour submitted to a client.
type ClientMessage interface {
	ClientType() string
	ValidateBasic() error
}

// StatusError maps a non-active status to its error.
func StatusError(s Status) error {
	switch s {
	case Active:
		return nil
	case Frozen:
		return ErrClientFrozen
	case Expired:
		return ErrClientExpired
	}
	return errors.Wrap(ErrClientNotActive, fmt.Sprintf("status %s", s))
}
