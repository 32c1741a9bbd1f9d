package client

import "github.com/pkg/errors"

var (
	// ErrUnsupportedScheme is returned for target schemes other than
	// "http" and "https".
	ErrUnsupportedScheme = errors.New("unsupported target scheme")
	// ErrMissingAuthority is returned when the target has no host to
	// connect to.
	ErrMissingAuthority = errors.New("target has no authority")
)

// Phase identifies the stage of an exchange at which a failure occurred.
type Phase string

const (
	PhaseConnect Phase = "connect"
	PhaseTLS     Phase = "tls"
	PhaseWrite   Phase = "write"
	PhaseRead    Phase = "read"
	PhaseDecode  Phase = "decode"
)

// Error wraps a failure together with the phase it occurred in, so
// callers can tell an unreachable host from a garbled response.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return string(e.Phase) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func phased(phase Phase, err error) *Error {
	return &Error{Phase: phase, Err: err}
}
