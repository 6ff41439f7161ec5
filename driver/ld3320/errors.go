package ld3320

import (
	"errors"
	"fmt"
)

var (
	ErrNullHandle        = errors.New("nil device")
	ErrNotInitialized    = errors.New("device not initialized")
	ErrCapabilityMissing = errors.New("platform capability missing")
	ErrBus               = errors.New("bus transaction failed")
	ErrReset             = errors.New("reset failed")
	ErrRegisterSequence  = errors.New("register sequence failed")
	ErrNotReady          = errors.New("asr not ready")
	ErrStartFailed       = errors.New("start failed")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrIndexOutOfRange   = errors.New("result index out of range")
	ErrStreamExhausted   = errors.New("stream exhausted")
	ErrUnexpectedState   = errors.New("unexpected running state")

	errTxTooLarge = errors.New("transfer exceeds bus limit")
)

// RegError describes a failed register transaction. It matches
// ErrBus with errors.Is.
type RegError struct {
	Op  string
	Reg byte
	Err error
}

func (e *RegError) Error() string {
	return fmt.Sprintf("%s register %#.2x: %v", e.Op, e.Reg, e.Err)
}

func (e *RegError) Unwrap() []error {
	return []error{ErrBus, e.Err}
}

// stepError marks err as the failure of a named initialization step.
func stepError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRegisterSequence, step, err)
}
