package zmqasync

import (
	"errors"
	"fmt"
)

// ErrWouldBlock is the sentinel a [NativeSocket] implementation should
// return (directly, or wrapped so that errors.Is matches) from Send or
// Recv to signal the transient-unavailable condition ("EAGAIN" in native
// message-queue terms). It never surfaces to a caller of this package;
// state machines absorb it and return NotReady instead.
var ErrWouldBlock = errors.New("zmqasync: would block")

// ErrProtocolState is returned by a [NativeSocket] when an operation is
// not valid in the socket's current protocol phase (e.g. attempting to
// read a request/reply socket out of turn). Core A surfaces it to the
// caller; Core B logs it and clears the affected arm, treating it as
// end-of-round for that socket.
var ErrProtocolState = errors.New("zmqasync: operation invalid in current protocol state")

// ReentrancyError is returned when a send or receive state machine
// observes [statePolling] on entry to a tick: some other call re-entered
// the same machine while a tick was already in flight. It is fatal to the
// future/sink/stream that observed it; the only recovery is discarding it.
type ReentrancyError struct {
	// Op names the operation that re-entered ("send" or "recv").
	Op string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("zmqasync: reentrant %s poll", e.Op)
}

// ReuseError is returned when a completed one-shot [SendFuture] or
// [RecvFuture] is polled again after it already yielded its socket.
type ReuseError struct {
	Op string
}

func (e *ReuseError) Error() string {
	return fmt.Sprintf("zmqasync: %s future reused after completion", e.Op)
}

// ClosedError is returned when a send or receive request names a socket
// id that the worker does not recognize (never registered, or already
// dropped). It is not returned for operations issued after
// [Session.Close].
type ClosedError struct {
	Cause error
}

func (e *ClosedError) Error() string {
	if e.Cause == nil {
		return "zmqasync: session closed"
	}
	return fmt.Sprintf("zmqasync: session closed: %s", e.Cause)
}

func (e *ClosedError) Unwrap() error { return e.Cause }

// Class classifies an error from the native socket or the wider adapter
// so that both cores can decide, uniformly, whether to propagate, retry,
// or suppress it.
type Class int

const (
	// ClassUnderlying is any error not otherwise classified: it is
	// always surfaced to the caller.
	ClassUnderlying Class = iota
	// ClassTransient is the would-block / not-yet-ready condition: it
	// never surfaces, it causes NotReady.
	ClassTransient
	// ClassProtocolState is [ErrProtocolState]; see its doc comment for
	// the per-core policy difference.
	ClassProtocolState
	// ClassReentrancy is a [ReentrancyError].
	ClassReentrancy
	// ClassReuse is a [ReuseError].
	ClassReuse
)

// Classify reports which taxonomy class err belongs to. A nil error also
// classifies as [ClassUnderlying] (there is nothing to classify); callers
// should check err != nil before branching on Class.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassUnderlying
	case errors.Is(err, ErrWouldBlock):
		return ClassTransient
	case errors.Is(err, ErrProtocolState):
		return ClassProtocolState
	default:
		var reentrant *ReentrancyError
		if errors.As(err, &reentrant) {
			return ClassReentrancy
		}
		var reuse *ReuseError
		if errors.As(err, &reuse) {
			return ClassReuse
		}
		return ClassUnderlying
	}
}

// IsTransient reports whether err is the transient/would-block condition.
func IsTransient(err error) bool {
	return errors.Is(err, ErrWouldBlock)
}
