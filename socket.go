package zmqasync

// EventMask reports which directions a [NativeSocket] is currently ready
// for, mirroring the native library's own event mask (e.g. ZMQ_EVENTS).
type EventMask uint8

const (
	// EventNone indicates neither direction is ready.
	EventNone EventMask = 0
	// EventRead indicates the socket has at least one complete frame
	// queued for receipt.
	EventRead EventMask = 1 << (iota - 1)
	// EventWrite indicates the socket's send queue has room for at
	// least one more frame.
	EventWrite
)

// Readable reports whether mask includes [EventRead].
func (m EventMask) Readable() bool { return m&EventRead != 0 }

// Writable reports whether mask includes [EventWrite].
func (m EventMask) Writable() bool { return m&EventWrite != 0 }

// NativeSocket is the native, non-thread-safe socket handle consumed by
// this package. Out of scope: the concrete binding to a real message-queue
// library. Implementations must guarantee:
//
//   - Send and Recv never block; they return [ErrWouldBlock] (classified
//     by [Classify] as [ClassTransient]) when the operation cannot
//     complete immediately.
//   - Send does not take ownership of frame on [ErrWouldBlock]: it must
//     leave frame untouched and safely reusable by the caller, so no
//     caller-side cloning is required to satisfy this contract.
//   - At most one goroutine invokes any method on a given NativeSocket at
//     a time; the adapter upholds this by construction (Core A: the
//     caller holding the handle; Core B: the single worker goroutine).
//   - Close releases the native resources. It is safe to call at most
//     once; the adapter calls it at most once.
type NativeSocket interface {
	// Send attempts to transmit frame non-blocking. more indicates a
	// further frame in the same multipart will follow.
	Send(frame Message, more bool) error

	// Recv attempts to receive one frame non-blocking.
	Recv() (Message, error)

	// Events returns the socket's current native event mask.
	Events() (EventMask, error)

	// FD returns the native file descriptor whose readiness transitions
	// are signalled by the ambient reactor. Core B also polls this
	// directly rather than through a [Reactor].
	FD() int

	// Close releases the socket's native resources.
	Close() error
}

// Reactor is the ambient, edge-triggered readiness source consumed by
// Core A (§6.1). This package's own backends (built by newReactor) use
// epoll on Linux, kqueue on Darwin, and a timer-driven polling fallback
// elsewhere. A task is woken only on a not-ready to ready transition
// ("edge"), never on level; the polling fallback instead re-wakes
// registered tasks on every interval.
type Reactor interface {
	// PollReadReady arms the reactor to wake wake when fd becomes
	// readable, and reports whether it is already known ready.
	PollReadReady(fd int, wake func()) (ready bool, err error)

	// PollWriteReady arms the reactor to wake wake when fd becomes
	// writable, and reports whether it is already known ready.
	PollWriteReady(fd int, wake func()) (ready bool, err error)

	// ClearReadReady signals to the reactor that fd is not in fact
	// ready to read, so it should keep the arm and wait for a fresh
	// edge rather than immediately re-waking.
	ClearReadReady(fd int) error

	// ClearWriteReady is ClearReadReady for the write direction.
	ClearWriteReady(fd int) error

	// NotifyReadReady marks fd ready to read and wakes whatever task is
	// currently registered for that direction: the native socket's own
	// event mask can report a direction ready that the reactor itself
	// hasn't seen a fresh edge for (message-queue sockets commonly
	// multiplex both directions onto a single signalling fd). A caller
	// that observes this in the native mask while polling the other
	// direction uses this to wake the peer instead of leaving it
	// waiting for an edge that may never come on its own.
	NotifyReadReady(fd int) error

	// NotifyWriteReady is NotifyReadReady for the write direction.
	NotifyWriteReady(fd int) error

	// Forget releases any reactor-side state associated with fd. Called
	// when a socket using this reactor is closed or dropped.
	Forget(fd int) error
}
