package zmqasync

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/go-zmqasync/obslog"
)

// Handle is a cloneable reference to one socket registered with a
// [Session], modeled on futures-zmq's SockId/SockIdInner pair: cloning
// shares the same underlying registration, and the last clone's Close
// triggers the worker's DropSocket request. Go has no Drop, so Close is
// explicit; a [runtime.AddCleanup] backstop logs (rather than silently
// leaking) a Handle that was never closed.
type Handle struct {
	session *Session
	id      sockID
	refs    *atomic.Int32
	cleanup runtime.Cleanup
}

// handleCleanupState is the argument captured by a Handle's
// runtime.AddCleanup call: just enough to log without keeping the Handle
// itself (or its Session) reachable from the cleanup closure.
type handleCleanupState struct {
	id  sockID
	log *obslog.Logger
}

func newHandle(session *Session, id sockID) *Handle {
	refs := new(atomic.Int32)
	refs.Store(1)
	h := &Handle{session: session, id: id, refs: refs}
	h.arm()
	return h
}

// arm (re-)registers the finalizer-style cleanup for h. Called once per
// Handle value, since Go cleanups are per-object, not per logical
// reference the way Rust's Arc<Mutex<SockIdInner>> is.
func (h *Handle) arm() {
	state := handleCleanupState{id: h.id, log: h.session.w.log}
	h.cleanup = runtime.AddCleanup(h, func(s handleCleanupState) {
		// best-effort: if this fires, the Handle was garbage collected
		// without an explicit Close. It is not itself a decrement, since
		// refcounting is explicit via Close/Clone; it only reports.
		s.log.Warn("handle garbage collected without Close", obslog.Fields{
			"socket_id": fmt.Sprint(s.id),
		})
	}, state)
}

// Clone returns a new Handle referring to the same socket, incrementing
// the shared reference count.
func (h *Handle) Clone() *Handle {
	h.refs.Add(1)
	clone := &Handle{session: h.session, id: h.id, refs: h.refs}
	clone.arm()
	return clone
}

// Close releases this Handle's reference. Once the last clone is closed,
// the session's worker drops the underlying socket.
func (h *Handle) Close() error {
	h.cleanup.Stop()
	if h.refs.Add(-1) == 0 {
		h.session.dropSocket(h.id)
	}
	return nil
}

// Send queues mp for sending on this handle's socket, blocking until it
// has been fully written to the socket, rejected for back-pressure, or
// fails.
func (h *Handle) Send(ctx context.Context, mp Multipart) (rejected Multipart, err error) {
	return h.session.send(ctx, h.id, mp)
}

// Recv blocks until the next complete multipart arrives on this handle's
// socket.
func (h *Handle) Recv(ctx context.Context) (Multipart, error) {
	return h.session.recv(ctx, h.id)
}
