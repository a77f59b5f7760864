package zmqasync

import "context"

// Readiness reconciliation guards against a native message-queue socket's
// edge-triggered, level-at-the-protocol-not-the-fd semantics: the
// underlying fd can report readable/writable while the socket itself has
// no complete message or send slot available yet (and vice versa,
// briefly, around internal buffer transitions). Both [SendFuture] and
// [RecvFuture] therefore consult the [Reactor] for OS readiness AND the
// [NativeSocket]'s own Events() before attempting the operation, clearing
// the reactor's readiness flag whenever either layer disagrees, so the
// next OS-level edge is what wakes the waiting caller instead of a busy
// spin. This mirrors tokio-zmq's EventedFile dance in future_types.rs.

// reconcileWrite implements the reconciliation protocol for the write
// direction: arm the reactor (recording wake as the current task),
// consult the native mask, and opposite-direction-notify the read side
// if the mask shows it ready too. A false, nil result means the caller
// should suspend; the reactor's write-armed bit has already been cleared
// in that case so a fresh edge is what wakes it next.
func reconcileWrite(sock NativeSocket, reactor Reactor, wake func()) (ready bool, err error) {
	fd := sock.FD()

	armed, err := reactor.PollWriteReady(fd, wake)
	if err != nil || !armed {
		return false, err
	}

	events, err := sock.Events()
	if err != nil {
		return false, err
	}
	if events.Readable() {
		if err := reactor.NotifyReadReady(fd); err != nil {
			return false, err
		}
	}
	if !events.Writable() {
		return false, reactor.ClearWriteReady(fd)
	}
	return true, nil
}

// reconcileRead is reconcileWrite for the read direction.
func reconcileRead(sock NativeSocket, reactor Reactor, wake func()) (ready bool, err error) {
	fd := sock.FD()

	armed, err := reactor.PollReadReady(fd, wake)
	if err != nil || !armed {
		return false, err
	}

	events, err := sock.Events()
	if err != nil {
		return false, err
	}
	if events.Writable() {
		if err := reactor.NotifyWriteReady(fd); err != nil {
			return false, err
		}
	}
	if !events.Readable() {
		return false, reactor.ClearReadReady(fd)
	}
	return true, nil
}

// SendFuture drives one multipart send to completion against a socket
// owned exclusively by this future (Core A). It is one-shot: polling it
// again after completion returns a [ReuseError].
type SendFuture struct {
	sock    NativeSocket
	reactor Reactor
	state   sendState
	done    bool
}

// NewSendFuture seeds a SendFuture with mp, ready to be driven by
// [SendFuture.Await] or [SendFuture.tick].
func NewSendFuture(sock NativeSocket, reactor Reactor, mp Multipart) *SendFuture {
	f := &SendFuture{sock: sock, reactor: reactor}
	f.state.seed(mp)
	return f
}

func (f *SendFuture) tick(wake func()) (tickResult, error) {
	if f.done {
		return tickReady, &ReuseError{Op: "send"}
	}

	ready, err := reconcileWrite(f.sock, f.reactor, wake)
	if err != nil {
		f.done = true
		return tickReady, err
	}
	if !ready {
		return tickNotReady, nil
	}

	res, err := f.state.tick(f.sock)
	if res == tickNotReady {
		if cerr := f.reactor.ClearWriteReady(f.sock.FD()); cerr != nil {
			f.done = true
			return tickReady, cerr
		}
		return tickNotReady, nil
	}

	f.done = true
	return tickReady, err
}

// Await blocks until the send completes, ctx is canceled, or a
// non-transient error occurs.
func (f *SendFuture) Await(ctx context.Context) error {
	woken := make(chan struct{}, 1)
	wake := func() {
		select {
		case woken <- struct{}{}:
		default:
		}
	}

	for {
		res, err := f.tick(wake)
		if res == tickReady {
			return err
		}

		select {
		case <-woken:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RecvFuture drives one multipart receive to completion. One-shot, like
// [SendFuture].
type RecvFuture struct {
	sock    NativeSocket
	reactor Reactor
	state   recvState
	done    bool
}

// NewRecvFuture constructs a RecvFuture ready to be driven by
// [RecvFuture.Await] or [RecvFuture.tick].
func NewRecvFuture(sock NativeSocket, reactor Reactor) *RecvFuture {
	return &RecvFuture{sock: sock, reactor: reactor}
}

func (f *RecvFuture) tick(wake func()) (tickResult, Multipart, error) {
	if f.done {
		return tickReady, nil, &ReuseError{Op: "recv"}
	}

	ready, err := reconcileRead(f.sock, f.reactor, wake)
	if err != nil {
		f.done = true
		return tickReady, nil, err
	}
	if !ready {
		return tickNotReady, nil, nil
	}

	res, mp, _, err := f.state.tick(f.sock, RecvPolicyPropagate)
	if res == tickNotReady {
		if cerr := f.reactor.ClearReadReady(f.sock.FD()); cerr != nil {
			f.done = true
			return tickReady, nil, cerr
		}
		return tickNotReady, nil, nil
	}

	f.done = true
	return tickReady, mp, err
}

// Await blocks until a complete multipart arrives, ctx is canceled, or a
// non-transient error occurs.
func (f *RecvFuture) Await(ctx context.Context) (Multipart, error) {
	woken := make(chan struct{}, 1)
	wake := func() {
		select {
		case woken <- struct{}{}:
		default:
		}
	}

	for {
		res, mp, err := f.tick(wake)
		if res == tickReady {
			return mp, err
		}

		select {
		case <-woken:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
