package zmqasync

import (
	"context"

	"github.com/joeycumines/go-zmqasync/obslog"
)

// This file is Core A's handle layer over the reactor: stream, sink, and
// combined sink-stream operations, generalizing [SendFuture]/[RecvFuture]'s
// one-shot reconciliation loop to the repeatedly-driven sink/stream/duplex
// state machines. Without this layer a caller wanting streaming receive or
// a bounded send queue would have to hand-roll the same arm/check/suspend
// dance [SendFuture.Await] already encapsulates.

func newWaker() (wait <-chan struct{}, wake func()) {
	woken := make(chan struct{}, 1)
	return woken, func() {
		select {
		case woken <- struct{}{}:
		default:
		}
	}
}

// Stream is Core A's `stream()` handle: a lazily-driven, logically
// infinite sequence of multiparts pulled through a [Reactor]. Unlike
// [RecvFuture] it is not one-shot — Next may be called repeatedly.
type Stream struct {
	sock    NativeSocket
	reactor Reactor
	stream  *RecvStream
}

// NewStream constructs a Stream consuming sock exclusively, per
// [NativeSocket]'s single-accessor contract.
func NewStream(sock NativeSocket, reactor Reactor, policy RecvPolicy) *Stream {
	return &Stream{sock: sock, reactor: reactor, stream: NewRecvStream(policy)}
}

// Next blocks until the next multipart arrives, ctx is canceled, or a
// non-transient error ends the stream. A returned error ends the stream;
// it must not be polled again afterward.
func (s *Stream) Next(ctx context.Context) (Multipart, error) {
	woken, wake := newWaker()

	for {
		ready, err := reconcileRead(s.sock, s.reactor, wake)
		if err != nil {
			return nil, err
		}
		if ready {
			res, mp, err := s.stream.PollNext(s.sock)
			if res == tickReady {
				return mp, err
			}
			if cerr := s.reactor.ClearReadReady(s.sock.FD()); cerr != nil {
				return nil, cerr
			}
		}

		select {
		case <-woken:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Sink is Core A's `sink(buffer_size)` handle: a bounded-buffer writer
// generalizing [SendFuture] to accept repeated sends. Queued multiparts
// are written to the native socket only inside Send: each call makes one
// non-blocking attempt to flush the buffer after accepting mp, and there
// is no background drain between calls.
type Sink struct {
	sock    NativeSocket
	reactor Reactor
	buf     *SinkBuffer
}

// NewSink constructs a Sink with the given outgoing buffer capacity.
func NewSink(sock NativeSocket, reactor Reactor, bufferSize int, log *obslog.Logger) *Sink {
	return &Sink{sock: sock, reactor: reactor, buf: NewSinkBuffer(bufferSize, log)}
}

// Send blocks until mp is accepted into the sink's buffer, ctx is
// canceled, or a non-transient error occurs. Back-pressure is the only
// reason this suspends; it never waits for mp itself to reach the
// native socket.
func (s *Sink) Send(ctx context.Context, mp Multipart) error {
	woken, wake := newWaker()

	for {
		accepted, err := s.buf.StartSend(s.sock, mp)
		if err != nil {
			return err
		}
		if accepted {
			return s.drive(wake)
		}

		if err := s.drive(wake); err != nil {
			return err
		}

		select {
		case <-woken:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drive arms the reactor for writability and, if the socket turns out
// ready, drains one reconciliation step of the sink.
func (s *Sink) drive(wake func()) error {
	ready, err := reconcileWrite(s.sock, s.reactor, wake)
	if err != nil || !ready {
		return err
	}

	res, err := s.buf.PollComplete(s.sock)
	if err != nil {
		return err
	}
	if res == tickNotReady {
		return s.reactor.ClearWriteReady(s.sock.FD())
	}
	return nil
}

// Close reports and discards any multiparts still queued; see
// [SinkBuffer.Close].
func (s *Sink) Close() { s.buf.Close() }

// SinkStream is Core A's `sink_stream(buffer_size)` handle: independent
// sink and stream arms sharing one socket, one reactor fd, and one
// [Duplex]'s cross-notification.
type SinkStream struct {
	sock    NativeSocket
	reactor Reactor
	duplex  *Duplex
}

// NewSinkStream constructs a SinkStream with the given outgoing buffer
// capacity and receive-error policy.
func NewSinkStream(sock NativeSocket, reactor Reactor, bufferSize int, policy RecvPolicy, log *obslog.Logger) *SinkStream {
	return &SinkStream{sock: sock, reactor: reactor, duplex: NewDuplex(bufferSize, policy, log)}
}

// Send is [Sink.Send] for the duplex's sink arm.
func (s *SinkStream) Send(ctx context.Context, mp Multipart) error {
	woken, wake := newWaker()

	for {
		accepted, err := s.duplex.StartSend(s.sock, mp)
		if err != nil {
			return err
		}
		if accepted {
			return s.driveWrite(wake)
		}

		if err := s.driveWrite(wake); err != nil {
			return err
		}

		select {
		case <-woken:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Next is [Stream.Next] for the duplex's stream arm.
func (s *SinkStream) Next(ctx context.Context) (Multipart, error) {
	woken, wake := newWaker()

	for {
		mp, ready, err := s.driveRead(wake)
		if err != nil {
			return nil, err
		}
		if ready {
			return mp, nil
		}

		select {
		case <-woken:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *SinkStream) driveWrite(wake func()) error {
	ready, err := reconcileWrite(s.sock, s.reactor, wake)
	if err != nil || !ready {
		return err
	}

	res, err := s.duplex.PollComplete(s.sock, wake)
	if err != nil {
		return err
	}
	if res == tickNotReady {
		return s.reactor.ClearWriteReady(s.sock.FD())
	}
	return nil
}

func (s *SinkStream) driveRead(wake func()) (Multipart, bool, error) {
	ready, err := reconcileRead(s.sock, s.reactor, wake)
	if err != nil || !ready {
		return nil, false, err
	}

	res, mp, err := s.duplex.PollNext(s.sock, wake)
	if err != nil {
		return nil, false, err
	}
	if res == tickNotReady {
		return nil, false, s.reactor.ClearReadReady(s.sock.FD())
	}
	return mp, true, nil
}

// Close is [Duplex.Close].
func (s *SinkStream) Close() { s.duplex.Close() }
