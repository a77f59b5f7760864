package zmqasync

import (
	"sync"
)

// fakeSocket is a deterministic, in-process [NativeSocket] double used
// across this package's tests, standing in for a real message-queue
// binding. It exposes knobs (send/recv queues, a would-block latch, an
// injectable error) so tests can drive every branch of the send/receive
// state machines without a live broker, per the corpus's own preference
// for hand-rolled fakes over interface mocks (see eventloop's test
// helpers). The real OS-level readiness signal backing FD() is wired up
// separately per platform (fakesocket_unix_test.go /
// fakesocket_other_test.go), since only Core B's poll(2)-based worker on
// unix ever dereferences it.
type fakeSocket struct {
	mu sync.Mutex

	// outbox receives frames handed to Send, in order, once sendBlocked
	// is false.
	outbox [][]byte

	// inbox is drained by Recv, one frame per call.
	inbox []Message

	// sendBlocked/recvBlocked make every Send/Recv return ErrWouldBlock
	// while set, for exercising NotReady paths.
	sendBlocked bool
	recvBlocked bool

	// sendErr/recvErr, if set, are returned (and cleared) by the next
	// Send/Recv call instead of succeeding.
	sendErr error
	recvErr error

	closed bool

	fakeSocketFD
}

func (s *fakeSocket) Send(frame Message, more bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		err := s.sendErr
		s.sendErr = nil
		return err
	}
	if s.sendBlocked {
		return ErrWouldBlock
	}

	buf := make([]byte, len(frame.Data))
	copy(buf, frame.Data)
	s.outbox = append(s.outbox, buf)
	return nil
}

func (s *fakeSocket) Recv() (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recvErr != nil {
		err := s.recvErr
		s.recvErr = nil
		return Message{}, err
	}
	if s.recvBlocked || len(s.inbox) == 0 {
		return Message{}, ErrWouldBlock
	}

	msg := s.inbox[0]
	s.inbox = s.inbox[1:]
	if !msg.More {
		// deliver raised one signal per multipart, so consume it only
		// with the multipart's last frame.
		s.drainOSSignal()
	}
	return msg, nil
}

func (s *fakeSocket) Events() (EventMask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mask EventMask
	if !s.sendBlocked {
		mask |= EventWrite
	}
	if !s.recvBlocked && len(s.inbox) > 0 {
		mask |= EventRead
	}
	return mask, nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.closeOSSignal()
	return nil
}

// deliver appends a multipart to the fake's inbox, normalizing its More
// flags first, and raises the OS-level read signal backing FD().
func (s *fakeSocket) deliver(mp Multipart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = append(s.inbox, mp.Normalize()...)
	s.raiseOSSignal()
}

// sent returns the raw frames handed to Send so far.
func (s *fakeSocket) sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.outbox))
	copy(out, s.outbox)
	return out
}
