package zmqasync

import (
	"fmt"

	"github.com/joeycumines/go-zmqasync/obslog"
)

// SinkBuffer is a bounded queue of outgoing [Multipart] values feeding a
// [sendState]. It is the shared implementation behind Core A's sink
// handle and Core B's per-socket pending-send queue.
type SinkBuffer struct {
	send       sendState
	pending    []Multipart
	bufferSize int
	log        *obslog.Logger
}

// NewSinkBuffer constructs a SinkBuffer with the given capacity: the most
// accepted-but-unsent multiparts it holds at once, counting the one in
// flight. A bufferSize of 0 accepts nothing.
func NewSinkBuffer(bufferSize int, log *obslog.Logger) *SinkBuffer {
	if log == nil {
		log = obslog.NoOp()
	}
	return &SinkBuffer{bufferSize: bufferSize, log: log}
}

// StartSend attempts to accept mp. It first drains any in-flight send via
// PollComplete; if the buffer is already at capacity (queued multiparts
// plus any still in flight) it returns accepted==false and leaves mp
// unconsumed (back-pressure); the caller must retry after the sink
// reports progress.
func (b *SinkBuffer) StartSend(sock NativeSocket, mp Multipart) (accepted bool, err error) {
	if _, err := b.PollComplete(sock); err != nil {
		return false, err
	}

	held := len(b.pending)
	if !b.send.ready() {
		held++
	}
	if held >= b.bufferSize {
		return false, nil
	}

	b.pending = append(b.pending, mp)
	return true, nil
}

// PollComplete drains the active send state, then seeds and drives
// further queued multiparts until the queue is empty or the socket is
// not ready.
func (b *SinkBuffer) PollComplete(sock NativeSocket) (tickResult, error) {
	res, err := b.send.tick(sock)
	if err != nil || res == tickNotReady {
		return res, err
	}

	for len(b.pending) > 0 {
		mp := b.pending[0]
		b.pending = b.pending[1:]
		b.send.seed(mp)

		res, err = b.send.tick(sock)
		if err != nil || res == tickNotReady {
			return res, err
		}
	}

	return tickReady, nil
}

// Len reports the number of whole multiparts queued but not yet seeded
// into the active send state.
func (b *SinkBuffer) Len() int { return len(b.pending) }

// Close reports whether the sink's pending queue was non-empty at drop
// time: a non-empty queue at drop means queued multiparts are lost. It
// logs loudly rather than panicking.
func (b *SinkBuffer) Close() {
	if n := len(b.pending); n > 0 {
		b.log.Warn("sink dropped with pending multiparts", obslog.Fields{
			"pending_count": fmt.Sprint(n),
		})
	}
	b.pending = nil
}
