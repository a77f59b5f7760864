package zmqasync

import (
	"fmt"

	"github.com/joeycumines/go-zmqasync/obslog"
)

// pollable is one socket owned by a [worker], bundling its native handle
// with the send/receive progress the worker drives on its behalf. It is
// the Go analogue of poll_thread.rs's Pollable, rebuilt on top of this
// package's own [SinkBuffer] and [recvState] rather than a bespoke
// VecDeque, so the same non-blocking state machines back both cores.
type pollable struct {
	sock NativeSocket

	sink    *SinkBuffer
	metrics *Metrics
	log     *obslog.Logger

	wantWrite bool
	sendReply chan<- sendOutcome

	recv        recvState
	pendingRecv []Multipart
	wantRead    bool
	recvReply   chan<- recvOutcome
}

func newPollable(sock NativeSocket, bufferSize int, log *obslog.Logger, metrics *Metrics) *pollable {
	if log == nil {
		log = obslog.NoOp()
	}
	return &pollable{
		sock:    sock,
		sink:    NewSinkBuffer(bufferSize, log),
		metrics: metrics,
		log:     log,
	}
}

// queueSend accepts mp for sending, or reports it rejected immediately if
// the outgoing buffer is already full, matching Pollable::message.
func (p *pollable) queueSend(mp Multipart, reply chan<- sendOutcome) {
	accepted, err := p.sink.StartSend(p.sock, mp)
	if err != nil {
		reply <- sendOutcome{err: err}
		return
	}
	if !accepted {
		p.metrics.backpressureTotal.Inc()
		reply <- sendOutcome{rejected: mp}
		return
	}

	p.wantWrite = true
	p.sendReply = reply
}

// queueRecv registers interest in the next complete multipart, replying
// immediately from the pending buffer if one is already assembled.
func (p *pollable) queueRecv(reply chan<- recvOutcome) {
	if len(p.pendingRecv) > 0 {
		mp := p.pendingRecv[0]
		p.pendingRecv = p.pendingRecv[1:]
		p.metrics.pendingRecvGauge.Dec()
		reply <- recvOutcome{mp: mp}
		return
	}

	p.recvReply = reply
	p.wantRead = true
}

// drainWrite drives the sink to completion for as long as the socket
// stays writable. When it fully drains, the stored responder (if any) is
// notified and write interest is cleared.
func (p *pollable) drainWrite() {
	res, err := p.sink.PollComplete(p.sock)
	if err != nil {
		p.wantWrite = false
		if p.sendReply != nil {
			p.sendReply <- sendOutcome{err: err}
			p.sendReply = nil
		}
		return
	}
	if res == tickNotReady {
		return
	}

	p.wantWrite = false
	if p.sendReply != nil {
		p.sendReply <- sendOutcome{}
		p.sendReply = nil
	}
}

// drainRead drives the receive state machine, buffering completed
// multiparts when no request is currently waiting (pending_recv_msg in
// poll_thread.rs), and notifying the waiting responder otherwise.
func (p *pollable) drainRead() {
	for {
		res, mp, suppressed, err := p.recv.tick(p.sock, RecvPolicySuppressProtocolState)
		if suppressed {
			// The socket is stuck in a protocol state where reading is
			// invalid right now (e.g. a request/reply socket polled out
			// of turn). Log it and clear the read arm rather than
			// retrying forever against an FD that stays readable for
			// reasons unrelated to this recv.
			p.log.Warn("recv suppressed: socket not in a readable protocol state", obslog.Fields{
				"error": err.Error(),
			})
			p.wantRead = false
			return
		}
		if err != nil {
			p.wantRead = false
			if p.recvReply != nil {
				p.recvReply <- recvOutcome{err: err}
				p.recvReply = nil
			}
			return
		}
		if res == tickNotReady {
			return
		}

		if p.recvReply != nil {
			p.recvReply <- recvOutcome{mp: mp}
			p.recvReply = nil
			p.wantRead = false
			return
		}
		p.pendingRecv = append(p.pendingRecv, mp)
		p.metrics.pendingRecvGauge.Inc()
	}
}

// close reports any lost state at drop time: pending sends (via the sink)
// and any never-delivered buffered receives.
func (p *pollable) close(log *obslog.Logger) {
	p.sink.Close()
	if n := len(p.pendingRecv); n > 0 {
		log.Warn("socket dropped with buffered receives undelivered", obslog.Fields{
			"pending_count": fmt.Sprint(n),
		})
	}
	_ = p.sock.Close()
}
