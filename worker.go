package zmqasync

import "github.com/joeycumines/go-zmqasync/obslog"

// wakeSource lets the worker's blocking wait be interrupted whenever a
// new request arrives, per poll_thread.rs's Channel. The unix
// implementation (wakeup_unix.go) is a self-pipe; the fallback
// (wakeup_other.go) is a buffered channel.
type wakeSource interface {
	notify()
	drain() bool
	fd() int
	close() error
}

// worker is Core B's single owner of every registered [NativeSocket],
// modeled on poll_thread.rs's PollThread. It is not safe for concurrent
// use directly; all interaction happens through its inbox channel, read
// exclusively by the goroutine running [worker.run].
type worker struct {
	inbox chan request
	wake  wakeSource
	log   *obslog.Logger

	metrics *Metrics

	nextID  sockID
	order   []sockID
	sockets map[sockID]*pollable

	bufferSize int
}

// newWorker constructs a worker with its inbox and wake source ready,
// but does not start [worker.run].
func newWorker(bufferSize int, log *obslog.Logger, metrics *Metrics) (*worker, error) {
	wake, err := newWakeup()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = obslog.NoOp()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &worker{
		inbox:      make(chan request, 64),
		wake:       wake,
		log:        log,
		metrics:    metrics,
		sockets:    make(map[sockID]*pollable),
		bufferSize: bufferSize,
	}, nil
}

// send enqueues req and wakes the worker goroutine, mirroring Sender::send.
func (w *worker) send(req request) {
	w.inbox <- req
	w.wake.notify()
}

// run is the worker's main loop (PollThread::run / turn), exiting once a
// [doneRequest] has been processed and acknowledged, or a poll error is
// judged fatal. Its return value is the one an owning [Session] supervises
// via errgroup.
func (w *worker) run() error {
	for {
		stop, err := w.turn()
		if stop {
			return err
		}
	}
}

func (w *worker) turn() (stop bool, err error) {
	if w.drainInbox() {
		return true, nil
	}
	if err := w.waitAndService(); err != nil {
		return true, err
	}
	return false, nil
}

// drainInbox handles every request currently queued, matching
// PollThread::try_recv (the self-pipe coalesces notifications, so one
// drain pass per wakeup is correct).
func (w *worker) drainInbox() (stop bool) {
	if w.wake.drain() {
		w.metrics.wakeupsTotal.Inc()
	}

	for {
		select {
		case req := <-w.inbox:
			if w.handle(req) {
				return true
			}
		default:
			return false
		}
	}
}

func (w *worker) handle(req request) (stop bool) {
	switch r := req.(type) {
	case initRequest:
		id := w.nextID
		w.nextID++
		w.sockets[id] = newPollable(r.sock, w.bufferSize, w.log, w.metrics)
		w.order = append(w.order, id)
		w.metrics.socketsGauge.Inc()
		r.reply <- id

	case sendRequest:
		if p, ok := w.sockets[r.id]; ok {
			p.queueSend(r.mp, r.reply)
			w.metrics.sendsTotal.Inc()
		} else {
			r.reply <- sendOutcome{err: &ClosedError{}}
		}

	case recvRequest:
		if p, ok := w.sockets[r.id]; ok {
			p.queueRecv(r.reply)
			w.metrics.recvsTotal.Inc()
		} else {
			r.reply <- recvOutcome{err: &ClosedError{}}
		}

	case dropRequest:
		if p, ok := w.sockets[r.id]; ok {
			p.close(w.log)
			delete(w.sockets, r.id)
			w.order = removeID(w.order, r.id)
			w.metrics.socketsGauge.Dec()
		}

	case doneRequest:
		for _, id := range w.order {
			w.sockets[id].close(w.log)
		}
		w.sockets = nil
		w.order = nil
		if r.reply != nil {
			close(r.reply)
		}
		return true
	}
	return false
}

func removeID(order []sockID, id sockID) []sockID {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// action is one socket's scheduled unit of work for this turn, mirroring
// poll_thread.rs's Action enum.
type action struct {
	id    sockID
	write bool
}

// service builds this turn's action list and executes it, applying
// poll_thread.rs's two quirks verbatim: write is checked before read per
// socket (so a socket ready for both only gets one action this turn), and
// the action list is executed in reverse of scheduling order.
func (w *worker) service() {
	var actions []action

	for _, id := range w.order {
		p := w.sockets[id]
		if !p.wantWrite && !p.wantRead {
			continue
		}

		events, err := p.sock.Events()
		if err != nil {
			// surfaced to whichever side was waiting; both, if both were.
			if p.sendReply != nil {
				p.sendReply <- sendOutcome{err: err}
				p.sendReply = nil
				p.wantWrite = false
			}
			if p.recvReply != nil {
				p.recvReply <- recvOutcome{err: err}
				p.recvReply = nil
				p.wantRead = false
			}
			continue
		}

		switch {
		case p.wantWrite && events.Writable():
			actions = append(actions, action{id: id, write: true})
		case p.wantRead && events.Readable():
			actions = append(actions, action{id: id, write: false})
		}
	}

	for i := len(actions) - 1; i >= 0; i-- {
		a := actions[i]
		p := w.sockets[a.id]
		if a.write {
			p.drainWrite()
		} else {
			p.drainRead()
		}
	}
}

// Close asks the worker to stop and waits for acknowledgment.
func (w *worker) Close() {
	reply := make(chan struct{})
	w.send(doneRequest{reply: reply})
	<-reply
	_ = w.wake.close()
}
