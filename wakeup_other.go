//go:build !unix

package zmqasync

import "sync/atomic"

// wakeup is the non-unix fallback wake source: a buffered channel stands
// in for the self-pipe, since there is no portable raw fd to select on
// here. worker_poll_other.go drives the wait loop with a timer instead
// of a blocking poll(2), so this need only satisfy notify/drain.
type wakeup struct {
	ready atomic.Bool
	ch    chan struct{}
}

func newWakeup() (*wakeup, error) {
	return &wakeup{ch: make(chan struct{}, 1)}, nil
}

func (w *wakeup) notify() {
	if !w.ready.Swap(true) {
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

func (w *wakeup) drain() bool {
	select {
	case <-w.ch:
	default:
	}
	return w.ready.Swap(false)
}

func (w *wakeup) fd() int { return -1 }

// C exposes the underlying channel so worker_poll_other.go can select on
// it directly, since this platform has no raw fd to multiplex.
func (w *wakeup) C() <-chan struct{} { return w.ch }

func (w *wakeup) close() error { return nil }
