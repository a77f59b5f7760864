//go:build unix

package zmqasync

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// wakeup is a self-pipe used to interrupt a blocking poll(2) call when a
// new [request] is enqueued for the [worker] goroutine, modeled on
// poll_thread.rs's Channel (there backed by a loopback TCP pair; here a
// plain non-blocking pipe, since there's no cross-platform-socket
// requirement to work around in Go). The ready flag coalesces bursts of
// notify calls into a single byte written to the pipe, matching
// Channel::notify's swap_true guard.
type wakeup struct {
	ready   atomic.Bool
	readFD  int
	writeFD int
}

func newWakeup() (*wakeup, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	return &wakeup{readFD: fds[0], writeFD: fds[1]}, nil
}

// notify wakes the worker's poll call, if it isn't already pending a
// wakeup.
func (w *wakeup) notify() {
	if !w.ready.Swap(true) {
		var b [1]byte
		_, _ = unix.Write(w.writeFD, b[:])
	}
}

// drain empties the pipe and reports whether a wakeup had been pending,
// mirroring Receiver::drain.
func (w *wakeup) drain() bool {
	var buf [32]byte
	for {
		_, err := unix.Read(w.readFD, buf[:])
		if err != nil {
			break
		}
	}
	return w.ready.Swap(false)
}

func (w *wakeup) fd() int { return w.readFD }

func (w *wakeup) close() error {
	_ = unix.Close(w.writeFD)
	return unix.Close(w.readFD)
}
