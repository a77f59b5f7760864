//go:build unix

package zmqasync

import "golang.org/x/sys/unix"

// waitAndService blocks (via poll(2)) until either the wake pipe or a
// socket with outstanding interest becomes readable/writable at the OS
// level, then calls [worker.service] to reconcile that against each
// socket's real ([NativeSocket.Events]) readiness and act on it. This is
// the Go analogue of PollThread::poll, trading zmq::poll's native
// PollItem abstraction for a raw poll(2) over each socket's FD plus the
// self-pipe.
func (w *worker) waitAndService() error {
	pfds := make([]unix.PollFd, 0, len(w.order)+1)

	for _, id := range w.order {
		p := w.sockets[id]
		var events int16
		if p.wantRead {
			events |= unix.POLLIN
		}
		if p.wantWrite {
			events |= unix.POLLOUT
		}
		if events == 0 {
			continue
		}
		pfds = append(pfds, unix.PollFd{Fd: int32(p.sock.FD()), Events: events})
	}

	pfds = append(pfds, unix.PollFd{Fd: int32(w.wake.fd()), Events: unix.POLLIN})

	_, err := unix.Poll(pfds, -1)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		w.log.Error("poll failed", err, nil)
		return err
	}

	w.service()
	return nil
}
