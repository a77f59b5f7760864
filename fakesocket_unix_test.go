//go:build unix

package zmqasync

import "golang.org/x/sys/unix"

// fakeSocketFD backs fakeSocket's FD() with one end of a connected unix
// socketpair, so the real worker_poll_unix.go code path (which calls
// unix.Poll against the native socket's FD) observes genuine OS-level
// readiness rather than an inert placeholder. The peer end is nudged
// whenever a test delivers a multipart, and drained back in lockstep once
// [fakeSocket.Recv] actually consumes it, so stale bytes never leave a
// false POLLIN behind once the logical inbox is empty.
type fakeSocketFD struct {
	fd, peer int
}

func newFakeSocket(label int) *fakeSocket {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		panic(err)
	}
	_ = label
	return &fakeSocket{fakeSocketFD: fakeSocketFD{fd: fds[0], peer: fds[1]}}
}

func (s *fakeSocket) FD() int { return s.fd }

func (s *fakeSocket) raiseOSSignal() {
	_, _ = unix.Write(s.peer, []byte{0})
}

func (s *fakeSocket) drainOSSignal() {
	var buf [1]byte
	_, _ = unix.Read(s.fd, buf[:])
}

func (s *fakeSocket) closeOSSignal() {
	_ = unix.Close(s.fd)
	_ = unix.Close(s.peer)
}
