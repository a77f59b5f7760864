//go:build !unix

package zmqasync

// fakeSocketFD is a no-op stand-in for platforms where the worker never
// dereferences FD() directly: worker_poll_other.go's waitAndService polls
// a timer/wake channel, not a raw descriptor, so there is nothing real to
// back here (mirrors wakeup_other.go's own fd() placeholder).
type fakeSocketFD struct{}

func newFakeSocket(label int) *fakeSocket {
	_ = label
	return &fakeSocket{}
}

func (s *fakeSocket) FD() int { return -1 }

func (s *fakeSocket) raiseOSSignal() {}
func (s *fakeSocket) drainOSSignal() {}
func (s *fakeSocket) closeOSSignal() {}
