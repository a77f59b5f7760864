package zmqasync

import "sync"

// fakeReactor is a deterministic [Reactor] double. Readiness is driven
// explicitly by tests via triggerReadEdge/triggerWriteEdge rather than a real
// epoll/kqueue backend, mirroring the relationship fakeSocket has to a
// real message-queue binding.
type fakeReactor struct {
	mu    sync.Mutex
	state map[int]*fakeFDState
}

type fakeFDState struct {
	readReady, writeReady bool
	readWake, writeWake   func()
}

func newFakeReactor() *fakeReactor {
	return &fakeReactor{state: make(map[int]*fakeFDState)}
}

func (r *fakeReactor) get(fd int) *fakeFDState {
	s, ok := r.state[fd]
	if !ok {
		s = &fakeFDState{}
		r.state[fd] = s
	}
	return s
}

func (r *fakeReactor) PollReadReady(fd int, wake func()) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(fd)
	s.readWake = wake
	return s.readReady, nil
}

func (r *fakeReactor) PollWriteReady(fd int, wake func()) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(fd)
	s.writeWake = wake
	return s.writeReady, nil
}

func (r *fakeReactor) ClearReadReady(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(fd).readReady = false
	return nil
}

func (r *fakeReactor) ClearWriteReady(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(fd).writeReady = false
	return nil
}

func (r *fakeReactor) NotifyReadReady(fd int) error {
	r.mu.Lock()
	s := r.get(fd)
	s.readReady = true
	wake := s.readWake
	s.readWake = nil
	r.mu.Unlock()
	if wake != nil {
		wake()
	}
	return nil
}

func (r *fakeReactor) NotifyWriteReady(fd int) error {
	r.mu.Lock()
	s := r.get(fd)
	s.writeReady = true
	wake := s.writeWake
	s.writeWake = nil
	r.mu.Unlock()
	if wake != nil {
		wake()
	}
	return nil
}

func (r *fakeReactor) Forget(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, fd)
	return nil
}

// triggerReadEdge marks fd readable and fires any registered wake.
func (r *fakeReactor) triggerReadEdge(fd int) {
	r.mu.Lock()
	s := r.get(fd)
	s.readReady = true
	wake := s.readWake
	r.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// triggerWriteEdge marks fd writable and fires any registered wake.
func (r *fakeReactor) triggerWriteEdge(fd int) {
	r.mu.Lock()
	s := r.get(fd)
	s.writeReady = true
	wake := s.writeWake
	r.mu.Unlock()
	if wake != nil {
		wake()
	}
}
