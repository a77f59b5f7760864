//go:build darwin

package zmqasync

import (
	"sync"

	"golang.org/x/sys/unix"
)

// kqueueReactor is the Darwin [Reactor] implementation, backed by kqueue
// and a single background goroutine, modeled on eventloop's FastPoller
// (poller_darwin.go). See reactor_linux.go's epollReactor for the
// per-direction readiness bookkeeping shared between platforms.
type kqueueReactor struct {
	kq int

	mu   sync.Mutex
	fds  map[int]*kqueueFDState
	stop chan struct{}
	done chan struct{}
}

type kqueueFDState struct {
	wantRead   bool
	wantWrite  bool
	readReady  bool
	writeReady bool
	readWake   func()
	writeWake  func()
}

func newReactor() (*kqueueReactor, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)

	r := &kqueueReactor{
		kq:   kq,
		fds:  make(map[int]*kqueueFDState),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.loop()
	return r, nil
}

func (r *kqueueReactor) ensureRegistered(fd int, wantRead, wantWrite bool) (*kqueueFDState, error) {
	st, ok := r.fds[fd]
	if !ok {
		st = &kqueueFDState{}
		r.fds[fd] = st
	}

	var changes []unix.Kevent_t
	if wantRead && !st.wantRead {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_ENABLE | unix.EV_CLEAR})
		st.wantRead = true
	}
	if wantWrite && !st.wantWrite {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_ENABLE | unix.EV_CLEAR})
		st.wantWrite = true
	}
	if len(changes) > 0 {
		if _, err := unix.Kevent(r.kq, changes, nil, nil); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (r *kqueueReactor) PollReadReady(fd int, wake func()) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.ensureRegistered(fd, true, false)
	if err != nil {
		return false, err
	}
	if st.readReady {
		return true, nil
	}
	st.readWake = wake
	return false, nil
}

func (r *kqueueReactor) PollWriteReady(fd int, wake func()) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.ensureRegistered(fd, false, true)
	if err != nil {
		return false, err
	}
	if st.writeReady {
		return true, nil
	}
	st.writeWake = wake
	return false, nil
}

func (r *kqueueReactor) NotifyReadReady(fd int) error {
	r.mu.Lock()
	st, ok := r.fds[fd]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	st.readReady = true
	wake := st.readWake
	st.readWake = nil
	r.mu.Unlock()
	if wake != nil {
		wake()
	}
	return nil
}

func (r *kqueueReactor) NotifyWriteReady(fd int) error {
	r.mu.Lock()
	st, ok := r.fds[fd]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	st.writeReady = true
	wake := st.writeWake
	st.writeWake = nil
	r.mu.Unlock()
	if wake != nil {
		wake()
	}
	return nil
}

func (r *kqueueReactor) ClearReadReady(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.fds[fd]; ok {
		st.readReady = false
	}
	return nil
}

func (r *kqueueReactor) ClearWriteReady(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.fds[fd]; ok {
		st.writeReady = false
	}
	return nil
}

func (r *kqueueReactor) Forget(fd int) error {
	r.mu.Lock()
	st, ok := r.fds[fd]
	delete(r.fds, fd)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	var changes []unix.Kevent_t
	if st.wantRead {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE})
	}
	if st.wantWrite {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE})
	}
	if len(changes) > 0 {
		_, _ = unix.Kevent(r.kq, changes, nil, nil)
	}
	return nil
}

// Close stops the background poll goroutine and closes the kqueue fd.
func (r *kqueueReactor) Close() error {
	close(r.stop)
	<-r.done
	return unix.Close(r.kq)
}

func (r *kqueueReactor) loop() {
	defer close(r.done)

	var events [256]unix.Kevent_t
	ts := unix.NsecToTimespec(100 * 1e6)
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		n, err := unix.Kevent(r.kq, nil, events[:], &ts)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}

		r.mu.Lock()
		for i := 0; i < n; i++ {
			fd := int(events[i].Ident)
			st, ok := r.fds[fd]
			if !ok {
				continue
			}

			var wake func()
			switch events[i].Filter {
			case unix.EVFILT_READ:
				st.readReady = true
				wake, st.readWake = st.readWake, nil
			case unix.EVFILT_WRITE:
				st.writeReady = true
				wake, st.writeWake = st.writeWake, nil
			}
			if events[i].Flags&unix.EV_EOF != 0 {
				st.readReady = true
				st.writeReady = true
			}
			if wake != nil {
				wake()
			}
		}
		r.mu.Unlock()
	}
}
