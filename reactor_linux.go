//go:build linux

package zmqasync

import (
	"sync"

	"golang.org/x/sys/unix"
)

// epollReactor is the Linux [Reactor] implementation, backed by an
// edge-triggered epoll instance and a single background goroutine driving
// EpollWait, modeled on eventloop's FastPoller (poller_linux.go). Unlike
// FastPoller's inline-callback design this tracks per-direction readiness
// state explicitly, since a single fd here carries two independent
// interests (read and write) that Core A arms and clears separately as
// futures progress.
type epollReactor struct {
	epfd int

	mu   sync.Mutex
	fds  map[int]*epollFDState
	stop chan struct{}
	done chan struct{}
}

type epollFDState struct {
	registered bool
	wantRead   bool
	wantWrite  bool
	readReady  bool
	writeReady bool
	readWake   func()
	writeWake  func()
}

// newReactor constructs the platform [Reactor] and starts its background
// poll goroutine.
func newReactor() (*epollReactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	r := &epollReactor{
		epfd: epfd,
		fds:  make(map[int]*epollFDState),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.loop()
	return r, nil
}

func (r *epollReactor) ensureRegistered(fd int, wantRead, wantWrite bool) (*epollFDState, error) {
	st, ok := r.fds[fd]
	if !ok {
		st = &epollFDState{}
		r.fds[fd] = st
	}

	needRead := st.wantRead || wantRead
	needWrite := st.wantWrite || wantWrite
	if needRead == st.wantRead && needWrite == st.wantWrite && st.registered {
		return st, nil
	}

	var events uint32 = unix.EPOLLET
	if needRead {
		events |= unix.EPOLLIN
	}
	if needWrite {
		events |= unix.EPOLLOUT
	}

	ev := &unix.EpollEvent{Events: events, Fd: int32(fd)}
	op := unix.EPOLL_CTL_MOD
	if !st.registered {
		op = unix.EPOLL_CTL_ADD
	}
	if err := unix.EpollCtl(r.epfd, op, fd, ev); err != nil {
		return nil, err
	}

	st.registered = true
	st.wantRead = needRead
	st.wantWrite = needWrite
	return st, nil
}

func (r *epollReactor) PollReadReady(fd int, wake func()) (bool, error) {
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

func (r *epollReactor) PollWriteReady(fd int, wake func()) (bool, error) {
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

func (r *epollReactor) NotifyReadReady(fd int) error {
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

func (r *epollReactor) NotifyWriteReady(fd int) error {
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

func (r *epollReactor) ClearReadReady(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.fds[fd]; ok {
		st.readReady = false
	}
	return nil
}

func (r *epollReactor) ClearWriteReady(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.fds[fd]; ok {
		st.writeReady = false
	}
	return nil
}

func (r *epollReactor) Forget(fd int) error {
	r.mu.Lock()
	_, ok := r.fds[fd]
	delete(r.fds, fd)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	return nil
}

// Close stops the background poll goroutine and closes the epoll fd.
func (r *epollReactor) Close() error {
	close(r.stop)
	<-r.done
	return unix.Close(r.epfd)
}

func (r *epollReactor) loop() {
	defer close(r.done)

	var events [256]unix.EpollEvent
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		n, err := unix.EpollWait(r.epfd, events[:], 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}

		r.mu.Lock()
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			st, ok := r.fds[fd]
			if !ok {
				continue
			}

			var readWake, writeWake func()
			if events[i].Events&unix.EPOLLIN != 0 {
				st.readReady = true
				readWake, st.readWake = st.readWake, nil
			}
			if events[i].Events&(unix.EPOLLOUT) != 0 {
				st.writeReady = true
				writeWake, st.writeWake = st.writeWake, nil
			}
			if events[i].Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
				st.readReady = true
				st.writeReady = true
				readWake, st.readWake = st.readWake, nil
				writeWake, st.writeWake = st.writeWake, nil
			}

			// invoke outside the loop's remaining iterations would be
			// ideal, but wake callbacks here only enqueue to a channel
			// (see future.go), so calling under the lock is safe and
			// keeps this function simple.
			if readWake != nil {
				readWake()
			}
			if writeWake != nil {
				writeWake()
			}
		}
		r.mu.Unlock()
	}
}
