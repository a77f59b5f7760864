package zmqasync

import (
	"context"

	"github.com/joeycumines/go-zmqasync/obslog"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Session owns the background [worker] goroutine that mediates every
// socket registered through it (Core B), mirroring futures-zmq's
// Session/InnerSession split. Unlike that Rust type, Close
// is explicit rather than Drop-driven; Go has no destructors to hook. The
// worker goroutine runs under an [errgroup.Group] so a fatal poll error
// surfaces from [Session.Close] instead of dying silently.
type Session struct {
	w *worker
	g *errgroup.Group
}

// SessionOption configures a [Session], per this package's functional
// options convention.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	bufferSize int
	log        *obslog.Logger
	registerer prometheus.Registerer
}

// WithSendBufferSize sets the default outgoing-multipart queue depth for
// every socket registered through the session.
func WithSendBufferSize(n int) SessionOption {
	return func(c *sessionConfig) { c.bufferSize = n }
}

// WithSessionLogger sets the structured logger used for diagnostics.
func WithSessionLogger(log *obslog.Logger) SessionOption {
	return func(c *sessionConfig) { c.log = log }
}

// WithMetricsRegisterer sets the Prometheus registerer the session's
// metrics are registered against.
func WithMetricsRegisterer(reg prometheus.Registerer) SessionOption {
	return func(c *sessionConfig) { c.registerer = reg }
}

// NewSession starts the worker goroutine and returns a Session ready to
// register sockets.
func NewSession(opts ...SessionOption) (*Session, error) {
	cfg := sessionConfig{bufferSize: 16}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := newWorker(cfg.bufferSize, cfg.log, NewMetrics(cfg.registerer))
	if err != nil {
		return nil, err
	}

	g := new(errgroup.Group)
	g.Go(w.run)

	return &Session{w: w, g: g}, nil
}

// Init registers sock with the session's worker and returns a [Handle]
// for it, per futures-zmq's Session::init.
func (s *Session) Init(ctx context.Context, sock NativeSocket) (*Handle, error) {
	reply := make(chan sockID, 1)
	s.w.send(initRequest{sock: sock, reply: reply})

	select {
	case id := <-reply:
		return newHandle(s, id), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close asks the worker to stop, tearing down every still-registered
// socket, and waits for it to finish. It returns the worker goroutine's
// exit error (e.g. a fatal poll(2) failure), or nil on a clean shutdown.
func (s *Session) Close() error {
	exited := make(chan error, 1)
	go func() { exited <- s.g.Wait() }()

	reply := make(chan struct{})
	s.w.send(doneRequest{reply: reply})

	var err error
	select {
	case <-reply:
		err = <-exited
	case err = <-exited:
	}
	_ = s.w.wake.close()
	return err
}

// send issues a SendMessage request for id, blocking until the multipart
// has been fully written to the socket, rejected for back-pressure, or
// fails. If ctx ends first, the multipart stays queued with the worker.
func (s *Session) send(ctx context.Context, id sockID, mp Multipart) (rejected Multipart, err error) {
	reply := make(chan sendOutcome, 1)
	s.w.send(sendRequest{id: id, mp: mp, reply: reply})

	select {
	case out := <-reply:
		return out.rejected, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recv issues a ReceiveMessage request for id, blocking until a multipart
// is available or the request fails.
func (s *Session) recv(ctx context.Context, id sockID) (Multipart, error) {
	reply := make(chan recvOutcome, 1)
	s.w.send(recvRequest{id: id, reply: reply})

	select {
	case out := <-reply:
		return out.mp, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dropSocket issues a DropSocket request, fire-and-forget, per
// SockIdInner's Drop impl in poll_thread.rs.
func (s *Session) dropSocket(id sockID) {
	s.w.send(dropRequest{id: id})
}
