// Package zmqasync adapts a native message-queue socket — edge-triggered,
// non-blocking, and not safe for concurrent use — into a cooperative
// asynchronous streaming API: sinks, streams, and one-shot send/receive
// calls that hide the native readiness semantics, multipart framing, and
// the single-accessor rule of the underlying socket.
//
// # Two cores
//
// Core A ([SendFuture], [RecvFuture], and the [Reactor] they poll) pairs
// each socket with a readiness handle registered against an epoll (Linux)
// or kqueue (Darwin) reactor and drives the native socket's non-blocking
// send/recv directly from the calling goroutine. It never locks on the
// data path; the caller holding the socket is its sole accessor.
//
// Core B (a [Session] and its background worker) runs a single goroutine
// ("the poll thread") that
// owns every registered socket. Callers interact with sockets only by
// sending request values over a channel (via a [Session]); the worker
// wakes from a blocking multi-socket poll via a self-pipe and replies
// through per-request reply channels. Sockets are referenced by an
// opaque id shared through a reference-counted [Handle].
//
// Both cores implement the same send state machine ([sendState]) and
// receive state machine ([recvState]) described in the package's design
// notes; they differ only in who drives them and how readiness is
// observed.
//
// # Scope
//
// This package does not implement a concrete native socket binding (e.g.
// CGO bindings to libzmq); it consumes one through the [NativeSocket]
// interface. It does not provide guaranteed delivery beyond what the
// transport gives, and it does not support concurrent use of a single
// socket handle from more than one logical accessor at a time.
package zmqasync
