package zmqasync

import (
	"context"
	"testing"
	"time"
)

func TestHandleCloneAddsIndependentCloseCalls(t *testing.T) {
	s := newTestSession(t)
	sock := newFakeSocket(40)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	h, err := s.Init(ctx, sock)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	a := h.Clone()
	b := h.Clone()

	for _, c := range []*Handle{h, a} {
		if err := c.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	if sock.closed {
		t.Fatal("socket must stay open while clone b is still live")
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close (last clone): %v", err)
	}
	if !waitForCondition(t, func() bool {
		sock.mu.Lock()
		defer sock.mu.Unlock()
		return sock.closed
	}) {
		t.Fatal("socket never closed after the last clone's Close")
	}
}

func TestHandleSendAfterClose(t *testing.T) {
	s := newTestSession(t)
	sock := newFakeSocket(41)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	h, err := s.Init(ctx, sock)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !waitForCondition(t, func() bool {
		sock.mu.Lock()
		defer sock.mu.Unlock()
		return sock.closed
	}) {
		t.Fatal("socket never closed")
	}

	_, err = h.Send(ctx, NewMultipart([]byte("too late")))
	if err == nil {
		t.Fatal("Send after the socket was dropped must fail")
	}
}
