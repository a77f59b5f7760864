package zmqasync

import (
	"errors"
	"testing"
	"time"
)

func TestWorkerRejectsRequestsForUnknownSocket(t *testing.T) {
	w, err := newWorker(4, nil, nil)
	if err != nil {
		t.Fatalf("newWorker: %v", err)
	}
	go w.run()
	defer w.Close()

	reply := make(chan sendOutcome, 1)
	w.send(sendRequest{id: 999, mp: NewMultipart([]byte("x")), reply: reply})

	select {
	case out := <-reply:
		var closed *ClosedError
		if !errors.As(out.err, &closed) {
			t.Fatalf("err = %v, want *ClosedError", out.err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker never replied")
	}
}

func TestWorkerDropThenOperationIsRejected(t *testing.T) {
	w, err := newWorker(4, nil, nil)
	if err != nil {
		t.Fatalf("newWorker: %v", err)
	}
	go w.run()
	defer w.Close()

	sock := newFakeSocket(21)
	initReply := make(chan sockID, 1)
	w.send(initRequest{sock: sock, reply: initReply})
	id := <-initReply

	w.send(dropRequest{id: id})

	// give the worker a moment to process the drop before racing a send
	// against it.
	waitForCondition(t, func() bool {
		sock.mu.Lock()
		defer sock.mu.Unlock()
		return sock.closed
	})

	reply := make(chan sendOutcome, 1)
	w.send(sendRequest{id: id, mp: NewMultipart([]byte("x")), reply: reply})

	select {
	case out := <-reply:
		var closed *ClosedError
		if !errors.As(out.err, &closed) {
			t.Fatalf("err = %v, want *ClosedError", out.err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker never replied")
	}
}

func TestWorkerCloseTearsDownAllSockets(t *testing.T) {
	w, err := newWorker(4, nil, nil)
	if err != nil {
		t.Fatalf("newWorker: %v", err)
	}
	go w.run()

	socks := make([]*fakeSocket, 3)
	for i := range socks {
		socks[i] = newFakeSocket(30 + i)
		reply := make(chan sockID, 1)
		w.send(initRequest{sock: socks[i], reply: reply})
		<-reply
	}

	w.Close()

	for i, s := range socks {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			t.Fatalf("socket %d was not closed by worker.Close", i)
		}
	}
}
