package zmqasync

import "testing"

func TestSinkBufferAcceptsUpToCapacity(t *testing.T) {
	sock := newFakeSocket(1)
	sock.sendBlocked = true // keep everything queued, nothing drains
	b := NewSinkBuffer(2, nil)

	// The second StartSend moves the first multipart into the active
	// in-flight slot (blocked); that slot counts against capacity, so
	// exactly bufferSize multiparts are accepted before rejection.
	for i := 0; i < 2; i++ {
		accepted, err := b.StartSend(sock, NewMultipart([]byte{byte(i)}))
		if err != nil || !accepted {
			t.Fatalf("StartSend[%d] = (%v, %v), want (true, nil)", i, accepted, err)
		}
	}

	accepted, err := b.StartSend(sock, NewMultipart([]byte("overflow")))
	if err != nil {
		t.Fatalf("StartSend overflow: %v", err)
	}
	if accepted {
		t.Fatal("StartSend must reject once the buffer is at capacity")
	}
}

func TestSinkBufferDrainsQueuedMultipartsInOrder(t *testing.T) {
	sock := newFakeSocket(1)
	sock.sendBlocked = true
	b := NewSinkBuffer(4, nil)

	for _, frame := range []string{"a", "b", "c"} {
		if _, err := b.StartSend(sock, NewMultipart([]byte(frame))); err != nil {
			t.Fatalf("StartSend(%s): %v", frame, err)
		}
	}

	sock.sendBlocked = false
	res, err := b.PollComplete(sock)
	if err != nil || res != tickReady {
		t.Fatalf("PollComplete = (%v, %v), want (tickReady, nil)", res, err)
	}

	sent := sock.sent()
	if len(sent) != 3 || string(sent[0]) != "a" || string(sent[1]) != "b" || string(sent[2]) != "c" {
		t.Fatalf("sent = %v, want [a b c]", sent)
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
}

func TestSinkBufferStopsDrainingOnBackpressureMidQueue(t *testing.T) {
	sock := newFakeSocket(1)
	b := NewSinkBuffer(4, nil)

	if _, err := b.StartSend(sock, NewMultipart([]byte("a"))); err != nil {
		t.Fatal(err)
	}
	// flush "a" through while the socket is still writable.
	if _, err := b.PollComplete(sock); err != nil {
		t.Fatal(err)
	}

	sock.sendBlocked = true
	if _, err := b.StartSend(sock, NewMultipart([]byte("b"))); err != nil {
		t.Fatal(err)
	}

	res, err := b.PollComplete(sock)
	if err != nil || res != tickNotReady {
		t.Fatalf("PollComplete = (%v, %v), want (tickNotReady, nil)", res, err)
	}
	if sent := sock.sent(); len(sent) != 1 || string(sent[0]) != "a" {
		t.Fatalf("sent = %v, want [a] (b must wait)", sent)
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (b was seeded into the active state)", b.Len())
	}
}
