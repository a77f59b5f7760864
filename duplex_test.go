package zmqasync

import "testing"

func TestRecvStreamYieldsSuccessiveMultiparts(t *testing.T) {
	sock := newFakeSocket(1)
	sock.deliver(NewMultipart([]byte("1")))
	sock.deliver(NewMultipart([]byte("2")))

	s := NewRecvStream(RecvPolicyPropagate)

	res, mp, err := s.PollNext(sock)
	if err != nil || res != tickReady || string(mp[0].Data) != "1" {
		t.Fatalf("PollNext[0] = (%v, %v, %v)", res, mp, err)
	}

	res, mp, err = s.PollNext(sock)
	if err != nil || res != tickReady || string(mp[0].Data) != "2" {
		t.Fatalf("PollNext[1] = (%v, %v, %v)", res, mp, err)
	}

	res, mp, err = s.PollNext(sock)
	if err != nil || res != tickNotReady || mp != nil {
		t.Fatalf("PollNext[2] (empty) = (%v, %v, %v), want (tickNotReady, nil, nil)", res, mp, err)
	}
}

func TestDuplexSendAndReceiveIndependent(t *testing.T) {
	sock := newFakeSocket(1)
	sock.deliver(NewMultipart([]byte("incoming")))

	d := NewDuplex(2, RecvPolicyPropagate, nil)

	accepted, err := d.StartSend(sock, NewMultipart([]byte("outgoing")))
	if err != nil || !accepted {
		t.Fatalf("StartSend = (%v, %v), want (true, nil)", accepted, err)
	}

	res, mp, err := d.PollNext(sock, nil)
	if err != nil || res != tickReady || string(mp[0].Data) != "incoming" {
		t.Fatalf("PollNext = (%v, %v, %v)", res, mp, err)
	}

	res, err = d.PollComplete(sock, nil)
	if err != nil || res != tickReady {
		t.Fatalf("PollComplete = (%v, %v)", res, err)
	}
	if sent := sock.sent(); len(sent) != 1 || string(sent[0]) != "outgoing" {
		t.Fatalf("sent = %v, want [outgoing]", sent)
	}
}

// TestDuplexCrossNotifiesOppositeArm exercises Duplex's cross-notification:
// progress on one arm must wake a task registered on the other, since both
// arms share a single readiness fd.
func TestDuplexCrossNotifiesOppositeArm(t *testing.T) {
	sock := newFakeSocket(2)
	d := NewDuplex(1, RecvPolicyPropagate, nil)

	var recvWoken, sendWoken bool
	res, _, err := d.PollNext(sock, func() { recvWoken = true })
	if err != nil || res != tickNotReady {
		t.Fatalf("PollNext (empty) = (%v, %v), want (tickNotReady, nil)", res, err)
	}

	accepted, err := d.StartSend(sock, NewMultipart([]byte("outgoing")))
	if err != nil || !accepted {
		t.Fatalf("StartSend = (%v, %v), want (true, nil)", accepted, err)
	}
	if res, err := d.PollComplete(sock, func() { sendWoken = true }); err != nil || res != tickReady {
		t.Fatalf("PollComplete = (%v, %v), want (tickReady, nil)", res, err)
	}
	if !recvWoken {
		t.Fatal("PollComplete's progress must wake the registered stream task")
	}

	sock.deliver(NewMultipart([]byte("incoming")))
	if res, _, err := d.PollNext(sock, nil); err != nil || res != tickReady {
		t.Fatalf("PollNext = (%v, %v), want (tickReady, nil)", res, err)
	}
	if !sendWoken {
		t.Fatal("PollNext's progress must wake the registered sink task")
	}
}
