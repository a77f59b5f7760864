package zmqasync

import "github.com/joeycumines/go-zmqasync/obslog"

// Duplex combines a [SinkBuffer] and a [RecvStream] over a single
// [NativeSocket], modeled on futures-zmq's MultipartSinkStream.
// Send-side and receive-side progress are driven independently: a caller
// polling PollNext is never blocked behind a pending send, and vice
// versa, since the two sides touch disjoint state. They do, however,
// cross-notify: the native socket exposes a single readiness fd whose
// edge may belong to either direction, so whichever arm's poll observes
// progress wakes the other arm's registered task via one of two optional
// waker slots kept on the duplex itself.
type Duplex struct {
	sink   *SinkBuffer
	stream *RecvStream

	sendWake, recvWake func()
}

// NewDuplex constructs a Duplex with the given outgoing buffer capacity
// and receive-error policy.
func NewDuplex(bufferSize int, policy RecvPolicy, log *obslog.Logger) *Duplex {
	return &Duplex{
		sink:   NewSinkBuffer(bufferSize, log),
		stream: NewRecvStream(policy),
	}
}

// StartSend attempts to queue mp for sending; see [SinkBuffer.StartSend].
func (d *Duplex) StartSend(sock NativeSocket, mp Multipart) (accepted bool, err error) {
	return d.sink.StartSend(sock, mp)
}

// PollComplete drains the send side; see [SinkBuffer.PollComplete]. wake,
// if non-nil, is recorded as the sink arm's current task, replacing any
// previously registered sink waker. On progress (tickReady), the stream
// arm's registered waker, if any, is notified and cleared.
func (d *Duplex) PollComplete(sock NativeSocket, wake func()) (tickResult, error) {
	if wake != nil {
		d.sendWake = wake
	}
	res, err := d.sink.PollComplete(sock)
	if res == tickReady {
		d.wakeRecv()
	}
	return res, err
}

// PollNext drives the receive side; see [RecvStream.PollNext]. wake is
// the stream arm's current task, recorded the same way as in
// [Duplex.PollComplete]. On progress, the sink arm's registered waker, if
// any, is notified and cleared.
func (d *Duplex) PollNext(sock NativeSocket, wake func()) (tickResult, Multipart, error) {
	if wake != nil {
		d.recvWake = wake
	}
	res, mp, err := d.stream.PollNext(sock)
	if res == tickReady {
		d.wakeSend()
	}
	return res, mp, err
}

func (d *Duplex) wakeSend() {
	wake := d.sendWake
	d.sendWake = nil
	if wake != nil {
		wake()
	}
}

func (d *Duplex) wakeRecv() {
	wake := d.recvWake
	d.recvWake = nil
	if wake != nil {
		wake()
	}
}

// Close reports and discards any multiparts still queued on the send
// side; see [SinkBuffer.Close].
func (d *Duplex) Close() { d.sink.Close() }
