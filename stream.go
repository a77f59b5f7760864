package zmqasync

// RecvStream is a lazily-driven, logically infinite sequence of
// [Multipart] values pulled from a [NativeSocket] via [recvState],
// modeled on futures-zmq's MultipartStream. It never terminates on its
// own; callers stop pulling when they're done, or a non-transient error
// ends the sequence.
type RecvStream struct {
	recv   recvState
	policy RecvPolicy
}

// NewRecvStream constructs a RecvStream using policy to decide how a
// non-transient, non-would-block recv error is handled.
func NewRecvStream(policy RecvPolicy) *RecvStream {
	return &RecvStream{policy: policy}
}

// PollNext drives one non-blocking attempt to complete the next
// multipart in the sequence. A (tickReady, mp, nil) result yields mp as
// the next item; the stream is immediately ready to be polled again for
// the one after it. A (tickNotReady, nil, nil) result means the caller
// must wait for readability before polling again. A non-nil error ends
// the sequence; the stream must not be polled again afterward.
func (s *RecvStream) PollNext(sock NativeSocket) (tickResult, Multipart, error) {
	res, mp, suppressed, err := s.recv.tick(sock, s.policy)
	if suppressed {
		// A stream built with RecvPolicySuppressProtocolState treats a
		// stuck protocol state the same as a quiet not-ready: the error
		// was already classified by recvState.tick, there is simply
		// nobody here to log it to (see pollable.drainRead for the Core
		// B caller that does).
		err = nil
	}
	return res, mp, err
}
