package zmqasync

// recvState assembles one complete [Multipart] from non-blocking recv
// calls, tick by tick. The partially-accumulated multipart survives
// suspension: a NotReady tick never discards frames already read.
type recvState struct {
	kind sendStateKind // reuses the same {ready,pending,running,polling} tags
	mp   Multipart     // frames accumulated so far in the working multipart
}

// RecvPolicy controls how a non-transient, non-would-block error from the
// native socket is handled, chosen per core: Core A propagates it since
// there is only one task driving the socket, while Core B's poll loop
// suppresses protocol-state errors (and propagates any other) so one
// socket's protocol violation can't stall every other socket it services.
type RecvPolicy uint8

const (
	// RecvPolicyPropagate surfaces any non-transient error to the
	// caller (Core A: there is exactly one task driving this socket).
	RecvPolicyPropagate RecvPolicy = iota
	// RecvPolicySuppressProtocolState logs [ErrProtocolState] and
	// clears the read arm instead of propagating, treating it as
	// end-of-round (Core B: the poll loop must keep servicing every
	// other socket).
	RecvPolicySuppressProtocolState
)

// tick drives one non-blocking attempt to complete the working multipart.
// On (tickReady, mp, false, nil) mp is the completed multipart and the
// machine has reset to its idle state (stateReady) for the next one. On (tickReady, nil,
// false, err) err is a non-transient failure and the working multipart
// was discarded. On (tickNotReady, nil, true, err) the socket is stuck in
// the wrong protocol state under [RecvPolicySuppressProtocolState]: err
// is the original classified error, kept (rather than dropped) so the
// caller can log it before deciding to suppress it; the caller is still
// expected to treat the tick as not-ready, not as a propagated failure.
func (s *recvState) tick(sock NativeSocket, policy RecvPolicy) (res tickResult, mp Multipart, suppressed bool, err error) {
	if s.kind == statePolling {
		return tickNotReady, nil, false, &ReentrancyError{Op: "recv"}
	}

	s.kind = statePolling

	for {
		frame, ferr := sock.Recv()
		switch {
		case ferr == nil:
			s.mp = append(s.mp, frame)
			if frame.More {
				continue
			}
			done := s.mp
			s.mp = nil
			s.kind = stateReady
			return tickReady, done, false, nil
		case IsTransient(ferr):
			s.kind = stateRunning
			return tickNotReady, nil, false, nil
		case policy == RecvPolicySuppressProtocolState && Classify(ferr) == ClassProtocolState:
			s.kind = stateRunning
			return tickNotReady, nil, true, ferr
		default:
			s.kind = stateReady
			s.mp = nil
			return tickReady, nil, false, ferr
		}
	}
}
