package zmqasync

// Message is an opaque payload frame. It is immutable once constructed:
// callers must not mutate Data after handing a Message to the adapter, and
// the adapter never mutates a Message it did not create.
type Message struct {
	// Data is the frame payload.
	Data []byte

	// More is true for every frame of a Multipart except the last.
	More bool
}

// NewMessage constructs a single-frame Message. More defaults to false;
// use [Multipart] construction to build multi-frame messages.
func NewMessage(data []byte) Message {
	return Message{Data: data}
}

// Multipart is an ordered, non-empty sequence of frames representing one
// atomic application-level message. By construction the last frame's More
// flag is false and every other frame's is true; [Multipart.Normalize]
// enforces this.
type Multipart []Message

// NewMultipart builds a Multipart from raw frame payloads, setting More
// flags automatically.
func NewMultipart(frames ...[]byte) Multipart {
	mp := make(Multipart, len(frames))
	for i, f := range frames {
		mp[i] = Message{Data: f, More: i != len(frames)-1}
	}
	return mp
}

// Normalize rewrites the More flag of every frame so that only the last
// frame has More == false. It panics if mp is empty: an empty Multipart
// is never a valid value per the data model's non-empty invariant.
func (mp Multipart) Normalize() Multipart {
	if len(mp) == 0 {
		panic("zmqasync: empty multipart")
	}
	for i := range mp {
		mp[i].More = i != len(mp)-1
	}
	return mp
}

// Clone returns a deep copy of mp, including frame payload bytes. Useful
// when a caller must retain a Multipart past a call that takes ownership
// of it (e.g. [SinkBuffer.StartSend] once it accepts the multipart).
func (mp Multipart) Clone() Multipart {
	out := make(Multipart, len(mp))
	for i, m := range mp {
		d := make([]byte, len(m.Data))
		copy(d, m.Data)
		out[i] = Message{Data: d, More: m.More}
	}
	return out
}
