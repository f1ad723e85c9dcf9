package ipc

import "testing"

func TestSendRecvRoundTrip(tt *testing.T) {
	r := NewRouter()

	msg := Message{Header: Header{Src: Ping, Dst: Pong, Type: MsgPing, Len: 4, Seq: 1}}
	WriteUint32LE(msg.Payload[0:4], 1)

	if err := r.Send(msg); err != nil {
		tt.Fatalf("send: %s", err)
	}

	got, ok := r.Recv(Pong)
	if !ok {
		tt.Fatalf("recv: want a message")
	}

	if got != msg {
		tt.Errorf("recv: got %+v, want %+v", got, msg)
	}
}

func TestRecvEmptyMailbox(tt *testing.T) {
	r := NewRouter()

	if _, ok := r.Recv(Ping); ok {
		tt.Errorf("recv: want false for an empty mailbox")
	}
}

func TestSendFullMailboxDoesNotOverwrite(tt *testing.T) {
	r := NewRouter()

	first := Message{Header: Header{Dst: Pong, Seq: 1}}
	second := Message{Header: Header{Dst: Pong, Seq: 2}}

	if err := r.Send(first); err != nil {
		tt.Fatalf("send first: %s", err)
	}

	if err := r.Send(second); err == nil {
		tt.Fatalf("send second: want ErrMailboxFull")
	} else if err != ErrMailboxFull {
		tt.Fatalf("send second: got %v, want ErrMailboxFull", err)
	}

	got, ok := r.Recv(Pong)
	if !ok {
		tt.Fatalf("recv: want a message")
	}

	if got.Header.Seq != 1 {
		tt.Errorf("recv: want the first message preserved, got seq %d", got.Header.Seq)
	}
}

func TestUint32LERoundTrip(tt *testing.T) {
	for _, v := range []uint32{0, 1, 0xDEAD_BEEF, 0xFFFF_FFFF} {
		var buf [4]byte

		WriteUint32LE(buf[:], v)

		if got := ReadUint32LE(buf[:]); got != v {
			tt.Errorf("round trip %#x: got %#x", v, got)
		}
	}
}

func TestWriteUint32LEByteOrder(tt *testing.T) {
	var buf [4]byte

	WriteUint32LE(buf[:], 0xDEAD_BEEF)

	want := [4]byte{0xEF, 0xBE, 0xAD, 0xDE}
	if buf != want {
		tt.Errorf("got %x, want %x", buf, want)
	}
}
