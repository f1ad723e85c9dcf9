package reg

import "testing"

func TestReadWrite32(tt *testing.T) {
	s := New("test", 16)

	if err := s.Write32(0x04, 0xDEADBEEF); err != nil {
		tt.Fatalf("write: %s", err)
	}

	got, err := s.Read32(0x04)
	if err != nil {
		tt.Fatalf("read: %s", err)
	}

	if got != 0xDEADBEEF {
		tt.Errorf("got: %#x, want: %#x", got, 0xDEADBEEF)
	}
}

func TestOutOfRange(tt *testing.T) {
	s := New("test", 8)

	if _, err := s.Read32(8); err == nil {
		tt.Errorf("want error reading past end")
	}

	if err := s.Write64(4, 1); err == nil {
		tt.Errorf("want error writing past end")
	}
}

func TestByteRoundTrip(tt *testing.T) {
	s := New("test", 4)

	if err := s.Write8(2, 0x80); err != nil {
		tt.Fatalf("write8: %s", err)
	}

	got, err := s.Read8(2)
	if err != nil {
		tt.Fatalf("read8: %s", err)
	}

	if got != 0x80 {
		tt.Errorf("got: %#x, want: %#x", got, 0x80)
	}
}
