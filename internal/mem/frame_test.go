package mem

import "testing"

func TestFrameAllocatorExhaustion(tt *testing.T) {
	const start = 0x4000_0000

	fa, err := NewFrameAllocator(start, start+PageSize)
	if err != nil {
		tt.Fatalf("new: %s", err)
	}

	f, ok := fa.Alloc()
	if !ok {
		tt.Fatalf("want first alloc to succeed")
	}

	if uintptr(f) != start {
		tt.Errorf("frame: got %#x, want %#x", uintptr(f), start)
	}

	if _, ok := fa.Alloc(); ok {
		tt.Errorf("want second alloc to report exhaustion")
	}
}

func TestFrameAllocatorAlignmentRequired(tt *testing.T) {
	if _, err := NewFrameAllocator(1, 4096); err == nil {
		tt.Errorf("want error for unaligned start")
	}

	if _, err := NewFrameAllocator(4096, 8191); err == nil {
		tt.Errorf("want error for unaligned end")
	}

	if _, err := NewFrameAllocator(8192, 4096); err == nil {
		tt.Errorf("want error when start is after end")
	}
}

func TestFrameAllocatorFramesDoNotOverlap(tt *testing.T) {
	const (
		start = 0x5000_0000
		end   = start + 16*PageSize
	)

	fa, err := NewFrameAllocator(start, end)
	if err != nil {
		tt.Fatalf("new: %s", err)
	}

	seen := map[uintptr]bool{}

	for {
		f, ok := fa.Alloc()
		if !ok {
			break
		}

		if !f.Aligned() {
			tt.Fatalf("frame %s is not page-aligned", f)
		}

		if uintptr(f) < start || uintptr(f)+PageSize > end {
			tt.Fatalf("frame %s outside window [%#x, %#x)", f, start, end)
		}

		if seen[uintptr(f)] {
			tt.Fatalf("frame %s allocated twice", f)
		}

		seen[uintptr(f)] = true
	}

	if len(seen) != 16 {
		tt.Errorf("got %d frames, want 16", len(seen))
	}
}
