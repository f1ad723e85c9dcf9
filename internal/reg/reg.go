// Package reg models a bank of memory-mapped device registers.
//
// Real silicon exposes device control through loads and stores to a fixed physical address range;
// on hardware, those addresses never back ordinary RAM. In this software model the same contract --
// fixed offsets, little-endian multi-byte registers, volatile-style read/write -- is backed by a
// plain byte slice, so the GIC and timer drivers in [github.com/nyxkernel/nyx/internal/intr] and the
// UART backends in [github.com/nyxkernel/nyx/internal/platform] can be driven identically in
// production and in tests.
package reg

import (
	"encoding/binary"
	"fmt"
)

// Space is a fixed-size bank of byte-addressable registers.
type Space struct {
	name string
	mem  []byte
}

// New creates a register space of size bytes, named for diagnostics.
func New(name string, size int) *Space {
	return &Space{name: name, mem: make([]byte, size)}
}

// ErrOutOfRange is returned when an offset falls outside the register space.
var ErrOutOfRange = fmt.Errorf("reg: offset out of range")

func (s *Space) bounds(off, width int) error {
	if off < 0 || off+width > len(s.mem) {
		return fmt.Errorf("%w: %s: offset %#x width %d (size %#x)",
			ErrOutOfRange, s.name, off, width, len(s.mem))
	}

	return nil
}

// Read8 reads a single byte register at off.
func (s *Space) Read8(off int) (byte, error) {
	if err := s.bounds(off, 1); err != nil {
		return 0, err
	}

	return s.mem[off], nil
}

// Write8 writes a single byte register at off.
func (s *Space) Write8(off int, val byte) error {
	if err := s.bounds(off, 1); err != nil {
		return err
	}

	s.mem[off] = val

	return nil
}

// Read32 reads a little-endian 32-bit register at off.
func (s *Space) Read32(off int) (uint32, error) {
	if err := s.bounds(off, 4); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(s.mem[off : off+4]), nil
}

// Write32 writes a little-endian 32-bit register at off.
func (s *Space) Write32(off int, val uint32) error {
	if err := s.bounds(off, 4); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(s.mem[off:off+4], val)

	return nil
}

// Read64 reads a little-endian 64-bit register at off.
func (s *Space) Read64(off int) (uint64, error) {
	if err := s.bounds(off, 8); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(s.mem[off : off+8]), nil
}

// Write64 writes a little-endian 64-bit register at off.
func (s *Space) Write64(off int, val uint64) error {
	if err := s.bounds(off, 8); err != nil {
		return err
	}

	binary.LittleEndian.PutUint64(s.mem[off:off+8], val)

	return nil
}

// Name returns the register space's diagnostic name.
func (s *Space) Name() string { return s.name }
