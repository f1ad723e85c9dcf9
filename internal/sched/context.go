// Package sched implements the preemptive context switcher: per-thread register state, a
// round-robin policy over a small fixed set of kernel threads, and the first-entry hand-off from
// the boot path.
package sched

// NumThreads is the size of the statically sized thread set.
const NumThreads = 2

// BootSPSR is the fixed processor-state value every thread context is initialized with: kernel
// exception level, kernel stack pointer selected, and DAIF as boot left it (IRQs unmasked, since
// DAIF.I is clear at that point in the boot path). A reimplementation using a different DAIF policy
// at IRQ-exit must reconsider this constant.
const BootSPSR uint64 = 0x5

// Context is the minimum state needed to resume a thread: 31 general registers, the stack pointer,
// the exception link register (return address), and the saved processor state.
type Context struct {
	X    [31]uint64 // x0..x30
	SP   uint64
	ELR  uint64
	SPSR uint64
}
