// Package platform wires the core kernel packages (mem, intr, sched, ipc, task) to the MMIO layout
// of a specific board. Each file in this package describes one board: the physical memory map it
// presents and the concrete hal.Logger built over that board's UART.
package platform

import (
	"github.com/nyxkernel/nyx/internal/reg"
)

// Virt is the QEMU "virt" machine's physical memory map: a generic GICv2 plus a PL011 UART, the
// layout original_source's arch_aarch64_virt target boots against.
var Virt = Layout{
	Name:          "virt",
	RAMStart:      0x4000_0000,
	RAMEnd:        0x4800_0000,
	UARTBase:      0x0900_0000,
	UARTSize:      0x1000,
	GICDistBase:   0x0800_0000,
	GICDistSize:   0x1000,
	GICCPUBase:    0x0801_0000,
	GICCPUSize:    0x1000,
	TimerFreqHint: 62_500_000,
}

// Layout describes the physical addresses and sizes of the devices a platform exposes. Builders use
// it to size the simulated reg.Space backing each device and to pick the page-table windows that
// map them.
type Layout struct {
	Name string

	RAMStart, RAMEnd uintptr

	UARTBase, UARTSize uintptr
	GICDistBase        uintptr
	GICDistSize        uintptr
	GICCPUBase         uintptr
	GICCPUSize         uintptr

	// TimerFreqHint is the frequency the simulated generic timer reports through CNTFRQ, in Hz.
	TimerFreqHint uint64
}

// NewUARTSpace allocates the simulated MMIO backing a board's primary UART.
func (l Layout) NewUARTSpace() *reg.Space {
	return reg.New(l.Name+"-uart", int(l.UARTSize))
}

// NewGICSpaces allocates the simulated MMIO backing a board's distributor and CPU interface.
func (l Layout) NewGICSpaces() (distributor, cpu *reg.Space) {
	return reg.New(l.Name+"-gicd", int(l.GICDistSize)), reg.New(l.Name+"-gicc", int(l.GICCPUSize))
}
