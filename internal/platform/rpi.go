package platform

import "github.com/nyxkernel/nyx/internal/reg"

// RPi is the Raspberry Pi 3/4 physical memory map: no GICv2, and a mini-UART (AUX peripheral)
// instead of a PL011. Its interrupt controller and UART bring-up sequence are distinct enough from
// virt's that it gets its own Layout and its own hal.Logger implementation, MiniUART.
var RPi = Layout{
	Name:          "rpi",
	RAMStart:      0x0000_0000,
	RAMEnd:        0x3F00_0000,
	UARTBase:      0x3F21_5000, // AUX (mini-UART) base on the BCM2837 peripheral window
	UARTSize:      0x100,
	GICDistBase:   0x3F00_B200, // BCM2835-style local interrupt controller, not a GICv2
	GICDistSize:   0x100,
	GICCPUBase:    0x3F00_B200,
	GICCPUSize:    0x100,
	TimerFreqHint: 19_200_000,
}

// Mini-UART (AUX_MU_*) register offsets, relative to the AUX peripheral base.
const (
	auxIRQ     = 0x00
	auxEnables = 0x04
	muIO       = 0x40
	muIER      = 0x44
	muIIR      = 0x48
	muLCR      = 0x4C
	muCNTL     = 0x60
	muLSR      = 0x64
	muBAUD     = 0x68
)

const (
	muEnable       = 1 << 0 // AUX_ENABLES: enable mini-UART
	muLCR8Bit      = 3      // AUX_MU_LCR: 8-bit mode
	muCNTLTxEnRxEn = 3      // AUX_MU_CNTL: enable transmitter and receiver
	muLSRTxEmpty   = 1 << 5 // AUX_MU_LSR: transmitter FIFO empty
)

// MiniUART is a simulated BCM283x mini-UART, the serial device original_source's
// arch_aarch64_rpi target bit-bangs directly. Init reproduces that bring-up sequence: enable the
// AUX peripheral, configure 8-bit mode, set the baud-rate divisor, then enable TX and RX.
type MiniUART struct {
	regs *reg.Space
}

// NewMiniUART wraps regs, the simulated AUX MMIO block, as a mini-UART.
func NewMiniUART(regs *reg.Space) *MiniUART {
	return &MiniUART{regs: regs}
}

// Init runs the mini-UART bring-up sequence against a 250 MHz core clock, picking the baud-rate
// divisor for 115200 baud the way the reference firmware does: divisor = clock/(8*baud) - 1.
func (u *MiniUART) Init() error {
	if err := u.regs.Write32(auxEnables, muEnable); err != nil {
		return err
	}

	if err := u.regs.Write32(muIER, 0); err != nil {
		return err
	}

	if err := u.regs.Write32(muCNTL, 0); err != nil {
		return err
	}

	if err := u.regs.Write32(muLCR, muLCR8Bit); err != nil {
		return err
	}

	const (
		coreClockHz = 250_000_000
		baud        = 115200
	)

	divisor := coreClockHz/(8*baud) - 1
	if err := u.regs.Write32(muBAUD, uint32(divisor)); err != nil {
		return err
	}

	if err := u.regs.Write32(muCNTL, muCNTLTxEnRxEn); err != nil {
		return err
	}

	// The simulated transmitter has no backlog: report its FIFO empty so putc can write.
	return u.regs.Write32(muLSR, muLSRTxEmpty)
}

// Log implements hal.Logger, writing s byte-by-byte through the simulated transmit register and
// translating "\n" to "\r\n" as a real serial terminal expects.
func (u *MiniUART) Log(s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			u.putc('\r')
		}

		u.putc(s[i])
	}
}

func (u *MiniUART) putc(b byte) {
	lsr, err := u.regs.Read32(muLSR)
	if err != nil || lsr&muLSRTxEmpty == 0 {
		return
	}

	_ = u.regs.Write32(muIO, uint32(b))
}
