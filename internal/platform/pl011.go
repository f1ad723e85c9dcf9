package platform

import "github.com/nyxkernel/nyx/internal/reg"

// PL011 register offsets used by this model: data register and flag register. Baud-rate and line
// control registers exist on real hardware but are not needed to model output.
const (
	pl011DR = 0x00
	pl011FR = 0x18
)

const pl011FRTxFull = 1 << 5 // UARTFR: transmit FIFO full

// PL011UART is a simulated ARM PrimeCell UART, the console device the virt platform exposes.
type PL011UART struct {
	regs *reg.Space
}

// NewPL011UART wraps regs, the simulated UART MMIO block, as a PL011 console.
func NewPL011UART(regs *reg.Space) *PL011UART {
	return &PL011UART{regs: regs}
}

// Log implements hal.Logger, writing s byte-by-byte through the simulated data register and
// translating "\n" to "\r\n".
func (u *PL011UART) Log(s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			u.putc('\r')
		}

		u.putc(s[i])
	}
}

func (u *PL011UART) putc(b byte) {
	fr, err := u.regs.Read32(pl011FR)
	if err != nil || fr&pl011FRTxFull != 0 {
		return
	}

	_ = u.regs.Write32(pl011DR, uint32(b))
}
