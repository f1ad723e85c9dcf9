// Package intr implements the GICv2-class interrupt controller driver, the periodic timer driver,
// and the glue that turns a timer interrupt into a call into the preemptive scheduler.
package intr

import (
	"github.com/nyxkernel/nyx/internal/log"
	"github.com/nyxkernel/nyx/internal/reg"
)

// Distributor register offsets.
const (
	gicdCTLR       = 0x000
	gicdISENABLER0 = 0x100
	gicdIPRIORITYR = 0x400
	gicdITARGETSR  = 0x800
)

// CPU interface register offsets.
const (
	giccCTLR = 0x0000
	giccPMR  = 0x0004
	giccIAR  = 0x000C
	giccEOIR = 0x0010
)

// TimerID is the private per-CPU interrupt ID of the ARM generic timer.
const TimerID uint32 = 30

// midPriority is the priority byte written for every enabled interrupt: mid-range, so the CPU
// interface's accept-all priority mask (programmed during Init) still lets it through.
const midPriority = 0x80

// GIC drives a GICv2-class interrupt controller from reset to "CPU interface accepts all
// priorities, distributor forwards the private timer interrupt".
type GIC struct {
	distributor *reg.Space
	cpu         *reg.Space
	log         *log.Logger
}

// NewGIC creates a driver over the given distributor and CPU-interface register spaces.
func NewGIC(distributor, cpu *reg.Space, logger *log.Logger) *GIC {
	return &GIC{distributor: distributor, cpu: cpu, log: logger}
}

// Init enables the distributor, configures the CPU interface to accept every priority, and enables
// the timer interrupt.
func (g *GIC) Init() error {
	if err := g.distributor.Write32(gicdCTLR, 1); err != nil {
		return err
	}

	if err := g.cpu.Write32(giccPMR, 0xFF); err != nil {
		return err
	}

	if err := g.cpu.Write32(giccCTLR, 1); err != nil {
		return err
	}

	g.log.Debug("gic: distributor and CPU interface enabled")

	return g.EnableIRQ(TimerID)
}

// EnableIRQ enables interrupt id in the distributor's set-enable register and assigns it a
// mid-range priority and CPU0 as target. Only SGI/PPI ids (id < 32) are handled; the target byte is
// harmless, but required, for PPIs.
func (g *GIC) EnableIRQ(id uint32) error {
	if id >= 32 {
		return nil
	}

	enable, err := g.distributor.Read32(gicdISENABLER0)
	if err != nil {
		return err
	}

	if err := g.distributor.Write32(gicdISENABLER0, enable|(1<<id)); err != nil {
		return err
	}

	if err := g.distributor.Write8(gicdIPRIORITYR+int(id), midPriority); err != nil {
		return err
	}

	if err := g.distributor.Write8(gicdITARGETSR+int(id), 0x01); err != nil {
		return err
	}

	g.log.Debug("gic: irq enabled", log.Uint64("id", uint64(id)))

	return nil
}

// Acknowledge reads the interrupt-acknowledge register and returns the low 10 bits as the
// interrupt ID, along with the full acknowledge value needed later by EndOfInterrupt.
func (g *GIC) Acknowledge() (iar uint32, id uint32, err error) {
	iar, err = g.cpu.Read32(giccIAR)
	if err != nil {
		return 0, 0, err
	}

	return iar, iar & 0x3FF, nil
}

// EndOfInterrupt writes the full acknowledge value back to the end-of-interrupt register,
// completing the two-step GIC handshake.
func (g *GIC) EndOfInterrupt(iar uint32) error {
	return g.cpu.Write32(giccEOIR, iar)
}
