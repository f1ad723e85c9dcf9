package intr

import (
	"sync/atomic"

	"github.com/nyxkernel/nyx/internal/log"
	"github.com/nyxkernel/nyx/internal/reg"
	"github.com/nyxkernel/nyx/internal/sched"
)

// Timer register offsets in the (simulated) generic timer register block: a countdown value, a
// one-bit enable control, and the read-only counter frequency.
const (
	timerTVAL   = 0x00
	timerCTL    = 0x04
	timerCNTFRQ = 0x08
)

// Switcher is implemented by the preemptive scheduler; the timer IRQ handler asks it for the next
// thread's context every fifth tick.
type Switcher interface {
	SwitchNext(current *sched.Context) *sched.Context
}

// Timer generates a periodic 100 ms tick by programming the generic timer's countdown register
// each time it fires, and drives context switches through the registered [Switcher] every five
// ticks (~500 ms).
type Timer struct {
	gic   *GIC
	regs  *reg.Space
	ticks atomic.Uint64
	freq  atomic.Uint64
	log   *log.Logger
}

// NewTimer creates a timer driver over the given GIC and timer register space.
func NewTimer(gic *GIC, regs *reg.Space, logger *log.Logger) *Timer {
	return &Timer{gic: gic, regs: regs, log: logger}
}

// Init brings the interrupt controller online, enables the timer interrupt, reads the counter
// frequency, programs the first countdown, and unmasks IRQs.
func (t *Timer) Init() error {
	if err := t.gic.Init(); err != nil {
		return err
	}

	if err := t.gic.EnableIRQ(TimerID); err != nil {
		return err
	}

	freq, err := t.regs.Read32(timerCNTFRQ)
	if err != nil {
		return err
	}

	t.freq.Store(uint64(freq))

	if err := t.programTimer(uint64(freq)); err != nil {
		return err
	}

	t.log.Debug("timer: irqs unmasked")

	return nil
}

// programTimer writes freq/10 to the countdown register and sets its enable bit, so the timer
// fires once per freq/10 ticks of the counter: 100 ms.
func (t *Timer) programTimer(freq uint64) error {
	tval := freq / 10

	if err := t.regs.Write32(timerTVAL, uint32(tval)); err != nil {
		return err
	}

	return t.regs.Write32(timerCTL, 1)
}

// Ticks returns the monotonic tick counter.
func (t *Timer) Ticks() uint64 {
	return t.ticks.Load()
}

// HandleIRQ is the core of the IRQ entry contract: given the interrupted context, it acknowledges
// the pending interrupt, and if it is the timer, increments the tick counter, reprograms the
// countdown, and -- every fifth tick -- asks scheduler for the next thread's context. It always
// ends the interrupt and returns the context the caller should resume: either the one it was given,
// or the one the scheduler selected. Unknown interrupt ids are acknowledged and ignored; this
// function never fails and never spins.
func (t *Timer) HandleIRQ(current *sched.Context, scheduler Switcher) *sched.Context {
	iar, id, err := t.gic.Acknowledge()
	if err != nil {
		t.log.Error("intr: acknowledge failed", "err", err)
		return current
	}

	next := current

	if id == TimerID {
		tick := t.ticks.Add(1)

		if freq := t.freq.Load(); freq != 0 {
			_ = t.programTimer(freq)
		}

		if tick%5 == 0 {
			next = scheduler.SwitchNext(current)
		}
	}

	if err := t.gic.EndOfInterrupt(iar); err != nil {
		t.log.Error("intr: end of interrupt failed", "err", err)
	}

	return next
}
