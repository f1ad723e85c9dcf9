package intr

import (
	"bytes"
	"testing"

	"github.com/nyxkernel/nyx/internal/log"
	"github.com/nyxkernel/nyx/internal/reg"
	"github.com/nyxkernel/nyx/internal/sched"
)

func testTimer(tt *testing.T) (*Timer, *reg.Space) {
	tt.Helper()

	gic, _, cpu := testGIC()
	timerRegs := reg.New("timer", 0x10)
	logger := log.NewFormattedLogger(&bytes.Buffer{})

	_ = timerRegs.Write32(timerCNTFRQ, 1_000_000) // 1 MHz, so tval = 100,000

	timer := NewTimer(gic, timerRegs, logger)
	if err := timer.Init(); err != nil {
		tt.Fatalf("init: %s", err)
	}

	return timer, cpu
}

func TestTimerProgramsCountdownOnInit(tt *testing.T) {
	timer, _ := testTimer(tt)

	tval, _ := timer.regs.Read32(timerTVAL)
	if tval != 100_000 {
		tt.Errorf("tval: got %d, want 100000", tval)
	}

	ctl, _ := timer.regs.Read32(timerCTL)
	if ctl != 1 {
		tt.Errorf("ctl: got %d, want 1", ctl)
	}
}

func TestTimerSchedulingCadence(tt *testing.T) {
	timer, cpu := testTimer(tt)

	logger := log.NewFormattedLogger(&bytes.Buffer{})
	scheduler := sched.NewScheduler(logger, [sched.NumThreads]func(){func() {}, func() {}})

	current := scheduler.FirstContext()

	for i := 1; i <= 10; i++ {
		_ = cpu.Write32(giccIAR, uint32(TimerID)) // synthetic IRQ: id 30 pending

		before := scheduler.Current()
		current = timer.HandleIRQ(current, scheduler)

		switch {
		case i%5 == 0:
			if scheduler.Current() == before {
				tt.Errorf("irq %d: want CURRENT to flip, stayed at %d", i, before)
			}
		default:
			if scheduler.Current() != before {
				tt.Errorf("irq %d: want CURRENT unchanged, got %d -> %d", i, before, scheduler.Current())
			}
		}
	}

	if timer.Ticks() != 10 {
		tt.Errorf("ticks: got %d, want 10", timer.Ticks())
	}
}

func TestTimerIgnoresUnknownInterruptID(tt *testing.T) {
	timer, cpu := testTimer(tt)

	logger := log.NewFormattedLogger(&bytes.Buffer{})
	scheduler := sched.NewScheduler(logger, [sched.NumThreads]func(){func() {}, func() {}})

	current := scheduler.FirstContext()

	_ = cpu.Write32(giccIAR, 77) // unknown id, not the timer

	next := timer.HandleIRQ(current, scheduler)

	if next != current {
		tt.Errorf("want context unchanged for an unknown interrupt id")
	}

	if timer.Ticks() != 0 {
		tt.Errorf("ticks: got %d, want 0 for a non-timer interrupt", timer.Ticks())
	}
}
