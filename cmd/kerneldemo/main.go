// kerneldemo boots the simulated microkernel core against a chosen board layout: it builds an
// identity-mapped page-table skeleton, performs the (simulated) MMU enable, brings up the GIC and
// generic timer, drives the preemptive scheduler through synthetic timer interrupts, and hands the
// cooperative ping/pong task loop a number of polling sweeps before halting.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nyxkernel/nyx/internal/console"
	"github.com/nyxkernel/nyx/internal/hal"
	"github.com/nyxkernel/nyx/internal/intr"
	"github.com/nyxkernel/nyx/internal/ipc"
	"github.com/nyxkernel/nyx/internal/log"
	"github.com/nyxkernel/nyx/internal/mem"
	"github.com/nyxkernel/nyx/internal/platform"
	"github.com/nyxkernel/nyx/internal/reg"
	"github.com/nyxkernel/nyx/internal/sched"
	"github.com/nyxkernel/nyx/internal/task"
)

func main() {
	board := flag.String("board", "virt", "board layout to boot: virt or rpi")
	quiet := flag.Bool("quiet", false, "only log warnings and errors")
	sweeps := flag.Int("sweeps", 30, "number of cooperative task sweeps to run before halting")
	flag.Parse()

	if *quiet {
		log.Level.Set(log.Warn)
	}

	logger := log.NewFormattedLogger(os.Stderr)
	log.SetDefault(logger)

	layout, err := resolveBoard(*board)
	if err != nil {
		logger.Error("boot: unknown board", "err", err)
		os.Exit(1)
	}

	uart, restoreConsole := bringUpConsole(layout)
	if restoreConsole != nil {
		defer restoreConsole()
	}

	logger.Info("boot: starting", log.String("board", layout.Name))

	if err := bootstrapMemory(layout, logger); err != nil {
		uart.Log("rustOS: PANIC: " + err.Error() + "\n")
		logger.Error("boot: memory bring-up failed", "err", err)
		os.Exit(1)
	}

	timer, scheduler, gicCPU := bootstrapInterrupts(layout, logger)

	runPreemptionDemo(timer, scheduler, gicCPU, logger)
	runCooperativeDemo(uart, logger, *sweeps)

	logger.Info("boot: demo complete")
}

func resolveBoard(name string) (platform.Layout, error) {
	switch name {
	case "virt":
		return platform.Virt, nil
	case "rpi":
		return platform.RPi, nil
	default:
		return platform.Layout{}, fmt.Errorf("board %q: want virt or rpi", name)
	}
}

// bringUpConsole wires the board's own simulated UART as the kernel's hal.Logger. When stdout is a
// real terminal, output is also mirrored there in raw mode so a human watching the demo sees the
// same bytes a wired-up serial console would carry.
func bringUpConsole(layout platform.Layout) (hal.Logger, func()) {
	var uart hal.Logger
	if layout.Name == "rpi" {
		mu := platform.NewMiniUART(layout.NewUARTSpace())
		_ = mu.Init()
		uart = mu
	} else {
		uart = platform.NewPL011UART(layout.NewUARTSpace())
	}

	real, err := console.New()
	if err != nil {
		return uart, nil
	}

	combined := hal.LoggerFunc(func(s string) {
		uart.Log(s)
		real.Log(s)
	})

	return combined, func() { _ = real.Restore() }
}

// bootstrapMemory runs the frame allocator, the page-table builder, and the simulated MMU enable in
// sequence. It keeps no state afterward: this demo only needs the bring-up to complete without
// error, matching the boot-time contract the spec's memory module describes.
func bootstrapMemory(layout platform.Layout, logger *log.Logger) error {
	alloc, err := mem.NewFrameAllocator(layout.RAMStart, layout.RAMEnd)
	if err != nil {
		return err
	}

	frame0, ok := alloc.Alloc()
	if !ok {
		return fmt.Errorf("mem: frame allocator exhausted before first allocation")
	}

	var tables mem.Tables

	cfg := mem.Config{
		RAMStart: layout.RAMStart,
		RAMEnd:   layout.RAMEnd,
		UARTBase: layout.UARTBase &^ (mem.BlockSize - 1),
		TestVA:   layout.RAMEnd + mem.BlockSize,
	}

	rootPTR, _, err := tables.Build(frame0, cfg)
	if err != nil {
		return err
	}

	return mem.SimulatedEnableMMU(logger)(rootPTR)
}

// bootstrapInterrupts brings the GIC and the generic timer online over the board's simulated
// register spaces and constructs the two-thread preemptive scheduler the timer drives.
func bootstrapInterrupts(layout platform.Layout, logger *log.Logger) (*intr.Timer, *sched.Scheduler, *reg.Space) {
	distributor, cpu := layout.NewGICSpaces()
	gic := intr.NewGIC(distributor, cpu, logger)

	timerRegs := reg.New(layout.Name+"-timer", 0x10)
	_ = timerRegs.Write32(0x08, uint32(layout.TimerFreqHint))

	timer := intr.NewTimer(gic, timerRegs, logger)
	if err := timer.Init(); err != nil {
		logger.Error("boot: timer init failed", "err", err)
	}

	scheduler := sched.NewScheduler(logger, [sched.NumThreads]func(){
		func() {},
		func() {},
	})

	return timer, scheduler, cpu
}

// runPreemptionDemo feeds the timer ten synthetic interrupts, the way real interrupt-entry glue
// would after an actual countdown expiry, and logs the resulting context switch at the fifth and
// tenth tick.
func runPreemptionDemo(timer *intr.Timer, scheduler *sched.Scheduler, gicCPU *reg.Space, logger *log.Logger) {
	current := scheduler.FirstContext()

	for i := 0; i < 10; i++ {
		_ = gicCPU.Write32(0x0C, intr.TimerID) // latch the timer id in the CPU interface's IAR
		current = timer.HandleIRQ(current, scheduler)
	}

	logger.Info("boot: preemption demo complete",
		log.Uint64("ticks", timer.Ticks()), log.Uint64("current", uint64(scheduler.Current())))
}

// runCooperativeDemo runs the ping/pong task loop for a fixed number of sweeps. task.Run maintains
// its own logical tick, independent of the preemption demo's interrupt-driven one, the cadence
// PingTask starts rounds on.
func runCooperativeDemo(uart hal.Logger, logger *log.Logger, sweeps int) {
	router := ipc.NewRouter()
	tasks := []task.Task{task.NewPingTask(), task.NewPongTask()}

	count := 0

	halter := hal.HalterFunc(func() {
		count++
		if count >= sweeps {
			panic(demoComplete{})
		}
	})

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(demoComplete); !ok {
				panic(r)
			}
		}
	}()

	task.Run(tasks, uart, router, halter)
}

type demoComplete struct{}
