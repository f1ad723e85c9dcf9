package sched

import (
	"sync/atomic"

	"github.com/nyxkernel/nyx/internal/log"
)

// StartFirstFunc is the architectural stub that loads every register, the stack pointer, processor
// state, and exception link from ctx, then returns to the entry function -- and never returns
// itself. It is supplied externally (real hardware needs assembly); [SimulatedStartFirst] stands in
// for it when there is no real silicon to jump to.
type StartFirstFunc func(ctx *Context)

// SimulatedStartFirst returns a StartFirstFunc that logs the hand-off and invokes thread 0's entry
// function once, in place of the one-way jump a real architecture stub performs. It logs ctx's ELR
// and SP but does not use ctx to choose the entry function.
func SimulatedStartFirst(logger *log.Logger, scheduler *Scheduler) StartFirstFunc {
	return func(ctx *Context) {
		logger.Debug("sched: first entry", log.Uint64("elr", ctx.ELR), log.Uint64("sp", ctx.SP))
		scheduler.threads[0].entry()
	}
}

// Scheduler holds the fixed thread set and the round-robin CURRENT index. CURRENT is written only
// from the IRQ handler and read from cooperative code, so relaxed atomics are sufficient: there is
// exactly one CPU and one writer.
type Scheduler struct {
	threads [NumThreads]Thread
	current atomic.Uint32
	log     *log.Logger
}

// NewScheduler creates a scheduler for the given entry functions, one per thread.
func NewScheduler(logger *log.Logger, entries [NumThreads]func()) *Scheduler {
	s := &Scheduler{log: logger}
	s.PreemptInit(entries)

	return s
}

// PreemptInit initializes every thread's saved context: stack pointer at the top of its own stack,
// return address at its entry function, and processor state selecting the kernel exception level.
// It is called once; threads are never destroyed afterward.
func (s *Scheduler) PreemptInit(entries [NumThreads]func()) {
	for i := range s.threads {
		s.threads[i].init(entries[i])
	}

	s.threads[0].state = Running
	s.current.Store(0)
}

// FirstContext returns a pointer to thread 0's context record, to be handed to StartFirstFunc.
func (s *Scheduler) FirstContext() *Context {
	return s.threads[0].Context()
}

// SwitchNext flips CURRENT between 0 and 1 and returns a pointer to the new thread's context. The
// caller (the IRQ entry glue) is responsible for saving the outgoing thread's registers into
// current before calling this, and for restoring from the returned context on the way out.
func (s *Scheduler) SwitchNext(current *Context) *Context {
	cur := s.current.Load()
	next := cur ^ 1

	s.threads[cur].ctx = *current
	s.threads[cur].state = Ready
	s.threads[next].state = Running

	s.current.Store(next)

	s.log.Debug("sched: switch", log.Uint64("from", uint64(cur)), log.Uint64("to", uint64(next)))

	return s.threads[next].Context()
}

// Current returns the index of the currently running thread.
func (s *Scheduler) Current() uint32 { return s.current.Load() }

// Thread returns a pointer to thread i's record, for inspection in tests and diagnostics.
func (s *Scheduler) Thread(i int) *Thread { return &s.threads[i] }
