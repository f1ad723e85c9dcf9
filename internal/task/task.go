// Package task implements the cooperative scheduling loop that sits above the preemptive
// interrupt-driven context switcher: a fixed set of tasks, each polled once per tick in a fixed
// order, each responsible for its own non-blocking state machine over ipc.
package task

import (
	"github.com/nyxkernel/nyx/internal/hal"
	"github.com/nyxkernel/nyx/internal/ipc"
)

// Task is a single cooperatively-scheduled unit of work. Poll must never block: a task that has
// nothing to do this tick returns immediately.
type Task interface {
	ID() ipc.EndpointID
	Poll(logger hal.Logger, router *ipc.Router, tick uint64)
}

// Run polls each task once per sweep, in order, forever. It maintains its own logical tick: a
// counter that increases by one every sweep, using wrapping addition, independent of any
// interrupt-driven hardware tick. Between sweeps it halts the CPU via halter, waiting for the next
// interrupt. Run never returns; it is the kernel's idle loop once boot is complete.
func Run(tasks []Task, logger hal.Logger, router *ipc.Router, halter hal.Halter) {
	var tick uint64

	for {
		for _, t := range tasks {
			t.Poll(logger, router, tick)
		}

		tick++ // wraps to 0 on overflow, same as an unsigned integer everywhere else in Go

		halter.Halt()
	}
}
