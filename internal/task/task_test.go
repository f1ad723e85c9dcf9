package task

import (
	"strings"
	"testing"

	"github.com/nyxkernel/nyx/internal/hal"
	"github.com/nyxkernel/nyx/internal/ipc"
)

type logBuf struct {
	lines []string
}

func (l *logBuf) Log(s string) { l.lines = append(l.lines, s) }

func (l *logBuf) contains(substr string) bool {
	for _, s := range l.lines {
		if strings.Contains(s, substr) {
			return true
		}
	}

	return false
}

func TestPingPongRoundTrip(tt *testing.T) {
	router := ipc.NewRouter()
	logger := &logBuf{}

	ping := NewPingTask()
	pong := NewPongTask()

	// Tick 0: ping fires, pong answers within the same sweep.
	ping.Poll(logger, router, 0)
	pong.Poll(logger, router, 0)

	// Tick 1: ping observes the reply.
	ping.Poll(logger, router, 1)

	if !logger.contains("seq 1") {
		tt.Errorf("want a logged reply for seq 1, got %v", logger.lines)
	}
}

func TestPingTaskFiresOnFirstSweep(tt *testing.T) {
	router := ipc.NewRouter()
	logger := &logBuf{}

	ping := NewPingTask()
	ping.Poll(logger, router, 0)

	msg, ok := router.Recv(ipc.Pong)
	if !ok {
		tt.Fatalf("want a ping sent at tick 0")
	}

	if msg.Header.Seq != 1 {
		tt.Errorf("seq: got %d, want 1", msg.Header.Seq)
	}
}

func TestPingTaskOnlyFiresOnPeriod(tt *testing.T) {
	router := ipc.NewRouter()
	logger := &logBuf{}

	ping := NewPingTask()
	pong := NewPongTask()

	// Tick 0: round one starts and completes, returning ping to idle.
	ping.Poll(logger, router, 0)
	pong.Poll(logger, router, 0)
	ping.Poll(logger, router, 0)

	if ping.state != pingIdle {
		tt.Fatalf("want ping idle after round one completes, got state %d", ping.state)
	}

	for tick := uint64(1); tick < pingPeriod; tick++ {
		ping.Poll(logger, router, tick)
	}

	if _, ok := router.Recv(ipc.Pong); ok {
		tt.Errorf("want no ping sent between tick 1 and tick %d", pingPeriod-1)
	}

	ping.Poll(logger, router, pingPeriod)

	msg, ok := router.Recv(ipc.Pong)
	if !ok {
		tt.Fatalf("want round two to start at tick %d", pingPeriod)
	}

	if msg.Header.Seq != 2 {
		tt.Errorf("seq: got %d, want 2", msg.Header.Seq)
	}
}

func TestPingTaskRetriesOnMailboxFull(tt *testing.T) {
	router := ipc.NewRouter()
	logger := &logBuf{}

	// Occupy Pong's mailbox ahead of time so Ping's first send fails.
	if err := router.Send(ipc.Message{Header: ipc.Header{Dst: ipc.Pong, Seq: 99}}); err != nil {
		tt.Fatalf("prime mailbox: %s", err)
	}

	ping := NewPingTask()
	ping.Poll(logger, router, pingPeriod)

	if ping.state != pingIdle {
		tt.Errorf("want ping to stay idle after a full mailbox, got state %d", ping.state)
	}

	if !logger.contains("mailbox full") {
		tt.Errorf("want a logged retry notice, got %v", logger.lines)
	}

	// Drain the blocking message and retry: this time the send succeeds.
	if _, ok := router.Recv(ipc.Pong); !ok {
		tt.Fatalf("drain: want a message")
	}

	ping.Poll(logger, router, pingPeriod*2)

	if ping.state != pingWaiting {
		tt.Errorf("want ping waiting after a successful retry, got state %d", ping.state)
	}
}

func TestPongTaskEchoesSequence(tt *testing.T) {
	router := ipc.NewRouter()
	logger := &logBuf{}

	msg := ipc.Message{Header: ipc.Header{Src: ipc.Ping, Dst: ipc.Pong, Type: ipc.MsgPing, Len: 4, Seq: 7}}
	ipc.WriteUint32LE(msg.Payload[0:4], 7)

	if err := router.Send(msg); err != nil {
		tt.Fatalf("send: %s", err)
	}

	pong := NewPongTask()
	pong.Poll(logger, router, 0)

	reply, ok := router.Recv(ipc.Ping)
	if !ok {
		tt.Fatalf("want a reply queued for ping")
	}

	if reply.Header.Type != ipc.MsgPong || reply.Header.Seq != 7 {
		tt.Errorf("reply: got %+v", reply.Header)
	}
}

func TestRunPollsTasksEachSweep(tt *testing.T) {
	router := ipc.NewRouter()
	logger := &logBuf{}

	var seen []uint64
	tasks := []Task{
		pollFunc{id: ipc.Ping, fn: func(_ hal.Logger, _ *ipc.Router, tick uint64) { seen = append(seen, tick) }},
	}

	halts := 0
	halter := haltFunc(func() {
		halts++
		if halts >= 3 {
			panic(stopRun{})
		}
	})

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(stopRun); !ok {
					panic(r)
				}
			}
		}()

		Run(tasks, logger, router, halter)
	}()

	want := []uint64{0, 1, 2}
	if len(seen) != len(want) {
		tt.Fatalf("want %d poll sweeps before halting 3 times, got %d", len(want), len(seen))
	}

	for i, tick := range want {
		if seen[i] != tick {
			tt.Errorf("sweep %d: got tick %d, want %d", i, seen[i], tick)
		}
	}
}

type stopRun struct{}

type haltFunc func()

func (h haltFunc) Halt() { h() }

type pollFunc struct {
	id ipc.EndpointID
	fn func(hal.Logger, *ipc.Router, uint64)
}

func (p pollFunc) ID() ipc.EndpointID { return p.id }
func (p pollFunc) Poll(logger hal.Logger, router *ipc.Router, tick uint64) {
	p.fn(logger, router, tick)
}
