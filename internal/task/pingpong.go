package task

import (
	"strconv"

	"github.com/nyxkernel/nyx/internal/hal"
	"github.com/nyxkernel/nyx/internal/ipc"
)

// pingPeriod is the tick interval at which PingTask starts a new round.
const pingPeriod = 10

// pingState is PingTask's small state machine: it is either idle, waiting to start a new round, or
// waiting for Pong's reply to the round it started.
type pingState uint8

const (
	pingIdle pingState = iota
	pingWaiting
)

// PingTask starts a ping/pong round every pingPeriod ticks and logs the reply. If the mailbox to
// Pong is full it retries on the next tick rather than dropping the round.
type PingTask struct {
	state pingState
	seq   uint32
	retry bool // the last send found Pong's mailbox full
}

// NewPingTask creates a PingTask with its sequence counter at zero.
func NewPingTask() *PingTask {
	return &PingTask{}
}

// ID implements Task.
func (p *PingTask) ID() ipc.EndpointID { return ipc.Ping }

// Poll implements Task.
func (p *PingTask) Poll(logger hal.Logger, router *ipc.Router, tick uint64) {
	switch p.state {
	case pingIdle:
		if tick%pingPeriod != 0 && !p.retry {
			return
		}

		seq := p.seq + 1

		msg := ipc.Message{Header: ipc.Header{
			Src:  ipc.Ping,
			Dst:  ipc.Pong,
			Type: ipc.MsgPing,
			Len:  4,
			Seq:  seq,
		}}
		ipc.WriteUint32LE(msg.Payload[0:4], seq)

		if err := router.Send(msg); err != nil {
			logger.Log("ping: mailbox full, retrying next tick\n")
			p.retry = true

			return
		}

		p.seq = seq
		p.retry = false
		p.state = pingWaiting

	case pingWaiting:
		reply, ok := router.Recv(ipc.Ping)
		if !ok {
			return
		}

		echoed := ipc.ReadUint32LE(reply.Payload[0:4])
		logger.Log("ping: received pong for seq " + strconv.FormatUint(uint64(echoed), 10) + "\n")

		p.state = pingIdle
	}
}

// PongTask answers every MsgPing addressed to it with a MsgPong carrying the same sequence number.
// It holds no state across ticks.
type PongTask struct{}

// NewPongTask creates a PongTask.
func NewPongTask() *PongTask { return &PongTask{} }

// ID implements Task.
func (PongTask) ID() ipc.EndpointID { return ipc.Pong }

// Poll implements Task.
func (PongTask) Poll(logger hal.Logger, router *ipc.Router, _ uint64) {
	ping, ok := router.Recv(ipc.Pong)
	if !ok {
		return
	}

	reply := ipc.Message{Header: ipc.Header{
		Src:  ipc.Pong,
		Dst:  ipc.Ping,
		Type: ipc.MsgPong,
		Len:  ping.Header.Len,
		Seq:  ping.Header.Seq,
	}}
	copy(reply.Payload[:], ping.Payload[:])

	if err := router.Send(reply); err != nil {
		logger.Log("pong: mailbox full, dropping reply\n")
		return
	}
}
