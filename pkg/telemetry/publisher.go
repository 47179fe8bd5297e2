package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// PublishQueueSize is the number of events buffered by a Publisher.
const PublishQueueSize = 64

// Publisher sends adapter events to a PacketWriter. It implements
// adapter.Monitor without ever blocking the controller: events are dropped
// when the transport falls behind.
type Publisher struct {
	AdapterID string
	Writer    PacketWriter
	Now       func() time.Time

	ch      chan Message
	seq     uint32
	dropped atomic.Uint32
	failed  atomic.Uint32
}

// NewPublisher creates a Publisher.
func NewPublisher(adapterID string, w PacketWriter) *Publisher {
	return &Publisher{
		AdapterID: adapterID,
		Writer:    w,
		Now:       time.Now,
		ch:        make(chan Message, PublishQueueSize),
	}
}

// Publish queues msg. It returns false if the queue is full.
func (p *Publisher) Publish(msg Message) bool {
	select {
	case p.ch <- msg:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of events discarded on a full queue.
func (p *Publisher) Dropped() uint32 {
	return p.dropped.Load()
}

// Failed returns the number of events the transport failed to send.
func (p *Publisher) Failed() uint32 {
	return p.failed.Load()
}

// StateChanged implements adapter.Monitor.
func (p *Publisher) StateChanged(s adapter.State, mode serialmouse.Mode) {
	p.Publish(&StateEvent{State: s.String(), Mode: mode.String()})
}

// PacketSent implements adapter.Monitor.
func (p *Publisher) PacketSent(pkt serialmouse.Packet) {
	p.Publish(&PacketEvent{Data: append([]byte(nil), pkt.Bytes()...)})
}

// PublishStats queues a StatsEvent.
func (p *Publisher) PublishStats(s adapter.Stats) {
	p.Publish(&StatsEvent{
		Reports:     s.Reports,
		Packets:     s.Packets,
		Handshakes:  s.Handshakes,
		Skipped:     s.Skipped,
		RxDropped:   s.RxDropped,
		RxErrors:    s.RxErrors,
		TxDropped:   s.TxDropped,
		Retransmits: s.Retransmits,
	})
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "telemetry"
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-p.ch:
			if err := p.send(msg); err != nil {
				p.failed.Add(1)
				glog.Warningf("publish %T: %v", msg, err)
			}
		}
	}
}

func (p *Publisher) send(msg Message) error {
	env, err := Wrap(msg)
	if err != nil {
		return err
	}
	p.seq++
	env.AdapterID = p.AdapterID
	env.Seq = p.seq
	env.TimeNanos = p.Now().UnixNano()
	pkt, err := env.Encode()
	if err != nil {
		return err
	}
	return p.Writer.WritePacket(pkt)
}
