package mqtt

import (
	"context"
	"io"
	"sync"
)

// Topic suffixes under the adapter ID.
const (
	EventTopic   = "event"
	CommandTopic = "cmd"
)

// ReadWriter implements PacketReadWriter on a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 1),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForAdapter sets topics for the adapter side:
// SubTopic = id/cmd
// PubTopic = id/event
func (p *ReadWriter) ForAdapter(id string) *ReadWriter {
	return p.WithTopics(id+"/"+CommandTopic, id+"/"+EventTopic)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Name implements Named.
func (p *ReadWriter) Name() string {
	return "mqtt"
}

// Run implements Runnable. It keeps SubTopic subscribed until ctx is done.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	defer sub.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return nil
	}
}

// Close ends ReadPacket and disconnects the queue.
func (p *ReadWriter) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	if p.Queue.Client == nil {
		return nil
	}
	return p.Queue.Close()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}
