package mqtt

import (
	"context"
	"io"

	"github.com/robotalks/rover.go/pkg/l1"
)

// ReadWriter implements PacketReadWriter.
type ReadWriter struct {
	PubSub   *PubSub
	SubTopic string
	PubTopic string

	packetCh chan []byte
	done     chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *PubSub) *ReadWriter {
	return &ReadWriter{PubSub: q, packetCh: make(chan []byte, 16), done: make(chan struct{})}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector sets topics using default convention for connector:
// SubTopic = prefix/msg
// PubTopic = prefix/cmd
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(TopicFor(ref, TopicMsg), TopicFor(ref, TopicCmd))
}

// ForController sets topics using default convention for L1 controller:
// SubTopic = prefix/cmd
// PubTopic = prefix/msg
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(TopicFor(ref, TopicCmd), TopicFor(ref, TopicMsg))
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
	token := p.PubSub.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Name implements Named.
func (p *ReadWriter) Name() string {
	return "mqtt-sub:" + p.SubTopic
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.PubSub.Sub(p.SubTopic, Handler(p.handleMsg))
	<-ctx.Done()
	close(p.done)
	sub.Close()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}
