package mqtt

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

// Registrar implements l1.Registrar using MQTT. The controller meta is
// published retained on <prefix><type>/<id>/meta while connected and
// cleared by the last will.
type Registrar struct {
	PubSub *PubSub
	Info   l1.ControllerInfo

	metaJSON  []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+TopicFor(info.Ref, TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("rover:" + info.Ref.Name())
	}
	r := &Registrar{
		PubSub:   NewPubSub(opts, topicPrefix),
		Info:     info,
		metaJSON: meta,
	}
	r.PubSub.OnConnect = func(*PubSub) { r.publishMeta(r.metaJSON) }
	r.registrar.Init(NewPacketReadWriter(r.PubSub).ForController(info.Ref))
	return r, nil
}

// SetCommandHandler implements CommandReceiver.
func (r *Registrar) SetCommandHandler(h l1.CommandHandler) {
	r.registrar.SetCommandHandler(h)
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg msgs.Message) error {
	if !r.PubSub.Client.IsConnected() {
		return nil
	}
	return r.registrar.SendEvent(ctx, msg)
}

// Name implements Named.
func (r *Registrar) Name() string {
	return "mqtt:" + r.Info.Ref.Name()
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(r)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	r.PubSub.Connect()
	<-ctx.Done()
	r.publishMeta(nil).Wait()
	r.PubSub.Close()
	return ctx.Err()
}

func (r *Registrar) publishMeta(meta []byte) paho.Token {
	return r.PubSub.PubWith(TopicFor(r.Info.Ref, TopicMeta), meta, 1, true)
}
