package main

import (
	"flag"
	"log"
	"os"
	"reflect"

	"github.com/robotalks/rover.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/robo/"
)

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewPubSubFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		t, ok := mqtt.ParseTopic(topic)
		if !ok {
			log.Printf("%s: %d bytes", topic, len(payload))
			return
		}
		if t.Kind == mqtt.TopicMeta {
			if len(payload) == 0 {
				log.Printf("%s: offline", t.Ref.Name())
			} else {
				log.Printf("%s: online %s", t.Ref.Name(), string(payload))
			}
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s %s: bad message: %v", t.Ref.Name(), t.Kind, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s %s: decode error: (type_id=%x) %v", t.Ref.Name(), t.Kind, typed.TypeId, err)
			return
		}
		log.Printf("%s %s #%d: [%s] %s", t.Ref.Name(), t.Kind, typed.Sequence,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), msg.String())
	}))
	<-(chan struct{})(nil)
}
