package mqtt

import (
	"strings"

	"github.com/robotalks/rover.go/pkg/l1"
)

// Topic kinds under <prefix><type>/<id>/.
const (
	TopicCmd  = "cmd"
	TopicMsg  = "msg"
	TopicMeta = "meta"
)

// Topic identifies a rover topic relative to the prefix.
type Topic struct {
	Ref  l1.ControllerRef
	Kind string
}

// TopicFor builds the topic of kind for ref.
func TopicFor(ref l1.ControllerRef, kind string) string {
	return ref.Name() + "/" + kind
}

// TopicsOf is the wildcard matching kind of every controller.
func TopicsOf(kind string) string {
	return "+/+/" + kind
}

// ParseTopic splits a prefix relative topic. ok is false when topic does
// not follow the <type>/<id>/<kind> layout.
func ParseTopic(topic string) (t Topic, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 {
		return
	}
	switch items[2] {
	case TopicCmd, TopicMsg, TopicMeta:
	default:
		return
	}
	t.Ref = l1.ControllerRef{Type: items[0], ID: items[1]}
	t.Kind = items[2]
	return t, t.Ref.IsValid()
}

// String implements Stringer.
func (t Topic) String() string {
	return TopicFor(t.Ref, t.Kind)
}

// MatchTopic matches topic with pattern. A trailing "#" matches the
// parent level too, as MQTT does.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for i, token := range tokensP {
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if i >= len(tokensT) || (token != "+" && token != tokensT[i]) {
			return false
		}
	}
	return len(tokensT) == len(tokensP)
}
