package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/smartcity-core/internal/controller"
)

// Publisher is the subset of Client used by AlertPublisher.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// AlertPublisher is a controller.Sink that forwards alerts and events as
// JSON messages. Publish failures are logged and dropped; the controller
// never blocks on the bus.
type AlertPublisher struct {
	pub    Publisher
	topics Topics
	qos    byte
	logger Logger
}

// NewAlertPublisher returns a sink publishing through pub.
func NewAlertPublisher(pub Publisher, topics Topics, qos byte) *AlertPublisher {
	return &AlertPublisher{pub: pub, topics: topics, qos: qos}
}

// SetLogger sets the logger for dropped messages.
func (p *AlertPublisher) SetLogger(logger Logger) { p.logger = logger }

// Alert publishes a to <prefix>/alerts/<severity>.
func (p *AlertPublisher) Alert(a controller.Alert) {
	p.send(p.topics.Alert(string(a.Severity)), a)
}

// Event publishes e to <prefix>/events/<type>.
func (p *AlertPublisher) Event(e controller.Event) {
	p.send(p.topics.Event(e.Type), e)
}

func (p *AlertPublisher) send(topic string, v any) {
	payload, err := json.Marshal(v)
	if err == nil {
		err = p.pub.Publish(topic, payload, p.qos, false)
	}
	if err != nil && p.logger != nil {
		p.logger.Warn("dropping bus message", "topic", topic, "error", err)
	}
}

// Acknowledger is the subset of the controller used by AckHandler.
type Acknowledger interface {
	AcknowledgeAlert(id string) bool
}

// AckHandler acknowledges the alert whose ID is the message payload.
// Subscribe it to Topics.AckCommand.
func AckHandler(ack Acknowledger) MessageHandler {
	return func(_ string, payload []byte) error {
		id := strings.TrimSpace(string(payload))
		if id == "" || !ack.AcknowledgeAlert(id) {
			return fmt.Errorf("%w: %q", ErrUnknownAlert, id)
		}
		return nil
	}
}
