package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/smartcity-core/internal/controller"
)

type sent struct {
	topic   string
	payload []byte
	qos     byte
}

type fakePublisher struct {
	msgs []sent
	err  error
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, _ bool) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, sent{topic, payload, qos})
	return nil
}

type warnLog struct{ warns int }

func (w *warnLog) Error(string, ...any) {}
func (w *warnLog) Warn(string, ...any)  { w.warns++ }

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status", NewTopics("smartcity").SystemStatus(), "smartcity/system/status"},
		{"alert lower-cased", NewTopics("smartcity").Alert("HIGH"), "smartcity/alerts/high"},
		{"event", NewTopics("smartcity").Event(controller.EventSystemStarted), "smartcity/events/SYSTEM_STARTED"},
		{"ack command", NewTopics("smartcity").AckCommand(), "smartcity/commands/ack"},
		{"trailing slash", NewTopics("city/").AllAlerts(), "city/alerts/+"},
		{"empty prefix", NewTopics("").All(), "smartcity/#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestAlertPublisher_Alert(t *testing.T) {
	pub := &fakePublisher{}
	p := NewAlertPublisher(pub, NewTopics("smartcity"), 1)

	p.Alert(controller.Alert{
		ID:        "alert-1",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Source:    "Energy Module",
		Message:   "over limit",
		Severity:  controller.SeverityHigh,
	})

	if len(pub.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.topic != "smartcity/alerts/high" || msg.qos != 1 {
		t.Errorf("topic = %q qos = %d", msg.topic, msg.qos)
	}
	var got controller.Alert
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got.ID != "alert-1" || got.Severity != controller.SeverityHigh {
		t.Errorf("payload = %+v", got)
	}
}

func TestAlertPublisher_Event(t *testing.T) {
	pub := &fakePublisher{}
	p := NewAlertPublisher(pub, NewTopics("smartcity"), 0)

	p.Event(controller.Event{ID: "evt-1", Type: controller.EventConfigSet, Data: map[string]any{"cityName": "Tashkent"}})

	if len(pub.msgs) != 1 || pub.msgs[0].topic != "smartcity/events/CONFIG_SET" {
		t.Fatalf("messages = %+v", pub.msgs)
	}
}

func TestAlertPublisher_DropsOnError(t *testing.T) {
	pub := &fakePublisher{err: ErrNotConnected}
	logs := &warnLog{}
	p := NewAlertPublisher(pub, NewTopics("smartcity"), 1)
	p.SetLogger(logs)

	p.Alert(controller.Alert{Severity: controller.SeverityLow})

	if logs.warns != 1 {
		t.Errorf("warns = %d, want 1", logs.warns)
	}
}

func TestBuildStatusPayload(t *testing.T) {
	var got map[string]string
	if err := json.Unmarshal([]byte(buildStatusPayload("core", "offline", "graceful_shutdown")), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["status"] != "offline" || got["reason"] != "graceful_shutdown" || got["client_id"] != "core" {
		t.Errorf("payload = %v", got)
	}

	got = nil
	if err := json.Unmarshal([]byte(buildStatusPayload("core", "online", "")), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := got["reason"]; ok {
		t.Errorf("online payload has a reason: %v", got)
	}
}

type fakeAcker map[string]bool

func (f fakeAcker) AcknowledgeAlert(id string) bool { return f[id] }

func TestAckHandler(t *testing.T) {
	h := AckHandler(fakeAcker{"alert-1": true})

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"known alert", "alert-1", false},
		{"whitespace trimmed", "  alert-1\n", false},
		{"unknown alert", "alert-9", true},
		{"empty payload", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h("smartcity/commands/ack", []byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownAlert) {
				t.Errorf("error = %v, want ErrUnknownAlert", err)
			}
		})
	}
}
