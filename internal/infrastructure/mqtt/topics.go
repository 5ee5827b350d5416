package mqtt

import "strings"

// DefaultTopicPrefix is used when the config leaves topic_prefix empty.
const DefaultTopicPrefix = "smartcity"

// Topics builds the control center topic hierarchy under a prefix.
//
//	topics := mqtt.NewTopics("smartcity")
//	topics.Alert("high") // "smartcity/alerts/high"
type Topics struct {
	prefix string
}

// NewTopics returns builders for prefix. Trailing slashes are trimmed and
// an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

func (t Topics) Prefix() string { return t.prefix }

// SystemStatus is the retained online/offline topic.
func (t Topics) SystemStatus() string {
	return t.prefix + "/system/status"
}

// Alert returns the topic for alerts of one severity.
func (t Topics) Alert(severity string) string {
	return t.prefix + "/alerts/" + strings.ToLower(severity)
}

// Event returns the topic for one controller event type.
func (t Topics) Event(eventType string) string {
	return t.prefix + "/events/" + eventType
}

// AckCommand receives alert IDs to acknowledge.
func (t Topics) AckCommand() string { return t.prefix + "/commands/ack" }

// AllAlerts matches every alert topic.
func (t Topics) AllAlerts() string { return t.prefix + "/alerts/+" }

// AllEvents matches every event topic.
func (t Topics) AllEvents() string { return t.prefix + "/events/+" }

// All matches everything under the prefix.
func (t Topics) All() string { return t.prefix + "/#" }
