package hub

import "encoding/json"

// EventType defines the notification kinds a subscriber can see.
type EventType string

const (
	EventConnected EventType = "connected"
	EventUpdate    EventType = "update"
)

// Event is the schema-free "something changed" notification.
type Event struct {
	Type EventType `json:"type"`
}

// ConnectedEvent is sent once to a connection right after it registers.
func ConnectedEvent() Event {
	return Event{Type: EventConnected}
}

// UpdateEvent is broadcast after every successful write.
func UpdateEvent() Event {
	return Event{Type: EventUpdate}
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
