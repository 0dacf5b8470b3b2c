// Package event provides the event envelope and serialization for sealed-draw
// notifications published by the watcher service.
package event

import "encoding/json"

// Event types published to the stream.
const (
	TypeDrawSealed = "draw_sealed"
)

// Event represents one draw-lifecycle notification for a single distributor.
type Event struct {
	ChainID     int64          `json:"chainId"`     // Chain the distributor is deployed on
	Distributor string         `json:"distributor"` // Distributor facade identity key
	DrawID      uint32         `json:"drawId"`      // Draw the event concerns
	Type        string         `json:"type"`        // Event type identifier
	Timestamp   uint64         `json:"timestamp"`   // Draw timestamp
	Payload     map[string]any `json:"payload"`     // Event-specific payload data
}

// Serialize converts the event to JSON bytes.
func (e Event) Serialize() ([]byte, error) {
	return json.Marshal(e)
}

// Deserialize parses JSON bytes into an Event.
func Deserialize(jsonData []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(jsonData, &event); err != nil {
		return event, err
	}
	return event, nil
}
