package events

import "encoding/json"

// Event name constants
const (
	LUTUpdated     = "lut.updated"
	LUTReset       = "lut.reset"
	TripletUpdated = "triplet.updated"
	ApplyResult    = "apply.result"
	Resumed        = "panel.resumed"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// LUTUpdatedEvent is the payload for lut.updated.
type LUTUpdatedEvent struct {
	Index   int    `json:"index"`
	Channel string `json:"channel"`
	Value   int    `json:"value"`
	Entry   uint32 `json:"entry"`
	Ts      int64  `json:"ts"`
}

// TripletEvent is the payload for triplet.updated.
type TripletEvent struct {
	Red   int   `json:"red"`
	Green int   `json:"green"`
	Blue  int   `json:"blue"`
	Ts    int64 `json:"ts"`
}

// ApplyResultEvent is the payload for apply.result and panel.resumed.
type ApplyResultEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// If Data is empty, it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.TripletEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Red, payload.Green, payload.Blue)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
