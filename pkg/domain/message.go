package domain

import (
	"strings"
	"time"
)

// Message is an inbound request as handed over by a transport.
type Message struct {
	ID         string            `json:"id"`
	Program    string            `json:"program"`
	Headers    map[string]string `json:"headers,omitempty"`
	Payload    map[string]any    `json:"payload,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

// Lookup resolves a dot-separated path inside the payload.
func (m Message) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = m.Payload
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
