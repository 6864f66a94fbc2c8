package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRequestStart    EventType = "request_start"
	EventNodeVisit       EventType = "node_visit"
	EventRequestComplete EventType = "request_complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	MessageID string    `json:"message_id"`
	Program   string    `json:"program"`
}

// NodeEvent is emitted before a node is dispatched.
type NodeEvent struct {
	EventBase
	NodeID    NodeID `json:"node_id"`
	NodeKind  Kind   `json:"node_kind"`
	Statement string `json:"statement"`
	Step      int    `json:"step"`
}

// RequestEvent marks the start or the end of a request.
type RequestEvent struct {
	EventBase
	Result *Result `json:"result,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run on the worker goroutine and must not block.
type LifecycleHooks struct {
	OnRequestStart    func(context.Context, *RequestEvent)
	OnNodeVisit       func(context.Context, *NodeEvent)
	OnRequestComplete func(context.Context, *RequestEvent)
}
