package domain

import "time"

// ResultStatus is the terminal outcome of a request.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusFailure ResultStatus = "failure"
)

// FailureKind classifies why a request failed.
type FailureKind string

const (
	FailureDispatch  FailureKind = "dispatch"
	FailurePanic     FailureKind = "panic"
	FailureStepLimit FailureKind = "step_limit"
	FailureCancelled FailureKind = "cancelled"
	FailureGraph     FailureKind = "graph"
)

// Failure describes a structured execution failure.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	NodeID    NodeID      `json:"node_id"`
	NodeKind  Kind        `json:"node_kind,omitempty"`
	Statement string      `json:"statement,omitempty"`
	Message   string      `json:"message"`
}

// Result is delivered exactly once per accepted message.
type Result struct {
	MessageID   string         `json:"message_id"`
	Program     string         `json:"program"`
	Status      ResultStatus   `json:"status"`
	Value       any            `json:"value,omitempty"`
	Bindings    map[string]any `json:"bindings,omitempty"`
	Steps       int            `json:"steps"`
	Failure     *Failure       `json:"failure,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
	Duration    time.Duration  `json:"duration"`
}

// OK reports whether the request succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }
