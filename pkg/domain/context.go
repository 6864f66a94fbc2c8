package domain

import (
	"fmt"
	"strings"
)

// reservedNamespaces cannot be written by programs.
var reservedNamespaces = []string{"sys", "msg"}

// ExecutionContext is the mutable state of one request.
//
// It is owned by exactly one worker for the lifetime of the request and is
// deliberately not synchronized.
type ExecutionContext struct {
	message  Message
	program  *Program
	bindings map[string]any
	assigned []string

	cursor   NodeID
	steps    int
	reply    any
	replied  bool
	decision bool
}

// NewExecutionContext creates the context for a message addressed to a program.
func NewExecutionContext(msg Message, program *Program) *ExecutionContext {
	entry := NoNode
	if program != nil && program.Graph != nil {
		entry = program.Graph.Entry()
	}
	return &ExecutionContext{
		message:  msg,
		program:  program,
		bindings: make(map[string]any),
		cursor:   entry,
	}
}

// Message returns the inbound message.
func (c *ExecutionContext) Message() Message { return c.message }

// Payload returns the inbound payload. It must be treated as read-only.
func (c *ExecutionContext) Payload() map[string]any { return c.message.Payload }

// Program returns the program being executed.
func (c *ExecutionContext) Program() *Program { return c.program }

// Graph returns the graph of the program, or nil.
func (c *ExecutionContext) Graph() *Graph {
	if c.program == nil {
		return nil
	}
	return c.program.Graph
}

// Bind commits a value to a binding.
func (c *ExecutionContext) Bind(name string, value any) error {
	if err := checkTarget(name); err != nil {
		return err
	}
	if _, exists := c.bindings[name]; !exists {
		c.assigned = append(c.assigned, name)
	}
	c.bindings[name] = value
	return nil
}

func checkTarget(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTarget)
	}
	for _, ns := range reservedNamespaces {
		if name == ns || strings.HasPrefix(name, ns+".") {
			return fmt.Errorf("%w: %q is in reserved namespace %q", ErrInvalidTarget, name, ns)
		}
	}
	return nil
}

// Lookup reads a binding.
func (c *ExecutionContext) Lookup(name string) (any, bool) {
	v, ok := c.bindings[name]
	return v, ok
}

// Bindings returns a copy of the current bindings.
func (c *ExecutionContext) Bindings() map[string]any {
	out := make(map[string]any, len(c.bindings))
	for k, v := range c.bindings {
		out[k] = v
	}
	return out
}

// Assigned returns binding names in the order they were first assigned.
func (c *ExecutionContext) Assigned() []string {
	return append([]string(nil), c.assigned...)
}

// Cursor is the node currently being executed.
func (c *ExecutionContext) Cursor() NodeID { return c.cursor }

// SetCursor moves the cursor.
func (c *ExecutionContext) SetCursor(id NodeID) { c.cursor = id }

// Steps is the number of nodes dispatched so far.
func (c *ExecutionContext) Steps() int { return c.steps }

// Step records one more dispatched node and returns the new count.
func (c *ExecutionContext) Step() int {
	c.steps++
	return c.steps
}

// SetReply stores the value delivered back to the caller.
func (c *ExecutionContext) SetReply(v any) {
	c.reply = v
	c.replied = true
}

// Reply returns the reply value, if one was set.
func (c *ExecutionContext) Reply() (any, bool) { return c.reply, c.replied }

// Decide records the outcome of the last evaluated branch condition.
func (c *ExecutionContext) Decide(b bool) { c.decision = b }

// Decision is the outcome of the last evaluated branch condition.
func (c *ExecutionContext) Decision() bool { return c.decision }
