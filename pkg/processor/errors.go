package processor

import (
	"errors"
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
)

// ErrDuplicate is returned when a message ID was already accepted.
var ErrDuplicate = errors.New("duplicate message")

// Reason classifies a rejection so transports can map it to a status code.
type Reason string

const (
	ReasonInvalidMessage Reason = "invalid_message"
	ReasonUnknownProgram Reason = "unknown_program"
	ReasonInvalidPayload Reason = "invalid_payload"
	ReasonDuplicate      Reason = "duplicate"
	ReasonSaturated      Reason = "saturated"
	ReasonClosed         Reason = "closed"
	ReasonUnavailable    Reason = "unavailable"
)

// RejectionError is returned whenever Receive does not accept a message.
// It matches domain.ErrRejected and the underlying cause with errors.Is.
type RejectionError struct {
	MessageID string
	Program   string
	Reason    Reason
	Err       error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("message %s for program %q rejected (%s): %v", e.MessageID, e.Program, e.Reason, e.Err)
}

func (e *RejectionError) Unwrap() []error { return []error{domain.ErrRejected, e.Err} }

// ReasonOf extracts the rejection reason from err, or "".
func ReasonOf(err error) Reason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}
