package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aretw0/weft/pkg/callback"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/processor"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type messageRequest struct {
	ID      string            `json:"id,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Payload map[string]any    `json:"payload"`
}

type acceptedResponse struct {
	MessageID string `json:"message_id"`
	Program   string `json:"program"`
}

// SendMessage handles the POST /v1/programs/{program}/messages request.
//
// The message ID is assigned here when the client sends none, so it can be
// returned before execution starts. With ?wait=true the handler blocks for the
// result up to the wait timeout and falls back to 202 if it is not ready.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid request body: %w", err))
		s.logger.Warn("SendMessage: invalid request body", "err", err)
		return
	}

	wait := false
	if raw := r.URL.Query().Get("wait"); raw != "" {
		var err error
		if wait, err = strconv.ParseBool(raw); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid wait parameter: %w", err))
			return
		}
	}

	msg := domain.Message{
		ID:      body.ID,
		Program: chi.URLParam(r, "program"),
		Headers: body.Headers,
		Payload: body.Payload,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	var responders []ports.Responder
	if s.Store != nil {
		responders = append(responders, callback.ToStore(s.Store))
	}
	responders = append(responders, callback.Func(s.publish))
	var waiter *callback.Chan
	if wait {
		waiter = callback.NewChan()
		responders = append(responders, waiter)
	}

	if _, err := s.Engine.Receive(r.Context(), msg, callback.Multi(responders...)); err != nil {
		reason := processor.ReasonOf(err)
		status := statusFor(reason)
		if reason == processor.ReasonSaturated {
			w.Header().Set("Retry-After", "1")
		}
		s.logger.Warn("SendMessage: message rejected", "message_id", msg.ID, "program", msg.Program, "reason", reason, "err", err)
		s.writeError(w, status, string(reason), err)
		return
	}

	accepted := acceptedResponse{MessageID: msg.ID, Program: msg.Program}
	if waiter == nil {
		s.writeJSON(w, http.StatusAccepted, accepted)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.waitTimeout)
	defer cancel()
	result, err := waiter.Wait(ctx)
	if err != nil {
		s.logger.Debug("SendMessage: result not ready", "message_id", msg.ID, "err", err)
		s.writeJSON(w, http.StatusAccepted, accepted)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// publish forwards a delivered result to SSE subscribers of its message.
func (s *Server) publish(_ context.Context, result domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result %s: %w", result.MessageID, err)
	}
	s.Streams.Broadcast(result.MessageID, string(data))
	return nil
}

func statusFor(reason processor.Reason) int {
	switch reason {
	case processor.ReasonInvalidMessage:
		return http.StatusBadRequest
	case processor.ReasonUnknownProgram:
		return http.StatusNotFound
	case processor.ReasonInvalidPayload:
		return http.StatusUnprocessableEntity
	case processor.ReasonDuplicate:
		return http.StatusConflict
	case processor.ReasonSaturated, processor.ReasonClosed, processor.ReasonUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetResult handles the GET /v1/results/{id} request.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	result, err := s.Store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrResultNotFound) {
			s.writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		s.logger.Error("GetResult: load failed", "message_id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "store", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// DeleteResult handles the DELETE /v1/results/{id} request.
func (s *Server) DeleteResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.logger.Error("DeleteResult: delete failed", "message_id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "store", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.Store == nil {
		s.writeError(w, http.StatusNotImplemented, "no_store", errors.New("no result store configured"))
		return false
	}
	return true
}
