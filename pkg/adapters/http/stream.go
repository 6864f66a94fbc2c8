package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // MessageID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers interest in the result of messageID. The returned
// function unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(messageID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 1)
	if _, ok := sm.subscribers[messageID]; !ok {
		sm.subscribers[messageID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[messageID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[messageID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, messageID)
			}
		}
	}
}

// Subscribers counts the open subscriptions for messageID.
func (sm *StreamManager) Subscribers(messageID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[messageID])
}

func (sm *StreamManager) Broadcast(messageID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs, ok := sm.subscribers[messageID]
	if !ok {
		return
	}
	sm.logger.Debug("StreamManager: broadcasting", "message_id", messageID, "subscribers", len(subs), "payload_size", len(msg))
	for ch := range subs {
		select {
		case ch <- msg:
		default:
			// A result is sent once per message, so a full buffer means a duplicate.
			sm.logger.Warn("SSE: client buffer full, dropping message", "message_id", messageID)
		}
	}
}

// SubscribeResult handles the GET /v1/results/{id}/events request (SSE).
// It emits a single "result" event once the message completes, then closes.
func (s *Server) SubscribeResult(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeResult: streaming not supported")
		return
	}
	id := chi.URLParam(r, "id")

	// Subscribe before checking the store so a result delivered in between is not missed.
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if s.Store != nil {
		result, err := s.Store.Load(r.Context(), id)
		switch {
		case err == nil:
			if data, err := json.Marshal(result); err == nil {
				writeEvent(w, "result", string(data))
				flusher.Flush()
				return
			}
		case !errors.Is(err, domain.ErrResultNotFound):
			s.logger.Warn("SubscribeResult: store lookup failed", "message_id", id, "err", err)
		}
	}

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	select {
	case <-r.Context().Done():
		s.logger.Debug("SSE client disconnected", "message_id", id)
	case msg, ok := <-ch:
		if !ok {
			return
		}
		writeEvent(w, "result", msg)
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
