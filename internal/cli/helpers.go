package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
)

// SignalContext is cancelled on SIGINT or SIGTERM and remembers which signal
// did it.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	mu  sync.Mutex
	sig os.Signal
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.mu.Lock()
			sc.sig = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}

// NewLogger parses level and returns a stderr logger. Unknown levels fall
// back to info and are reported.
func NewLogger(level string) *slog.Logger {
	lvl, err := logging.ParseLevel(level)
	logger := logging.New(lvl)
	if err != nil {
		logger.Warn("falling back to info logging", "err", err)
	}
	return logger
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequestStart: func(ctx context.Context, e *domain.RequestEvent) {
			logger.Debug("Request Start", "message_id", e.MessageID, "program", e.Program)
		},
		OnNodeVisit: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Visit Node", "message_id", e.MessageID, "node_id", e.NodeID, "kind", e.NodeKind, "statement", e.Statement)
		},
		OnRequestComplete: func(ctx context.Context, e *domain.RequestEvent) {
			if e.Result != nil && !e.Result.OK() {
				logger.Debug("Request Failed", "message_id", e.MessageID, "failure", e.Result.Failure)
				return
			}
			logger.Debug("Request Complete", "message_id", e.MessageID)
		},
	}
}
