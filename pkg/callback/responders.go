package callback

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Func adapts a function to ports.Responder.
type Func func(ctx context.Context, result domain.Result) error

func (f Func) Respond(ctx context.Context, result domain.Result) error { return f(ctx, result) }

// Chan is a single-slot responder for callers that want to wait on the result.
type Chan struct {
	ch chan domain.Result
}

// NewChan returns an empty Chan.
func NewChan() *Chan {
	return &Chan{ch: make(chan domain.Result, 1)}
}

// Respond stores the result. A second result is refused.
func (c *Chan) Respond(_ context.Context, result domain.Result) error {
	select {
	case c.ch <- result:
		return nil
	default:
		return fmt.Errorf("chan responder: %w", domain.ErrAlreadyCompleted)
	}
}

// C exposes the underlying channel.
func (c *Chan) C() <-chan domain.Result { return c.ch }

// Wait blocks until a result arrives or ctx is done.
func (c *Chan) Wait(ctx context.Context) (domain.Result, error) {
	select {
	case r := <-c.ch:
		return r, nil
	case <-ctx.Done():
		return domain.Result{}, ctx.Err()
	}
}

// Multi fans a result out to several responders. Every responder is called;
// their errors are joined.
func Multi(responders ...ports.Responder) ports.Responder {
	return Func(func(ctx context.Context, result domain.Result) error {
		var errs []error
		for _, r := range responders {
			if r == nil {
				continue
			}
			if err := r.Respond(ctx, result); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// ToStore persists results in a ResultStore.
func ToStore(store ports.ResultStore) ports.Responder {
	return Func(func(ctx context.Context, result domain.Result) error {
		if err := store.Save(ctx, result); err != nil {
			return fmt.Errorf("failed to save result %s: %w", result.MessageID, err)
		}
		return nil
	})
}
