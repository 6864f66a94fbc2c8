package callback_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/callback"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnce_ForwardsFirstResultOnly(t *testing.T) {
	var calls atomic.Int32
	responder := callback.Func(func(ctx context.Context, r domain.Result) error {
		calls.Add(1)
		return nil
	})
	once := callback.NewOnce("m1", responder)

	require.NoError(t, once.Complete(context.Background(), domain.Result{Status: domain.StatusSuccess}))
	err := once.Complete(context.Background(), domain.Result{Status: domain.StatusFailure})

	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, once.Completed())
}

func TestOnce_ConcurrentCompleteFiresOnce(t *testing.T) {
	var calls atomic.Int32
	once := callback.NewOnce("m1", callback.Func(func(context.Context, domain.Result) error {
		calls.Add(1)
		return nil
	}))

	var wg sync.WaitGroup
	var faults atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if errors.Is(once.Complete(context.Background(), domain.Result{}), domain.ErrAlreadyCompleted) {
				faults.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(15), faults.Load())
}

func TestOnce_FillsMessageID(t *testing.T) {
	ch := callback.NewChan()
	once := callback.NewOnce("m42", ch)
	require.NoError(t, once.Complete(context.Background(), domain.Result{}))

	r, err := ch.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m42", r.MessageID)

	select {
	case <-once.Done():
	default:
		t.Fatal("Done should be closed after completion")
	}
}

func TestOnce_RecoversResponderPanic(t *testing.T) {
	once := callback.NewOnce("m1", callback.Func(func(context.Context, domain.Result) error {
		panic("transport exploded")
	}))

	err := once.Complete(context.Background(), domain.Result{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport exploded")
	assert.True(t, once.Completed())
}

func TestOnce_ReturnsResponderError(t *testing.T) {
	boom := errors.New("boom")
	once := callback.NewOnce("m1", callback.Func(func(context.Context, domain.Result) error { return boom }))
	assert.ErrorIs(t, once.Complete(context.Background(), domain.Result{}), boom)
}

func TestChan_WaitHonoursContext(t *testing.T) {
	ch := callback.NewChan()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := ch.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChan_RefusesSecondResult(t *testing.T) {
	ch := callback.NewChan()
	require.NoError(t, ch.Respond(context.Background(), domain.Result{}))
	assert.ErrorIs(t, ch.Respond(context.Background(), domain.Result{}), domain.ErrAlreadyCompleted)
}

func TestMulti_CallsAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ch := callback.NewChan()
	store := memory.NewResultStore()

	r := callback.Multi(
		callback.Func(func(context.Context, domain.Result) error { return boom }),
		ch,
		callback.ToStore(store),
	)
	err := r.Respond(context.Background(), domain.Result{MessageID: "m1", Status: domain.StatusSuccess})
	assert.ErrorIs(t, err, boom)

	got, err := ch.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MessageID)

	saved, err := store.Load(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, saved.OK())
}
