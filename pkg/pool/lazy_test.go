package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazy_InitializesOnceUnderConcurrency(t *testing.T) {
	var builds atomic.Int32
	l := NewLazy(func() *Pool {
		builds.Add(1)
		return New(Config{Workers: 2, QueueCapacity: 8})
	})
	assert.Equal(t, StateUninitialized, l.State())
	assert.False(t, l.Initialized())

	const callers = 32
	pools := make([]*Pool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := l.Get()
			assert.NoError(t, err)
			pools[i] = p
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, p := range pools {
		assert.Same(t, pools[0], p)
	}
	assert.Equal(t, StateActive, l.State())

	require.NoError(t, l.Shutdown(context.Background()))
	assert.Equal(t, StateTerminated, l.State())
}

func TestLazy_ShutdownBeforeUse(t *testing.T) {
	var builds atomic.Int32
	l := NewLazy(func() *Pool {
		builds.Add(1)
		return New(Config{Workers: 1, QueueCapacity: 1})
	})

	require.NoError(t, l.Shutdown(context.Background()))
	assert.Equal(t, StateTerminated, l.State())

	_, err := l.Get()
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.ErrorIs(t, l.Submit(UnitFunc(func(context.Context) {})), ErrPoolClosed)
	assert.Zero(t, builds.Load())
}

func TestLazy_SubmitBuildsPool(t *testing.T) {
	l := NewLazyConfig(Config{Workers: 1, QueueCapacity: 4})
	defer l.Shutdown(context.Background())

	done := make(chan struct{})
	require.NoError(t, l.Submit(UnitFunc(func(context.Context) { close(done) })))
	<-done

	assert.True(t, l.Initialized())
	assert.Equal(t, 1, l.Stats().Workers)
}
