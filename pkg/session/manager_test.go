package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/parley/internal/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLoadOrStart(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	s, err := mgr.LoadOrStart(ctx, "abc", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, "greeting", s.CurrentStateID)

	// Second call must return the persisted session, not a fresh one.
	s.Facts["userName"] = "Dana"
	require.NoError(t, mgr.Save(ctx, s))

	again, err := mgr.LoadOrStart(ctx, "abc", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "Dana", again.Facts["userName"])
}

func TestManagerLoadNotFound(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())

	_, err := mgr.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManagerDelete(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := mgr.LoadOrStart(ctx, "abc", "greeting")
	require.NoError(t, err)
	require.NoError(t, mgr.Delete(ctx, "abc"))

	_, err = mgr.Load(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManagerWithLockSerializes(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	const workers = 20
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = mgr.WithLock(ctx, "same", func(ctx context.Context) error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}
