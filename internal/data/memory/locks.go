package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vendor-ops-ledger/internal/domain/shared"
)

var errLockTimeout = errors.New("lock wait timeout")

// lockTable hands out one exclusive lock per row key. A lock is a buffered
// channel of size one so waiters can give up on context or timeout.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]chan struct{})}
}

func (t *lockTable) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.locks[key] = ch
	}
	return ch
}

// acquire blocks until key is free, ctx ends or timeout elapses.
// Giving up is reported as Conflict so callers retry the whole intent.
func (t *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := t.slot(key)

	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return shared.Conflict("lock", key, ctx.Err())
	case <-expired:
		return shared.Conflict("lock", key, errLockTimeout)
	}
}

func (t *lockTable) release(key string) {
	select {
	case <-t.slot(key):
	default:
	}
}
