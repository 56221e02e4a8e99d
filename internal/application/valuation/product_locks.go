package valuation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultLockTimeout bounds how long a writer waits for a product lock
const DefaultLockTimeout = 5 * time.Second

// LockTimeoutError reports that a product lock could not be acquired in time
type LockTimeoutError struct {
	ProductCode string
	Timeout     time.Duration
}

// Error implements the error interface
func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for lock on product %s", e.Timeout, e.ProductCode)
}

// Code returns the machine-readable error code
func (e *LockTimeoutError) Code() string {
	return "LOCK_TIMEOUT"
}

// productLocks serializes writers per product code. Writers to different
// products proceed in parallel; writers to the same product queue on a
// buffered channel of size one, so acquisition can honor the caller's
// context and a bounded timeout.
type productLocks struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	timeout time.Duration
}

// newProductLocks creates a lock registry with the given acquisition timeout.
// A non-positive timeout falls back to DefaultLockTimeout.
func newProductLocks(timeout time.Duration) *productLocks {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &productLocks{
		locks:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (l *productLocks) lockFor(productCode string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[productCode]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[productCode] = ch
	}
	return ch
}

// Acquire takes the lock for a product code, waiting at most the configured
// timeout. The returned release function must be called exactly once.
func (l *productLocks) Acquire(ctx context.Context, productCode string) (release func(), err error) {
	ch := l.lockFor(productCode)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, &LockTimeoutError{ProductCode: productCode, Timeout: l.timeout}
	}
}
