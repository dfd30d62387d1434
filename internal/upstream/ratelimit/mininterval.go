package ratelimit

import (
    "context"
    "sync"
    "time"
)

// MinInterval enforces a minimum time between calls.
// Concurrent callers wait until the interval has elapsed since the last
// call, or return early if the context is canceled.
type MinInterval struct {
    Interval time.Duration

    mu   sync.Mutex
    last time.Time
}

func (m *MinInterval) Wait(ctx context.Context) error {
    if m.Interval <= 0 { return nil }
    for {
        // claim the slot under the lock; waking from the timer is not
        // enough since another waiter may have claimed it first
        m.mu.Lock()
        now := time.Now()
        wait := m.last.Add(m.Interval).Sub(now)
        if wait <= 0 {
            m.last = now
            m.mu.Unlock()
            return nil
        }
        m.mu.Unlock()
        t := time.NewTimer(wait)
        select {
        case <-ctx.Done():
            t.Stop()
            return ctx.Err()
        case <-t.C:
        }
    }
}
