package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// flushTimeout bounds a single background flush.
const flushTimeout = 10 * time.Second

func (c *Cache) flushLoop() {
	defer close(c.stopped)
	for {
		select {
		case <-c.stop:
			return
		case <-c.wake:
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			if err := c.Flush(ctx); err != nil {
				c.log.Error().Err(err).Msg("cache flush failed")
			}
			cancel()
		}
	}
}

// Flush writes every dirty field to the store and waits for it. Keys that
// fail to write stay dirty for the next attempt.
func (c *Cache) Flush(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.Lock()
	pending := c.dirty
	c.dirty = make(map[string]struct{})
	c.mu.Unlock()

	var firstErr error
	for key := range pending {
		// The value is read at write time, so only the latest one is stored.
		if err := c.persist(ctx, key); err != nil {
			c.mu.Lock()
			c.dirty[key] = struct{}{}
			c.mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (c *Cache) persist(ctx context.Context, key string) error {
	v, ok := c.current(key)
	if !ok {
		if err := c.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (c *Cache) current(key string) (any, bool) {
	switch key {
	case KeyMainScore:
		v := c.mainScore.Load()
		return v, v != nil
	case KeyBreakdown:
		v := c.breakdown.Load()
		return v, v != nil
	case KeyNarrative:
		v := c.narrative.Load()
		return v, v != nil
	case KeyPendingReveal:
		v := c.pending.Load()
		return v, v != nil
	case KeyWeeklyStats:
		v := c.weekly.Load()
		return v, v != nil
	}
	return nil, false
}

// Close stops the flusher and drains outstanding writes. The store itself
// is left open for its owner to close.
func (c *Cache) Close(ctx context.Context) error {
	if c.store == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.stop)
	<-c.stopped
	return c.Flush(ctx)
}
