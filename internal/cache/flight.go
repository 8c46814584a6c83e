package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"firstlight/internal/types"
)

// FlightGroup deduplicates concurrent fetches per cache key. While one
// fetch for a key is in flight, additional callers wait for its outcome
// instead of issuing their own upstream calls.
//
// The shared fetch runs on a context detached from the initiating caller:
// one caller giving up must not starve the others, so cancellation of any
// single waiter only abandons that waiter's wait.
type FlightGroup struct {
	group singleflight.Group

	// fetchTimeout bounds the detached shared fetch, which no caller
	// deadline can bound anymore.
	fetchTimeout time.Duration
}

// NewFlightGroup creates a FlightGroup. fetchTimeout must cover the full
// retry schedule of a worst-case fetch; <= 0 falls back to one minute.
func NewFlightGroup(fetchTimeout time.Duration) *FlightGroup {
	if fetchTimeout <= 0 {
		fetchTimeout = time.Minute
	}
	return &FlightGroup{fetchTimeout: fetchTimeout}
}

// Do executes fn once per key across concurrent callers and hands every
// waiter the same document or error. The boolean reports whether the
// result was shared with other callers.
//
// If ctx is canceled while waiting, Do returns ctx.Err() immediately; the
// shared fetch keeps running for the remaining waiters and its outcome
// still lands in the cache.
func (f *FlightGroup) Do(
	ctx context.Context,
	key Key,
	fn func(ctx context.Context) (*types.ProviderDocument, error),
) (*types.ProviderDocument, bool, error) {
	ch := f.group.DoChan(key.String(), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(types.Detach(ctx), f.fetchTimeout)
		defer cancel()
		return fn(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		doc, _ := res.Val.(*types.ProviderDocument)
		return doc, res.Shared, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Forget drops the in-flight registration for a key so the next call
// starts a new fetch instead of joining an old one.
func (f *FlightGroup) Forget(key Key) {
	f.group.Forget(key.String())
}
