package service

import (
	"context"
	"slices"
	"sync"
)

// change describes a committed mutation.
type change struct {
	timelines   bool
	timelineIDs []int64
}

func (c change) touches(timelineID int64) bool {
	return c.timelines || slices.Contains(c.timelineIDs, timelineID)
}

type subscription struct {
	notify chan struct{}
	match  func(change) bool
}

// changeHub fans committed mutations out to live observations. A pending
// notification is never queued twice; the observer reloads once.
type changeHub struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func newChangeHub() *changeHub {
	return &changeHub{subs: make(map[*subscription]struct{})}
}

func (h *changeHub) subscribe(match func(change) bool) *subscription {
	sub := &subscription{notify: make(chan struct{}, 1), match: match}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *changeHub) unsubscribe(sub *subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

func (h *changeHub) publish(c change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if !sub.match(c) {
			continue
		}
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

func (h *changeHub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// observe loads a snapshot now and again after every matching change until
// ctx is done, then closes the returned channel. Load errors go to onErr and
// the stream waits for the next change.
func observe[T any](ctx context.Context, hub *changeHub, match func(change) bool,
	load func(context.Context) (T, error), onErr func(error)) <-chan T {
	out := make(chan T, 1)
	sub := hub.subscribe(match)
	go func() {
		defer close(out)
		defer hub.unsubscribe(sub)
		for {
			v, err := load(ctx)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				onErr(err)
			default:
				offerLatest(out, v)
			}
			select {
			case <-ctx.Done():
				return
			case <-sub.notify:
			}
		}
	}()
	return out
}

// offerLatest replaces an unread value in out with v.
func offerLatest[T any](out chan T, v T) {
	for {
		select {
		case out <- v:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
