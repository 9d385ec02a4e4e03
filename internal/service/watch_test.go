package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const streamTimeout = 2 * time.Second

// waitFor reads snapshots until one satisfies ok.
func waitFor[T any](t *testing.T, ch <-chan T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(streamTimeout)
	for {
		select {
		case v, open := <-ch:
			require.True(t, open, "stream closed early")
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func waitClosed[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	deadline := time.After(streamTimeout)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("stream was not closed")
		}
	}
}

func TestOfferLatest_ReplacesUnread(t *testing.T) {
	out := make(chan int, 1)
	offerLatest(out, 1)
	offerLatest(out, 2)
	offerLatest(out, 3)
	assert.Equal(t, 3, <-out)
	assert.Empty(t, out)
}

func TestChangeHub_MatchesAndCoalesces(t *testing.T) {
	hub := newChangeHub()
	day := hub.subscribe(func(c change) bool { return c.touches(testutil.DayTimelineID) })
	lists := hub.subscribe(func(c change) bool { return c.timelines })

	hub.publish(change{timelineIDs: []int64{testutil.DayTimelineID}})
	hub.publish(change{timelineIDs: []int64{testutil.DayTimelineID}})
	assert.Len(t, day.notify, 1)
	assert.Empty(t, lists.notify)

	hub.publish(change{timelines: true})
	assert.Len(t, lists.notify, 1)

	hub.unsubscribe(day)
	hub.unsubscribe(lists)
	assert.Zero(t, hub.size())
}

func TestObserveTasks_EmitsThenReemitsAfterMutation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := store.ObserveTasks(ctx, testutil.DayTimelineID, march)
	first := waitFor(t, stream, func([]*domain.Task) bool { return true })
	assert.Empty(t, first)

	addTasks(t, store, testutil.DayBlock(mar7), "a")
	got := waitFor(t, stream, func(v []*domain.Task) bool { return len(v) == 1 })
	assert.Equal(t, "a", got[0].Title)

	require.NoError(t, store.SetDone(context.Background(), got[0].ID, true))
	got = waitFor(t, stream, func(v []*domain.Task) bool { return len(v) == 1 && v[0].IsDone() })
	assert.Equal(t, domain.TaskDone, got[0].Status)
}

func TestObserveTasks_IgnoresOtherTimelines(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := store.ObserveTasks(ctx, testutil.DayTimelineID, march)
	waitFor(t, stream, func([]*domain.Task) bool { return true })

	addTasks(t, store, testutil.WeekBlock(mar7), "weekly")
	select {
	case v := <-stream:
		t.Fatalf("unexpected snapshot %v", titlesOf(v))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestObserveTasks_SlowSubscriberSeesLatest(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := store.ObserveTasks(ctx, testutil.DayTimelineID, march)
	addTasks(t, store, testutil.DayBlock(mar7), "a", "b", "c")

	got := waitFor(t, stream, func(v []*domain.Task) bool { return len(v) == 3 })
	assert.Equal(t, []string{"a", "b", "c"}, titlesOf(got))
}

func TestObserveTimelines_ReemitsAndClosesOnCancel(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	stream := store.ObserveTimelines(ctx)
	first := waitFor(t, stream, func(v []domain.Timeline) bool { return len(v) == 3 })
	assert.Equal(t, testutil.SeededTimelines(), first)

	require.NoError(t, store.DeleteTimeline(context.Background(), testutil.MonthTimelineID))
	waitFor(t, stream, func(v []domain.Timeline) bool { return len(v) == 2 })

	cancel()
	waitClosed(t, stream)
	assert.Zero(t, store.(*taskStore).hub.size())
}

func TestObserveTasks_TimelineChangeReloads(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addTasks(t, store, testutil.WeekBlock(mar7), "review")
	stream := store.ObserveTasks(ctx, testutil.WeekTimelineID, march)
	waitFor(t, stream, func(v []*domain.Task) bool { return len(v) == 1 })

	require.NoError(t, store.DeleteTimeline(context.Background(), testutil.WeekTimelineID))
	waitFor(t, stream, func(v []*domain.Task) bool { return len(v) == 0 })
}
