package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/service/notification"
)

func TestCleanupDropsEntriesPastRetention(t *testing.T) {
	feed := notification.NewFeed(nil, nil, nil)
	feed.Seed()
	require.Len(t, feed.List(), 5)

	w := NewNotificationCleanupWorker(feed, 6*time.Hour, time.Hour, nil)
	assert.Equal(t, 2, w.cleanup())

	titles := make([]string, 0, 3)
	for _, n := range feed.List() {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"New Patient Admitted", "Appointment Scheduled", "Treatment Completed"}, titles)
	assert.Zero(t, w.cleanup())
}

func TestCleanupKeepsFreshEntries(t *testing.T) {
	feed := notification.NewFeed(nil, nil, nil)
	_, err := feed.Add(context.Background(), model.NewNotification{Title: "Room Assigned", Message: "p3 admitted"})
	require.NoError(t, err)

	w := NewNotificationCleanupWorker(feed, time.Hour, time.Hour, nil)
	assert.Zero(t, w.cleanup())

	w.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, w.cleanup())
	assert.Empty(t, feed.List())
}

func TestStartStopsWithContext(t *testing.T) {
	feed := notification.NewFeed(nil, nil, nil)
	w := NewNotificationCleanupWorker(feed, time.Hour, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
