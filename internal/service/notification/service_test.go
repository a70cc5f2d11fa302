package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/pkg/messaging"
	"github.com/jwalitptl/facility-api/pkg/messaging/redis"
)

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	f := NewFeed(nil, nil, nil)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }
	return f
}

func TestAddPrependsUnread(t *testing.T) {
	ctx := context.Background()
	f := newTestFeed(t)

	first, err := f.Add(ctx, model.NewNotification{Title: "A", Message: "first", Type: model.NotificationInfo, Role: model.RoleAll})
	require.NoError(t, err)
	second, err := f.Add(ctx, model.NewNotification{Title: "B", Message: "second", Type: model.NotificationWarning, Role: model.RoleAll})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Regexp(t, `^n-\d+`, first.ID)
	assert.False(t, first.Read)

	list := f.List()
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Title)
	assert.Equal(t, "A", list[1].Title)
	assert.Equal(t, 2, f.UnreadCount())

	_, err = f.Add(ctx, model.NewNotification{Title: "", Message: "x"})
	assert.Error(t, err)
}

func TestReadStateTransitions(t *testing.T) {
	f := newTestFeed(t)
	f.Seed()
	assert.Equal(t, 4, f.UnreadCount())

	require.NoError(t, f.MarkAsRead("n1"))
	assert.Equal(t, 3, f.UnreadCount())
	assert.ErrorIs(t, f.MarkAsRead("missing"), ErrNotFound)

	f.MarkAllAsRead()
	assert.Zero(t, f.UnreadCount())

	f.ClearAll()
	assert.Empty(t, f.List())
}

func TestRecipientScoping(t *testing.T) {
	ctx := context.Background()
	f := newTestFeed(t)
	f.Seed()

	_, err := f.Add(ctx, model.NewNotification{Title: "Yours", Message: "for doctor 2", Type: model.NotificationInfo, UserID: "2"})
	require.NoError(t, err)

	doctor := model.Recipient{UserID: "2", Role: model.RoleDoctor}
	admin := model.Recipient{UserID: "1", Role: model.RoleAdmin}

	assert.Len(t, f.ListFor(doctor), 5) // n1 n2 n3 n5 + own
	assert.Len(t, f.ListFor(admin), 5)  // n1..n5
	assert.Equal(t, 4, f.UnreadCountFor(admin))

	assert.ErrorIs(t, f.MarkAsReadFor(doctor, "n4"), ErrNotFound)

	f.MarkAllAsReadFor(doctor)
	assert.Zero(t, f.UnreadCountFor(doctor))
	assert.Zero(t, f.UnreadCountFor(admin))

	f.ClearFor(doctor)
	assert.Empty(t, f.ListFor(doctor))
	remaining := f.ListFor(admin)
	require.Len(t, remaining, 1)
	assert.Equal(t, "n4", remaining[0].ID)
}

func TestAddPublishesToBroker(t *testing.T) {
	mr := miniredis.RunT(t)
	log := zerolog.Nop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := redis.NewRedisBroker(ctx, redis.Config{URL: "redis://" + mr.Addr()}, &log)
	require.NoError(t, err)
	defer broker.Close()

	msgs, err := broker.Subscribe(ctx, Channel)
	require.NoError(t, err)

	f := NewFeed(broker, nil, nil)
	added, err := f.Add(ctx, model.NewNotification{Title: "New Patient Added", Message: "Jane Doe", Type: model.NotificationSuccess, Role: model.RoleAll})
	require.NoError(t, err)

	select {
	case raw := <-msgs:
		var got struct {
			Type    string             `json:"type"`
			Payload model.Notification `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "notification.created", got.Type)
		assert.Equal(t, added.ID, got.Payload.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification not published")
	}
}

type failingBroker struct{ messaging.Broker }

func (failingBroker) Publish(context.Context, string, interface{}) error {
	return assert.AnError
}

func TestPublishFailureDoesNotFailAdd(t *testing.T) {
	f := NewFeed(failingBroker{messaging.NewNopBroker()}, nil, nil)
	_, err := f.Add(context.Background(), model.NewNotification{Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Len(t, f.List(), 1)
}
