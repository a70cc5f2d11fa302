package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/pkg/logger"
	"github.com/jwalitptl/facility-api/pkg/messaging"
	"github.com/jwalitptl/facility-api/pkg/metrics"
)

// Channel is the broker channel new entries are fanned out on.
const Channel = "notifications"

var ErrNotFound = errors.New("notification not found")

// Notifier is the producer side of the feed.
type Notifier interface {
	Add(ctx context.Context, n model.NewNotification) (*model.Notification, error)
}

// Feed is an in-memory, newest-first list of notices.
type Feed struct {
	mu      sync.RWMutex
	entries []*model.Notification
	lastID  string
	seq     int

	broker  messaging.Broker
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

var _ Notifier = (*Feed)(nil)

func NewFeed(broker messaging.Broker, m *metrics.Metrics, log *logger.Logger) *Feed {
	if broker == nil {
		broker = messaging.NewNopBroker()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Feed{broker: broker, metrics: m, log: log, now: time.Now}
}

// Add prepends a new unread entry and publishes it. A publish failure is
// logged and does not fail the add.
func (f *Feed) Add(ctx context.Context, n model.NewNotification) (*model.Notification, error) {
	if n.Title == "" || n.Message == "" {
		return nil, errors.New("notification title and message are required")
	}
	if n.Type == "" {
		n.Type = model.NotificationInfo
	}

	f.mu.Lock()
	entry := &model.Notification{
		ID:        f.nextIDLocked(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Role:      n.Role,
		UserID:    n.UserID,
		Link:      n.Link,
		Timestamp: f.now(),
	}
	f.entries = append([]*model.Notification{entry}, f.entries...)
	out := *entry
	f.mu.Unlock()

	f.metrics.Notifications.WithLabelValues(string(out.Type)).Inc()
	if err := f.broker.Publish(ctx, Channel, messaging.NewMessage("notification.created", out)); err != nil {
		f.log.Warn(err, "failed to publish notification", "notification_id", out.ID)
	}
	return &out, nil
}

// nextIDLocked yields n-<unix ms>, adding a counter when two entries land
// in the same millisecond.
func (f *Feed) nextIDLocked() string {
	id := fmt.Sprintf("n-%d", f.now().UnixMilli())
	if id == f.lastID {
		f.seq++
		return fmt.Sprintf("%s-%d", id, f.seq)
	}
	f.lastID = id
	f.seq = 0
	return id
}

// List returns every entry, newest first.
func (f *Feed) List() []model.Notification {
	return f.filter(func(*model.Notification) bool { return true })
}

// ListFor returns the entries addressed to r, newest first.
func (f *Feed) ListFor(r model.Recipient) []model.Notification {
	return f.filter(func(n *model.Notification) bool { return n.VisibleTo(r) })
}

func (f *Feed) filter(keep func(*model.Notification) bool) []model.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]model.Notification, 0, len(f.entries))
	for _, n := range f.entries {
		if keep(n) {
			out = append(out, *n)
		}
	}
	return out
}

func (f *Feed) UnreadCount() int {
	return f.countUnread(func(*model.Notification) bool { return true })
}

func (f *Feed) UnreadCountFor(r model.Recipient) int {
	return f.countUnread(func(n *model.Notification) bool { return n.VisibleTo(r) })
}

func (f *Feed) countUnread(keep func(*model.Notification) bool) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var count int
	for _, n := range f.entries {
		if !n.Read && keep(n) {
			count++
		}
	}
	return count
}

func (f *Feed) MarkAsRead(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.entries {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("%s: %w", id, ErrNotFound)
}

// MarkAsReadFor marks id read only when it is addressed to r.
func (f *Feed) MarkAsReadFor(r model.Recipient, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.entries {
		if n.ID == id && n.VisibleTo(r) {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("%s: %w", id, ErrNotFound)
}

func (f *Feed) MarkAllAsRead() {
	f.markAll(func(*model.Notification) bool { return true })
}

func (f *Feed) MarkAllAsReadFor(r model.Recipient) {
	f.markAll(func(n *model.Notification) bool { return n.VisibleTo(r) })
}

func (f *Feed) markAll(keep func(*model.Notification) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.entries {
		if keep(n) {
			n.Read = true
		}
	}
}

// ClearAll drops every entry for every recipient.
func (f *Feed) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
}

// ClearFor drops only the entries addressed to r.
func (f *Feed) ClearFor(r model.Recipient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.entries[:0]
	for _, n := range f.entries {
		if !n.VisibleTo(r) {
			kept = append(kept, n)
		}
	}
	f.entries = kept
}

// PruneBefore drops entries stamped before cutoff and reports how many went.
func (f *Feed) PruneBefore(cutoff time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.entries[:0]
	for _, n := range f.entries {
		if !n.Timestamp.Before(cutoff) {
			kept = append(kept, n)
		}
	}
	removed := len(f.entries) - len(kept)
	f.entries = kept
	return removed
}

// Seed loads the starter entries, ages relative to now.
func (f *Feed) Seed() {
	now := f.now()
	seed := []model.Notification{
		{ID: "n1", Title: "New Patient Admitted", Message: "Alexander Bennett has been admitted to Room 101, Block A.", Type: model.NotificationInfo, Role: model.RoleAll, Timestamp: now.Add(-time.Hour)},
		{ID: "n2", Title: "Appointment Scheduled", Message: "Therapy session scheduled for Olivia Martinez at 2:00 PM today.", Type: model.NotificationSuccess, Role: model.RoleAll, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "n3", Title: "Treatment Completed", Message: "Emily Davidson completed therapy session for Alexander Bennett.", Type: model.NotificationSuccess, Role: model.RoleAll, Timestamp: now.Add(-3 * time.Hour)},
		{ID: "n4", Title: "Staff Account Created", Message: "New doctor account created: Dr. Michael Chen.", Type: model.NotificationInfo, Role: string(model.RoleAdmin), Read: true, Timestamp: now.Add(-24 * time.Hour)},
		{ID: "n5", Title: "Health Check Recorded", Message: "New health record added for Michael Davidson.", Type: model.NotificationInfo, Role: model.RoleAll, Timestamp: now.Add(-12 * time.Hour)},
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range seed {
		n := seed[i]
		f.entries = append(f.entries, &n)
	}
}
