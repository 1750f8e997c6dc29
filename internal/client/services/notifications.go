package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/repositories/notifications"
	"github.com/dmitrijs2005/hirenest/internal/logging"
	"github.com/google/uuid"
)

// DefaultMaxNotifications caps the history when no limit is configured.
const DefaultMaxNotifications = 100

// NotificationService is the process-wide notification list. The list is
// replaced as a whole on every change; List never returns a slice that is
// later modified.
type NotificationService interface {
	Add(ctx context.Context, title, message string, severity models.Severity) (models.Notification, error)
	List() []models.Notification
	Unread() int
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Clear(ctx context.Context) error
	// Load replaces the in-memory list with the persisted history.
	Load(ctx context.Context) error
	Subscribe(fn func([]models.Notification)) (unsubscribe func())
}

type notificationService struct {
	repo notifications.Repository
	log  logging.Logger
	max  int
	now  func() time.Time

	mu      sync.Mutex
	items   []models.Notification
	subs    map[uint64]func([]models.Notification)
	nextSub uint64
}

// NewNotificationService constructs a NotificationService. repo may be nil
// for a memory-only store; max <= 0 selects DefaultMaxNotifications.
func NewNotificationService(repo notifications.Repository, max int, log logging.Logger) NotificationService {
	if max <= 0 {
		max = DefaultMaxNotifications
	}
	return &notificationService{
		repo: repo,
		log:  log.With("component", "notifications"),
		max:  max,
		now:  time.Now,
		subs: make(map[uint64]func([]models.Notification)),
	}
}

// replace installs next and notifies subscribers. Callers hold s.mu.
func (s *notificationService) replace(next []models.Notification) []func([]models.Notification) {
	s.items = next
	subs := make([]func([]models.Notification), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (s *notificationService) publish(subs []func([]models.Notification), items []models.Notification) {
	for _, fn := range subs {
		fn(items)
	}
}

// Add prepends a notification, evicting the oldest beyond the limit. The
// in-memory list is updated even when persisting fails.
func (s *notificationService) Add(ctx context.Context, title, message string, severity models.Severity) (models.Notification, error) {
	n := models.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	size := len(s.items) + 1
	if size > s.max {
		size = s.max
	}
	next := make([]models.Notification, 0, size)
	next = append(next, n)
	for _, it := range s.items {
		if len(next) == s.max {
			break
		}
		next = append(next, it)
	}
	subs := s.replace(next)
	s.mu.Unlock()

	s.publish(subs, next)

	if s.repo != nil {
		if err := s.repo.Save(ctx, n, s.max); err != nil {
			s.log.Warn(ctx, "failed to persist notification", "id", n.ID, "error", err)
			return n, fmt.Errorf("persist notification: %w", err)
		}
	}
	return n, nil
}

func (s *notificationService) List() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

func (s *notificationService) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		if !it.Read {
			n++
		}
	}
	return n
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, it := range s.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return notifications.ErrNotFound
	}
	if s.items[idx].Read {
		s.mu.Unlock()
		return nil
	}

	next := make([]models.Notification, len(s.items))
	copy(next, s.items)
	next[idx].Read = true
	subs := s.replace(next)
	s.mu.Unlock()

	s.publish(subs, next)

	if s.repo != nil {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return fmt.Errorf("persist read flag: %w", err)
		}
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	next := make([]models.Notification, len(s.items))
	copy(next, s.items)
	for i := range next {
		next[i].Read = true
	}
	subs := s.replace(next)
	s.mu.Unlock()

	s.publish(subs, next)

	if s.repo != nil {
		if err := s.repo.MarkAllRead(ctx); err != nil {
			return fmt.Errorf("persist read flags: %w", err)
		}
	}
	return nil
}

func (s *notificationService) Clear(ctx context.Context) error {
	s.mu.Lock()
	subs := s.replace(nil)
	s.mu.Unlock()

	s.publish(subs, nil)

	if s.repo != nil {
		if err := s.repo.Clear(ctx); err != nil {
			return fmt.Errorf("clear notifications: %w", err)
		}
	}
	return nil
}

func (s *notificationService) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}
	if len(items) > s.max {
		items = items[:s.max]
	}

	s.mu.Lock()
	subs := s.replace(items)
	s.mu.Unlock()

	s.publish(subs, items)
	return nil
}

// Subscribe registers fn for every future list. fn must not block or
// modify the slice.
func (s *notificationService) Subscribe(fn func([]models.Notification)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
