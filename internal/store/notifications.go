package store

import (
	"time"

	"github.com/google/uuid"

	"betboard/internal/domain"
)

// ShowNotification appends a transient message. The notification self-expires
// after the configured interval unless dismissed earlier.
func (s *Store) ShowNotification(message, kind string) domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifyLocked(message, kind)
}

func (s *Store) notifyLocked(message, kind string) domain.Notification {
	if kind == "" {
		kind = domain.NotifyInfo
	}
	n := domain.Notification{ID: uuid.NewString(), Message: message, Kind: kind}
	s.notifications = append(s.notifications, n)
	if s.notificationTTL > 0 {
		id := n.ID
		s.timers[id] = time.AfterFunc(s.notificationTTL, func() {
			s.DismissNotification(id)
		})
	}
	return n
}

// DismissNotification removes the message and cancels its expiry timer.
// Other notifications' timers are unaffected. Unknown ids are a no-op.
func (s *Store) DismissNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// Notifications returns the currently visible messages.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.notifications...)
}

// Close cancels all pending expiry timers.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
