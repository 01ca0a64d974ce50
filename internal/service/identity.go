package service

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// IdentityService owns the session identity: a session id plus the order
// counter stamped onto completed sets. The identity is longer-lived than any
// single workout screen and rotates only after an idle gap.
type IdentityService struct {
	mu            sync.Mutex
	repo          domain.IdentityRepository
	idleThreshold time.Duration
	now           func() time.Time

	current *domain.SessionIdentity
	loaded  bool
}

// NewIdentityService creates a new identity service
func NewIdentityService(repo domain.IdentityRepository, idleThreshold time.Duration) *IdentityService {
	return &IdentityService{
		repo:          repo,
		idleThreshold: idleThreshold,
		now:           time.Now,
	}
}

// NextOrder hands out the next global order value and the session id it
// belongs to. A fresh identity (first use, or idle gap over the threshold)
// starts at order 0; otherwise the counter strictly increases. The new
// counter value and activity timestamp are persisted before returning.
func (s *IdentityService) NextOrder(ctx context.Context) (int, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		current, err := s.repo.Load(ctx)
		if err != nil {
			return 0, "", err
		}
		s.current = current
		s.loaded = true
	}

	now := s.now()
	if s.current == nil || now.Sub(s.current.LastActiveAt) > s.idleThreshold {
		s.current = &domain.SessionIdentity{
			SessionID:    generateULID(),
			OrderCounter: 0,
			LastActiveAt: now,
		}
		logrus.WithField("session_id", s.current.SessionID).Info("rotated session identity")
	} else {
		s.current.OrderCounter++
		s.current.LastActiveAt = now
	}

	if err := s.repo.Save(ctx, s.current); err != nil {
		// The value is already handed out; a crash before this write can
		// reissue an order after restart.
		logrus.WithError(err).Warn("failed to persist session identity")
	}

	return s.current.OrderCounter, s.current.SessionID, nil
}
