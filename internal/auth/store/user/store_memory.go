package user

import (
	"context"
	"sync"
	"time"

	"jobboard/internal/auth/models"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

// InMemoryUserStore is a mutex-guarded user store for tests and local runs.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	nextID  domain.UserID
	users   map[domain.UserID]*models.User
	byEmail map[string]domain.UserID
	now     func() time.Time
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[domain.UserID]*models.User),
		byEmail: make(map[string]domain.UserID),
		now:     time.Now,
	}
}

// Create assigns an ID and timestamps to user and stores a copy.
// Returns sentinel.ErrAlreadyUsed when the email is taken.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.nextID++
	now := s.now()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		found := *u
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[email]; ok {
		found := *s.users[id]
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}
