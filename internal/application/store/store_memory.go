package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobboard/internal/application/models"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

type pairKey struct {
	user    domain.UserID
	jobRole domain.JobRoleID
}

// InMemoryStore enforces one application per (user, job role) pair under a
// single mutex, the same backstop the Postgres unique constraint provides.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID domain.ApplicationID
	byID   map[domain.ApplicationID]models.Application
	byPair map[pairKey]domain.ApplicationID
	now    func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[domain.ApplicationID]models.Application),
		byPair: make(map[pairKey]domain.ApplicationID),
		now:    time.Now,
	}
}

func (s *InMemoryStore) Create(_ context.Context, userID domain.UserID, jobRoleID domain.JobRoleID, cvURL string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{userID, jobRoleID}
	if _, exists := s.byPair[key]; exists {
		return nil, sentinel.ErrAlreadyUsed
	}
	s.nextID++
	now := s.now()
	app := models.Application{
		ID:        s.nextID,
		UserID:    userID,
		JobRoleID: jobRoleID,
		CVURL:     cvURL,
		Status:    models.StatusSubmitted,
		AppliedAt: now,
		UpdatedAt: now,
	}
	s.byID[app.ID] = app
	s.byPair[key] = app.ID
	return &app, nil
}

func (s *InMemoryStore) FindExisting(_ context.Context, userID domain.UserID, jobRoleID domain.JobRoleID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPair[pairKey{userID, jobRoleID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	app := s.byID[id]
	return &app, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &app, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID domain.UserID) ([]*models.Application, error) {
	return s.filter(func(a models.Application) bool { return a.UserID == userID }), nil
}

func (s *InMemoryStore) ListByJobRole(_ context.Context, jobRoleID domain.JobRoleID) ([]*models.Application, error) {
	return s.filter(func(a models.Application) bool { return a.JobRoleID == jobRoleID }), nil
}

func (s *InMemoryStore) CountByJobRole(_ context.Context, jobRoleID domain.JobRoleID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for key := range s.byPair {
		if key.jobRole == jobRoleID {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.ApplicationID, status models.Status) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = s.now()
	s.byID[id] = app
	return &app, nil
}

// filter returns matches newest first.
func (s *InMemoryStore) filter(match func(models.Application) bool) []*models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Application, 0)
	for _, a := range s.byID {
		if match(a) {
			app := a
			out = append(out, &app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
