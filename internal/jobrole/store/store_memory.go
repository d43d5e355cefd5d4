package store

import (
	"context"
	"sort"
	"sync"

	"jobboard/internal/jobrole/models"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

// InMemoryStore keeps job roles and reference data in maps.
type InMemoryStore struct {
	mu           sync.RWMutex
	nextID       domain.JobRoleID
	roles        map[domain.JobRoleID]models.JobRole
	capabilities map[int64]models.Capability
	bands        map[int64]models.Band
	statuses     map[int64]models.Status
}

// NewInMemory returns a store holding only the reference data.
func NewInMemory() *InMemoryStore {
	s := &InMemoryStore{
		roles:        make(map[domain.JobRoleID]models.JobRole),
		capabilities: make(map[int64]models.Capability),
		bands:        make(map[int64]models.Band),
		statuses:     make(map[int64]models.Status),
	}
	for _, c := range seedCapabilities {
		s.capabilities[c.ID] = c
	}
	for _, b := range seedBands {
		s.bands[b.ID] = b
	}
	for _, st := range seedStatuses {
		s.statuses[st.ID] = st
	}
	return s
}

// NewSeededInMemory returns a store with the reference data and sample job roles.
func NewSeededInMemory() *InMemoryStore {
	s := NewInMemory()
	for _, j := range seedJobRoles() {
		s.roles[j.ID] = j
		if j.ID > s.nextID {
			s.nextID = j.ID
		}
	}
	return s
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.JobRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.JobRole, 0, len(s.roles))
	for _, j := range s.roles {
		role := j
		out = append(out, &role)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.JobRoleID) (*models.JobRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.roles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &j, nil
}

// Create stores a new role. Unknown reference ids return sentinel.ErrInvalidState.
func (s *InMemoryStore) Create(_ context.Context, f models.JobRoleFields) (*models.JobRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	j, err := s.build(s.nextID, f)
	if err != nil {
		s.nextID--
		return nil, err
	}
	s.roles[j.ID] = j
	return &j, nil
}

func (s *InMemoryStore) Update(_ context.Context, id domain.JobRoleID, f models.JobRoleFields) (*models.JobRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return nil, sentinel.ErrNotFound
	}
	j, err := s.build(id, f)
	if err != nil {
		return nil, err
	}
	s.roles[id] = j
	return &j, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.JobRoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.roles, id)
	return nil
}

func (s *InMemoryStore) Capabilities(_ context.Context) ([]models.Capability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.capabilities, func(c models.Capability) int64 { return c.ID }), nil
}

func (s *InMemoryStore) Bands(_ context.Context) ([]models.Band, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.bands, func(b models.Band) int64 { return b.ID }), nil
}

func (s *InMemoryStore) Statuses(_ context.Context) ([]models.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.statuses, func(st models.Status) int64 { return st.ID }), nil
}

// build resolves reference ids. Callers hold the lock.
func (s *InMemoryStore) build(id domain.JobRoleID, f models.JobRoleFields) (models.JobRole, error) {
	capability, ok := s.capabilities[f.CapabilityID]
	if !ok {
		return models.JobRole{}, sentinel.ErrInvalidState
	}
	band, ok := s.bands[f.BandID]
	if !ok {
		return models.JobRole{}, sentinel.ErrInvalidState
	}
	status, ok := s.statuses[f.StatusID]
	if !ok {
		return models.JobRole{}, sentinel.ErrInvalidState
	}
	return models.JobRole{
		ID:                    id,
		RoleName:              f.RoleName,
		Location:              f.Location,
		Capability:            capability,
		Band:                  band,
		Status:                status,
		ClosingDate:           f.ClosingDate,
		Description:           f.Description,
		Responsibilities:      f.Responsibilities,
		SharepointURL:         f.SharepointURL,
		NumberOfOpenPositions: f.NumberOfOpenPositions,
	}, nil
}

func sortedValues[T any](m map[int64]T, key func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(a, b int) bool { return key(out[a]) < key(out[b]) })
	return out
}
