package user

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"jobboard/internal/auth/models"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) TestCreate() {
	s.Run("assigns sequential IDs and timestamps", func() {
		store := New()
		first := &models.User{Email: "a@example.com", PasswordHash: "h", Role: domain.RoleApplicant}
		second := &models.User{Email: "b@example.com", PasswordHash: "h", Role: domain.RoleAdmin}
		s.Require().NoError(store.Create(context.Background(), first))
		s.Require().NoError(store.Create(context.Background(), second))

		s.Equal(domain.UserID(1), first.ID)
		s.Equal(domain.UserID(2), second.ID)
		s.False(first.CreatedAt.IsZero())
	})

	s.Run("rejects duplicate email", func() {
		store := New()
		s.Require().NoError(store.Create(context.Background(), &models.User{Email: "dup@example.com"}))
		err := store.Create(context.Background(), &models.User{Email: "dup@example.com"})
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("concurrent creates with the same email admit exactly one", func() {
		store := New()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if store.Create(context.Background(), &models.User{Email: "race@example.com"}) == nil {
					mu.Lock()
					success++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		s.Equal(1, success)
	})
}

func (s *InMemoryUserStoreSuite) TestLookupBehavior() {
	user := &models.User{Email: "jane.doe@example.com", PasswordHash: "hash", Role: domain.RoleApplicant}
	s.Require().NoError(s.store.Create(context.Background(), user))

	s.Run("returns user by ID when exists", func() {
		found, err := s.store.FindByID(context.Background(), user.ID)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("returns user by email when exists", func() {
		found, err := s.store.FindByEmail(context.Background(), user.Email)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("returned users are copies", func() {
		found, err := s.store.FindByID(context.Background(), user.ID)
		s.Require().NoError(err)
		found.Email = "mutated@example.com"

		again, err := s.store.FindByID(context.Background(), user.ID)
		s.Require().NoError(err)
		s.Equal("jane.doe@example.com", again.Email)
	})

	s.Run("returns ErrNotFound when user ID does not exist", func() {
		_, err := s.store.FindByID(context.Background(), domain.UserID(999))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when email does not exist", func() {
		_, err := s.store.FindByEmail(context.Background(), fmt.Sprintf("missing-%d@example.com", 1))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
