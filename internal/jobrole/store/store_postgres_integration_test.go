//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	applicationstore "jobboard/internal/application/store"
	authmodels "jobboard/internal/auth/models"
	"jobboard/internal/auth/store/user"
	"jobboard/internal/jobrole/models"
	"jobboard/internal/jobrole/store"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/testutil/containers"
)

type PostgresJobRoleStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresJobRoleStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresJobRoleStoreSuite))
}

func (s *PostgresJobRoleStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB.DB)
}

func (s *PostgresJobRoleStoreSuite) fields() models.JobRoleFields {
	return models.JobRoleFields{
		RoleName: "QA Engineer", Location: "Derry",
		CapabilityID: 1, BandID: 1, StatusID: 1,
		ClosingDate:           time.Date(2027, 9, 30, 0, 0, 0, 0, time.UTC),
		NumberOfOpenPositions: 2,
	}
}

func (s *PostgresJobRoleStoreSuite) TestSeededData() {
	ctx := context.Background()
	roles, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.GreaterOrEqual(len(roles), 4)

	caps, err := s.store.Capabilities(ctx)
	s.Require().NoError(err)
	s.Len(caps, 3)

	statuses, err := s.store.Statuses(ctx)
	s.Require().NoError(err)
	s.Len(statuses, 2)
}

func (s *PostgresJobRoleStoreSuite) TestCreateUpdateDelete() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.fields())
	s.Require().NoError(err)
	s.Equal("QA Engineer", created.RoleName)
	s.Equal("Engineering", created.Capability.Name)

	f := s.fields()
	f.NumberOfOpenPositions = 0
	updated, err := s.store.Update(ctx, created.ID, f)
	s.Require().NoError(err)
	s.Equal(0, updated.NumberOfOpenPositions)

	s.Require().NoError(s.store.Delete(ctx, created.ID))
	_, err = s.store.FindByID(ctx, created.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, created.ID), sentinel.ErrNotFound)
}

func (s *PostgresJobRoleStoreSuite) TestUnknownReference() {
	f := s.fields()
	f.BandID = 999
	_, err := s.store.Create(context.Background(), f)
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *PostgresJobRoleStoreSuite) TestDeleteRefusedWhileApplicationsExist() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "users"))
	role, err := s.store.Create(ctx, s.fields())
	s.Require().NoError(err)

	applicant := &authmodels.User{Email: "grace@example.com", PasswordHash: "h", Role: domain.RoleApplicant}
	s.Require().NoError(user.NewPostgres(s.postgres.DB.DB).Create(ctx, applicant))
	applications := applicationstore.NewPostgres(s.postgres.DB.DB)
	app, err := applications.Create(ctx, applicant.ID, role.ID, "cvs/1/a.pdf")
	s.Require().NoError(err)

	s.ErrorIs(s.store.Delete(ctx, role.ID), sentinel.ErrInvalidState)

	_, err = s.store.FindByID(ctx, role.ID)
	s.NoError(err, "role must survive the refused delete")
	kept, err := applications.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(role.ID, kept.JobRoleID)

	n, err := applications.CountByJobRole(ctx, role.ID)
	s.Require().NoError(err)
	s.Equal(1, n)
}
