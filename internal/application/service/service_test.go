package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"jobboard/internal/application/adapters"
	"jobboard/internal/application/eligibility"
	"jobboard/internal/application/lock"
	"jobboard/internal/application/models"
	"jobboard/internal/application/service/mocks"
	"jobboard/internal/application/store"
	authmodels "jobboard/internal/auth/models"
	userstore "jobboard/internal/auth/store/user"
	"jobboard/internal/blob"
	jobrolestore "jobboard/internal/jobrole/store"
	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	audit "jobboard/pkg/platform/audit"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/requestcontext"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type ApplicationServiceSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockStore      *mocks.MockStore
	mockEvaluator  *mocks.MockEvaluator
	mockApplicants *mocks.MockApplicantLookup
	mockBlobs      *mocks.MockBlobStore
	mockAudit      *mocks.MockAuditPublisher
	service        *Service
	ctx            context.Context
}

func TestApplicationServiceSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceSuite))
}

func (s *ApplicationServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockEvaluator = mocks.NewMockEvaluator(s.ctrl)
	s.mockApplicants = mocks.NewMockApplicantLookup(s.ctrl)
	s.mockBlobs = mocks.NewMockBlobStore(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = s.newService()
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
}

func (s *ApplicationServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ApplicationServiceSuite) newService(opts ...Option) *Service {
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.mockAudit),
	}, opts...)
	svc, err := New(s.mockStore, s.mockEvaluator, s.mockApplicants, s.mockBlobs, opts...)
	s.Require().NoError(err)
	return svc
}

func validRequest() models.SubmitRequest {
	return models.SubmitRequest{
		ApplicantID: 7,
		JobRoleID:   "3",
		CV:          &models.CVFile{FileName: "cv.PDF", ContentType: "application/pdf", Body: []byte("%PDF")},
	}
}

func openRole() *models.JobRoleSnapshot {
	return &models.JobRoleSnapshot{
		ID: 3, RoleName: "Software Engineer", Location: "London",
		Status: "Open", OpenPositions: 2, ClosingDate: fixedNow.Add(24 * time.Hour),
	}
}

func (s *ApplicationServiceSuite) assertCode(err error, code dErrors.Code, msg string) {
	s.Require().Error(err)
	de, ok := dErrors.As(err)
	s.Require().True(ok, "expected domain error, got %v", err)
	s.Equal(code, de.Code)
	if msg != "" {
		s.Equal(msg, de.Message)
	}
}

func (s *ApplicationServiceSuite) TestNew() {
	_, err := New(nil, s.mockEvaluator, s.mockApplicants, s.mockBlobs)
	s.Error(err)
	_, err = New(s.mockStore, nil, s.mockApplicants, s.mockBlobs)
	s.Error(err)
	_, err = New(s.mockStore, s.mockEvaluator, nil, s.mockBlobs)
	s.Error(err)
	_, err = New(s.mockStore, s.mockEvaluator, s.mockApplicants, nil)
	s.Error(err)
}

func (s *ApplicationServiceSuite) TestSubmit() {
	s.Run("creates application and returns summaries", func() {
		var uploaded blob.Object
		s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), domain.UserID(7), domain.JobRoleID(3), fixedNow).
			Return(models.Eligibility{Eligible: true}, openRole(), nil)
		s.mockBlobs.EXPECT().Upload(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, obj blob.Object) (string, error) {
				uploaded = obj
				return "memory://" + obj.Key, nil
			})
		s.mockStore.EXPECT().Create(gomock.Any(), domain.UserID(7), domain.JobRoleID(3), gomock.Any()).
			DoAndReturn(func(_ context.Context, u domain.UserID, j domain.JobRoleID, url string) (*models.Application, error) {
				return &models.Application{ID: 1, UserID: u, JobRoleID: j, CVURL: url, Status: models.StatusSubmitted, AppliedAt: fixedNow}, nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventApplicationSubmitted), e.Action)
				s.Equal("application:1", e.Subject)
				return nil
			})
		s.mockApplicants.EXPECT().Applicant(gomock.Any(), domain.UserID(7)).
			Return(models.Applicant{UserID: 7, Email: "ada@example.com"}, nil)

		sub, err := s.service.Submit(s.ctx, validRequest())
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, sub.Application.Status)
		s.NotEmpty(sub.Application.CVURL)
		s.Equal("ada@example.com", sub.Applicant.Email)
		s.Equal("Software Engineer", sub.JobRole.RoleName)

		s.Regexp(`^cvs/7/[0-9a-f-]{36}\.pdf$`, uploaded.Key)
		s.Equal("application/pdf", uploaded.ContentType)
		s.Equal("cv.PDF", uploaded.Metadata[blob.MetaOriginalName])
		s.Equal("7", uploaded.Metadata[blob.MetaUserID])
		s.Equal(fixedNow.Format(time.RFC3339), uploaded.Metadata[blob.MetaUploadedAt])
	})

	s.Run("missing cv wins over missing job role id", func() {
		req := validRequest()
		req.CV = nil
		req.JobRoleID = ""
		_, err := s.service.Submit(s.ctx, req)
		s.assertCode(err, dErrors.CodeBadRequest, MsgCVRequired)
	})

	s.Run("empty cv body counts as missing", func() {
		req := validRequest()
		req.CV.Body = nil
		_, err := s.service.Submit(s.ctx, req)
		s.assertCode(err, dErrors.CodeBadRequest, MsgCVRequired)
	})

	s.Run("missing applicant is unauthorized", func() {
		req := validRequest()
		req.ApplicantID = 0
		_, err := s.service.Submit(s.ctx, req)
		s.assertCode(err, dErrors.CodeUnauthorized, MsgNotAuthenticated)
	})

	s.Run("missing and malformed job role ids differ", func() {
		req := validRequest()
		req.JobRoleID = ""
		_, err := s.service.Submit(s.ctx, req)
		s.assertCode(err, dErrors.CodeInvalidInput, "Job role ID is required")

		req.JobRoleID = "abc"
		_, err = s.service.Submit(s.ctx, req)
		s.assertCode(err, dErrors.CodeInvalidInput, "Invalid job role ID")
	})

	s.Run("ineligible returns the reason verbatim", func() {
		s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.Eligibility{Code: eligibility.CodeClosed, Reason: eligibility.ReasonClosed}, nil, nil)

		_, err := s.service.Submit(s.ctx, validRequest())
		s.assertCode(err, dErrors.CodeBadRequest, eligibility.ReasonClosed)
	})

	s.Run("evaluator failure is internal", func() {
		s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.Eligibility{}, nil, errors.New("db down"))

		_, err := s.service.Submit(s.ctx, validRequest())
		s.assertCode(err, dErrors.CodeInternal, MsgSubmitFailed)
	})

	s.Run("upload failure creates no application", func() {
		s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.Eligibility{Eligible: true}, openRole(), nil)
		s.mockBlobs.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("", errors.New("s3 unavailable"))

		_, err := s.service.Submit(s.ctx, validRequest())
		s.assertCode(err, dErrors.CodeUploadFailed, MsgSubmitFailed)
	})

	s.Run("store failure leaves the blob by default", func() {
		s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.Eligibility{Eligible: true}, openRole(), nil)
		s.mockBlobs.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("memory://cvs/7/x.pdf", nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("insert failed"))

		_, err := s.service.Submit(s.ctx, validRequest())
		s.assertCode(err, dErrors.CodeInternal, MsgSubmitFailed)
	})

	s.Run("duplicate insert reads as already applied", func() {
		s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.Eligibility{Eligible: true}, openRole(), nil)
		s.mockBlobs.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("memory://cvs/7/x.pdf", nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, sentinel.ErrAlreadyUsed)

		_, err := s.service.Submit(s.ctx, validRequest())
		s.assertCode(err, dErrors.CodeBadRequest, eligibility.ReasonAlreadyApplied)
	})
}

func (s *ApplicationServiceSuite) TestSubmit_OrphanCleanup() {
	svc := s.newService(WithOrphanCleanup(true))
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Eligibility{Eligible: true}, openRole(), nil)
	s.mockBlobs.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("memory://cvs/7/x.pdf", nil)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("insert failed"))
	s.mockBlobs.EXPECT().Delete(gomock.Any(), "memory://cvs/7/x.pdf").Return(errors.New("delete failed"))

	_, err := svc.Submit(s.ctx, validRequest())
	s.assertCode(err, dErrors.CodeInternal, MsgSubmitFailed)
}

type lockHeld struct{}

func (lockHeld) Lock(context.Context, string) (lock.Release, error) {
	return nil, sentinel.ErrLockHeld
}

func (s *ApplicationServiceSuite) TestSubmit_LockHeld() {
	svc := s.newService(WithLocker(lockHeld{}))
	_, err := svc.Submit(s.ctx, validRequest())
	s.assertCode(err, dErrors.CodeConflict, MsgSubmitInProgress)
}

func (s *ApplicationServiceSuite) TestSubmit_ApplicantFallsBackToIdentity() {
	ctx := requestcontext.WithIdentity(s.ctx, requestcontext.Identity{UserID: 7, Email: "token@example.com", Role: domain.RoleApplicant})
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Eligibility{Eligible: true}, openRole(), nil)
	s.mockBlobs.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("memory://cvs/7/x.pdf", nil)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.Application{ID: 2, UserID: 7, JobRoleID: 3, Status: models.StatusSubmitted}, nil)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down"))
	s.mockApplicants.EXPECT().Applicant(gomock.Any(), domain.UserID(7)).Return(models.Applicant{}, sentinel.ErrNotFound)

	sub, err := s.service.Submit(ctx, validRequest())
	s.Require().NoError(err)
	s.Equal("token@example.com", sub.Applicant.Email)
}

func (s *ApplicationServiceSuite) TestGet() {
	app := &models.Application{ID: 5, UserID: 7, JobRoleID: 3, Status: models.StatusSubmitted}

	s.Run("owner", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), domain.ApplicationID(5)).Return(app, nil)
		got, err := s.service.Get(s.ctx, 5, requestcontext.Identity{UserID: 7, Role: domain.RoleApplicant})
		s.Require().NoError(err)
		s.Equal(app.ID, got.ID)
	})

	s.Run("admin", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), domain.ApplicationID(5)).Return(app, nil)
		_, err := s.service.Get(s.ctx, 5, requestcontext.Identity{UserID: 1, Role: domain.RoleAdmin})
		s.NoError(err)
	})

	s.Run("another applicant", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), domain.ApplicationID(5)).Return(app, nil)
		_, err := s.service.Get(s.ctx, 5, requestcontext.Identity{UserID: 8, Role: domain.RoleApplicant})
		s.assertCode(err, dErrors.CodeForbidden, MsgAccessDenied)
	})

	s.Run("missing", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), domain.ApplicationID(6)).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.Get(s.ctx, 6, requestcontext.Identity{UserID: 7, Role: domain.RoleApplicant})
		s.assertCode(err, dErrors.CodeNotFound, MsgApplicationMissing)
	})
}

func (s *ApplicationServiceSuite) TestUpdateStatus() {
	s.Run("emits audit with actor", func() {
		ctx := requestcontext.WithIdentity(s.ctx, requestcontext.Identity{UserID: 1, Role: domain.RoleAdmin})
		s.mockStore.EXPECT().UpdateStatus(gomock.Any(), domain.ApplicationID(5), models.StatusAccepted).
			Return(&models.Application{ID: 5, UserID: 7, Status: models.StatusAccepted}, nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(domain.UserID(7), e.UserID)
				s.Equal(domain.UserID(1), e.ActorID)
				s.Equal(string(models.StatusAccepted), e.Reason)
				return nil
			})

		app, err := s.service.UpdateStatus(ctx, 5, models.StatusAccepted)
		s.Require().NoError(err)
		s.Equal(models.StatusAccepted, app.Status)
	})

	s.Run("missing", func() {
		s.mockStore.EXPECT().UpdateStatus(gomock.Any(), domain.ApplicationID(9), models.StatusRejected).
			Return(nil, sentinel.ErrNotFound)
		_, err := s.service.UpdateStatus(s.ctx, 9, models.StatusRejected)
		s.assertCode(err, dErrors.CodeNotFound, MsgApplicationMissing)
	})
}

func (s *ApplicationServiceSuite) TestCanApply() {
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), domain.UserID(7), domain.JobRoleID(4), fixedNow).
		Return(models.Eligibility{Code: eligibility.CodeNotOpen, Reason: eligibility.ReasonNotOpen}, nil, nil)

	result, err := s.service.CanApply(s.ctx, 7, 4)
	s.Require().NoError(err)
	s.False(result.Eligible)
	s.Equal(eligibility.ReasonNotOpen, result.Reason)
}

func (s *ApplicationServiceSuite) TestLists() {
	s.mockStore.EXPECT().ListByUser(gomock.Any(), domain.UserID(7)).Return(nil, errors.New("boom"))
	_, err := s.service.ListMine(s.ctx, 7)
	s.assertCode(err, dErrors.CodeInternal, "")

	s.mockStore.EXPECT().ListByJobRole(gomock.Any(), domain.JobRoleID(3)).
		Return([]*models.Application{{ID: 1}, {ID: 2}}, nil)
	apps, err := s.service.ListForJobRole(s.ctx, 3)
	s.Require().NoError(err)
	s.Len(apps, 2)
}

// TestSubmit_ConcurrentDuplicates runs real in-memory collaborators so the
// lock and the store constraint are both in play.
func TestSubmit_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	users := userstore.New()
	user := &authmodels.User{Email: "ada@example.com", PasswordHash: "h", Role: domain.RoleApplicant}
	require.NoError(t, users.Create(ctx, user))

	apps := store.NewInMemory()
	blobs := blob.NewMemoryStore()
	evaluator := eligibility.New(apps, adapters.NewJobRoleAdapter(jobrolestore.NewSeededInMemory()))
	svc, err := New(apps, evaluator, adapters.NewUserAdapter(users), blobs,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	req := models.SubmitRequest{
		ApplicantID: user.ID,
		JobRoleID:   "1",
		CV:          &models.CVFile{FileName: "cv.pdf", Body: []byte("cv")},
	}

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if de, ok := dErrors.As(err); ok && de.Message == eligibility.ReasonAlreadyApplied {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, 1, blobs.Len(), "only the winning submission uploads a CV")

	mine, err := apps.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
