package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"jobboard/internal/jobrole/handler/mocks"
	"jobboard/internal/jobrole/models"
	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/platform/middleware/auth"
	"jobboard/pkg/requestcontext"
)

type JobRoleHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestJobRoleHandlerSuite(t *testing.T) {
	suite.Run(t, new(JobRoleHandlerSuite))
}

// roleFromHeader authenticates any request carrying X-Test-Role.
func roleFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Test-Role")
		if role == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, auth.MsgHeaderMissing))
			return
		}
		ctx := requestcontext.WithIdentity(r.Context(), requestcontext.Identity{UserID: 1, Role: domain.Role(role)})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *JobRoleHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.service, logger, roleFromHeader, auth.RequireRoles(logger, domain.RoleAdmin))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *JobRoleHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *JobRoleHandlerSuite) do(method, path, body, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *JobRoleHandlerSuite) sample() *models.JobRole {
	return &models.JobRole{
		ID: 1, RoleName: "Software Engineer", Location: "London",
		Capability: models.Capability{ID: 1, Name: "Engineering"},
		Band:       models.Band{ID: 1, Name: "Associate"},
		Status:     models.Status{ID: 1, Name: "Open"},
		ClosingDate: time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC), NumberOfOpenPositions: 3,
	}
}

func (s *JobRoleHandlerSuite) TestPublicReads() {
	s.Run("list maps reference names", func() {
		s.service.EXPECT().List(gomock.Any()).Return([]*models.JobRole{s.sample()}, nil)
		rec := s.do(http.MethodGet, "/job-roles", "", "")
		s.Equal(http.StatusOK, rec.Code)

		var body []map[string]any
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Require().Len(body, 1)
		s.Equal("Engineering", body[0]["capability"])
		s.Equal("Open", body[0]["status"])
		s.EqualValues(3, body[0]["numberOfOpenPositions"])
	})

	s.Run("invalid id", func() {
		rec := s.do(http.MethodGet, "/job-roles/abc", "", "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "Invalid job role ID")
	})

	s.Run("missing role", func() {
		s.service.EXPECT().Get(gomock.Any(), domain.JobRoleID(99)).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "Job role not found"))
		rec := s.do(http.MethodGet, "/job-roles/99", "", "")
		s.Equal(http.StatusNotFound, rec.Code)
		s.Contains(rec.Body.String(), "Job role not found")
	})

	s.Run("reference lists", func() {
		s.service.EXPECT().Bands(gomock.Any()).Return([]models.Band{{ID: 1, Name: "Associate"}}, nil)
		rec := s.do(http.MethodGet, "/bands", "", "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`[{"bandId":1,"bandName":"Associate"}]`, rec.Body.String())
	})
}

func (s *JobRoleHandlerSuite) TestWritesRequireAdmin() {
	body := `{"roleName":"QA","location":"Derry","capabilityId":1,"bandId":1,"statusId":1,"closingDate":"2027-01-01","numberOfOpenPositions":1}`

	s.Run("unauthenticated", func() {
		rec := s.do(http.MethodPost, "/job-roles", body, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("applicant is forbidden and the service is never called", func() {
		rec := s.do(http.MethodPost, "/job-roles", body, string(domain.RoleApplicant))
		s.Equal(http.StatusForbidden, rec.Code)
		s.Contains(rec.Body.String(), auth.MsgInsufficientRole)

		rec = s.do(http.MethodDelete, "/job-roles/1", "", string(domain.RoleApplicant))
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("admin creates", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *models.CreateJobRoleRequest) (*models.JobRole, error) {
				s.Equal("QA", req.Fields().RoleName)
				j := s.sample()
				j.ID, j.RoleName = 5, "QA"
				return j, nil
			})
		rec := s.do(http.MethodPost, "/job-roles", body, string(domain.RoleAdmin))
		s.Equal(http.StatusCreated, rec.Code)
		s.Contains(rec.Body.String(), `"jobRoleId":5`)
	})

	s.Run("admin create with violations", func() {
		rec := s.do(http.MethodPost, "/job-roles", `{"roleName":""}`, string(domain.RoleAdmin))
		s.Equal(http.StatusBadRequest, rec.Code)
		var resp httputil.ErrorResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("Validation failed", resp.Message)
		s.Contains(resp.Errors, "roleName is required")
	})

	s.Run("admin updates", func() {
		s.service.EXPECT().Update(gomock.Any(), domain.JobRoleID(1), gomock.Any()).Return(s.sample(), nil)
		rec := s.do(http.MethodPut, "/job-roles/1", `{"location":"London"}`, string(domain.RoleAdmin))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("admin deletes", func() {
		s.service.EXPECT().Delete(gomock.Any(), domain.JobRoleID(1)).Return(nil)
		rec := s.do(http.MethodDelete, "/job-roles/1", "", string(domain.RoleAdmin))
		s.Equal(http.StatusNoContent, rec.Code)
	})
}
