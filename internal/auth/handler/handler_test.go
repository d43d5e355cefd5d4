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

	"jobboard/internal/auth/handler/mocks"
	"jobboard/internal/auth/models"
	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/requestcontext"
)

type AuthHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

// fakeAuth stands in for the bearer-token middleware.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Authorization header is missing"))
			return
		}
		ctx := requestcontext.WithIdentity(r.Context(), requestcontext.Identity{
			UserID: 5, Email: "ada@example.com", Role: domain.RoleApplicant,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *AuthHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), fakeAuth)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *AuthHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthHandlerSuite) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AuthHandlerSuite) decodeError(rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	var body httputil.ErrorResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func (s *AuthHandlerSuite) TestRegister() {
	s.Run("201 with user payload", func() {
		created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
		s.service.EXPECT().Register(gomock.Any(), &models.RegisterRequest{Email: "ada@example.com", Password: "secret1"}).
			Return(&models.User{ID: 5, Email: "ada@example.com", Role: domain.RoleApplicant, CreatedAt: created}, nil)

		rec := s.do(http.MethodPost, "/register", `{"email":" ADA@example.com","password":"secret1"}`)
		s.Equal(http.StatusCreated, rec.Code)

		var body models.RegisterResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Equal("User registered successfully", body.Message)
		s.Equal(domain.UserID(5), body.User.UserID)
		s.Equal(domain.RoleApplicant, body.User.UserRole)
		s.True(created.Equal(body.User.CreatedAt))
	})

	s.Run("400 lists violations without calling the service", func() {
		rec := s.do(http.MethodPost, "/register", `{"email":"nope","password":"123"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		body := s.decodeError(rec)
		s.Len(body.Errors, 2)
	})

	s.Run("400 on malformed body", func() {
		rec := s.do(http.MethodPost, "/register", `{"email":`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("409 on duplicate email", func() {
		s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "Email is already registered"))

		rec := s.do(http.MethodPost, "/register", `{"email":"ada@example.com","password":"secret1"}`)
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("Email is already registered", s.decodeError(rec).Message)
	})
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("200 with token", func() {
		s.service.EXPECT().Login(gomock.Any(), &models.LoginRequest{Email: "ada@example.com", Password: "secret1"}).
			Return("a.b.c", nil)

		rec := s.do(http.MethodPost, "/login", `{"email":"ada@example.com","password":"secret1"}`)
		s.Equal(http.StatusOK, rec.Code)
		var body models.LoginResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Equal("a.b.c", body.Token)
	})

	s.Run("400 when a field is missing", func() {
		for _, payload := range []string{`{"email":"ada@example.com"}`, `{"password":"x"}`, ``} {
			rec := s.do(http.MethodPost, "/login", payload)
			s.Equal(http.StatusBadRequest, rec.Code, payload)
			s.Equal("Email and password are required", s.decodeError(rec).Message)
		}
	})

	s.Run("401 on bad credentials", func() {
		s.service.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return("", dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password"))

		rec := s.do(http.MethodPost, "/login", `{"email":"ada@example.com","password":"wrong"}`)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Invalid email or password", s.decodeError(rec).Message)
	})

	s.Run("500 hides internal detail", func() {
		s.service.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return("", dErrors.Wrap(context.DeadlineExceeded, dErrors.CodeInternal, "Internal server error"))

		rec := s.do(http.MethodPost, "/login", `{"email":"ada@example.com","password":"secret1"}`)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "deadline")
	})
}

func (s *AuthHandlerSuite) TestMe() {
	s.Run("requires authentication", func() {
		rec := s.do(http.MethodGet, "/me", "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("returns the caller's account", func() {
		s.service.EXPECT().CurrentUser(gomock.Any(), domain.UserID(5)).
			Return(&models.User{ID: 5, Email: "ada@example.com", Role: domain.RoleApplicant}, nil)

		rec := s.do(http.MethodGet, "/me", "", "Authorization", "Bearer x.y.z")
		s.Equal(http.StatusOK, rec.Code)
		var body models.UserResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Equal("ada@example.com", body.UserEmail)
	})
}
