// Package featureflags exposes the frontend feature toggles read at startup.
package featureflags

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobboard/internal/platform/config"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/requestcontext"
)

// Response keys are the flag names the frontend checks.
type Response struct {
	JobDetailView bool `json:"JOB_DETAIL_VIEW"`
	JobApply      bool `json:"JOB_APPLY"`
}

type Handler struct {
	flags  config.FeatureFlags
	logger *slog.Logger
}

func New(flags config.FeatureFlags, logger *slog.Logger) *Handler {
	return &Handler{flags: flags, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/feature-flags", h.HandleGet)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.DebugContext(ctx, "feature flags requested", "request_id", requestcontext.RequestID(ctx))
	httputil.WriteJSON(w, http.StatusOK, Response{
		JobDetailView: h.flags.JobDetailView,
		JobApply:      h.flags.JobApply,
	})
}
