package audithandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"calcfolha/internal/domain/audit"
	"calcfolha/internal/transport/http/api"
	"calcfolha/internal/transport/http/middleware"
	"calcfolha/internal/transport/http/shared"
)

type EventLister interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Service EventLister
	Logger  *zap.Logger
}

func NewHandler(service EventLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: service, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/events", h.handleListEvents)
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	q := r.URL.Query()
	filter := audit.Filter{
		OwnerID: q.Get("owner"),
		Action:  q.Get("action"),
		ActorID: q.Get("actorUserId"),
	}
	includeDetails := q.Get("includeDetails") == "true"

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		h.Logger.Warn("audit count failed", zap.Error(err), zap.String("requestId", reqID))
	}

	events, err := h.Service.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		h.Logger.Error("audit list failed", zap.Error(err), zap.String("requestId", reqID))
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", reqID)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, events, reqID)
}
