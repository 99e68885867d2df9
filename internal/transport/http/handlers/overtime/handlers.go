package overtimehandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"calcfolha/internal/domain/overtime"
	"calcfolha/internal/domain/reports"
	"calcfolha/internal/domain/salary"
	"calcfolha/internal/transport/http/api"
	"calcfolha/internal/transport/http/middleware"
	"calcfolha/internal/transport/http/shared"
)

type Handler struct {
	Service     *overtime.Service
	Idempotency middleware.IdempotencyBackend
	Logger      *zap.Logger
}

func NewHandler(service *overtime.Service, idem middleware.IdempotencyBackend, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: service, Idempotency: idem, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calculations", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.With(middleware.Idempotency(h.Idempotency, h.Logger)).Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/summary", h.handleSummary)
		r.Get("/{id}/report.pdf", h.handleReportPDF)
		r.Get("/{id}/report.csv", h.handleReportCSV)
	})
	r.With(middleware.RequireAuth).Post("/overtime/preview", h.handlePreview)
}

// scope resolves the acting user and the owner whose data is addressed. Admins may pick
// another owner with ?owner=; everyone else only reaches their own calculations.
func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (actorID, ownerID string, ok bool) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return "", "", false
	}
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	if owner == "" || owner == user.UserID {
		return user.UserID, user.UserID, true
	}
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot access another owner's calculations", reqID)
		return "", "", false
	}
	if _, err := uuid.Parse(owner); err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "owner", Reason: "must be a valid id"}})
		return "", "", false
	}
	return user.UserID, owner, true
}

// calculationID rejects ids the store could never hold.
func calculationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "calculation not found", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case overtime.IsValidation(err):
		validator := shared.NewValidator()
		validator.Error(err)
		validator.Reject(w, reqID)
	case errors.Is(err, overtime.ErrCalculationNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "calculation not found", reqID)
	default:
		h.Logger.Error(message, zap.Error(err), zap.String("requestId", reqID))
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}

// decode reads a JSON body. Domain parse errors (bad clock, unknown day type) become
// field-level validation errors; anything else is an invalid payload.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	reqID := middleware.GetRequestID(r.Context())
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if overtime.IsValidation(err) {
			validator := shared.NewValidator()
			validator.Error(err)
			validator.Reject(w, reqID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return false
	}
	return true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	_, ownerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	calcs, err := h.Service.List(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err, "calculation_list_failed", "failed to list calculations")
		return
	}
	api.Success(w, calcs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actorID, ownerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var payload overtime.CreateInput
	if !decode(w, r, &payload) {
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	calc, err := h.Service.Create(r.Context(), actorID, ownerID, payload)
	if err != nil {
		h.fail(w, r, err, "calculation_create_failed", "failed to create calculation")
		return
	}
	api.Created(w, calc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	_, ownerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := calculationID(w, r)
	if !ok {
		return
	}
	calc, err := h.Service.Get(r.Context(), id, ownerID)
	if err != nil {
		h.fail(w, r, err, "calculation_get_failed", "failed to load calculation")
		return
	}
	api.Success(w, calc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, ownerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := calculationID(w, r)
	if !ok {
		return
	}
	var patch overtime.Patch
	if !decode(w, r, &patch) {
		return
	}
	calc, err := h.Service.Update(r.Context(), actorID, id, ownerID, patch)
	if err != nil {
		h.fail(w, r, err, "calculation_update_failed", "failed to update calculation")
		return
	}
	api.Success(w, calc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actorID, ownerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := calculationID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), actorID, id, ownerID); err != nil {
		h.fail(w, r, err, "calculation_delete_failed", "failed to delete calculation")
		return
	}
	api.NoContent(w)
}

type summaryResponse struct {
	Summary overtime.Summary       `json:"summary"`
	Pay     *overtime.PayBreakdown `json:"pay,omitempty"`
}

// payFor values the summary when the query names an hourly rate, or a monthly salary with
// optional monthly hours.
func payFor(r *http.Request, summary overtime.Summary) *overtime.PayBreakdown {
	q := r.URL.Query()
	rate := salary.ParseAmount(q.Get("hourlyRate"))
	if rate <= 0 {
		rate = overtime.HourlyRate(salary.ParseAmount(q.Get("monthlySalary")), salary.ParseAmount(q.Get("monthlyHours")))
	}
	if rate <= 0 {
		return nil
	}
	pay := overtime.OvertimePay(summary, rate)
	return &pay
}

func (h *Handler) loadSummary(w http.ResponseWriter, r *http.Request) (overtime.Calculation, overtime.Summary, bool) {
	_, ownerID, ok := h.scope(w, r)
	if !ok {
		return overtime.Calculation{}, overtime.Summary{}, false
	}
	id, ok := calculationID(w, r)
	if !ok {
		return overtime.Calculation{}, overtime.Summary{}, false
	}
	calc, summary, err := h.Service.Summary(r.Context(), id, ownerID)
	if err != nil {
		h.fail(w, r, err, "summary_failed", "failed to compute summary")
		return overtime.Calculation{}, overtime.Summary{}, false
	}
	return calc, summary, true
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, summary, ok := h.loadSummary(w, r)
	if !ok {
		return
	}
	api.Success(w, summaryResponse{Summary: summary, Pay: payFor(r, summary)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	calc, summary, ok := h.loadSummary(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.RenderPDF(&buf, calc, summary, payFor(r, summary)); err != nil {
		h.fail(w, r, err, "report_failed", "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=horas-extras-"+calc.ID+".pdf")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	calc, summary, ok := h.loadSummary(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.RenderCSV(&buf, calc, summary); err != nil {
		h.fail(w, r, err, "report_failed", "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=horas-extras-"+calc.ID+".csv")
	_, _ = w.Write(buf.Bytes())
}

// handlePreview summarizes an unsaved calculation body.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var payload overtime.CreateInput
	if !decode(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Description) == "" {
		payload.Description = "preview"
	}
	calc, err := payload.Build()
	if err != nil {
		h.fail(w, r, err, "preview_failed", "failed to build preview")
		return
	}
	summary, err := h.Service.Summarize(r.Context(), calc)
	if err != nil {
		h.fail(w, r, err, "preview_failed", "failed to compute preview")
		return
	}
	api.Success(w, summaryResponse{Summary: summary, Pay: payFor(r, summary)}, middleware.GetRequestID(r.Context()))
}
