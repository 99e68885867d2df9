package salaryhandler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"calcfolha/internal/domain/salary"
	"calcfolha/internal/transport/http/api"
	"calcfolha/internal/transport/http/middleware"
)

// Counter receives the "salary.calculated" event.
type Counter interface {
	Inc(name string)
}

type Handler struct {
	Calculator *salary.Calculator
	Counter    Counter
}

func NewHandler(calc *salary.Calculator, counter Counter) *Handler {
	return &Handler{Calculator: calc, Counter: counter}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/salary/calculate", h.handleCalculate)
}

var errNotAmount = errors.New("must be a number or a currency text")

// amount accepts 1234.56 as well as "R$ 1.234,56". Unreadable text is zero.
type amount float64

func (a *amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = 0
		return nil
	}
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*a = amount(number)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return errNotAmount
	}
	*a = amount(salary.ParseAmount(text))
	return nil
}

// count accepts 2, 2.0 or "2". Unreadable text is zero.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = 0
		return nil
	}
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*c = count(math.Trunc(number))
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return errNotAmount
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		n = 0
	}
	*c = count(n)
	return nil
}

type calculateRequest struct {
	GrossSalary    amount `json:"grossSalary"`
	Dependents     count  `json:"dependents"`
	OtherDiscounts amount `json:"otherDiscounts"`
	Benefits       amount `json:"benefits"`
	Alimony        amount `json:"alimony"`
}

func (req calculateRequest) input() salary.Input {
	return salary.Input{
		GrossSalary:    float64(req.GrossSalary),
		Dependents:     int(req.Dependents),
		OtherDiscounts: float64(req.OtherDiscounts),
		Benefits:       float64(req.Benefits),
		Alimony:        float64(req.Alimony),
	}
}

type calculateResponse struct {
	Input  salary.Input  `json:"input"`
	Result salary.Result `json:"result"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	in := salary.Clamp(payload.input())
	result := h.Calculator.Calculate(in)
	if h.Counter != nil {
		h.Counter.Inc("salary.calculated")
	}
	api.Success(w, calculateResponse{Input: in, Result: result}, reqID)
}
