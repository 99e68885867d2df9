package overtime

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SummaryCache stores summaries by snapshot key. Implementations must be safe for
// concurrent use; a miss is (false, nil).
type SummaryCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, ownerID, action, entityID string, before, after any) error
}

// Counter receives engine events ("summary.computed", "summary.cache_hit", ...).
type Counter interface {
	Inc(name string)
}

const (
	ActionCreate = "calculation.create"
	ActionUpdate = "calculation.update"
	ActionDelete = "calculation.delete"
)

type Service struct {
	store   StoreAPI
	cache   SummaryCache
	audit   AuditRecorder
	counter Counter
	logger  *zap.Logger
	group   singleflight.Group
}

type Option func(*Service)

func WithCache(cache SummaryCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithAudit(audit AuditRecorder) Option {
	return func(s *Service) { s.audit = audit }
}

func WithCounter(counter Counter) Option {
	return func(s *Service) { s.counter = counter }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(store StoreAPI, opts ...Option) *Service {
	s := &Service{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput describes a new calculation. Missing schedules fall back to the defaults and
// missing entries are generated for the whole period, optionally auto-filled by Template.
type CreateInput struct {
	Description         string              `json:"description" validate:"required,max=200"`
	StartDate           Date                `json:"startDate"`
	EndDate             Date                `json:"endDate"`
	WorkingHours        *WeeklySchedule     `json:"workingHours,omitempty"`
	OvertimePercentages *PercentageSchedule `json:"overtimePercentages,omitempty"`
	DayEntries          []DayEntry          `json:"dayEntries,omitempty"`
	Template            WeeklyTemplate      `json:"template,omitempty"`
}

// Build turns the input into a validated, unsaved calculation.
func (in CreateInput) Build() (Calculation, error) {
	calc := Calculation{
		Description:         in.Description,
		StartDate:           in.StartDate,
		EndDate:             in.EndDate,
		WorkingHours:        DefaultWeeklySchedule(),
		OvertimePercentages: DefaultPercentageSchedule(),
	}
	if in.WorkingHours != nil {
		calc.WorkingHours = *in.WorkingHours
	}
	if in.OvertimePercentages != nil {
		calc.OvertimePercentages = *in.OvertimePercentages
	}
	if calc.StartDate.IsZero() || calc.EndDate.IsZero() {
		return Calculation{}, calc.Validate()
	}

	if in.DayEntries != nil {
		calc.DayEntries = append([]DayEntry(nil), in.DayEntries...)
		SortEntries(calc.DayEntries)
	} else {
		entries, err := MaterializePeriod(calc.StartDate, calc.EndDate)
		if err != nil {
			return Calculation{}, err
		}
		calc.DayEntries = entries
	}
	calc.DayEntries = ApplyTemplate(calc.DayEntries, in.Template)

	if err := calc.Validate(); err != nil {
		return Calculation{}, err
	}
	return calc, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Calculation, error) {
	return s.store.List(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (Calculation, error) {
	return s.store.Get(ctx, id, ownerID)
}

func (s *Service) Create(ctx context.Context, actorID, ownerID string, in CreateInput) (Calculation, error) {
	calc, err := in.Build()
	if err != nil {
		return Calculation{}, err
	}
	id, err := s.store.Create(ctx, ownerID, calc)
	if err != nil {
		return Calculation{}, err
	}
	created, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return Calculation{}, err
	}
	s.record(ctx, actorID, ownerID, ActionCreate, id, nil, created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id, ownerID string, patch Patch) (Calculation, error) {
	current, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return Calculation{}, err
	}
	next, err := current.Apply(patch)
	if err != nil {
		return Calculation{}, err
	}
	if err := next.Validate(); err != nil {
		return Calculation{}, err
	}
	ok, err := s.store.Update(ctx, id, ownerID, next)
	if err != nil {
		return Calculation{}, err
	}
	if !ok {
		return Calculation{}, ErrCalculationNotFound
	}
	updated, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return Calculation{}, err
	}
	s.record(ctx, actorID, ownerID, ActionUpdate, id, current, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id, ownerID string) error {
	ok, err := s.store.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCalculationNotFound
	}
	s.record(ctx, actorID, ownerID, ActionDelete, id, nil, nil)
	return nil
}

// Summary loads a stored calculation and derives its result.
func (s *Service) Summary(ctx context.Context, id, ownerID string) (Calculation, Summary, error) {
	calc, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return Calculation{}, Summary{}, err
	}
	summary, err := s.Summarize(ctx, calc)
	if err != nil {
		return Calculation{}, Summary{}, err
	}
	return calc, summary, nil
}

// Summarize validates a snapshot and computes its summary, memoized on the snapshot key.
// Concurrent calls for the same snapshot share one computation.
func (s *Service) Summarize(ctx context.Context, calc Calculation) (Summary, error) {
	if err := calc.Validate(); err != nil {
		return Summary{}, err
	}
	key, err := SnapshotKey(calc)
	if err != nil {
		return Summary{}, err
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		if s.cache != nil {
			var cached Summary
			hit, err := s.cache.Get(ctx, key, &cached)
			if err != nil {
				s.logger.Warn("summary cache read failed", zap.String("key", key), zap.Error(err))
			} else if hit {
				s.inc("summary.cache_hit")
				return cached, nil
			}
		}

		summary := Summarize(calc)
		s.inc("summary.computed")
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, summary); err != nil {
				s.logger.Warn("summary cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return summary, nil
	})
	if err != nil {
		return Summary{}, err
	}
	return value.(Summary), nil
}

func (s *Service) record(ctx context.Context, actorID, ownerID, action, id string, before, after any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actorID, ownerID, action, id, before, after); err != nil {
		s.logger.Warn("audit record failed", zap.String("action", action), zap.String("calculationId", id), zap.Error(err))
	}
}

func (s *Service) inc(name string) {
	if s.counter != nil {
		s.counter.Inc(name)
	}
}

// IsValidation reports whether err came from invalid input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
