package overtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu    sync.Mutex
	next  int
	calcs map[string]Calculation
}

func newMemoryStore() *memoryStore {
	return &memoryStore{calcs: map[string]Calculation{}}
}

func (m *memoryStore) List(_ context.Context, ownerID string) ([]Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Calculation{}
	for _, c := range m.calcs {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) Get(_ context.Context, id, ownerID string) (Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calcs[id]
	if !ok || c.OwnerID != ownerID {
		return Calculation{}, ErrCalculationNotFound
	}
	return c, nil
}

func (m *memoryStore) Create(_ context.Context, ownerID string, calc Calculation) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	calc.ID = fmt.Sprintf("calc-%d", m.next)
	calc.OwnerID = ownerID
	calc.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	calc.UpdatedAt = calc.CreatedAt
	m.calcs[calc.ID] = calc
	return calc.ID, nil
}

func (m *memoryStore) Update(_ context.Context, id, ownerID string, calc Calculation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.calcs[id]
	if !ok || current.OwnerID != ownerID {
		return false, nil
	}
	calc.ID = id
	calc.OwnerID = ownerID
	calc.CreatedAt = current.CreatedAt
	m.calcs[id] = calc
	return true, nil
}

func (m *memoryStore) Delete(_ context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.calcs[id]
	if !ok || current.OwnerID != ownerID {
		return false, nil
	}
	delete(m.calcs, id)
	return true, nil
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	failed bool
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed {
		return false, errors.New("cache down")
	}
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed {
		return errors.New("cache down")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

type countingCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingCounter) Inc(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name]++
}

func (c *countingCounter) get(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

type auditEvent struct {
	actor, owner, action, id string
	before, after            any
}

type recordingAudit struct {
	events []auditEvent
}

func (r *recordingAudit) Record(_ context.Context, actorID, ownerID, action, entityID string, before, after any) error {
	r.events = append(r.events, auditEvent{actorID, ownerID, action, entityID, before, after})
	return nil
}

func TestServiceCreateMaterializesPeriod(t *testing.T) {
	audit := &recordingAudit{}
	svc := NewService(newMemoryStore(), WithAudit(audit))

	calc, err := svc.Create(context.Background(), "user-1", "user-1", CreateInput{
		Description: "january",
		StartDate:   NewDate(2025, time.January, 1),
		EndDate:     NewDate(2025, time.January, 31),
		Template: WeeklyTemplate{
			"monday": {Entry: Clock(8, 0), Exit: Clock(18, 0)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "calc-1", calc.ID)
	assert.Len(t, calc.DayEntries, 31)
	assert.Equal(t, DefaultWeeklySchedule(), calc.WorkingHours)
	assert.Equal(t, DefaultPercentageSchedule(), calc.OvertimePercentages)

	// 2025-01-06 is the first Monday
	assert.Equal(t, Clock(8, 0), calc.DayEntries[5].Entry)
	assert.False(t, calc.DayEntries[6].Entry.Valid)

	require.Len(t, audit.events, 1)
	assert.Equal(t, ActionCreate, audit.events[0].action)
	assert.Equal(t, "calc-1", audit.events[0].id)
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, err := svc.Create(context.Background(), "u", "u", CreateInput{
		Description: "broken",
		StartDate:   NewDate(2025, time.February, 1),
	})
	assert.True(t, IsValidation(err))

	_, err = svc.Create(context.Background(), "u", "u", CreateInput{
		Description: "inverted",
		StartDate:   NewDate(2025, time.February, 2),
		EndDate:     NewDate(2025, time.February, 1),
	})
	assert.True(t, IsValidation(err))
}

func TestServiceScopesByOwner(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	calc, err := svc.Create(ctx, "alice", "alice", CreateInput{
		Description: "week",
		StartDate:   NewDate(2025, time.January, 6),
		EndDate:     NewDate(2025, time.January, 12),
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, calc.ID, "bob")
	assert.ErrorIs(t, err, ErrCalculationNotFound)

	desc := "stolen"
	_, err = svc.Update(ctx, "bob", calc.ID, "bob", Patch{Description: &desc})
	assert.ErrorIs(t, err, ErrCalculationNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "bob", calc.ID, "bob"), ErrCalculationNotFound)

	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.Delete(ctx, "alice", calc.ID, "alice"))
	_, err = svc.Get(ctx, calc.ID, "alice")
	assert.ErrorIs(t, err, ErrCalculationNotFound)
}

func TestServiceUpdateAudits(t *testing.T) {
	audit := &recordingAudit{}
	svc := NewService(newMemoryStore(), WithAudit(audit))
	ctx := context.Background()

	calc, err := svc.Create(ctx, "admin", "alice", CreateInput{
		Description: "week",
		StartDate:   NewDate(2025, time.January, 6),
		EndDate:     NewDate(2025, time.January, 12),
	})
	require.NoError(t, err)

	end := NewDate(2025, time.January, 14)
	updated, err := svc.Update(ctx, "admin", calc.ID, "alice", Patch{EndDate: &end})
	require.NoError(t, err)
	assert.Len(t, updated.DayEntries, 9)

	require.Len(t, audit.events, 2)
	ev := audit.events[1]
	assert.Equal(t, ActionUpdate, ev.action)
	assert.Equal(t, "admin", ev.actor)
	assert.Equal(t, "alice", ev.owner)
	assert.Len(t, ev.before.(Calculation).DayEntries, 7)
}

func TestServiceSummarizeUsesCache(t *testing.T) {
	cache := &memoryCache{values: map[string][]byte{}}
	counter := &countingCounter{counts: map[string]int{}}
	svc := NewService(newMemoryStore(), WithCache(cache), WithCounter(counter))
	ctx := context.Background()

	first, err := svc.Summarize(ctx, weekCalculation())
	require.NoError(t, err)
	second, err := svc.Summarize(ctx, weekCalculation())
	require.NoError(t, err)

	assert.Equal(t, 1, counter.get("summary.computed"))
	assert.Equal(t, 1, counter.get("summary.cache_hit"))
	assert.Equal(t, first.Buckets, second.Buckets)
	assert.Equal(t, first.OvertimeHours, second.OvertimeHours)

	changed := weekCalculation()
	changed.DayEntries[1].Exit = Clock(21, 0)
	third, err := svc.Summarize(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, 2, counter.get("summary.computed"))
	assert.InDelta(t, first.OvertimeHours+2, third.OvertimeHours, 1e-9)
}

func TestServiceSummarizeSurvivesCacheFailure(t *testing.T) {
	cache := &memoryCache{values: map[string][]byte{}, failed: true}
	svc := NewService(newMemoryStore(), WithCache(cache))

	summary, err := svc.Summarize(context.Background(), weekCalculation())
	require.NoError(t, err)
	assert.InDelta(t, 13, summary.OvertimeHours, 1e-9)
}

func TestServiceSummarizeConcurrent(t *testing.T) {
	counter := &countingCounter{counts: map[string]int{}}
	svc := NewService(newMemoryStore(), WithCounter(counter))

	var wg sync.WaitGroup
	results := make([]Summary, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := svc.Summarize(context.Background(), weekCalculation())
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Equal(t, results[0].Buckets, s.Buckets)
	}
	assert.GreaterOrEqual(t, counter.get("summary.computed"), 1)
}

func TestServiceSummaryLoadsStored(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	id, err := store.Create(ctx, "alice", weekCalculation())
	require.NoError(t, err)

	calc, summary, err := svc.Summary(ctx, id, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, calc.ID)
	assert.InDelta(t, 41, summary.WorkedHours, 1e-9)

	_, _, err = svc.Summary(ctx, id, "bob")
	assert.ErrorIs(t, err, ErrCalculationNotFound)
}
