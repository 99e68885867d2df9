package overtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const calculationColumns = `id, owner_id, description, start_date, end_date,
           working_hours, overtime_percentages, day_entries, created_at, updated_at`

func (s *Store) List(ctx context.Context, ownerID string) ([]Calculation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+calculationColumns+`
    FROM overtime_calculations
    WHERE owner_id = $1
    ORDER BY start_date DESC, created_at DESC
  `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calcs := []Calculation{}
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}
	return calcs, rows.Err()
}

func (s *Store) Get(ctx context.Context, id, ownerID string) (Calculation, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+calculationColumns+`
    FROM overtime_calculations
    WHERE id = $1 AND owner_id = $2
  `, id, ownerID)
	calc, err := scanCalculation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Calculation{}, ErrCalculationNotFound
	}
	return calc, err
}

func (s *Store) Create(ctx context.Context, ownerID string, calc Calculation) (string, error) {
	hoursJSON, pctJSON, entriesJSON, err := encodeBlobs(calc)
	if err != nil {
		return "", err
	}
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO overtime_calculations (owner_id, description, start_date, end_date, working_hours, overtime_percentages, day_entries)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, ownerID, calc.Description, calc.StartDate.Time, calc.EndDate.Time, hoursJSON, pctJSON, entriesJSON).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, id, ownerID string, calc Calculation) (bool, error) {
	hoursJSON, pctJSON, entriesJSON, err := encodeBlobs(calc)
	if err != nil {
		return false, err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE overtime_calculations
    SET description = $3, start_date = $4, end_date = $5,
        working_hours = $6, overtime_percentages = $7, day_entries = $8,
        updated_at = now()
    WHERE id = $1 AND owner_id = $2
  `, id, ownerID, calc.Description, calc.StartDate.Time, calc.EndDate.Time, hoursJSON, pctJSON, entriesJSON)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM overtime_calculations WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func encodeBlobs(calc Calculation) ([]byte, []byte, []byte, error) {
	hoursJSON, err := json.Marshal(calc.WorkingHours)
	if err != nil {
		return nil, nil, nil, err
	}
	pctJSON, err := json.Marshal(calc.OvertimePercentages)
	if err != nil {
		return nil, nil, nil, err
	}
	entries := calc.DayEntries
	if entries == nil {
		entries = []DayEntry{}
	}
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, nil, nil, err
	}
	return hoursJSON, pctJSON, entriesJSON, nil
}

func scanCalculation(row pgx.Row) (Calculation, error) {
	var calc Calculation
	var start, end time.Time
	var hoursJSON, pctJSON, entriesJSON []byte
	if err := row.Scan(&calc.ID, &calc.OwnerID, &calc.Description, &start, &end,
		&hoursJSON, &pctJSON, &entriesJSON, &calc.CreatedAt, &calc.UpdatedAt); err != nil {
		return Calculation{}, err
	}
	calc.StartDate = DateOf(start)
	calc.EndDate = DateOf(end)
	if err := json.Unmarshal(hoursJSON, &calc.WorkingHours); err != nil {
		return Calculation{}, fmt.Errorf("calculation %s working_hours: %w", calc.ID, err)
	}
	if err := json.Unmarshal(pctJSON, &calc.OvertimePercentages); err != nil {
		return Calculation{}, fmt.Errorf("calculation %s overtime_percentages: %w", calc.ID, err)
	}
	if err := json.Unmarshal(entriesJSON, &calc.DayEntries); err != nil {
		return Calculation{}, fmt.Errorf("calculation %s day_entries: %w", calc.ID, err)
	}
	return calc, nil
}
