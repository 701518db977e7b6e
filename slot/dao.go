package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mentorship/apperr"
	"mentorship/database"

	"github.com/google/uuid"
)

const slotColumns = `id, data_inicial, mentor_id, agendado`

// CreateSlot persists a new free slot, failing with apperr.ErrOverlap when the
// mentor already has a slot starting less than MinGap away.
func (a *Accessor) CreateSlot(ctx context.Context, mentorID uuid.UUID, startsAt time.Time) (Slot, error) {
	s := Slot{ID: uuid.New(), MentorID: mentorID, StartsAt: startsAt}
	if err := s.Validate(); err != nil {
		return Slot{}, err
	}

	from, to := neighbourhood(startsAt)

	err := database.WithTx(ctx, a.db, func(tx *sql.Tx) error {
		// serialize slot creation per mentor so two requests cannot both pass the overlap check
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, mentorID); err != nil {
			return fmt.Errorf("lock mentor: %w", err)
		}

		query := `SELECT data_inicial FROM horarios WHERE mentor_id = $1 AND data_inicial >= $2 AND data_inicial <= $3`
		rows, err := tx.QueryContext(ctx, query, mentorID, from, to)
		if err != nil {
			return fmt.Errorf("query neighbours: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var other time.Time
			if err := rows.Scan(&other); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			if Overlaps(startsAt, other) {
				return apperr.ErrOverlap
			}
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows: %w", err)
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("close rows: %w", err)
		}

		query = `INSERT INTO horarios (id, data_inicial, mentor_id, agendado) VALUES ($1, $2, $3, FALSE)`
		if _, err := tx.ExecContext(ctx, query, s.ID, s.StartsAt, s.MentorID); err != nil {
			return fmt.Errorf("exec context: %w", err)
		}
		return nil
	})
	if err != nil {
		return Slot{}, err
	}

	return s, nil
}

func (a *Accessor) GetSlot(ctx context.Context, id uuid.UUID) (Slot, error) {
	var s Slot

	query := `SELECT ` + slotColumns + ` FROM horarios WHERE id = $1`
	if err := a.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.StartsAt, &s.MentorID, &s.Booked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Slot{}, apperr.ErrNotFound
		}
		return Slot{}, fmt.Errorf("scan: %w", err)
	}

	return s, nil
}

// ListOpenSlotsForDay returns the mentor's free slots starting on day, earliest first.
func (a *Accessor) ListOpenSlotsForDay(ctx context.Context, mentorID uuid.UUID, day time.Time) ([]Slot, error) {
	start := Day(day)
	end := start.AddDate(0, 0, 1)

	query := `SELECT ` + slotColumns + ` FROM horarios WHERE mentor_id = $1 AND agendado = FALSE AND data_inicial >= $2 AND data_inicial < $3 ORDER BY data_inicial`
	rows, err := a.db.QueryContext(ctx, query, mentorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.StartsAt, &s.MentorID, &s.Booked); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		slots = append(slots, s)
	}

	return slots, rows.Err()
}

// ListOpenDays returns the distinct days, ascending, on which the mentor still
// has a free slot starting at or after now.
func (a *Accessor) ListOpenDays(ctx context.Context, mentorID uuid.UUID, now time.Time) ([]time.Time, error) {
	query := `SELECT data_inicial FROM horarios WHERE mentor_id = $1 AND agendado = FALSE AND data_inicial >= $2 ORDER BY data_inicial`
	rows, err := a.db.QueryContext(ctx, query, mentorID, now)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	days := []time.Time{}
	for rows.Next() {
		var startsAt time.Time
		if err := rows.Scan(&startsAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		day := Day(startsAt)
		if n := len(days); n == 0 || !days[n-1].Equal(day) {
			days = append(days, day)
		}
	}

	return days, rows.Err()
}
