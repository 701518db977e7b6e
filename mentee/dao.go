package mentee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mentorship/apperr"

	"github.com/google/uuid"
)

const menteeColumns = `id, nome, foto, estagio, navigator_id, user_id, criado_em, token`

type scanner interface {
	Scan(dest ...any) error
}

func scanMentee(s scanner) (Mentee, error) {
	var (
		m     Mentee
		photo sql.NullString
	)
	if err := s.Scan(&m.ID, &m.Name, &photo, &m.Stage, &m.NavigatorID, &m.MentorID, &m.CreatedAt, &m.Token); err != nil {
		return Mentee{}, err
	}
	m.Photo = photo.String
	return m, nil
}

// CreateMentee assigns a fresh unique token and persists the mentee.
func (a *Accessor) CreateMentee(ctx context.Context, m Mentee, now time.Time) (Mentee, error) {
	if m.Stage == "" {
		m.Stage = StageE1
	}
	if err := m.Validate(); err != nil {
		return Mentee{}, err
	}

	if m.NavigatorID.Valid {
		var owned bool
		query := `SELECT EXISTS(SELECT 1 FROM navigators WHERE id = $1 AND user_id = $2)`
		if err := a.db.QueryRowContext(ctx, query, m.NavigatorID.UUID, m.MentorID).Scan(&owned); err != nil {
			return Mentee{}, fmt.Errorf("check navigator: %w", err)
		}
		if !owned {
			return Mentee{}, apperr.Invalid("navigator_id", "select a valid navigator")
		}
	}

	token, err := a.GenerateUniqueToken(ctx)
	if err != nil {
		return Mentee{}, fmt.Errorf("generate token: %w", err)
	}

	m.ID = uuid.New()
	m.Token = token
	m.CreatedAt = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	query := `INSERT INTO mentorados (` + menteeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	photo := sql.NullString{String: m.Photo, Valid: m.Photo != ""}
	if _, err := a.db.ExecContext(ctx, query, m.ID, m.Name, photo, m.Stage, m.NavigatorID, m.MentorID, m.CreatedAt, m.Token); err != nil {
		return Mentee{}, fmt.Errorf("exec context: %w", err)
	}

	return m, nil
}

// ResolveToken returns the mentee holding token, or apperr.ErrNotFound.
func (a *Accessor) ResolveToken(ctx context.Context, token string) (Mentee, error) {
	if token == "" {
		return Mentee{}, apperr.ErrNotFound
	}

	query := `SELECT ` + menteeColumns + ` FROM mentorados WHERE token = $1`
	m, err := scanMentee(a.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mentee{}, apperr.ErrNotFound
		}
		return Mentee{}, fmt.Errorf("scan: %w", err)
	}

	return m, nil
}

func (a *Accessor) GetMentee(ctx context.Context, id uuid.UUID) (Mentee, error) {
	query := `SELECT ` + menteeColumns + ` FROM mentorados WHERE id = $1`
	m, err := scanMentee(a.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mentee{}, apperr.ErrNotFound
		}
		return Mentee{}, fmt.Errorf("scan: %w", err)
	}

	return m, nil
}

// GetMenteeOfMentor is GetMentee restricted to mentees owned by mentorID.
func (a *Accessor) GetMenteeOfMentor(ctx context.Context, id, mentorID uuid.UUID) (Mentee, error) {
	m, err := a.GetMentee(ctx, id)
	if err != nil {
		return Mentee{}, err
	}
	if m.MentorID != mentorID {
		return Mentee{}, apperr.ErrNotFound
	}
	return m, nil
}

func (a *Accessor) ListMentees(ctx context.Context, mentorID uuid.UUID) ([]Mentee, error) {
	mentees := []Mentee{}

	query := `SELECT ` + menteeColumns + ` FROM mentorados WHERE user_id = $1 ORDER BY nome`
	rows, err := a.db.QueryContext(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMentee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		mentees = append(mentees, m)
	}

	return mentees, rows.Err()
}

// CountByStage returns one entry per stage, zero when the mentor has no mentee in it.
func (a *Accessor) CountByStage(ctx context.Context, mentorID uuid.UUID) ([]StageCount, error) {
	query := `SELECT estagio, COUNT(*) FROM mentorados WHERE user_id = $1 GROUP BY estagio`
	rows, err := a.db.QueryContext(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	counts := map[Stage]int{}
	for rows.Next() {
		var (
			stage Stage
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		counts[stage] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]StageCount, 0, len(Stages))
	for _, s := range Stages {
		out = append(out, StageCount{Stage: s, Label: s.Label(), Count: counts[s]})
	}
	return out, nil
}

// SetPhoto stores the object key of the mentee's photo.
func (a *Accessor) SetPhoto(ctx context.Context, id uuid.UUID, key string) error {
	query := `UPDATE mentorados SET foto = $1 WHERE id = $2`
	res, err := a.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
