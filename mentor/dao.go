package mentor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mentorship/apperr"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

func (a *Accessor) Register(ctx context.Context, reg Registration, now time.Time) (Mentor, error) {
	if err := reg.Validate(); err != nil {
		return Mentor{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), a.cost)
	if err != nil {
		return Mentor{}, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.New()

	query := `INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := a.db.ExecContext(ctx, query, id, reg.Username, string(hash), now); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return Mentor{}, apperr.Invalid("username", "provide a valid value for the field username")
		}
		return Mentor{}, fmt.Errorf("exec context: %w", err)
	}

	return Mentor{
		ID:           id,
		Username:     reg.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}, nil
}

// Authenticate returns the mentor matching the credentials or apperr.ErrUnauthorized.
func (a *Accessor) Authenticate(ctx context.Context, username, password string) (Mentor, error) {
	var m Mentor

	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	row := a.db.QueryRowContext(ctx, query, username)
	if err := row.Scan(&m.ID, &m.Username, &m.PasswordHash, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mentor{}, apperr.ErrUnauthorized
		}
		return Mentor{}, fmt.Errorf("scan: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return Mentor{}, apperr.ErrUnauthorized
	}

	return m, nil
}

func (a *Accessor) GetMentor(ctx context.Context, id uuid.UUID) (Mentor, error) {
	var m Mentor

	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
	row := a.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&m.ID, &m.Username, &m.PasswordHash, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mentor{}, apperr.ErrNotFound
		}
		return Mentor{}, fmt.Errorf("scan: %w", err)
	}

	return m, nil
}

func (a *Accessor) CreateNavigator(ctx context.Context, nav Navigator) (Navigator, error) {
	if err := nav.Validate(); err != nil {
		return Navigator{}, err
	}

	nav.ID = uuid.New()

	query := `INSERT INTO navigators (id, nome, user_id) VALUES ($1, $2, $3)`
	if _, err := a.db.ExecContext(ctx, query, nav.ID, nav.Name, nav.MentorID); err != nil {
		return Navigator{}, fmt.Errorf("exec context: %w", err)
	}

	return nav, nil
}

func (a *Accessor) ListNavigators(ctx context.Context, mentorID uuid.UUID) ([]Navigator, error) {
	navigators := []Navigator{}

	query := `SELECT id, nome, user_id FROM navigators WHERE user_id = $1 ORDER BY nome`
	rows, err := a.db.QueryContext(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nav Navigator
		if err := rows.Scan(&nav.ID, &nav.Name, &nav.MentorID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		navigators = append(navigators, nav)
	}

	return navigators, rows.Err()
}
