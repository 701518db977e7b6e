package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mentorship/apperr"

	"github.com/google/uuid"
)

func (a *Accessor) CreateTask(ctx context.Context, t Task) (Task, error) {
	t.ID = uuid.New()
	t.Done = false
	if err := t.Validate(); err != nil {
		return Task{}, err
	}

	query := `INSERT INTO tarefas (id, mentorado_id, tarefa, realizada) VALUES ($1, $2, $3, $4)`
	if _, err := a.db.ExecContext(ctx, query, t.ID, t.MenteeID, t.Title, t.Done); err != nil {
		return Task{}, fmt.Errorf("exec context: %w", err)
	}

	return t, nil
}

func (a *Accessor) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	var t Task

	query := `SELECT id, mentorado_id, tarefa, realizada FROM tarefas WHERE id = $1`
	err := a.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.MenteeID, &t.Title, &t.Done)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, apperr.ErrNotFound
		}
		return Task{}, fmt.Errorf("query row: %w", err)
	}

	return t, nil
}

func (a *Accessor) ListTasks(ctx context.Context, menteeID uuid.UUID) ([]Task, error) {
	tasks := []Task{}

	query := `SELECT id, mentorado_id, tarefa, realizada FROM tarefas WHERE mentorado_id = $1 ORDER BY tarefa`
	rows, err := a.db.QueryContext(ctx, query, menteeID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.MenteeID, &t.Title, &t.Done); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// ToggleTask flips the done flag of a task whose mentee belongs to mentorID.
// Tasks of other mentors are reported as apperr.ErrNotFound.
func (a *Accessor) ToggleTask(ctx context.Context, id, mentorID uuid.UUID) (Task, error) {
	var t Task

	query := `UPDATE tarefas t SET realizada = NOT t.realizada
		FROM mentorados m
		WHERE t.id = $1 AND m.id = t.mentorado_id AND m.user_id = $2
		RETURNING t.id, t.mentorado_id, t.tarefa, t.realizada`
	err := a.db.QueryRowContext(ctx, query, id, mentorID).Scan(&t.ID, &t.MenteeID, &t.Title, &t.Done)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, apperr.ErrNotFound
		}
		return Task{}, fmt.Errorf("toggle task: %w", err)
	}

	return t, nil
}

func (a *Accessor) CreateUpload(ctx context.Context, u Upload) (Upload, error) {
	u.ID = uuid.New()
	if err := u.Validate(); err != nil {
		return Upload{}, err
	}

	query := `INSERT INTO upload (id, mentorado_id, video) VALUES ($1, $2, $3)`
	if _, err := a.db.ExecContext(ctx, query, u.ID, u.MenteeID, u.Video); err != nil {
		return Upload{}, fmt.Errorf("exec context: %w", err)
	}

	return u, nil
}

func (a *Accessor) ListUploads(ctx context.Context, menteeID uuid.UUID) ([]Upload, error) {
	uploads := []Upload{}

	query := `SELECT id, mentorado_id, video FROM upload WHERE mentorado_id = $1`
	rows, err := a.db.QueryContext(ctx, query, menteeID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.MenteeID, &u.Video); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}
