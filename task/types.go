package task

import (
	"mentorship/validation"

	"github.com/google/uuid"
)

// Task is one checklist item a mentor assigns to a mentee.
type Task struct {
	ID       uuid.UUID `json:"id"`
	MenteeID uuid.UUID `json:"mentorado_id" validate:"required"`
	Title    string    `json:"tarefa" validate:"required,max=255"`
	Done     bool      `json:"realizada"`
}

func (t *Task) Validate() error {
	return validation.Struct(t)
}

// Upload references a video stored in the object store.
type Upload struct {
	ID       uuid.UUID `json:"id"`
	MenteeID uuid.UUID `json:"mentorado_id" validate:"required"`
	Video    string    `json:"video" validate:"required,max=255"`
	URL      string    `json:"url,omitempty"`
}

func (u *Upload) Validate() error {
	return validation.Struct(u)
}
