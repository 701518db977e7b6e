package mentor

import (
	"time"

	"mentorship/validation"

	"github.com/google/uuid"
)

type Mentor struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration is the sign-up form of a mentor account.
type Registration struct {
	Username        string `json:"username" validate:"required,max=150"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *Registration) Validate() error {
	return validation.Struct(r)
}

// Navigator is a helper assigned by a mentor to follow some of their mentees.
type Navigator struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"nome" validate:"required,max=255"`
	MentorID uuid.UUID `json:"mentor_id"`
}

func (n *Navigator) Validate() error {
	return validation.Struct(n)
}
