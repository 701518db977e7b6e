package mentee

import (
	"time"

	"mentorship/validation"

	"github.com/google/uuid"
)

// Stage is the revenue bracket a mentee's business is in.
type Stage string

const (
	StageE1 Stage = "E1"
	StageE2 Stage = "E2"
	StageE3 Stage = "E3"
)

// Stages lists every stage in display order.
var Stages = []Stage{StageE1, StageE2, StageE3}

func (s Stage) Label() string {
	switch s {
	case StageE1:
		return "10-100K"
	case StageE2:
		return "101-500K"
	case StageE3:
		return "501-1M"
	default:
		return string(s)
	}
}

type Mentee struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"nome" validate:"required,max=255"`
	Photo       string        `json:"foto,omitempty"`
	Stage       Stage         `json:"estagio" validate:"required,oneof=E1 E2 E3"`
	NavigatorID uuid.NullUUID `json:"navigator_id"`
	MentorID    uuid.UUID     `json:"mentor_id" validate:"required"`
	CreatedAt   time.Time     `json:"criado_em"`
	Token       string        `json:"token,omitempty"`
}

func (m *Mentee) Validate() error {
	return validation.Struct(m)
}

type StageCount struct {
	Stage Stage  `json:"estagio"`
	Label string `json:"label"`
	Count int    `json:"count"`
}
