package meeting

import (
	"time"

	"mentorship/slot"
	"mentorship/validation"

	"github.com/google/uuid"
)

// Tag is the subject category of a meeting.
type Tag string

const (
	TagManagement       Tag = "G"
	TagMarketing        Tag = "M"
	TagPeopleManagement Tag = "RH"
	TagTaxes            Tag = "I"
)

var Tags = []Tag{TagManagement, TagMarketing, TagPeopleManagement, TagTaxes}

func (t Tag) Label() string {
	switch t {
	case TagManagement:
		return "Management"
	case TagMarketing:
		return "Marketing"
	case TagPeopleManagement:
		return "People management"
	case TagTaxes:
		return "Taxes"
	default:
		return string(t)
	}
}

// Booking is a mentee's request to turn a free slot into a meeting.
type Booking struct {
	SlotID      uuid.UUID `json:"slot_id" validate:"required"`
	Tag         Tag       `json:"tag" validate:"required,oneof=G M RH I"`
	Description string    `json:"descricao" validate:"required"`
}

func (b *Booking) Validate() error {
	return validation.Struct(b)
}

type Meeting struct {
	ID          uuid.UUID `json:"id"`
	SlotID      uuid.UUID `json:"slot_id"`
	MenteeID    uuid.UUID `json:"mentorado_id"`
	MenteeName  string    `json:"mentorado,omitempty"`
	Tag         Tag       `json:"tag"`
	Description string    `json:"descricao"`
	StartsAt    time.Time `json:"data_inicial"`
}

func (m Meeting) EndsAt() time.Time {
	return m.StartsAt.Add(slot.Duration)
}
