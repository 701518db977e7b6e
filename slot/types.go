package slot

import (
	"encoding/json"
	"time"

	"mentorship/validation"

	"github.com/google/uuid"
)

const (
	// Duration is the fixed length of every slot.
	Duration = 50 * time.Minute

	// MinGap is the minimum distance between the starts of two slots of the same mentor:
	// a slot plus a free slot-sized break.
	MinGap = 2 * Duration
)

type Slot struct {
	ID       uuid.UUID `json:"id"`
	MentorID uuid.UUID `json:"mentor_id" validate:"required"`
	StartsAt time.Time `json:"data_inicial" validate:"required"`
	Booked   bool      `json:"agendado"`
}

func (s *Slot) Validate() error {
	return validation.Struct(s)
}

func (s Slot) EndsAt() time.Time {
	return s.StartsAt.Add(Duration)
}

func (s Slot) MarshalJSON() ([]byte, error) {
	type alias Slot
	return json.Marshal(struct {
		alias
		EndsAt time.Time `json:"data_final"`
	}{alias(s), s.EndsAt()})
}

// Overlaps reports whether slots starting at a and b are closer than MinGap.
func Overlaps(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < MinGap
}

// neighbourhood returns the closed interval of start times worth comparing
// with a slot starting at t. Overlaps decides which of them conflict.
func neighbourhood(t time.Time) (from, to time.Time) {
	return t.Add(-MinGap), t.Add(MinGap)
}

// Day truncates t to midnight, keeping its location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
