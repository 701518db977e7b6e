package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mentorship/meeting"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectMeetingBooked carries one MeetingBooked per committed booking.
const SubjectMeetingBooked = "meeting.booked"

type MeetingBooked struct {
	MeetingID uuid.UUID   `json:"meeting_id"`
	SlotID    uuid.UUID   `json:"slot_id"`
	MenteeID  uuid.UUID   `json:"mentee_id"`
	MentorID  uuid.UUID   `json:"mentor_id"`
	Tag       meeting.Tag `json:"tag"`
	StartsAt  time.Time   `json:"starts_at"`
}

func NewMeetingBooked(m meeting.Meeting, mentorID uuid.UUID) MeetingBooked {
	return MeetingBooked{
		MeetingID: m.ID,
		SlotID:    m.SlotID,
		MenteeID:  m.MenteeID,
		MentorID:  mentorID,
		Tag:       m.Tag,
		StartsAt:  m.StartsAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Bus publishes JSON events on a NATS connection.
type Bus struct {
	conn *nats.Conn
}

func New(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Bus{conn: nc}, nil
}

func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

func (b *Bus) Publish(ctx context.Context, subject string, v any) error {
	if b == nil {
		return errors.New("nil bus")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}

	return b.conn.Publish(subject, data)
}

// Nop discards every event. Used when NATS_URL is empty.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
