package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"mentorship/meeting"
	"mentorship/notify"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingBookedPayload(t *testing.T) {
	m := meeting.Meeting{
		ID:       uuid.MustParse("7d1f3e2a-4b5c-4d6e-8f90-a1b2c3d4e5f6"),
		SlotID:   uuid.MustParse("11111111-2222-4333-8444-555555555555"),
		MenteeID: uuid.MustParse("66666666-7777-4888-9999-000000000000"),
		Tag:      meeting.TagTaxes,
		StartsAt: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
	}
	mentorID := uuid.MustParse("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee")

	data, err := json.Marshal(notify.NewMeetingBooked(m, mentorID))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"meeting_id": "7d1f3e2a-4b5c-4d6e-8f90-a1b2c3d4e5f6",
		"slot_id": "11111111-2222-4333-8444-555555555555",
		"mentee_id": "66666666-7777-4888-9999-000000000000",
		"mentor_id": "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee",
		"tag": "I",
		"starts_at": "2024-06-03T10:00:00Z"
	}`, string(data))
}

func TestNop(t *testing.T) {
	var p notify.Publisher = notify.Nop{}
	assert.NoError(t, p.Publish(context.Background(), notify.SubjectMeetingBooked, struct{}{}))
}

func TestNewUnreachable(t *testing.T) {
	_, err := notify.New("nats://127.0.0.1:1", nats.Timeout(200*time.Millisecond))
	require.Error(t, err)
}

func TestNilBus(t *testing.T) {
	var b *notify.Bus
	require.Error(t, b.Publish(context.Background(), notify.SubjectMeetingBooked, struct{}{}))
	b.Close()
}
