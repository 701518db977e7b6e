package api

import (
	"net/http"
	"time"

	"mentorship/apperr"
	"mentorship/meeting"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// slotInputLayout is the format of slot start times sent by mentors.
const slotInputLayout = "2006-01-02T15:04"

type createSlotRequest struct {
	StartsAt string `json:"data_inicial"`
}

func (a *API) createSlot(w http.ResponseWriter, r *http.Request) {
	var payload createSlotRequest
	if !a.decode(w, r, &payload) {
		return
	}

	startsAt, err := time.Parse(slotInputLayout, payload.StartsAt)
	if err != nil {
		a.Error(w, r, apperr.Invalid("data_inicial", "data_inicial must look like 2024-06-01T10:00"))
		return
	}

	mentorID := mentorFrom(r.Context())
	s, err := a.slots.CreateSlot(r.Context(), mentorID, startsAt)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	a.metrics.SlotsCreated.Inc()
	a.log.Info("slot created",
		zap.String("mentor_id", mentorID.String()),
		zap.Time("starts_at", s.StartsAt),
	)
	a.Response(w, http.StatusCreated, s)
}

func (a *API) getSlot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid slot ID")
		return
	}

	s, err := a.slots.GetSlot(r.Context(), id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if s.MentorID != mentorFrom(r.Context()) {
		a.Error(w, r, apperr.ErrNotFound)
		return
	}
	a.Response(w, http.StatusOK, s)
}

type getMeetingsResponse struct {
	Meetings []meetingView `json:"reunioes"`
}

func (a *API) getMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := a.meetings.ListMeetingsForMentor(r.Context(), mentorFrom(r.Context()))
	if err != nil {
		a.Error(w, r, err)
		return
	}

	views := make([]meetingView, 0, len(meetings))
	for _, m := range meetings {
		views = append(views, newMeetingView(m))
	}
	a.Response(w, http.StatusOK, getMeetingsResponse{Meetings: views})
}

// meetingView adds the derived end time and the tag label to a meeting.
type meetingView struct {
	meeting.Meeting
	TagLabel string    `json:"tag_label"`
	EndsAt   time.Time `json:"data_final"`
}

func newMeetingView(m meeting.Meeting) meetingView {
	return meetingView{Meeting: m, TagLabel: m.Tag.Label(), EndsAt: m.EndsAt()}
}
