package api

import (
	"errors"
	"net/http"
	"time"

	"mentorship/apperr"
	"mentorship/meeting"
	"mentorship/metrics"
	"mentorship/notify"
	"mentorship/session"
	"mentorship/validation"

	"go.uber.org/zap"
)

// dayLayout is the DD-MM-YYYY format of days exchanged with mentees.
const dayLayout = "02-01-2006"

func (a *API) menteeAuthPrompt(w http.ResponseWriter, _ *http.Request) {
	a.Response(w, http.StatusOK, "post your access token to authenticate")
}

type menteeAuthRequest struct {
	Token string `json:"token" validate:"required"`
}

func (a *API) menteeAuth(w http.ResponseWriter, r *http.Request) {
	var payload menteeAuthRequest
	if !a.decode(w, r, &payload) {
		return
	}
	if err := validation.Struct(&payload); err != nil {
		a.Error(w, r, err)
		return
	}

	m, err := a.mentees.ResolveToken(r.Context(), payload.Token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			a.metrics.TokenAuth.WithLabelValues(metrics.ResultRejected).Inc()
			a.Response(w, http.StatusUnauthorized, "invalid token")
			return
		}
		a.metrics.TokenAuth.WithLabelValues(metrics.ResultError).Inc()
		a.Error(w, r, err)
		return
	}

	a.metrics.TokenAuth.WithLabelValues(metrics.ResultOK).Inc()
	session.IssueCredential(w, m.Token, a.cookieMaxAge, a.secure)
	a.Response(w, http.StatusOK, m)
}

type openDaysResponse struct {
	Days []string `json:"dias"`
}

func (a *API) openDays(w http.ResponseWriter, r *http.Request) {
	m := menteeFrom(r.Context())

	days, err := a.slots.ListOpenDays(r.Context(), m.MentorID, a.wallClock())
	if err != nil {
		a.Error(w, r, err)
		return
	}

	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(dayLayout))
	}
	a.Response(w, http.StatusOK, openDaysResponse{Days: out})
}

func (a *API) openSlots(w http.ResponseWriter, r *http.Request) {
	m := menteeFrom(r.Context())

	day, err := time.Parse(dayLayout, r.URL.Query().Get("data"))
	if err != nil {
		a.Error(w, r, apperr.Invalid("data", "data must look like 01-06-2024"))
		return
	}

	slots, err := a.slots.ListOpenSlotsForDay(r.Context(), m.MentorID, day)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, slots)
}

func (a *API) bookSlot(w http.ResponseWriter, r *http.Request) {
	m := menteeFrom(r.Context())

	var payload meeting.Booking
	if !a.decode(w, r, &payload) {
		return
	}

	booked, err := a.meetings.BookSlot(r.Context(), m, payload)
	if err != nil {
		if _, ok := apperr.AsValidation(err); ok ||
			errors.Is(err, apperr.ErrSlotUnavailable) ||
			errors.Is(err, apperr.ErrInvalidSlot) {
			a.metrics.Bookings.WithLabelValues(metrics.ResultRejected).Inc()
		} else {
			a.metrics.Bookings.WithLabelValues(metrics.ResultError).Inc()
		}
		a.Error(w, r, err)
		return
	}
	a.metrics.Bookings.WithLabelValues(metrics.ResultOK).Inc()

	event := notify.NewMeetingBooked(booked, m.MentorID)
	if err := a.publisher.Publish(r.Context(), notify.SubjectMeetingBooked, event); err != nil {
		a.log.Warn("publish meeting booked", zap.String("meeting_id", booked.ID.String()), zap.Error(err))
	}

	a.log.Info("meeting booked",
		zap.String("meeting_id", booked.ID.String()),
		zap.String("slot_id", booked.SlotID.String()),
		zap.String("mentee_id", m.ID.String()),
	)
	a.Response(w, http.StatusCreated, newMeetingView(booked))
}

func (a *API) menteeTasks(w http.ResponseWriter, r *http.Request) {
	m := menteeFrom(r.Context())

	res, err := a.tasksOf(r.Context(), m.ID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, res)
}
