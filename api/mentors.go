package api

import (
	"net/http"

	"mentorship/mentor"
	"mentorship/session"

	"go.uber.org/zap"
)

func (a *API) registerMentor(w http.ResponseWriter, r *http.Request) {
	var payload mentor.Registration
	if !a.decode(w, r, &payload) {
		return
	}

	m, err := a.mentors.Register(r.Context(), payload, a.now().UTC())
	if err != nil {
		a.Error(w, r, err)
		return
	}

	a.log.Info("mentor registered", zap.String("mentor_id", m.ID.String()))
	a.Response(w, http.StatusCreated, m)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !a.decode(w, r, &payload) {
		return
	}

	m, err := a.mentors.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	token, err := a.signer.Issue(m.ID, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.signer.SetCookie(w, token, a.secure)

	a.Response(w, http.StatusOK, m)
}

func (a *API) logout(w http.ResponseWriter, _ *http.Request) {
	session.ClearMentorCookie(w)
	a.Response(w, http.StatusOK, "logged out")
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	m, err := a.mentors.GetMentor(r.Context(), mentorFrom(r.Context()))
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, m)
}

type getNavigatorsResponse struct {
	Navigators []mentor.Navigator `json:"navigators"`
}

func (a *API) getNavigators(w http.ResponseWriter, r *http.Request) {
	navigators, err := a.mentors.ListNavigators(r.Context(), mentorFrom(r.Context()))
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getNavigatorsResponse{Navigators: navigators})
}

func (a *API) createNavigator(w http.ResponseWriter, r *http.Request) {
	var payload mentor.Navigator
	if !a.decode(w, r, &payload) {
		return
	}
	payload.MentorID = mentorFrom(r.Context())

	nav, err := a.mentors.CreateNavigator(r.Context(), payload)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, nav)
}
