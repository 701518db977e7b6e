package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"mentorship/apperr"
	"mentorship/mentee"
	"mentorship/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultMaxPhotoBytes = 10 << 20
	defaultMaxVideoBytes = 500 << 20
	multipartInMem       = 32 << 20
)

type getMenteesResponse struct {
	Mentees []mentee.Mentee     `json:"mentees"`
	Stages  []mentee.StageCount `json:"estagios"`
}

func (a *API) getMentees(w http.ResponseWriter, r *http.Request) {
	mentorID := mentorFrom(r.Context())

	mentees, err := a.mentees.ListMentees(r.Context(), mentorID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	stages, err := a.mentees.CountByStage(r.Context(), mentorID)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	a.Response(w, http.StatusOK, getMenteesResponse{Mentees: mentees, Stages: stages})
}

type createMenteeRequest struct {
	Name        string        `json:"nome"`
	Stage       mentee.Stage  `json:"estagio"`
	NavigatorID uuid.NullUUID `json:"navigator_id"`
}

func (a *API) createMentee(w http.ResponseWriter, r *http.Request) {
	var payload createMenteeRequest
	if !a.decode(w, r, &payload) {
		return
	}

	m, err := a.mentees.CreateMentee(r.Context(), mentee.Mentee{
		Name:        payload.Name,
		Stage:       payload.Stage,
		NavigatorID: payload.NavigatorID,
		MentorID:    mentorFrom(r.Context()),
	}, a.wallClock())
	if err != nil {
		a.Error(w, r, err)
		return
	}

	a.log.Info("mentee created", zap.String("mentee_id", m.ID.String()))
	a.Response(w, http.StatusCreated, m)
}

// ownedMentee loads the mentee named by the {id} route variable, restricted to
// the calling mentor.
func (a *API) ownedMentee(w http.ResponseWriter, r *http.Request) (mentee.Mentee, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid mentee ID")
		return mentee.Mentee{}, false
	}

	m, err := a.mentees.GetMenteeOfMentor(r.Context(), id, mentorFrom(r.Context()))
	if err != nil {
		a.Error(w, r, err)
		return mentee.Mentee{}, false
	}
	return m, true
}

func (a *API) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	m, ok := a.ownedMentee(w, r)
	if !ok {
		return
	}

	key, err := a.storeFile(w, r, "foto", "fotos", a.maxPhoto)
	if err != nil {
		a.fileError(w, r, err)
		return
	}

	if err := a.mentees.SetPhoto(r.Context(), m.ID, key); err != nil {
		a.discard(r.Context(), key)
		a.Error(w, r, err)
		return
	}
	m.Photo = key

	a.Response(w, http.StatusOK, m)
}

var errMissingFile = errors.New("missing file")

// storeFile streams the multipart field into the object store under prefix and
// returns the object key.
func (a *API) storeFile(w http.ResponseWriter, r *http.Request, field, prefix string, limit int64) (string, error) {
	if a.store == nil {
		return "", storage.ErrDisabled
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartInMem); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", apperr.Invalid("file", "file must not exceed "+sizeLabel(limit))
		}
		return "", errMissingFile
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errMissingFile
	}
	defer file.Close()

	key := storage.Key(prefix, header.Filename)
	if err := a.store.Put(r.Context(), key, file, header.Size, header.Header.Get("Content-Type")); err != nil {
		return "", err
	}
	return key, nil
}

// discard removes an object whose database reference could not be saved.
func (a *API) discard(ctx context.Context, key string) {
	if err := a.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		a.log.Warn("delete orphaned object", zap.String("key", key), zap.Error(err))
	}
}

func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return strconv.FormatInt(n>>20, 10) + " MB"
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return strconv.FormatInt(n>>10, 10) + " KB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}

func (a *API) fileError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errMissingFile) {
		a.Error(w, r, apperr.Invalid("file", "select a file to upload"))
		return
	}
	a.Error(w, r, err)
}
