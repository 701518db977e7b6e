package api

import (
	"context"
	"net/http"
	"time"

	"mentorship/task"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const presignTTL = 15 * time.Minute

type getTasksResponse struct {
	Tasks   []task.Task   `json:"tarefas"`
	Uploads []task.Upload `json:"videos"`
}

func (a *API) getTasks(w http.ResponseWriter, r *http.Request) {
	m, ok := a.ownedMentee(w, r)
	if !ok {
		return
	}

	res, err := a.tasksOf(r.Context(), m.ID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, res)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	m, ok := a.ownedMentee(w, r)
	if !ok {
		return
	}

	var payload task.Task
	if !a.decode(w, r, &payload) {
		return
	}
	payload.MenteeID = m.ID

	t, err := a.tasks.CreateTask(r.Context(), payload)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, t)
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	t, err := a.tasks.GetTask(r.Context(), id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if _, err := a.mentees.GetMenteeOfMentor(r.Context(), t.MenteeID, mentorFrom(r.Context())); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, t)
}

func (a *API) toggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	t, err := a.tasks.ToggleTask(r.Context(), id, mentorFrom(r.Context()))
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, t)
}

type getUploadsResponse struct {
	Uploads []task.Upload `json:"videos"`
}

func (a *API) getUploads(w http.ResponseWriter, r *http.Request) {
	m, ok := a.ownedMentee(w, r)
	if !ok {
		return
	}

	uploads, err := a.tasks.ListUploads(r.Context(), m.ID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getUploadsResponse{Uploads: a.withURLs(r.Context(), uploads)})
}

func (a *API) createUpload(w http.ResponseWriter, r *http.Request) {
	m, ok := a.ownedMentee(w, r)
	if !ok {
		return
	}

	key, err := a.storeFile(w, r, "video", "video", a.maxVideo)
	if err != nil {
		a.fileError(w, r, err)
		return
	}

	u, err := a.tasks.CreateUpload(r.Context(), task.Upload{MenteeID: m.ID, Video: key})
	if err != nil {
		a.discard(r.Context(), key)
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, u)
}

func (a *API) tasksOf(ctx context.Context, menteeID uuid.UUID) (getTasksResponse, error) {
	tasks, err := a.tasks.ListTasks(ctx, menteeID)
	if err != nil {
		return getTasksResponse{}, err
	}
	uploads, err := a.tasks.ListUploads(ctx, menteeID)
	if err != nil {
		return getTasksResponse{}, err
	}
	return getTasksResponse{Tasks: tasks, Uploads: a.withURLs(ctx, uploads)}, nil
}

// withURLs attaches presigned download URLs when an object store is configured.
func (a *API) withURLs(ctx context.Context, uploads []task.Upload) []task.Upload {
	if a.store == nil {
		return uploads
	}
	for i := range uploads {
		u, err := a.store.PresignGet(ctx, uploads[i].Video, presignTTL)
		if err != nil {
			a.log.Warn("presign upload", zap.String("key", uploads[i].Video), zap.Error(err))
			continue
		}
		uploads[i].URL = u
	}
	return uploads
}
