package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mentorship/apperr"
	"mentorship/logger"
	"mentorship/meeting"
	"mentorship/mentee"
	"mentorship/mentor"
	"mentorship/metrics"
	"mentorship/notify"
	"mentorship/session"
	"mentorship/slot"
	"mentorship/storage"
	"mentorship/task"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Options carries the collaborators of the API. Zero values fall back to
// no-op or development defaults.
type Options struct {
	Logger    *zap.Logger
	Signer    *session.Signer
	Store     storage.Store
	Publisher notify.Publisher
	Metrics   *metrics.Metrics

	// Location is the zone slot wall-clock times are expressed in.
	Location *time.Location
	Now      func() time.Time

	MenteeCookieMaxAge time.Duration
	AuthRatePerMinute  int
	SecureCookies      bool

	// Upload size limits in bytes.
	MaxPhotoBytes int64
	MaxVideoBytes int64

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Leave it off unless a proxy in front overwrites those headers.
	TrustProxyHeaders bool

	// Accessor overrides, mostly for tests.
	Mentors *mentor.Accessor
	Mentees *mentee.Accessor
}

type API struct {
	root   *mux.Router
	router *mux.Router
	db     *sql.DB

	log       *zap.Logger
	signer    *session.Signer
	store     storage.Store
	publisher notify.Publisher
	metrics   *metrics.Metrics
	limiter   *ipLimiter

	loc          *time.Location
	now          func() time.Time
	cookieMaxAge time.Duration
	secure       bool
	trustProxy   bool
	maxPhoto     int64
	maxVideo     int64

	mentors  *mentor.Accessor
	mentees  *mentee.Accessor
	slots    *slot.Accessor
	meetings *meeting.Accessor
	tasks    *task.Accessor
}

func NewAPI(db *sql.DB, opts Options) *API {
	r := mux.NewRouter()
	a := &API{
		root:         r,
		router:       r.PathPrefix("/api").Subrouter(),
		db:           db,
		log:          opts.Logger,
		signer:       opts.Signer,
		store:        opts.Store,
		publisher:    opts.Publisher,
		metrics:      opts.Metrics,
		loc:          opts.Location,
		now:          opts.Now,
		cookieMaxAge: opts.MenteeCookieMaxAge,
		secure:       opts.SecureCookies,
		trustProxy:   opts.TrustProxyHeaders,
		maxPhoto:     opts.MaxPhotoBytes,
		maxVideo:     opts.MaxVideoBytes,
		mentors:      opts.Mentors,
		mentees:      opts.Mentees,
		slots:        slot.NewAccessor(db),
		meetings:     meeting.NewAccessor(db),
		tasks:        task.NewAccessor(db),
	}

	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.signer == nil {
		a.signer = session.NewSigner("development-only-secret", 12*time.Hour)
	}
	if a.publisher == nil {
		a.publisher = notify.Nop{}
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	if a.loc == nil {
		a.loc = time.UTC
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.cookieMaxAge <= 0 {
		a.cookieMaxAge = time.Hour
	}
	if a.maxPhoto <= 0 {
		a.maxPhoto = defaultMaxPhotoBytes
	}
	if a.maxVideo <= 0 {
		a.maxVideo = defaultMaxVideoBytes
	}
	if a.mentors == nil {
		a.mentors = mentor.NewAccessor(db)
	}
	if a.mentees == nil {
		a.mentees = mentee.NewAccessor(db)
	}
	rpm := opts.AuthRatePerMinute
	if rpm <= 0 {
		rpm = 10
	}
	a.limiter = newIPLimiter(rpm, time.Now)

	return a
}

// Router exposes the bare router, without access logging and tracing.
func (a *API) Router() http.Handler {
	return a.root
}

// Handler wraps the router with tracing, access logging and panic recovery.
// Proxy headers are applied only when TrustProxyHeaders is set.
func (a *API) Handler() http.Handler {
	h := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{a.log}),
		handlers.PrintRecoveryStack(true),
	)(a.root)
	h = handlers.LoggingHandler(logger.Writer(a.log), h)
	if a.trustProxy {
		h = handlers.ProxyHeaders(h)
	}
	return otelhttp.NewHandler(h, "mentorship")
}

type Response struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

func (a *API) Response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Status:   status,
		Response: data,
	})
	if err != nil {
		a.log.Error("encode response", zap.Error(err))
	}
}

// Error answers with the status matching err. Validation failures surface the
// first message only; unexpected errors are logged and hidden.
func (a *API) Error(w http.ResponseWriter, r *http.Request, err error) {
	if v, ok := apperr.AsValidation(err); ok {
		a.Response(w, http.StatusBadRequest, v.Message())
		return
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		a.Response(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrOverlap),
		errors.Is(err, apperr.ErrSlotUnavailable),
		errors.Is(err, apperr.ErrConflict):
		a.Response(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrInvalidSlot):
		a.Response(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		a.Response(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, storage.ErrDisabled):
		a.Response(w, http.StatusServiceUnavailable, err.Error())
	default:
		a.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		a.Response(w, http.StatusInternalServerError, "internal server error")
	}
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// wallClock returns the current time as a naive wall-clock value of the
// configured zone, the representation slot timestamps are stored in.
func (a *API) wallClock() time.Time {
	t := a.now().In(a.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

type recoveryLogger struct {
	log *zap.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("panic recovered", zap.String("panic", fmt.Sprint(v...)))
}

func (a *API) RegisterRoutes() {
	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)
	a.router.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	// mentor side
	a.router.HandleFunc("/mentors", a.registerMentor).Methods(http.MethodPost)
	a.router.HandleFunc("/mentors/login", a.login).Methods(http.MethodPost)
	a.router.HandleFunc("/mentors/logout", a.logout).Methods(http.MethodPost)
	a.router.HandleFunc("/mentors/me", a.mentorOnly(a.me)).Methods(http.MethodGet)
	a.router.HandleFunc("/navigators", a.mentorOnly(a.getNavigators)).Methods(http.MethodGet)
	a.router.HandleFunc("/navigators", a.mentorOnly(a.createNavigator)).Methods(http.MethodPost)
	a.router.HandleFunc("/mentees", a.mentorOnly(a.getMentees)).Methods(http.MethodGet)
	a.router.HandleFunc("/mentees", a.mentorOnly(a.createMentee)).Methods(http.MethodPost)
	a.router.HandleFunc("/mentees/{id}/photo", a.mentorOnly(a.uploadPhoto)).Methods(http.MethodPost)
	a.router.HandleFunc("/mentees/{id}/tasks", a.mentorOnly(a.getTasks)).Methods(http.MethodGet)
	a.router.HandleFunc("/mentees/{id}/tasks", a.mentorOnly(a.createTask)).Methods(http.MethodPost)
	a.router.HandleFunc("/tasks/{id}", a.mentorOnly(a.getTask)).Methods(http.MethodGet)
	a.router.HandleFunc("/tasks/{id}/toggle", a.mentorOnly(a.toggleTask)).Methods(http.MethodPost)
	a.router.HandleFunc("/mentees/{id}/uploads", a.mentorOnly(a.getUploads)).Methods(http.MethodGet)
	a.router.HandleFunc("/mentees/{id}/uploads", a.mentorOnly(a.createUpload)).Methods(http.MethodPost)
	a.router.HandleFunc("/slots", a.mentorOnly(a.createSlot)).Methods(http.MethodPost)
	a.router.HandleFunc("/slots/{id}", a.mentorOnly(a.getSlot)).Methods(http.MethodGet)
	a.router.HandleFunc("/meetings", a.mentorOnly(a.getMeetings)).Methods(http.MethodGet)

	// mentee side
	a.router.HandleFunc("/mentee/auth", a.menteeAuthPrompt).Methods(http.MethodGet)
	a.router.HandleFunc("/mentee/auth", a.limit(a.menteeAuth)).Methods(http.MethodPost)
	a.router.HandleFunc("/mentee/days", a.menteeOnly(a.openDays)).Methods(http.MethodGet)
	a.router.HandleFunc("/mentee/slots", a.menteeOnly(a.openSlots)).Methods(http.MethodGet)
	a.router.HandleFunc("/mentee/meetings", a.menteeOnly(a.bookSlot)).Methods(http.MethodPost)
	a.router.HandleFunc("/mentee/tasks", a.menteeOnly(a.menteeTasks)).Methods(http.MethodGet)
}
