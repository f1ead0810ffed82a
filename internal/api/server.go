// Package api exposes the tracker over HTTP.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eleven-am/hiretrack/internal/applications"
	"github.com/eleven-am/hiretrack/internal/auth"
	"github.com/eleven-am/hiretrack/internal/cvs"
	"github.com/eleven-am/hiretrack/internal/metrics"
	"github.com/eleven-am/hiretrack/internal/models"
	"github.com/eleven-am/hiretrack/internal/reminders"
	"github.com/eleven-am/hiretrack/internal/users"
)

type UserService interface {
	Signup(ctx context.Context, params users.SignupParams) (*users.Session, error)
	Login(ctx context.Context, email, password string) (*users.Session, error)
	Refresh(ctx context.Context, id auth.Identity) (auth.Tokens, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, params users.ProfileParams) (*models.User, error)
	UpdateNotifications(ctx context.Context, userID string, params users.NotificationParams) (*models.User, error)
}

type ApplicationService interface {
	Create(ctx context.Context, ownerID string, params applications.Params) (*models.Application, error)
	List(ctx context.Context, ownerID string, filter applications.Filter) ([]models.Application, error)
	Get(ctx context.Context, id, ownerID string) (*models.ApplicationDetail, error)
	Update(ctx context.Context, id, ownerID string, params applications.Params) (*models.Application, error)
	Delete(ctx context.Context, id, ownerID string) error
	Stats(ctx context.Context, ownerID string) (*applications.Stats, error)
}

type ReminderService interface {
	Create(ctx context.Context, ownerID string, params reminders.CreateParams) (*models.ReminderDetail, error)
	ListAll(ctx context.Context, ownerID string, page reminders.Page) ([]models.ReminderDetail, error)
	ListUpcoming(ctx context.Context, ownerID string) ([]models.ReminderDetail, error)
	MarkComplete(ctx context.Context, id, ownerID string) (*models.ReminderDetail, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type CVService interface {
	Upload(ctx context.Context, ownerID string, params cvs.UploadParams) (*models.CV, error)
	List(ctx context.Context, ownerID string) ([]models.CV, error)
	SetDefault(ctx context.Context, id, ownerID string) (*models.CV, error)
	Delete(ctx context.Context, id, ownerID string) (*models.CV, error)
}

type Config struct {
	Tokens       TokenVerifier
	Users        UserService
	Applications ApplicationService
	Reminders    ReminderService
	CVs          CVService

	// BasePath prefixes every API route, e.g. "/api".
	BasePath   string
	CORSOrigin string

	// Files serves uploaded CVs under FilesPrefix. Optional.
	Files       http.Handler
	FilesPrefix string

	Metrics *metrics.Metrics
	// Gatherer backs GET /metrics. Optional.
	Gatherer prometheus.Gatherer
}

func (c Config) Validate() error {
	if c.Tokens == nil {
		return errors.NotValidf("nil Tokens")
	}
	if c.Users == nil {
		return errors.NotValidf("nil Users")
	}
	if c.Applications == nil {
		return errors.NotValidf("nil Applications")
	}
	if c.Reminders == nil {
		return errors.NotValidf("nil Reminders")
	}
	if c.CVs == nil {
		return errors.NotValidf("nil CVs")
	}
	if c.Files != nil && c.FilesPrefix == "" {
		return errors.NotValidf("Files without FilesPrefix")
	}
	return nil
}

type server struct {
	config Config
}

// NewRouter wires every route. Everything under BasePath except signup and
// login requires a bearer access token.
func NewRouter(config Config) (http.Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	s := &server{config: config}

	root := mux.NewRouter()
	root.Use(instrument(config.Metrics), cors(config.CORSOrigin))
	root.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.NotFoundf("route %s %s", r.Method, r.URL.Path))
	})

	if config.Gatherer != nil {
		root.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if config.Files != nil {
		root.PathPrefix(strings.TrimSuffix(config.FilesPrefix, "/")+"/").Handler(config.Files).Methods(http.MethodGet, http.MethodHead)
	}

	api := root
	if base := strings.TrimSuffix(config.BasePath, "/"); base != "" {
		api = root.PathPrefix(base).Subrouter()
	}
	api.HandleFunc("/auth/signup", s.signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(requireAuth(config.Tokens))

	private.HandleFunc("/auth/refresh", s.refresh).Methods(http.MethodPost)
	private.HandleFunc("/auth/me", s.profile).Methods(http.MethodGet)
	private.HandleFunc("/users/profile", s.profile).Methods(http.MethodGet)
	private.HandleFunc("/users/profile", s.updateProfile).Methods(http.MethodPatch)
	private.HandleFunc("/users/notifications", s.updateNotifications).Methods(http.MethodPatch)

	private.HandleFunc("/applications", s.createApplication).Methods(http.MethodPost)
	private.HandleFunc("/applications", s.listApplications).Methods(http.MethodGet)
	private.HandleFunc("/applications/stats", s.applicationStats).Methods(http.MethodGet)
	private.HandleFunc("/applications/{id}", s.getApplication).Methods(http.MethodGet)
	private.HandleFunc("/applications/{id}", s.updateApplication).Methods(http.MethodPatch)
	private.HandleFunc("/applications/{id}", s.deleteApplication).Methods(http.MethodDelete)

	private.HandleFunc("/reminders", s.createReminder).Methods(http.MethodPost)
	private.HandleFunc("/reminders", s.listReminders).Methods(http.MethodGet)
	private.HandleFunc("/reminders/upcoming", s.upcomingReminders).Methods(http.MethodGet)
	private.HandleFunc("/reminders/{id}/complete", s.completeReminder).Methods(http.MethodPatch)
	private.HandleFunc("/reminders/{id}", s.deleteReminder).Methods(http.MethodDelete)

	private.HandleFunc("/cvs/upload", s.uploadCV).Methods(http.MethodPost)
	private.HandleFunc("/cvs", s.listCVs).Methods(http.MethodGet)
	private.HandleFunc("/cvs/{id}/default", s.setDefaultCV).Methods(http.MethodPatch)
	private.HandleFunc("/cvs/{id}", s.deleteCV).Methods(http.MethodDelete)

	return root, nil
}
