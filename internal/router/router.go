// Package router wires the HTTP surface of the site: the atomic notes API,
// the GitHub sign in routes, the health check and the internal surface of the
// starred notes actors.
package router

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/atomicnotes/internal/gzippedhttp"
	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
	"github.com/patric-chuzhbe/atomicnotes/internal/models"
	"github.com/patric-chuzhbe/atomicnotes/internal/starred"
	"github.com/patric-chuzhbe/atomicnotes/internal/user"
)

const tlsTooOldMessage = "You need to use TLS version 1.2 or higher."

type notesStore interface {
	Create(ctx context.Context, note models.Note) (models.Note, error)
	Update(ctx context.Context, id string, patch models.NotePatch) (models.Note, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.Note, error)
}

type userService interface {
	GetStarredAtomicNoteIDs(ctx context.Context, userID string) ([]string, error)
	StarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error)
	UnstarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error)
}

type authenticator interface {
	CurrentUser(request *http.Request) (*user.User, bool)
	IsAdmin(request *http.Request) bool
	Middleware(h http.Handler) http.Handler
	Login(response http.ResponseWriter, request *http.Request)
	Callback(response http.ResponseWriter, request *http.Request)
	Logout(response http.ResponseWriter, request *http.Request)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type actorNamespace interface {
	IDFromName(name string) starred.ActorID
	Get(id starred.ActorID) *starred.Actor
}

type trustedSubnetGuard interface {
	Middleware(next http.Handler) http.Handler
}

// Router holds the collaborators of the HTTP handlers.
type Router struct {
	notes    notesStore
	users    userService
	auth     authenticator
	storage  pinger
	actors   actorNamespace
	subnet   trustedSubnetGuard
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

type initOptions struct {
	now   func() time.Time
	newID func() string
}

type InitOption func(*initOptions)

// WithClock replaces time.Now for the creation date of new notes.
func WithClock(now func() time.Time) InitOption {
	return func(options *initOptions) {
		options.now = now
	}
}

// WithIDGenerator replaces the UUID generator of new notes.
func WithIDGenerator(newID func() string) InitOption {
	return func(options *initOptions) {
		options.newID = newID
	}
}

// New builds the router.
func New(
	notes notesStore,
	users userService,
	auth authenticator,
	storage pinger,
	actors actorNamespace,
	subnet trustedSubnetGuard,
	optionsProto ...InitOption,
) *chi.Mux {
	options := &initOptions{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	rt := &Router{
		notes:    notes,
		users:    users,
		auth:     auth,
		storage:  storage,
		actors:   actors,
		subnet:   subnet,
		validate: validator.New(),
		now:      options.now,
		newID:    options.newID,
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		logger.WithLoggingHTTPMiddleware,
		RequireModernTLS,
	)

	router.Group(func(public chi.Router) {
		public.Use(
			middleware.RealIP,
			middleware.Compress(5),
			gzippedhttp.DecompressRequest,
			auth.Middleware,
		)

		public.Get(`/api/atomic-notes`, rt.GetAtomicNotes)
		public.Post(`/api/atomic-notes`, rt.PostAtomicNotes)

		public.Get(`/auth/github`, redirectHome)
		public.Post(`/auth/github`, auth.Login)
		public.Get(`/auth/github/callback`, auth.Callback)
		public.Get(`/auth/logout`, auth.Logout)
		public.Post(`/auth/logout`, auth.Logout)

		public.Get(`/ping`, rt.GetPing)
	})

	// RealIP is left out here, the subnet check must see the peer address.
	router.With(subnet.Middleware).HandleFunc(`/internal/users/{userID}/starred`, rt.ServeStarred)

	return router
}

// RequireModernTLS rejects requests that arrived over TLS older than 1.2.
// Plain HTTP requests pass; TLS termination usually happens in front.
func RequireModernTLS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		if request.TLS != nil && request.TLS.Version < tls.VersionTLS12 {
			http.Error(response, tlsTooOldMessage, http.StatusForbidden)
			return
		}

		next.ServeHTTP(response, request)
	})
}

func redirectHome(response http.ResponseWriter, request *http.Request) {
	http.Redirect(response, request, "/", http.StatusFound)
}

// GetPing checks the storage.
func (rt *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := rt.storage.Ping(request.Context()); err != nil {
		rt.writeError(response, request, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// ServeStarred hands the request to the actor of the user in the path.
func (rt *Router) ServeStarred(response http.ResponseWriter, request *http.Request) {
	userID := chi.URLParam(request, "userID")
	if userID == "" {
		http.Error(response, "Not Found", http.StatusNotFound)
		return
	}

	actor := rt.actors.Get(rt.actors.IDFromName(userID))

	rewritten := request.Clone(request.Context())
	rewritten.URL.Path = "/starred"
	rewritten.URL.RawPath = ""
	actor.ServeHTTP(response, rewritten)
}
