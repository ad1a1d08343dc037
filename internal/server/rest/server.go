// Package rest serves the JSON HTTP API: accounts, login, notes with
// sharing, stored note images and the event websocket.
package rest

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/images"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// UserService is the account side of the API.
type UserService interface {
	Register(ctx context.Context, userName, password, email, fullName string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (string, error)
	VerifyToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) error
	Delete(ctx context.Context, id string) error
}

// NoteService is the note side of the API. Every call acts on behalf of
// the authenticated user.
type NoteService interface {
	Create(ctx context.Context, userID, text string, image *images.Payload) (*models.Note, error)
	Update(ctx context.Context, userID, noteID string, upd services.NoteUpdate) (*models.Note, error)
	Delete(ctx context.Context, userID, noteID string) error
	Share(ctx context.Context, userID, noteID, targetUserID string) error
	Unshare(ctx context.Context, userID, noteID, targetUserID string) error
	Get(ctx context.Context, userID, noteID string) (*models.Note, error)
	List(ctx context.Context, userID string) ([]*models.Note, error)
}

// ImageSource hands out stored note images by file name.
type ImageSource interface {
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// EventStream takes over an authenticated request and streams note events
// to it.
type EventStream interface {
	ServeUser(w http.ResponseWriter, r *http.Request, userID string)
}

type Server struct {
	address string
	users   UserService
	notes   NoteService
	images  ImageSource
	events  EventStream
	logger  logging.Logger
	router  *mux.Router
}

func NewServer(a string, l logging.Logger, us UserService, ns NoteService, img ImageSource, ev EventStream) *Server {
	s := &Server{
		address: a,
		users:   us,
		notes:   ns,
		images:  img,
		events:  ev,
		logger:  l.With("module", "rest_server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.requestLogger)

	auth := s.requireAuth(false)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/uploads/notes/{name}", s.handleImage).Methods(http.MethodGet)
	r.Handle("/api", auth(http.HandlerFunc(s.handleHome))).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()

	// Accounts
	api.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	// Notes
	api.Handle("/notes", auth(http.HandlerFunc(s.handleListNotes))).Methods(http.MethodGet)
	api.Handle("/notes", auth(http.HandlerFunc(s.handleCreateNote))).Methods(http.MethodPost)
	api.Handle("/notes/{id}", auth(http.HandlerFunc(s.handleGetNote))).Methods(http.MethodGet)
	api.Handle("/notes/{id}", auth(http.HandlerFunc(s.handleUpdateNote))).Methods(http.MethodPut)
	api.Handle("/notes/{id}", auth(http.HandlerFunc(s.handleDeleteNote))).Methods(http.MethodDelete)
	api.Handle("/notes/{id}/share", auth(http.HandlerFunc(s.handleShareNote))).Methods(http.MethodPost)
	api.Handle("/notes/{id}/unshare", auth(http.HandlerFunc(s.handleUnshareNote))).Methods(http.MethodPost)

	// Events
	api.Handle("/ws", s.requireAuth(true)(http.HandlerFunc(s.handleEvents))).Methods(http.MethodGet)

	return r
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is done, then gives in-flight
// requests a few seconds to finish.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
