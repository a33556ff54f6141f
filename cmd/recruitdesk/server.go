package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"recruitdesk/internal/constants"
	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/middleware"
	"recruitdesk/internal/models"
	"recruitdesk/internal/moderation"
	"recruitdesk/internal/service"
	"recruitdesk/internal/tracing"
	"recruitdesk/internal/validation"
	"recruitdesk/pkg/circuitbreaker"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// DashboardService is what the HTTP handlers need from the dashboard pipeline
type DashboardService interface {
	Conversations(ctx context.Context, sess *moderation.Session, q service.ConversationsQuery) (*service.ConversationsPage, error)
	Conversation(sess *moderation.Session, candidateID string) (models.Conversation, error)
	Prompts(sess *moderation.Session, candidateID string) ([]models.CraftedPrompt, error)
	Decide(ctx context.Context, sess *moderation.Session, candidateID string, ch models.Channel, decision models.Decision) (*moderation.Result, error)
	Jobs(ctx context.Context, q service.JobsQuery) (*service.JobsPage, error)
	Events(ctx context.Context, candidateID string, limit int) ([]models.ModerationEvent, error)
}

// BreakerSource exposes circuit breaker counters on /metrics
type BreakerSource interface {
	BreakerStats() (circuitbreaker.Stats, bool)
}

type Server struct {
	router    *mux.Router
	logger    *logrus.Logger
	cfg       *models.Config
	dashboard DashboardService
	sessions  *service.SessionStore
	breakers  []BreakerSource
	server    *http.Server
}

func NewServer(cfg *models.Config, dashboard DashboardService, sessions *service.SessionStore, logger *logrus.Logger, breakers ...BreakerSource) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		logger:    logger,
		cfg:       cfg,
		dashboard: dashboard,
		sessions:  sessions,
		breakers:  breakers,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.ObservabilityMiddleware(s.logger))
	s.router.Use(middleware.DetailedLoggingMiddleware(s.logger, middleware.DefaultDetailedLoggingConfig()))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/conversations", s.handleConversations()).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{candidateId}", s.handleConversation()).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{candidateId}/prompts", s.handlePrompts()).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{candidateId}/crafted/{channel}/{action:approve|reject}", s.handleDecision()).Methods(http.MethodPost)
	api.HandleFunc("/jobs", s.handleJobs()).Methods(http.MethodGet)
	api.HandleFunc("/moderation/events", s.handleEvents()).Methods(http.MethodGet)
}

func (s *Server) Start() error {
	port := s.cfg.Server.Port
	if port <= 0 {
		port = constants.DefaultServerPort
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// session resolves the caller's session and echoes its id so the client can keep it
func (s *Server) session(w http.ResponseWriter, r *http.Request) *moderation.Session {
	sess, _ := s.sessions.Get(r.Header.Get(constants.SessionHeader))
	w.Header().Set(constants.SessionHeader, sess.ID)
	return sess
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	requestID := tracing.GetRequestID(r.Context())

	entry := apperrors.Entry(s.logger, err).WithFields(logrus.Fields{
		service.LogFieldRequestID:  requestID,
		service.LogFieldEndpoint:   r.URL.Path,
		service.LogFieldStatusCode: status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	s.writeJSON(w, status, apperrors.ToHTTPResponse(err, requestID))
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":   "healthy",
			"version":  Version,
			"sessions": s.sessions.Len(),
		})
	}
}

// parsePaging reads the page and pageSize query parameters. A missing pageSize is left at 0 for the default.
func parsePaging(r *http.Request) (page, pageSize int, err error) {
	query := r.URL.Query()
	page, err = validation.ParseIntParam(query.Get("page"), "page", 1, constants.MaxPageNumber)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = validation.ParseIntParam(query.Get("pageSize"), "pageSize", 0, constants.MaxPageSize)
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func (s *Server) handleConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(w, r)

		page, pageSize, err := parsePaging(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		query := r.URL.Query()
		q := service.ConversationsQuery{
			Page:     page,
			PageSize: pageSize,
			Query:    query.Get("q"),
			Search:   query.Get("search"),
		}
		if err := validation.ValidateQuery(q.Query, "q"); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := validation.ValidateQuery(q.Search, "search"); err != nil {
			s.writeError(w, r, err)
			return
		}
		if raw := query.Get("refresh"); raw != "" {
			q.Refresh, err = strconv.ParseBool(raw)
			if err != nil {
				s.writeError(w, r, apperrors.NewValidationError("refresh", raw, "must be true or false"))
				return
			}
		}

		result, err := s.dashboard.Conversations(r.Context(), sess, q)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(w, r)

		candidateID := mux.Vars(r)["candidateId"]
		if err := validation.ValidateCandidateID(candidateID); err != nil {
			s.writeError(w, r, err)
			return
		}

		conv, err := s.dashboard.Conversation(sess, candidateID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, conv)
	}
}

func (s *Server) handlePrompts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(w, r)

		candidateID := mux.Vars(r)["candidateId"]
		if err := validation.ValidateCandidateID(candidateID); err != nil {
			s.writeError(w, r, err)
			return
		}

		prompts, err := s.dashboard.Prompts(sess, candidateID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"candidateId": candidateID,
			"prompts":     prompts,
		})
	}
}

func (s *Server) handleDecision() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(w, r)
		vars := mux.Vars(r)

		candidateID := vars["candidateId"]
		if err := validation.ValidateCandidateID(candidateID); err != nil {
			s.writeError(w, r, err)
			return
		}
		ch, err := validation.ParseChannel(vars["channel"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		decision := models.DecisionAccept
		if vars["action"] == "reject" {
			decision = models.DecisionReject
		}

		result, err := s.dashboard.Decide(r.Context(), sess, candidateID, ch, decision)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize, err := parsePaging(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		q := service.JobsQuery{Page: page, PageSize: pageSize, Query: r.URL.Query().Get("q")}
		if err := validation.ValidateQuery(q.Query, "q"); err != nil {
			s.writeError(w, r, err)
			return
		}

		result, err := s.dashboard.Jobs(r.Context(), q)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		candidateID := query.Get("candidateId")
		if candidateID != "" {
			if err := validation.ValidateCandidateID(candidateID); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
		limit, err := validation.ParseIntParam(query.Get("limit"), "limit",
			constants.DefaultModerationEventsLimit, constants.MaxModerationEventsLimit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		events, err := s.dashboard.Events(r.Context(), candidateID, limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}
