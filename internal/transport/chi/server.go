// Package chi exposes the strategy engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/logger"
	"github.com/kailas-cloud/reachout/internal/metrics"
	healthuc "github.com/kailas-cloud/reachout/internal/usecase/health"
)

const (
	maxBatchLimit  = 1000
	maxRequestBody = 8 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the strategy API against a server-configured graph.
type Server struct {
	finder        StrategyFinder
	batch         BatchService
	health        HealthService
	graph         network.Graph
	activities    network.ActivityRecorder
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	finder StrategyFinder,
	batch BatchService,
	health HealthService,
	graph network.Graph,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		finder:   finder,
		batch:    batch,
		health:   health,
		graph:    graph,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMissingIdentity, http.StatusBadRequest, ErrorCodeMissingIdentity),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrCollaboratorUnavailable, http.StatusServiceUnavailable, ErrorCodeServiceUnavailable),
	}
	return s
}

// WithActivityRecorder enables POST /v1/activities.
func (s *Server) WithActivityRecorder(r network.ActivityRecorder) *Server {
	s.activities = r
	return s
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/strategies", s.FindStrategy)
		r.Post("/strategies/batch", s.BatchDiscover)
		r.Post("/strategies/compare", s.CompareStrategies)
		r.Post("/activities", s.RecordActivity)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
	return r
}

// FindStrategy handles POST /v1/strategies.
func (s *Server) FindStrategy(w http.ResponseWriter, r *http.Request) {
	var req StrategyRequest
	if !s.decode(w, r, &req) {
		return
	}

	st, err := s.finder.Find(r.Context(), req.Requester, req.Target, s.graph)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, strategyToResponse(st))
}

// BatchDiscover handles POST /v1/strategies/batch.
func (s *Server) BatchDiscover(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter limit")
		return
	}
	if limit != nil && (*limit < 1 || *limit > maxBatchLimit) {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", maxBatchLimit))
		return
	}

	var req BatchRequest
	if !s.decode(w, r, &req) {
		return
	}

	report, err := s.batch.Discover(r.Context(), req.Requester, req.Targets, s.graph)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}
	writeJSON(w, http.StatusOK, batchToResponse(report, n))
}

// CompareStrategies handles POST /v1/strategies/compare.
func (s *Server) CompareStrategies(w http.ResponseWriter, r *http.Request) {
	var req StrategyRequest
	if !s.decode(w, r, &req) {
		return
	}

	list, err := s.batch.Compare(r.Context(), req.Requester, req.Target, s.graph)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CompareResponse{Strategies: strategiesToResponse(list)})
}

// RecordActivity handles POST /v1/activities.
func (s *Server) RecordActivity(w http.ResponseWriter, r *http.Request) {
	if s.activities == nil {
		writeError(w, http.StatusNotImplemented, ErrorCodeNotImplemented, "activity ingestion is not configured")
		return
	}

	var req ActivityRequest
	if !s.decode(w, r, &req) {
		return
	}

	act := network.Activity{ActorID: req.ActorID, TargetID: req.TargetID, Type: req.Type}
	if req.Timestamp != nil {
		act.Timestamp = req.Timestamp.UTC()
	} else {
		act.Timestamp = time.Now().UTC()
	}
	if err := s.activities.Record(r.Context(), act); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body. It writes the error response and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, len(verrs))
			for i, fe := range verrs {
				details[i] = fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag())
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Code:    ErrorCodeValidationFailed,
				Message: "request validation failed",
				Details: details,
			})
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

var publicSentinels = []error{
	domain.ErrMissingIdentity,
	domain.ErrInvalidRequest,
	domain.ErrCollaboratorUnavailable,
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range publicSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func errorCodeFor(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrMissingIdentity):
		return ErrorCodeMissingIdentity
	case errors.Is(err, domain.ErrInvalidRequest):
		return ErrorCodeValidationFailed
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return ErrorCodeServiceUnavailable
	default:
		return ErrorCodeInternalError
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
