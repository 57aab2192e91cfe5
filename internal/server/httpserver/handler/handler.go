package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gatewarden/gatewarden-go/internal/core/domain"
	"github.com/gatewarden/gatewarden-go/internal/core/service"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/logger"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/metric"
)

// DirectoryStore is the administrative interface to the user directory.
type DirectoryStore interface {
	GetUser(ctx context.Context, user string) (*domain.UserRecord, error)
	UpsertUser(ctx context.Context, rec *domain.UserRecord) error
	DeleteUser(ctx context.Context, user string) error
}

// Config holds handler configuration.
type Config struct {
	// AdminToken guards the directory administration endpoints. When empty,
	// those endpoints reject every request.
	AdminToken string
}

// Handler routes and serves the HTTP API.
type Handler struct {
	tokens     *service.TokenService
	directory  DirectoryStore
	metrics    *metric.Registry
	log        logger.Logger
	adminToken string
	mux        *http.ServeMux
}

// New creates the API handler with all routes registered.
func New(tokens *service.TokenService, directory DirectoryStore, metrics *metric.Registry, log logger.Logger, cfg Config) *Handler {
	h := &Handler{
		tokens:     tokens,
		directory:  directory,
		metrics:    metrics,
		log:        log,
		adminToken: cfg.AdminToken,
		mux:        http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.Handle("GET /metrics", h.metrics.Handler())

	h.mux.HandleFunc("POST /v1/tokens", h.handleCreateToken)
	h.mux.HandleFunc("GET /v1/tokens", h.handleListTokens)
	h.mux.HandleFunc("POST /v1/tokens/revoke", h.handleRevokeToken)
	h.mux.HandleFunc("POST /v1/tokens/validate", h.handleValidateToken)

	h.mux.HandleFunc("GET /v1/directory/users/{user}", h.requireAdmin(h.handleGetDirectoryUser))
	h.mux.HandleFunc("PUT /v1/directory/users/{user}", h.requireAdmin(h.handleUpsertDirectoryUser))
	h.mux.HandleFunc("DELETE /v1/directory/users/{user}", h.requireAdmin(h.handleDeleteDirectoryUser))
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// callerUser extracts the authenticated caller identity. Empty means the
// request carried no identity and must be rejected.
func callerUser(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Auth-User"))
}

// requireAdmin wraps directory handlers with the admin bearer check.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			h.writeError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.WithDetails("directory administration is disabled"))
			return
		}

		auth := r.Header.Get("Authorization")
		presented, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(h.adminToken)) != 1 {
			h.writeError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.WithDetails("invalid admin credentials"))
			return
		}

		next(w, r)
	}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.WithDetails("invalid JSON body"))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	resp := NewResponse(logger.RequestIDFromContext(r.Context()), data)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("write response failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := domain.GetErrorCode(err)
	message := "internal server error"
	details := ""

	var de *domain.DomainError
	if errors.As(err, &de) {
		message = de.Message
		details = de.Details
	}
	if code == "" {
		code = domain.ErrInternal.Code
	}

	resp := NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message, details)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		h.log.Error("write error response failed", "error", encErr)
	}
}

// handleServiceError maps a service error to an HTTP status and writes it.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(domain.GetErrorCode(err))
	if status >= 500 {
		logger.L(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
	}
	h.writeError(w, r, status, err)
}

func errorStatus(code string) int {
	switch code {
	case domain.ErrTokenNotFound.Code, domain.ErrUserNotFound.Code:
		return http.StatusNotFound
	case domain.ErrNotOwner.Code:
		return http.StatusForbidden
	case domain.ErrTokenConflict.Code:
		return http.StatusConflict
	case domain.ErrUnauthorized.Code:
		return http.StatusUnauthorized
	case domain.ErrRateLimited.Code:
		return http.StatusTooManyRequests
	case domain.ErrInvalidArgument.Code, domain.ErrMissingArgument.Code, domain.ErrBadRequest.Code:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
