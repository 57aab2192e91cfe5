package handler

import (
	"net/http"

	"github.com/gatewarden/gatewarden-go/internal/core/domain"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/logger"
)

func (h *Handler) handleGetDirectoryUser(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	rec, err := h.directory.GetUser(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toDirectoryUserResponse(rec))
}

func (h *Handler) handleUpsertDirectoryUser(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	var req DirectoryUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rec := &domain.UserRecord{User: user, Groups: req.Groups}
	if err := rec.Validate(); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.directory.UpsertUser(r.Context(), rec); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	logger.L(r.Context()).Info("directory user upserted", "user", user, "groups", len(req.Groups))
	h.writeJSON(w, r, http.StatusOK, toDirectoryUserResponse(rec))
}

func (h *Handler) handleDeleteDirectoryUser(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	if err := h.directory.DeleteUser(r.Context(), user); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	logger.L(r.Context()).Info("directory user deleted", "user", user)
	h.writeJSON(w, r, http.StatusOK, map[string]string{"user": user})
}
