package handler

import (
	"net/http"

	"github.com/gatewarden/gatewarden-go/internal/core/domain"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/logger"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/metric"
)

func (h *Handler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	user := callerUser(r)
	if user == "" {
		h.writeError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.WithDetails("X-Auth-User header is required"))
		return
	}

	var req CreateTokenRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.tokens.Create(r.Context(), user, req.Justification)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.TokensIssued.Inc()
	logger.L(r.Context()).Info("token issued",
		"user", user,
		"token", domain.MaskToken(rec.Token),
	)
	h.writeJSON(w, r, http.StatusCreated, toTokenResponse(rec))
}

func (h *Handler) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	user := callerUser(r)
	if user == "" {
		h.writeError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.WithDetails("X-Auth-User header is required"))
		return
	}

	var req RevokeTokenRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.tokens.Revoke(r.Context(), user, req.Token, req.Justification)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.TokensRevoked.Inc()
	logger.L(r.Context()).Info("token revoked",
		"user", user,
		"token", domain.MaskToken(rec.Token),
	)
	h.writeJSON(w, r, http.StatusOK, toTokenResponse(rec))
}

func (h *Handler) handleListTokens(w http.ResponseWriter, r *http.Request) {
	user := callerUser(r)
	if user == "" {
		h.writeError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.WithDetails("X-Auth-User header is required"))
		return
	}

	recs, err := h.tokens.List(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	out := ListTokensResponse{Tokens: make([]TokenResponse, 0, len(recs))}
	for _, rec := range recs {
		out.Tokens = append(out.Tokens, toTokenResponse(rec))
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	var req ValidateTokenRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	ok, err := h.tokens.Validate(r.Context(), req.RequiredGroups, req.Token)
	if err != nil {
		h.metrics.Validations.WithLabelValues(metric.OutcomeError).Inc()
		h.handleServiceError(w, r, err)
		return
	}

	if ok {
		h.metrics.Validations.WithLabelValues(metric.OutcomeGranted).Inc()
	} else {
		h.metrics.Validations.WithLabelValues(metric.OutcomeDenied).Inc()
	}
	h.writeJSON(w, r, http.StatusOK, ValidateTokenResponse{OK: ok})
}
