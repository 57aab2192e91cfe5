package handler

import (
	"time"

	"github.com/gatewarden/gatewarden-go/internal/core/domain"
)

// Response is the uniform JSON envelope for all API responses.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   string `json:"details,omitempty"`
}

// NewResponse creates a success response envelope.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "success",
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}
}

// NewErrorResponse creates an error response envelope.
func NewErrorResponse(requestID, code, message, details string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   details,
	}
}

// CreateTokenRequest is the body of POST /v1/tokens.
type CreateTokenRequest struct {
	Justification string `json:"justification"`
}

// RevokeTokenRequest is the body of POST /v1/tokens/revoke.
type RevokeTokenRequest struct {
	Token         string `json:"token"`
	Justification string `json:"justification"`
}

// ValidateTokenRequest is the body of POST /v1/tokens/validate.
type ValidateTokenRequest struct {
	Token          string   `json:"token"`
	RequiredGroups []string `json:"required_groups,omitempty"`
}

// ValidateTokenResponse is the payload of a validation decision.
type ValidateTokenResponse struct {
	OK bool `json:"ok"`
}

// HistoryEntryResponse is one lifecycle event in a token response.
type HistoryEntryResponse struct {
	Time          int64  `json:"time"`
	OperatingUser string `json:"operating_user"`
	Operation     string `json:"operation"`
	Reason        string `json:"reason"`
}

// TokenResponse is the API representation of a token record.
type TokenResponse struct {
	Token      string                 `json:"token"`
	User       string                 `json:"user"`
	Status     string                 `json:"status"`
	ExpiryTime int64                  `json:"expiry_time"`
	History    []HistoryEntryResponse `json:"history"`
}

// ListTokensResponse is the payload of GET /v1/tokens.
type ListTokensResponse struct {
	Tokens []TokenResponse `json:"tokens"`
}

// DirectoryUserRequest is the body of PUT /v1/directory/users/{user}.
type DirectoryUserRequest struct {
	Groups []string `json:"groups"`
}

// DirectoryUserResponse is the API representation of a directory entry.
type DirectoryUserResponse struct {
	User   string   `json:"user"`
	Groups []string `json:"groups"`
}

func toTokenResponse(rec *domain.TokenRecord) TokenResponse {
	hist := make([]HistoryEntryResponse, 0, len(rec.History))
	for _, h := range rec.History {
		hist = append(hist, HistoryEntryResponse{
			Time:          h.Time,
			OperatingUser: h.OperatingUser,
			Operation:     string(h.Operation),
			Reason:        h.Reason,
		})
	}
	return TokenResponse{
		Token:      rec.Token,
		User:       rec.User,
		Status:     string(rec.Status),
		ExpiryTime: rec.ExpiryTime,
		History:    hist,
	}
}

func toDirectoryUserResponse(rec *domain.UserRecord) DirectoryUserResponse {
	groups := rec.Groups
	if groups == nil {
		groups = []string{}
	}
	return DirectoryUserResponse{User: rec.User, Groups: groups}
}
