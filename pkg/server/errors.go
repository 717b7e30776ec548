package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch deperrors.GetCode(err) {
	case deperrors.ErrCodeInvalidInput, deperrors.ErrCodeInvalidPackage, deperrors.ErrCodeInvalidDepth,
		deperrors.ErrCodeInvalidMode, deperrors.ErrCodeInvalidFormat, deperrors.ErrCodeInvalidPath:
		return http.StatusBadRequest // 400
	case deperrors.ErrCodePackageNotFound, deperrors.ErrCodeFileNotFound:
		return http.StatusNotFound // 404
	case deperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case deperrors.ErrCodeUnsupported:
		return http.StatusNotImplemented // 501
	case deperrors.ErrCodeNetwork, deperrors.ErrCodeArchiveRead:
		return http.StatusBadGateway // 502
	case deperrors.ErrCodeIndexUnavailable, deperrors.ErrCodeInvalidLocation, deperrors.ErrCodeStaticRepoFormat:
		// The repository is server configuration, not request input.
		return http.StatusServiceUnavailable // 503
	case deperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	}
	return http.StatusInternalServerError
}

// writeError writes err as an ErrorResponse with the mapped status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := string(deperrors.GetCode(err))
	if code == "" {
		code = string(deperrors.ErrCodeInternal)
	}
	writeStatus(w, r, statusFor(err), code, deperrors.UserMessage(err))
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
