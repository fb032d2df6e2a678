package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/competition"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/gallery"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/generation"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/profile"
)

var (
	// ErrBadRequest is returned for bodies or parameters that cannot be parsed
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound is returned for paths outside the router
	ErrNotFound = errors.New("not found")
)

// statusFor maps service sentinels onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidSession),
		errors.Is(err, identity.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrAccountDisabled):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound),
		errors.Is(err, profile.ErrNotFound),
		errors.Is(err, competition.ErrNotFound),
		errors.Is(err, gallery.ErrNotFound),
		errors.Is(err, generation.ErrPromptNotFound),
		errors.Is(err, generation.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, identity.ErrEmailTaken),
		errors.Is(err, competition.ErrAlreadyJoined),
		errors.Is(err, competition.ErrFull),
		errors.Is(err, competition.ErrNotOpen):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, identity.ErrInvalidRole),
		errors.Is(err, profile.ErrInvalidRole),
		errors.Is(err, profile.ErrInvalidUpdate),
		errors.Is(err, competition.ErrInvalid),
		errors.Is(err, gallery.ErrInvalidSort),
		errors.Is(err, gallery.ErrInvalidSubmission),
		errors.Is(err, generation.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, generation.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the error text safe to show a client. Internal failures are
// logged and replaced with a generic message.
func userMessage(logger *zap.Logger, r *http.Request, err error) (int, string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		return status, "internal server error"
	}
	if status == http.StatusBadGateway {
		logger.Warn("image generation failed", zap.Error(err))
	}
	return status, err.Error()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := userMessage(s.logger, r, err)
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}
