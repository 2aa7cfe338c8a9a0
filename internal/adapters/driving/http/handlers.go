package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

const maxBodyBytes = 64 << 10

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CredentialsRequest is the body of PUT /api/v1/provider/credentials.
type CredentialsRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

// AuthorizeResponse carries the provider consent URL.
type AuthorizeResponse struct {
	AuthorizeURL string `json:"authorize_url"`
}

// ConnectedResponse is returned once the callback stored a token.
type ConnectedResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks the database and the lock backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness: database unreachable", "error", err)
			writeError(w, http.StatusServiceUnavailable, "not_ready", "database unavailable")
			return
		}
	}
	if err := s.importLock.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness: lock backend unreachable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "not_ready", "lock backend unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Provider connection endpoints

func (s *Server) handleSaveCredentials(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	creds := domain.ProviderCredentials{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		RedirectURI:  req.RedirectURI,
	}
	if err := s.connections.SaveCredentials(r.Context(), UserID(r.Context()), creds); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCredentialStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.connections.CredentialStatus(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	url, err := s.connections.AuthorizeURL(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthorizeResponse{AuthorizeURL: url})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		writeError(w, http.StatusBadRequest, "authorization_denied", "provider authorization failed: "+reason)
		return
	}

	userID, err := s.connections.CompleteAuthorization(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConnectedResponse{Status: "connected", UserID: userID})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.connections.Disconnect(r.Context(), UserID(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import endpoint

// handleImport runs a full import while holding the user's import lock.
// The lock is renewed for as long as the import runs.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	lockName := "import:" + userID

	token, acquired, err := s.importLock.Acquire(r.Context(), lockName, s.lockTTL)
	if err != nil {
		s.logger.Error("acquire import lock", "user_id", userID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "lock_unavailable", "import lock unavailable")
		return
	}
	if !acquired {
		s.writeServiceError(w, r, domain.ErrImportInProgress)
		return
	}
	defer func() {
		if err := s.importLock.Release(context.WithoutCancel(r.Context()), lockName, token); err != nil {
			s.logger.Warn("release import lock", "user_id", userID, "error", err)
		}
	}()

	ctx, cancel := context.WithCancelCause(r.Context())
	defer cancel(nil)
	stop := s.keepImportLock(ctx, cancel, userID, lockName, token)

	result, err := s.imports.ImportAll(ctx, userID)
	stop()
	if err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, domain.ErrLockNotHeld) {
			err = cause
		}
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeServiceError maps domain errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var rateLimited *domain.RateLimitExceededError
	var providerErr *domain.ProviderError

	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		writeError(w, http.StatusPreconditionFailed, "credentials_missing", "provider credentials not configured")
	case errors.Is(err, domain.ErrNotConnected):
		writeError(w, http.StatusPreconditionFailed, "not_connected", "provider not connected")
	case errors.Is(err, domain.ErrImportInProgress):
		writeError(w, http.StatusConflict, "import_in_progress", "an import is already running")
	case errors.Is(err, domain.ErrLockNotHeld):
		writeError(w, http.StatusConflict, "import_lock_lost", "import stopped after losing its lock")
	case errors.As(err, &rateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rateLimited)))
		writeError(w, http.StatusServiceUnavailable, "rate_limited", "provider rate limit exceeded")
	case errors.As(err, &providerErr):
		s.logger.Warn("provider request failed", "path", r.URL.Path, "op", providerErr.Op, "status", providerErr.StatusCode)
		writeError(w, http.StatusBadGateway, "provider_error", "provider request failed")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func retryAfterSeconds(err *domain.RateLimitExceededError) int {
	secs := int(math.Ceil(err.LastWait.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
