package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/api/authz"
)

const maxRequestBodyBytes = 1 << 20

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("missing request body")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteHTMLFeedback writes a short escaped message for htmx swaps.
func WriteHTMLFeedback(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<div class="feedback">%s</div>`, templ.EscapeString(message))
}

// RenderHTMLComponent renders into a buffer first so a failed render can
// still produce a clean 500. It reports whether the response was written.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, contentType string, logMessage string, errorMessage string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMessage)
		http.Error(w, errorMessage, http.StatusInternalServerError)
		return false
	}
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to write rendered component")
		return false
	}
	return true
}

// RequireAdmin writes 401/403 and returns false unless the caller is an
// admin.
func RequireAdmin(w http.ResponseWriter, r *http.Request) bool {
	return writeAuthzError(w, r, authz.RequireAdmin(r.Context()), "Admin access denied")
}

// RequireUser writes 401 and returns false unless a caller is present.
func RequireUser(w http.ResponseWriter, r *http.Request) bool {
	return writeAuthzError(w, r, authz.RequireUser(r.Context()), "Access denied")
}

func writeAuthzError(w http.ResponseWriter, r *http.Request, err error, message string) bool {
	if err == nil {
		return true
	}
	logger := log.Ctx(r.Context())
	user := authz.UserFromContext(r.Context())
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		logger.Warn().Str("path", r.URL.Path).Msg(message + ": unauthenticated")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, authz.ErrForbidden):
		logEvent := logger.Warn().Str("path", r.URL.Path)
		if user != nil {
			logEvent = logEvent.Str("user_id", user.ID).Str("role", user.Role)
		}
		logEvent.Msg(message + ": forbidden")
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg(message + ": error")
		http.Error(w, "Failed to authorize request", http.StatusInternalServerError)
	}
	return false
}
