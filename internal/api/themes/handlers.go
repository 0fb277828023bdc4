// internal/api/themes/handlers.go
package themes

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/api/apiutil"
	"github.com/codr1/Sitecraft/internal/api/htmx"
	"github.com/codr1/Sitecraft/internal/events"
	"github.com/codr1/Sitecraft/internal/models"
	"github.com/codr1/Sitecraft/internal/request"
	themetempl "github.com/codr1/Sitecraft/internal/templates/components/themes"
	"github.com/codr1/Sitecraft/internal/templates/layouts"
	themesvc "github.com/codr1/Sitecraft/internal/themes"
)

const (
	themeQueryTimeout = 5 * time.Second
	paletteKeyParam   = "key"
)

var (
	service     themeService
	hub         *events.Hub
	serviceOnce sync.Once
)

type themeService interface {
	Catalog() themesvc.Catalog
	ResolveEffective(ctx context.Context, projectID *int64) themesvc.Effective
	GetGlobalTheme(ctx context.Context) (string, error)
	SetGlobalTheme(ctx context.Context, key string) error
	GetEnabledThemes(ctx context.Context) ([]string, error)
	EnabledKeys(ctx context.Context) ([]string, error)
	SetEnabledThemes(ctx context.Context, keys []string) ([]string, error)
	ResetEnabledThemes(ctx context.Context) error
	ToggleTheme(ctx context.Context, key string) (bool, []string, error)
}

type globalThemeRequest struct {
	Key string `json:"key"`
}

type enabledThemesRequest struct {
	Themes []string `json:"themes"`
}

type enabledThemesResponse struct {
	Enabled    []string `json:"enabled"`
	Keys       []string `json:"keys"`
	AllEnabled bool     `json:"allEnabled"`
}

type effectiveResponse struct {
	themesvc.Effective
	Palette models.Palette `json:"palette"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *themesvc.Service, eventHub *events.Hub) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
		hub = eventHub
	})
}

func loadService() themeService {
	return service
}

// /api/v1/palettes
func HandlePalettesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	enabled, err := svc.EnabledKeys(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load enabled themes")
		http.Error(w, "Failed to load palettes", http.StatusInternalServerError)
		return
	}
	active, err := svc.GetGlobalTheme(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load global theme")
		http.Error(w, "Failed to load palettes", http.StatusInternalServerError)
		return
	}

	catalog := svc.Catalog()
	options := themetempl.NewPaletteOptions(catalog.List(), enabled, active)
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"palettes":   options,
		"defaultKey": catalog.DefaultKey(),
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write palettes response")
	}
}

// /api/v1/palettes/{key}
func HandlePaletteDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	key := strings.TrimSpace(r.PathValue(paletteKeyParam))
	palette, ok := svc.Catalog().Lookup(key)
	if !ok {
		http.Error(w, "Palette not found", http.StatusNotFound)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, palette); err != nil {
		logger.Error().Err(err).Str("theme_key", key).Msg("Failed to write palette response")
	}
}

// GET /api/v1/themes/global
func HandleGlobalThemeGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	key, err := svc.GetGlobalTheme(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load global theme")
		http.Error(w, "Failed to load global theme", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]string{"key": key}); err != nil {
		logger.Error().Err(err).Msg("Failed to write global theme response")
	}
}

// PUT /api/v1/themes/global
func HandleGlobalThemeUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireAdmin(w, r) {
		return
	}

	var req globalThemeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	if err := svc.SetGlobalTheme(ctx, key); err != nil {
		writeServiceError(w, r, err, "Failed to update global theme")
		return
	}

	if htmx.IsRequest(r) {
		htmx.Trigger(w, htmx.ThemeChangedEvent, map[string]string{"key": key})
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Global theme updated")
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]string{"key": key}); err != nil {
		logger.Error().Err(err).Str("theme_key", key).Msg("Failed to write global theme response")
	}
}

// GET /api/v1/themes/enabled
func HandleEnabledThemesGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	resp, err := loadEnabledThemes(ctx, svc)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load enabled themes")
		http.Error(w, "Failed to load enabled themes", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write enabled themes response")
	}
}

// PUT /api/v1/themes/enabled
func HandleEnabledThemesUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireAdmin(w, r) {
		return
	}

	var req enabledThemesRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Themes == nil {
		http.Error(w, "themes is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	if _, err := svc.SetEnabledThemes(ctx, req.Themes); err != nil {
		writeServiceError(w, r, err, "Failed to update enabled themes")
		return
	}
	writeEnabledThemes(ctx, w, r, svc, "Enabled themes updated")
}

// DELETE /api/v1/themes/enabled
func HandleEnabledThemesReset(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireAdmin(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	if err := svc.ResetEnabledThemes(ctx); err != nil {
		writeServiceError(w, r, err, "Failed to reset enabled themes")
		return
	}
	writeEnabledThemes(ctx, w, r, svc, "All themes enabled")
}

// POST /api/v1/themes/enabled/{key}/toggle
func HandleThemeToggle(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireAdmin(w, r) {
		return
	}

	key := strings.TrimSpace(r.PathValue(paletteKeyParam))
	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	enabled, keys, err := svc.ToggleTheme(ctx, key)
	if err != nil {
		writeServiceError(w, r, err, "Failed to toggle theme")
		return
	}

	if htmx.IsRequest(r) {
		htmx.Trigger(w, htmx.ThemeChangedEvent, map[string]any{"key": key, "enabled": enabled})
		message := "Theme disabled"
		if enabled {
			message = "Theme enabled"
		}
		apiutil.WriteHTMLFeedback(w, http.StatusOK, message)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"key":     key,
		"enabled": enabled,
		"themes":  keys,
	}); err != nil {
		logger.Error().Err(err).Str("theme_key", key).Msg("Failed to write toggle response")
	}
}

// /api/v1/themes/effective?project_id=
func HandleEffectiveTheme(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	projectID, err := request.ProjectIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	effective := svc.ResolveEffective(ctx, projectID)
	resp := effectiveResponse{
		Effective: effective,
		Palette:   svc.Catalog().Get(effective.Key),
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Str("theme_key", effective.Key).Msg("Failed to write effective theme response")
	}
}

// /api/v1/themes/css?project_id=
func HandleThemeCSS(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	projectID, err := request.ProjectIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	effective := svc.ResolveEffective(ctx, projectID)
	palette := svc.Catalog().Get(effective.Key)
	w.Header().Set("Cache-Control", "no-cache")

	if strings.Contains(r.Header.Get("Accept"), "text/css") {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		if _, err := w.Write([]byte(layouts.ThemeCSSVars(palette))); err != nil {
			logger.Error().Err(err).Msg("Failed to write theme css")
		}
		return
	}

	apiutil.RenderHTMLComponent(r.Context(), w, layouts.ThemeStyle(palette), "", "Failed to render theme style", "Failed to render theme")
}

func loadEnabledThemes(ctx context.Context, svc themeService) (enabledThemesResponse, error) {
	stored, err := svc.GetEnabledThemes(ctx)
	if err != nil {
		return enabledThemesResponse{}, err
	}
	keys, err := svc.EnabledKeys(ctx)
	if err != nil {
		return enabledThemesResponse{}, err
	}
	return enabledThemesResponse{
		Enabled:    stored,
		Keys:       keys,
		AllEnabled: len(stored) == 0,
	}, nil
}

func writeEnabledThemes(ctx context.Context, w http.ResponseWriter, r *http.Request, svc themeService, message string) {
	logger := log.Ctx(r.Context())

	resp, err := loadEnabledThemes(ctx, svc)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to reload enabled themes")
		http.Error(w, "Failed to load enabled themes", http.StatusInternalServerError)
		return
	}

	if htmx.IsRequest(r) {
		htmx.Trigger(w, htmx.ThemeChangedEvent, map[string]any{"themes": resp.Keys})
		apiutil.WriteHTMLFeedback(w, http.StatusOK, message)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write enabled themes response")
	}
}

// writeServiceError maps theme service errors onto status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logMessage string) {
	var validation *themesvc.ValidationError
	switch {
	case errors.Is(err, themesvc.ErrInvalidThemeKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &validation):
		http.Error(w, validation.Reason, http.StatusConflict)
	case errors.Is(err, themesvc.ErrProjectNotFound):
		http.Error(w, "Project not found", http.StatusNotFound)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg(logMessage)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
