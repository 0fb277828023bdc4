// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/codr1/Sitecraft/internal/api"
	"github.com/codr1/Sitecraft/internal/api/projects"
	"github.com/codr1/Sitecraft/internal/api/themes"
	"github.com/codr1/Sitecraft/internal/config"
)

func newServer(cfg *config.Config, a *app) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithRecovery,
		api.WithLogging,
		api.WithRequestID,
	)

	themes.InitHandlers(a.themes, a.hub)
	projects.InitHandlers(a.categories, a.adapter, a.themes)

	// Register routes
	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Palette catalog
	mux.HandleFunc("GET /api/v1/palettes", themes.HandlePalettesList)
	mux.HandleFunc("GET /api/v1/palettes/{key}", themes.HandlePaletteDetail)

	// Theme settings
	mux.HandleFunc("GET /api/v1/themes/global", themes.HandleGlobalThemeGet)
	mux.HandleFunc("PUT /api/v1/themes/global", themes.HandleGlobalThemeUpdate)
	mux.HandleFunc("GET /api/v1/themes/enabled", themes.HandleEnabledThemesGet)
	mux.HandleFunc("PUT /api/v1/themes/enabled", themes.HandleEnabledThemesUpdate)
	mux.HandleFunc("DELETE /api/v1/themes/enabled", themes.HandleEnabledThemesReset)
	mux.HandleFunc("POST /api/v1/themes/enabled/{key}/toggle", themes.HandleThemeToggle)
	mux.HandleFunc("GET /api/v1/themes/effective", themes.HandleEffectiveTheme)
	mux.HandleFunc("GET /api/v1/themes/css", themes.HandleThemeCSS)
	mux.HandleFunc("GET /api/v1/themes/events", themes.HandleThemeEvents)

	// Projects and categories
	mux.HandleFunc("POST /api/v1/projects", projects.HandleProjectCreate)
	mux.HandleFunc("GET /api/v1/projects/{id}/theme", projects.HandleProjectThemeGet)
	mux.HandleFunc("PUT /api/v1/projects/{id}/theme", projects.HandleProjectThemeUpdate)
	mux.HandleFunc("GET /api/v1/projects/{id}/categories", projects.HandleCategoriesList)
	mux.HandleFunc("POST /api/v1/projects/{id}/categories", projects.HandleCategoryCreate)
	mux.HandleFunc("POST /api/v1/projects/{id}/categories/resolve", projects.HandleCategoriesResolve)
	mux.HandleFunc("PUT /api/v1/projects/{id}/categories/{categoryID}", projects.HandleCategoryUpdate)
	mux.HandleFunc("DELETE /api/v1/projects/{id}/categories/{categoryID}", projects.HandleCategoryDelete)
}
