// cmd/server/app.go
package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/categories"
	"github.com/codr1/Sitecraft/internal/config"
	"github.com/codr1/Sitecraft/internal/db"
	"github.com/codr1/Sitecraft/internal/events"
	"github.com/codr1/Sitecraft/internal/palette"
	"github.com/codr1/Sitecraft/internal/scheduler"
	"github.com/codr1/Sitecraft/internal/themes"
)

// app holds the long-lived services shared by the HTTP handlers.
type app struct {
	database   *db.DB
	hub        *events.Hub
	palettes   *palette.Registry
	themes     *themes.Service
	categories *categories.Service
	adapter    *categories.Adapter
	scheduler  *scheduler.Service
}

func newApp(cfg *config.Config) (*app, error) {
	registry, err := palette.Load(cfg.Themes.PalettesFile, cfg.Themes.DefaultPalette)
	if err != nil {
		return nil, fmt.Errorf("load palettes: %w", err)
	}
	log.Info().
		Int("palettes", len(registry.Keys())).
		Str("default_palette", registry.DefaultKey()).
		Msg("Palette registry loaded")

	templates, err := categories.LoadEmbeddedTemplates()
	if err != nil {
		return nil, fmt.Errorf("load category templates: %w", err)
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	hub := events.NewHub()
	categoryStore := categories.NewSQLStore(database)
	a := &app{
		database:   database,
		hub:        hub,
		palettes:   registry,
		themes:     themes.NewService(registry, themes.NewSQLStore(database), hub, cfg.Themes.CacheTTLDuration()),
		categories: categories.NewService(categoryStore, templates, hub),
		adapter:    categories.NewAdapter(categoryStore, templates),
	}

	sched, err := scheduler.New()
	if err != nil {
		database.Close()
		return nil, err
	}
	if err := scheduler.RegisterThemeJobs(sched, hub, a.themes, cfg.Themes.HeartbeatCron, cfg.Themes.CacheSweep); err != nil {
		_ = sched.Stop()
		database.Close()
		return nil, fmt.Errorf("register scheduler jobs: %w", err)
	}
	a.scheduler = sched

	return a, nil
}

// Close stops background jobs and closes the database. It is safe to call
// more than once.
func (a *app) Close() {
	if err := a.scheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to stop scheduler")
	}
	if err := a.database.Close(); err != nil {
		log.Debug().Err(err).Msg("Database close")
	}
}
