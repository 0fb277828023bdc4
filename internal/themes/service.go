// Package themes resolves which palette applies to a project and guards the
// admin allow-list of selectable palettes.
package themes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/events"
	"github.com/codr1/Sitecraft/internal/models"
)

// Catalog is the read side of the palette registry.
type Catalog interface {
	Get(key string) models.Palette
	Lookup(key string) (models.Palette, bool)
	Has(key string) bool
	Keys() []string
	List() []models.Palette
	DefaultKey() string
}

// Source records which level of the cascade produced an effective theme.
type Source string

const (
	SourceProject Source = "project"
	SourceGlobal  Source = "global"
	SourceDefault Source = "default"
)

type Effective struct {
	Key       string `json:"key"`
	Source    Source `json:"source"`
	ProjectID *int64 `json:"projectId,omitempty"`
}

type Service struct {
	catalog Catalog
	store   Store
	hub     *events.Hub
	cache   *effectiveCache
}

// NewService wires the cascade. hub may be nil when nothing listens for
// changes; a non-positive cacheTTL disables caching.
func NewService(catalog Catalog, store Store, hub *events.Hub, cacheTTL time.Duration) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		hub:     hub,
		cache:   newEffectiveCache(cacheTTL),
	}
}

func (s *Service) Catalog() Catalog {
	return s.catalog
}

// ResolveEffectiveTheme returns the palette that applies to the project, or
// to the deployment when projectID is nil. It never fails: store errors are
// logged and the registry default is used.
func (s *Service) ResolveEffectiveTheme(ctx context.Context, projectID *int64) models.Palette {
	return s.catalog.Get(s.ResolveEffective(ctx, projectID).Key)
}

// ResolveEffective is ResolveEffectiveTheme without the palette lookup.
func (s *Service) ResolveEffective(ctx context.Context, projectID *int64) Effective {
	cacheKey := cacheKeyFor(projectID)
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached
	}

	gen := s.cache.currentGeneration()
	effective, cacheable := s.resolve(ctx, projectID)
	if cacheable {
		s.cache.putIfGeneration(cacheKey, effective, gen)
	}
	return effective
}

func (s *Service) resolve(ctx context.Context, projectID *int64) (Effective, bool) {
	if projectID == nil {
		return s.resolveGlobal(ctx)
	}

	logger := log.Ctx(ctx)
	id := *projectID

	pt, err := s.store.GetProjectTheme(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			logger.Warn().Int64("project_id", id).Msg("Project not found, using global theme")
		} else {
			logger.Error().Err(err).Int64("project_id", id).Msg("Failed to load project theme, using global theme")
		}
		effective, _ := s.resolveGlobal(ctx)
		effective.ProjectID = &id
		return effective, false
	}

	if pt.UseGlobalTheme || pt.ColorTheme == nil || *pt.ColorTheme == "" {
		effective, cacheable := s.resolveGlobal(ctx)
		effective.ProjectID = &id
		return effective, cacheable
	}

	if !s.catalog.Has(*pt.ColorTheme) {
		logger.Warn().
			Int64("project_id", id).
			Str("theme_key", *pt.ColorTheme).
			Msg("Project theme is not in the palette catalog, using default")
		return Effective{Key: s.catalog.DefaultKey(), Source: SourceDefault, ProjectID: &id}, true
	}
	return Effective{Key: *pt.ColorTheme, Source: SourceProject, ProjectID: &id}, true
}

func (s *Service) resolveGlobal(ctx context.Context) (Effective, bool) {
	logger := log.Ctx(ctx)
	fallback := Effective{Key: s.catalog.DefaultKey(), Source: SourceDefault}

	settings, err := s.store.GetGlobalSettings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load global theme, using default")
		return fallback, false
	}
	if settings.GlobalTheme == "" {
		return fallback, true
	}
	if !s.catalog.Has(settings.GlobalTheme) {
		logger.Warn().Str("theme_key", settings.GlobalTheme).Msg("Global theme is not in the palette catalog, using default")
		return fallback, true
	}
	return Effective{Key: settings.GlobalTheme, Source: SourceGlobal}, true
}

// GetGlobalTheme returns the stored global theme, or the registry default
// when none is stored or the stored key is unknown.
func (s *Service) GetGlobalTheme(ctx context.Context) (string, error) {
	settings, err := s.store.GetGlobalSettings(ctx)
	if err != nil {
		return "", err
	}
	return s.activeGlobal(settings), nil
}

// SetGlobalTheme persists key as the global theme. The key must exist and be
// enabled; otherwise the prior setting is left untouched.
func (s *Service) SetGlobalTheme(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if !s.catalog.Has(key) {
		return invalidThemeKey(key)
	}

	_, err := s.store.UpdateGlobalSettings(ctx, func(settings *GlobalSettings) error {
		if !enabledIn(settings.EnabledThemes, key) {
			return availabilityError("theme %q is not enabled", key)
		}
		settings.GlobalTheme = key
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.clear()
	s.hub.Publish(events.Event{Type: events.GlobalThemeChanged, ThemeKey: key})
	log.Ctx(ctx).Info().Str("theme_key", key).Msg("Global theme updated")
	return nil
}

func (s *Service) GetProjectTheme(ctx context.Context, projectID int64) (ProjectTheme, error) {
	return s.store.GetProjectTheme(ctx, projectID)
}

// SetProjectTheme switches a project between the global theme and its own
// override. key is required, known and enabled unless useGlobal is set.
func (s *Service) SetProjectTheme(ctx context.Context, projectID int64, key *string, useGlobal bool) (ProjectTheme, error) {
	var themeKey string
	if !useGlobal {
		if key == nil || strings.TrimSpace(*key) == "" {
			return ProjectTheme{}, fmt.Errorf("%w: a theme key is required unless the project uses the global theme", ErrInvalidThemeKey)
		}
		themeKey = strings.TrimSpace(*key)
		if !s.catalog.Has(themeKey) {
			return ProjectTheme{}, invalidThemeKey(themeKey)
		}
	}

	updated, err := s.store.UpdateProjectTheme(ctx, projectID, func(settings GlobalSettings, pt *ProjectTheme) error {
		if useGlobal {
			pt.UseGlobalTheme = true
			pt.ColorTheme = nil
			return nil
		}
		if !enabledIn(settings.EnabledThemes, themeKey) {
			return availabilityError("theme %q is not enabled", themeKey)
		}
		pt.UseGlobalTheme = false
		pt.ColorTheme = &themeKey
		return nil
	})
	if err != nil {
		return ProjectTheme{}, err
	}

	s.cache.delete(projectCacheKey(projectID))
	s.hub.Publish(events.Event{
		Type:      events.ProjectThemeChanged,
		ProjectID: &projectID,
		ThemeKey:  themeKey,
	})
	log.Ctx(ctx).Info().
		Int64("project_id", projectID).
		Str("theme_key", themeKey).
		Bool("use_global_theme", updated.UseGlobalTheme).
		Msg("Project theme updated")
	return updated, nil
}

// SweepCache drops expired effective-theme entries.
func (s *Service) SweepCache() int {
	return s.cache.sweep()
}

// InvalidateCache forgets every resolved theme.
func (s *Service) InvalidateCache() {
	s.cache.clear()
}

// activeGlobal is the key the allow-list must always contain.
func (s *Service) activeGlobal(settings GlobalSettings) string {
	if settings.GlobalTheme == "" || !s.catalog.Has(settings.GlobalTheme) {
		return s.catalog.DefaultKey()
	}
	return settings.GlobalTheme
}
