package themes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/codr1/Sitecraft/internal/db"
	dbgen "github.com/codr1/Sitecraft/internal/db/generated"
)

const (
	globalThemeSettingKey   = "global_color_theme"
	enabledThemesSettingKey = "enabled_themes"
)

// GlobalSettings is the deployment-wide theme state.
type GlobalSettings struct {
	// GlobalTheme is empty until an admin picks one.
	GlobalTheme string
	// EnabledThemes is the allow-list. Empty means every palette is enabled.
	EnabledThemes []string
}

func (s GlobalSettings) clone() GlobalSettings {
	out := s
	out.EnabledThemes = append([]string(nil), s.EnabledThemes...)
	return out
}

// ProjectTheme is a project's theme override. ColorTheme is nil whenever
// UseGlobalTheme is set.
type ProjectTheme struct {
	ProjectID      int64   `json:"projectId"`
	ColorTheme     *string `json:"colorTheme"`
	UseGlobalTheme bool    `json:"useGlobalTheme"`
}

// Store persists theme settings. The Update methods run fn inside a single
// transaction so checks made in fn hold when the write lands; an error from
// fn aborts the write.
type Store interface {
	GetGlobalSettings(ctx context.Context) (GlobalSettings, error)
	UpdateGlobalSettings(ctx context.Context, fn func(*GlobalSettings) error) (GlobalSettings, error)
	GetProjectTheme(ctx context.Context, projectID int64) (ProjectTheme, error)
	UpdateProjectTheme(ctx context.Context, projectID int64, fn func(GlobalSettings, *ProjectTheme) error) (ProjectTheme, error)
}

// SQLStore keeps global settings as app_settings rows and project overrides
// on the projects table.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

func (s *SQLStore) GetGlobalSettings(ctx context.Context) (GlobalSettings, error) {
	return loadGlobalSettings(ctx, s.db.Queries)
}

func (s *SQLStore) UpdateGlobalSettings(ctx context.Context, fn func(*GlobalSettings) error) (GlobalSettings, error) {
	var updated GlobalSettings
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		current, err := loadGlobalSettings(ctx, tx.Queries)
		if err != nil {
			return err
		}
		next := current.clone()
		if err := fn(&next); err != nil {
			return err
		}

		if next.GlobalTheme != current.GlobalTheme {
			if err := tx.Queries.UpsertAppSetting(ctx, dbgen.UpsertAppSettingParams{
				Key:   globalThemeSettingKey,
				Value: next.GlobalTheme,
			}); err != nil {
				return fmt.Errorf("save global theme: %w", err)
			}
		}
		if !slices.Equal(next.EnabledThemes, current.EnabledThemes) {
			keys := next.EnabledThemes
			if keys == nil {
				keys = []string{}
			}
			encoded, err := json.Marshal(keys)
			if err != nil {
				return fmt.Errorf("encode enabled themes: %w", err)
			}
			if err := tx.Queries.UpsertAppSetting(ctx, dbgen.UpsertAppSettingParams{
				Key:   enabledThemesSettingKey,
				Value: string(encoded),
			}); err != nil {
				return fmt.Errorf("save enabled themes: %w", err)
			}
		}

		updated = next
		return nil
	})
	if err != nil {
		return GlobalSettings{}, err
	}
	return updated, nil
}

func (s *SQLStore) GetProjectTheme(ctx context.Context, projectID int64) (ProjectTheme, error) {
	row, err := s.db.Queries.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProjectTheme{}, fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
		}
		return ProjectTheme{}, fmt.Errorf("load project %d: %w", projectID, err)
	}
	return projectThemeFromDB(row), nil
}

func (s *SQLStore) UpdateProjectTheme(ctx context.Context, projectID int64, fn func(GlobalSettings, *ProjectTheme) error) (ProjectTheme, error) {
	var updated ProjectTheme
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		settings, err := loadGlobalSettings(ctx, tx.Queries)
		if err != nil {
			return err
		}
		row, err := tx.Queries.GetProject(ctx, projectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
			}
			return fmt.Errorf("load project %d: %w", projectID, err)
		}

		next := projectThemeFromDB(row)
		if err := fn(settings, &next); err != nil {
			return err
		}
		if next.UseGlobalTheme {
			next.ColorTheme = nil
		}

		colorTheme := sql.NullString{}
		if next.ColorTheme != nil {
			colorTheme = sql.NullString{String: *next.ColorTheme, Valid: true}
		}
		rows, err := tx.Queries.UpdateProjectTheme(ctx, dbgen.UpdateProjectThemeParams{
			ColorTheme:     colorTheme,
			UseGlobalTheme: next.UseGlobalTheme,
			ID:             projectID,
		})
		if err != nil {
			return fmt.Errorf("save project %d theme: %w", projectID, err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
		}
		updated = next
		return nil
	})
	if err != nil {
		return ProjectTheme{}, err
	}
	return updated, nil
}

func loadGlobalSettings(ctx context.Context, q *dbgen.Queries) (GlobalSettings, error) {
	var settings GlobalSettings

	row, err := q.GetAppSetting(ctx, globalThemeSettingKey)
	switch {
	case err == nil:
		settings.GlobalTheme = row.Value
	case errors.Is(err, sql.ErrNoRows):
	default:
		return GlobalSettings{}, fmt.Errorf("load global theme: %w", err)
	}

	row, err = q.GetAppSetting(ctx, enabledThemesSettingKey)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(row.Value), &settings.EnabledThemes); err != nil {
			return GlobalSettings{}, fmt.Errorf("decode enabled themes: %w", err)
		}
		if len(settings.EnabledThemes) == 0 {
			settings.EnabledThemes = nil
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return GlobalSettings{}, fmt.Errorf("load enabled themes: %w", err)
	}

	return settings, nil
}

func projectThemeFromDB(row dbgen.Project) ProjectTheme {
	pt := ProjectTheme{
		ProjectID:      row.ID,
		UseGlobalTheme: row.UseGlobalTheme,
	}
	if row.ColorTheme.Valid && !row.UseGlobalTheme {
		key := row.ColorTheme.String
		pt.ColorTheme = &key
	}
	return pt
}
