package themes

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/events"
)

// GetEnabledThemes returns the stored allow-list. An empty result means
// every palette is enabled.
func (s *Service) GetEnabledThemes(ctx context.Context) ([]string, error) {
	settings, err := s.store.GetGlobalSettings(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{}, settings.EnabledThemes...), nil
}

// EnabledKeys expands the allow-list into catalog order.
func (s *Service) EnabledKeys(ctx context.Context) ([]string, error) {
	enabled, err := s.GetEnabledThemes(ctx)
	if err != nil {
		return nil, err
	}
	if len(enabled) == 0 {
		return s.catalog.Keys(), nil
	}
	return s.orderKeys(enabled), nil
}

// IsEnabled reports whether key may be selected. Unknown keys never are.
func (s *Service) IsEnabled(ctx context.Context, key string) (bool, error) {
	if !s.catalog.Has(key) {
		return false, nil
	}
	enabled, err := s.GetEnabledThemes(ctx)
	if err != nil {
		return false, err
	}
	return enabledIn(enabled, key), nil
}

// SetEnabledThemes replaces the allow-list. It fails with a ValidationError
// when keys is empty or leaves out the active global theme, and with
// ErrInvalidThemeKey for keys the catalog does not know.
func (s *Service) SetEnabledThemes(ctx context.Context, keys []string) ([]string, error) {
	normalized := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if !s.catalog.Has(key) {
			return nil, invalidThemeKey(key)
		}
		normalized = append(normalized, key)
	}
	normalized = s.orderKeys(normalized)

	return s.updateEnabled(ctx, func(GlobalSettings) ([]string, error) {
		return normalized, nil
	})
}

// ResetEnabledThemes clears the allow-list so every palette is enabled.
func (s *Service) ResetEnabledThemes(ctx context.Context) error {
	_, err := s.store.UpdateGlobalSettings(ctx, func(settings *GlobalSettings) error {
		settings.EnabledThemes = nil
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.Publish(events.Event{Type: events.EnabledThemesChanged})
	log.Ctx(ctx).Info().Msg("Enabled themes reset to all")
	return nil
}

// ToggleTheme flips one palette in the allow-list and reports whether it is
// now enabled. The invariants are re-checked inside the same transaction.
func (s *Service) ToggleTheme(ctx context.Context, key string) (bool, []string, error) {
	key = strings.TrimSpace(key)
	if !s.catalog.Has(key) {
		return false, nil, invalidThemeKey(key)
	}

	var nowEnabled bool
	keys, err := s.updateEnabled(ctx, func(current GlobalSettings) ([]string, error) {
		currentKeys := current.EnabledThemes
		if len(currentKeys) == 0 {
			currentKeys = s.catalog.Keys()
		}
		if slices.Contains(currentKeys, key) {
			nowEnabled = false
			return slices.DeleteFunc(slices.Clone(currentKeys), func(k string) bool { return k == key }), nil
		}
		nowEnabled = true
		return s.orderKeys(append(slices.Clone(currentKeys), key)), nil
	})
	if err != nil {
		return false, nil, err
	}
	return nowEnabled, keys, nil
}

func (s *Service) updateEnabled(ctx context.Context, next func(GlobalSettings) ([]string, error)) ([]string, error) {
	var result []string
	_, err := s.store.UpdateGlobalSettings(ctx, func(settings *GlobalSettings) error {
		keys, err := next(*settings)
		if err != nil {
			return err
		}
		if err := s.checkAvailability(*settings, keys); err != nil {
			return err
		}
		settings.EnabledThemes = keys
		result = keys
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(events.Event{Type: events.EnabledThemesChanged, Themes: result})
	log.Ctx(ctx).Info().Strs("enabled_themes", result).Msg("Enabled themes updated")
	return append([]string{}, result...), nil
}

func (s *Service) checkAvailability(settings GlobalSettings, keys []string) error {
	if len(keys) == 0 {
		return availabilityError("at least one theme must remain enabled")
	}
	active := s.activeGlobal(settings)
	if !slices.Contains(keys, active) {
		return availabilityError("theme %q is the active global theme and cannot be disabled", active)
	}
	return nil
}

// orderKeys dedupes keys and sorts them into catalog order.
func (s *Service) orderKeys(keys []string) []string {
	want := make(map[string]bool, len(keys))
	for _, key := range keys {
		want[key] = true
	}
	ordered := make([]string, 0, len(want))
	for _, key := range s.catalog.Keys() {
		if want[key] {
			ordered = append(ordered, key)
		}
	}
	return ordered
}

func enabledIn(enabled []string, key string) bool {
	return len(enabled) == 0 || slices.Contains(enabled, key)
}
