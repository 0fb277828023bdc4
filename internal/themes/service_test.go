package themes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Sitecraft/internal/events"
	"github.com/codr1/Sitecraft/internal/palette"
)

type mockStore struct {
	mu       sync.Mutex
	settings GlobalSettings
	projects map[int64]ProjectTheme
	err      error

	globalReads  int
	projectReads int
}

func newMockStore() *mockStore {
	return &mockStore{projects: make(map[int64]ProjectTheme)}
}

func (m *mockStore) GetGlobalSettings(context.Context) (GlobalSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalReads++
	if m.err != nil {
		return GlobalSettings{}, m.err
	}
	return m.settings.clone(), nil
}

func (m *mockStore) UpdateGlobalSettings(_ context.Context, fn func(*GlobalSettings) error) (GlobalSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return GlobalSettings{}, m.err
	}
	next := m.settings.clone()
	if err := fn(&next); err != nil {
		return GlobalSettings{}, err
	}
	m.settings = next
	return next.clone(), nil
}

func (m *mockStore) GetProjectTheme(_ context.Context, projectID int64) (ProjectTheme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectReads++
	if m.err != nil {
		return ProjectTheme{}, m.err
	}
	pt, ok := m.projects[projectID]
	if !ok {
		return ProjectTheme{}, fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
	}
	return pt, nil
}

func (m *mockStore) UpdateProjectTheme(_ context.Context, projectID int64, fn func(GlobalSettings, *ProjectTheme) error) (ProjectTheme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return ProjectTheme{}, m.err
	}
	pt, ok := m.projects[projectID]
	if !ok {
		return ProjectTheme{}, fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
	}
	if err := fn(m.settings.clone(), &pt); err != nil {
		return ProjectTheme{}, err
	}
	if pt.UseGlobalTheme {
		pt.ColorTheme = nil
	}
	m.projects[projectID] = pt
	return pt, nil
}

func (m *mockStore) enabled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.settings.EnabledThemes)
}

func strPtr(value string) *string {
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}

func newTestService(t *testing.T, store Store, ttl time.Duration) (*Service, *events.Hub) {
	t.Helper()
	registry, err := palette.Load("", "")
	if err != nil {
		t.Fatalf("load palettes: %v", err)
	}
	hub := events.NewHub()
	return NewService(registry, store, hub, ttl), hub
}

func recordEvents(hub *events.Hub) *[]events.Event {
	var got []events.Event
	hub.Subscribe(func(e events.Event) {
		got = append(got, e)
	})
	return &got
}

func TestResolveEffectiveTheme_NoProject(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(t, store, 0)
	ctx := context.Background()

	if got := svc.ResolveEffectiveTheme(ctx, nil).Key; got != "earth-tone" {
		t.Fatalf("unset global resolved to %q, want earth-tone", got)
	}
	if got := svc.ResolveEffective(ctx, nil).Source; got != SourceDefault {
		t.Fatalf("unset global source = %q, want default", got)
	}

	store.settings.GlobalTheme = "futuristic"
	effective := svc.ResolveEffective(ctx, nil)
	if effective.Key != "futuristic" || effective.Source != SourceGlobal {
		t.Fatalf("ResolveEffective(nil) = %+v, want futuristic from global", effective)
	}
}

func TestResolveEffectiveTheme_CascadePrecedence(t *testing.T) {
	store := newMockStore()
	store.settings.GlobalTheme = "futuristic"
	// Inconsistent row: the flag wins over the stale stored key.
	store.projects[1] = ProjectTheme{ProjectID: 1, ColorTheme: strPtr("molten-core"), UseGlobalTheme: true}
	store.projects[2] = ProjectTheme{ProjectID: 2, ColorTheme: strPtr("pastel"), UseGlobalTheme: false}
	store.projects[3] = ProjectTheme{ProjectID: 3, ColorTheme: nil, UseGlobalTheme: false}
	svc, _ := newTestService(t, store, 0)
	ctx := context.Background()

	tests := []struct {
		projectID  int64
		wantKey    string
		wantSource Source
	}{
		{projectID: 1, wantKey: "futuristic", wantSource: SourceGlobal},
		{projectID: 2, wantKey: "pastel", wantSource: SourceProject},
		{projectID: 3, wantKey: "futuristic", wantSource: SourceGlobal},
		{projectID: 99, wantKey: "futuristic", wantSource: SourceGlobal},
	}
	for _, test := range tests {
		effective := svc.ResolveEffective(ctx, int64Ptr(test.projectID))
		if effective.Key != test.wantKey || effective.Source != test.wantSource {
			t.Fatalf("project %d resolved to %+v, want %s from %s", test.projectID, effective, test.wantKey, test.wantSource)
		}
		if effective.ProjectID == nil || *effective.ProjectID != test.projectID {
			t.Fatalf("project %d result carries project id %v", test.projectID, effective.ProjectID)
		}
		if got := svc.ResolveEffectiveTheme(ctx, int64Ptr(test.projectID)).Key; got != test.wantKey {
			t.Fatalf("ResolveEffectiveTheme(%d) = %q, want %q", test.projectID, got, test.wantKey)
		}
	}
}

func TestResolveEffectiveTheme_UnknownKeysFallBackToDefault(t *testing.T) {
	store := newMockStore()
	store.settings.GlobalTheme = "retired-palette"
	store.projects[5] = ProjectTheme{ProjectID: 5, ColorTheme: strPtr("also-retired")}
	svc, _ := newTestService(t, store, 0)
	ctx := context.Background()

	if got := svc.ResolveEffective(ctx, nil); got.Key != "earth-tone" || got.Source != SourceDefault {
		t.Fatalf("unknown global resolved to %+v", got)
	}
	if got := svc.ResolveEffective(ctx, int64Ptr(5)); got.Key != "earth-tone" || got.Source != SourceDefault {
		t.Fatalf("unknown project override resolved to %+v", got)
	}
	key, err := svc.GetGlobalTheme(ctx)
	if err != nil || key != "earth-tone" {
		t.Fatalf("GetGlobalTheme() = %q, %v, want earth-tone", key, err)
	}
}

func TestResolveEffectiveTheme_StoreErrorNeverFails(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("database is locked")
	svc, _ := newTestService(t, store, time.Minute)
	ctx := context.Background()

	if got := svc.ResolveEffectiveTheme(ctx, int64Ptr(1)).Key; got != "earth-tone" {
		t.Fatalf("store failure resolved to %q, want earth-tone", got)
	}
	if svc.cache.len() != 0 {
		t.Fatalf("failed resolution was cached")
	}
}

func TestSetGlobalTheme_RoundTrip(t *testing.T) {
	store := newMockStore()
	svc, hub := newTestService(t, store, 0)
	got := recordEvents(hub)
	ctx := context.Background()

	if err := svc.SetGlobalTheme(ctx, "molten-core"); err != nil {
		t.Fatalf("SetGlobalTheme() error = %v", err)
	}
	key, err := svc.GetGlobalTheme(ctx)
	if err != nil {
		t.Fatalf("GetGlobalTheme() error = %v", err)
	}
	if key != "molten-core" {
		t.Fatalf("GetGlobalTheme() = %q, want molten-core", key)
	}
	if len(*got) != 1 || (*got)[0].Type != events.GlobalThemeChanged || (*got)[0].ThemeKey != "molten-core" {
		t.Fatalf("events = %+v, want one global_theme_changed", *got)
	}
}

func TestSetGlobalTheme_Rejections(t *testing.T) {
	store := newMockStore()
	store.settings = GlobalSettings{GlobalTheme: "pastel", EnabledThemes: []string{"earth-tone", "pastel"}}
	svc, hub := newTestService(t, store, 0)
	got := recordEvents(hub)
	ctx := context.Background()

	err := svc.SetGlobalTheme(ctx, "no-such-theme")
	if !errors.Is(err, ErrInvalidThemeKey) {
		t.Fatalf("SetGlobalTheme(unknown) error = %v, want ErrInvalidThemeKey", err)
	}

	err = svc.SetGlobalTheme(ctx, "futuristic")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || !errors.Is(err, ErrThemeAvailability) {
		t.Fatalf("SetGlobalTheme(disabled) error = %v, want ValidationError", err)
	}

	if store.settings.GlobalTheme != "pastel" {
		t.Fatalf("global theme changed to %q after rejected writes", store.settings.GlobalTheme)
	}
	if len(*got) != 0 {
		t.Fatalf("rejected writes published %d events", len(*got))
	}
}

func TestSetEnabledThemes_AvailabilityInvariant(t *testing.T) {
	store := newMockStore()
	store.settings = GlobalSettings{GlobalTheme: "futuristic", EnabledThemes: []string{"futuristic"}}
	svc, hub := newTestService(t, store, 0)
	got := recordEvents(hub)
	ctx := context.Background()

	_, err := svc.SetEnabledThemes(ctx, []string{})
	if !errors.Is(err, ErrThemeAvailability) {
		t.Fatalf("SetEnabledThemes([]) error = %v, want ErrThemeAvailability", err)
	}

	_, _, err = svc.ToggleTheme(ctx, "futuristic")
	if !errors.Is(err, ErrThemeAvailability) {
		t.Fatalf("ToggleTheme(last) error = %v, want ErrThemeAvailability", err)
	}

	if enabled := store.enabled(); !slices.Equal(enabled, []string{"futuristic"}) {
		t.Fatalf("enabled set = %v after rejections, want [futuristic]", enabled)
	}
	if len(*got) != 0 {
		t.Fatalf("rejected writes published %d events", len(*got))
	}
}

func TestSetEnabledThemes_ActiveGlobalProtection(t *testing.T) {
	store := newMockStore()
	store.settings.GlobalTheme = "futuristic"
	svc, _ := newTestService(t, store, 0)
	ctx := context.Background()

	_, err := svc.SetEnabledThemes(ctx, []string{"earth-tone", "pastel"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("SetEnabledThemes() error = %v, want ValidationError", err)
	}
	if len(store.enabled()) != 0 {
		t.Fatalf("enabled set changed to %v", store.enabled())
	}

	// With no global theme stored the registry default is the active one.
	store.settings.GlobalTheme = ""
	if _, err := svc.SetEnabledThemes(ctx, []string{"pastel"}); !errors.Is(err, ErrThemeAvailability) {
		t.Fatalf("SetEnabledThemes() without default error = %v, want ErrThemeAvailability", err)
	}
}

func TestSetEnabledThemes_NormalizesAndPublishes(t *testing.T) {
	store := newMockStore()
	store.settings.GlobalTheme = "pastel"
	svc, hub := newTestService(t, store, 0)
	got := recordEvents(hub)
	ctx := context.Background()

	keys, err := svc.SetEnabledThemes(ctx, []string{"molten-core", " pastel ", "earth-tone", "pastel"})
	if err != nil {
		t.Fatalf("SetEnabledThemes() error = %v", err)
	}
	want := []string{"earth-tone", "pastel", "molten-core"}
	if !slices.Equal(keys, want) || !slices.Equal(store.enabled(), want) {
		t.Fatalf("enabled = %v (stored %v), want %v", keys, store.enabled(), want)
	}
	if len(*got) != 1 || (*got)[0].Type != events.EnabledThemesChanged {
		t.Fatalf("events = %+v, want one enabled_themes_changed", *got)
	}

	if _, err := svc.SetEnabledThemes(ctx, []string{"pastel", "bogus"}); !errors.Is(err, ErrInvalidThemeKey) {
		t.Fatalf("SetEnabledThemes(bogus) error = %v, want ErrInvalidThemeKey", err)
	}

	for key, want := range map[string]bool{"pastel": true, "futuristic": false, "bogus": false} {
		enabled, err := svc.IsEnabled(ctx, key)
		if err != nil || enabled != want {
			t.Fatalf("IsEnabled(%q) = %v, %v, want %v", key, enabled, err, want)
		}
	}
}

func TestToggleTheme(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(t, store, 0)
	ctx := context.Background()

	enabled, keys, err := svc.ToggleTheme(ctx, "pastel")
	if err != nil {
		t.Fatalf("ToggleTheme(pastel) error = %v", err)
	}
	if enabled {
		t.Fatalf("ToggleTheme(pastel) from all-enabled reported enabled")
	}
	if slices.Contains(keys, "pastel") || len(keys) != len(svc.catalog.Keys())-1 {
		t.Fatalf("keys after disabling pastel = %v", keys)
	}

	enabled, keys, err = svc.ToggleTheme(ctx, "pastel")
	if err != nil || !enabled {
		t.Fatalf("ToggleTheme(pastel) again = %v, %v, want enabled", enabled, err)
	}
	if !slices.Equal(keys, svc.catalog.Keys()) {
		t.Fatalf("keys after re-enabling = %v, want catalog order %v", keys, svc.catalog.Keys())
	}

	if _, _, err := svc.ToggleTheme(ctx, "earth-tone"); !errors.Is(err, ErrThemeAvailability) {
		t.Fatalf("ToggleTheme(default global) error = %v, want ErrThemeAvailability", err)
	}

	if err := svc.ResetEnabledThemes(ctx); err != nil {
		t.Fatalf("ResetEnabledThemes() error = %v", err)
	}
	all, err := svc.GetEnabledThemes(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("GetEnabledThemes() after reset = %v, %v", all, err)
	}
	expanded, err := svc.EnabledKeys(ctx)
	if err != nil || !slices.Equal(expanded, svc.catalog.Keys()) {
		t.Fatalf("EnabledKeys() = %v, %v", expanded, err)
	}
}

func TestSetProjectTheme(t *testing.T) {
	store := newMockStore()
	store.settings.EnabledThemes = []string{"earth-tone", "pastel"}
	store.projects[7] = ProjectTheme{ProjectID: 7, UseGlobalTheme: true}
	svc, hub := newTestService(t, store, time.Minute)
	got := recordEvents(hub)
	ctx := context.Background()

	if key := svc.ResolveEffective(ctx, int64Ptr(7)).Key; key != "earth-tone" {
		t.Fatalf("initial project theme = %q", key)
	}

	pt, err := svc.SetProjectTheme(ctx, 7, strPtr("pastel"), false)
	if err != nil {
		t.Fatalf("SetProjectTheme() error = %v", err)
	}
	if pt.UseGlobalTheme || pt.ColorTheme == nil || *pt.ColorTheme != "pastel" {
		t.Fatalf("SetProjectTheme() = %+v", pt)
	}
	if key := svc.ResolveEffective(ctx, int64Ptr(7)).Key; key != "pastel" {
		t.Fatalf("project theme after override = %q, want pastel (cache not invalidated?)", key)
	}
	if len(*got) != 1 || (*got)[0].Type != events.ProjectThemeChanged || *(*got)[0].ProjectID != 7 {
		t.Fatalf("events = %+v, want one project_theme_changed for 7", *got)
	}

	pt, err = svc.SetProjectTheme(ctx, 7, strPtr("pastel"), true)
	if err != nil {
		t.Fatalf("SetProjectTheme(useGlobal) error = %v", err)
	}
	if !pt.UseGlobalTheme || pt.ColorTheme != nil {
		t.Fatalf("useGlobal did not clear stored theme: %+v", pt)
	}
}

func TestSetProjectTheme_Rejections(t *testing.T) {
	store := newMockStore()
	store.settings.EnabledThemes = []string{"earth-tone"}
	store.projects[7] = ProjectTheme{ProjectID: 7, UseGlobalTheme: true}
	svc, _ := newTestService(t, store, 0)
	ctx := context.Background()

	tests := []struct {
		name      string
		projectID int64
		key       *string
		want      error
	}{
		{name: "missing_key", projectID: 7, key: nil, want: ErrInvalidThemeKey},
		{name: "unknown_key", projectID: 7, key: strPtr("nope"), want: ErrInvalidThemeKey},
		{name: "disabled_key", projectID: 7, key: strPtr("pastel"), want: ErrThemeAvailability},
		{name: "unknown_project", projectID: 8, key: strPtr("earth-tone"), want: ErrProjectNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.SetProjectTheme(ctx, test.projectID, test.key, false)
			if !errors.Is(err, test.want) {
				t.Fatalf("SetProjectTheme() error = %v, want %v", err, test.want)
			}
		})
	}
	if pt := store.projects[7]; !pt.UseGlobalTheme || pt.ColorTheme != nil {
		t.Fatalf("project changed after rejected writes: %+v", pt)
	}
}

func TestProjectOverrideSurvivesLaterDisable(t *testing.T) {
	store := newMockStore()
	store.projects[3] = ProjectTheme{ProjectID: 3, UseGlobalTheme: true}
	svc, _ := newTestService(t, store, 0)
	ctx := context.Background()

	if _, err := svc.SetProjectTheme(ctx, 3, strPtr("neon-night"), false); err != nil {
		t.Fatalf("SetProjectTheme() error = %v", err)
	}
	if _, _, err := svc.ToggleTheme(ctx, "neon-night"); err != nil {
		t.Fatalf("ToggleTheme() error = %v", err)
	}
	if key := svc.ResolveEffective(ctx, int64Ptr(3)).Key; key != "neon-night" {
		t.Fatalf("disabled override resolved to %q, want neon-night", key)
	}
}

func TestEffectiveCache_TTLAndInvalidation(t *testing.T) {
	store := newMockStore()
	store.settings.GlobalTheme = "pastel"
	svc, _ := newTestService(t, store, 30*time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.cache.now = func() time.Time { return now }
	ctx := context.Background()

	if key := svc.ResolveEffective(ctx, nil).Key; key != "pastel" {
		t.Fatalf("first resolve = %q", key)
	}
	reads := store.globalReads

	// Out-of-band change is hidden until the entry expires.
	store.settings.GlobalTheme = "futuristic"
	if key := svc.ResolveEffective(ctx, nil).Key; key != "pastel" {
		t.Fatalf("cached resolve = %q, want pastel", key)
	}
	if store.globalReads != reads {
		t.Fatalf("cached resolve hit the store")
	}

	now = now.Add(31 * time.Second)
	if removed := svc.SweepCache(); removed != 1 {
		t.Fatalf("SweepCache() removed %d, want 1", removed)
	}
	if key := svc.ResolveEffective(ctx, nil).Key; key != "futuristic" {
		t.Fatalf("resolve after expiry = %q, want futuristic", key)
	}

	if err := svc.SetGlobalTheme(ctx, "molten-core"); err != nil {
		t.Fatalf("SetGlobalTheme() error = %v", err)
	}
	if key := svc.ResolveEffective(ctx, nil).Key; key != "molten-core" {
		t.Fatalf("resolve after write = %q, want molten-core", key)
	}
}

// writeDuringReadStore commits a global theme change after the first
// settings read has been taken but before it is returned.
type writeDuringReadStore struct {
	*mockStore
	once  sync.Once
	write func()
}

func (s *writeDuringReadStore) GetGlobalSettings(ctx context.Context) (GlobalSettings, error) {
	settings, err := s.mockStore.GetGlobalSettings(ctx)
	s.once.Do(s.write)
	return settings, err
}

func TestEffectiveCache_WriteDuringResolveIsNotCached(t *testing.T) {
	inner := newMockStore()
	inner.settings.GlobalTheme = "earth-tone"
	store := &writeDuringReadStore{mockStore: inner}
	svc, hub := newTestService(t, store, 30*time.Second)
	got := recordEvents(hub)
	ctx := context.Background()

	store.write = func() {
		if err := svc.SetGlobalTheme(ctx, "futuristic"); err != nil {
			t.Errorf("SetGlobalTheme() error = %v", err)
		}
	}

	if key := svc.ResolveEffective(ctx, nil).Key; key != "earth-tone" {
		t.Fatalf("in-flight resolve = %q, want earth-tone", key)
	}
	if len(*got) != 1 || (*got)[0].Type != events.GlobalThemeChanged {
		t.Fatalf("events = %+v, want one global_theme_changed", *got)
	}
	if n := svc.cache.len(); n != 0 {
		t.Fatalf("cache holds %d entries from a resolve that raced a write", n)
	}
	if key := svc.ResolveEffective(ctx, nil).Key; key != "futuristic" {
		t.Fatalf("resolve after write = %q, want futuristic", key)
	}
}

func TestEffectiveCache_PutIfGeneration(t *testing.T) {
	cache := newEffectiveCache(time.Minute)

	gen := cache.currentGeneration()
	cache.delete(projectCacheKey(7))
	if cache.putIfGeneration(globalCacheKey, Effective{Key: "pastel"}, gen) {
		t.Fatal("putIfGeneration() stored after delete")
	}

	gen = cache.currentGeneration()
	if !cache.putIfGeneration(globalCacheKey, Effective{Key: "pastel"}, gen) {
		t.Fatal("putIfGeneration() refused a current generation")
	}
	if got, ok := cache.get(globalCacheKey); !ok || got.Key != "pastel" {
		t.Fatalf("get() = %+v, %v", got, ok)
	}

	cache.clear()
	if cache.putIfGeneration(globalCacheKey, Effective{Key: "futuristic"}, gen) {
		t.Fatal("putIfGeneration() stored after clear")
	}
}
