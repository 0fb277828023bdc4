// Package events fans theme and category changes out to in-process
// observers such as the SSE stream and the effective-theme cache.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Type string

const (
	GlobalThemeChanged   Type = "global_theme_changed"
	ProjectThemeChanged  Type = "project_theme_changed"
	EnabledThemesChanged Type = "enabled_themes_changed"
	CategoriesChanged    Type = "categories_changed"
	Heartbeat            Type = "heartbeat"
)

// Event describes one committed change.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	ProjectID *int64    `json:"projectId,omitempty"`
	ThemeKey  string    `json:"themeKey,omitempty"`
	Themes    []string  `json:"themes,omitempty"`
	At        time.Time `json:"at"`
}

// Observer is called synchronously from Publish. It must not block.
type Observer func(Event)

// Hub delivers events to every registered observer.
type Hub struct {
	mu        sync.RWMutex
	observers map[string]Observer
	now       func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		observers: make(map[string]Observer),
		now:       time.Now,
	}
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub) Subscribe(fn Observer) func() {
	id := uuid.NewString()

	h.mu.Lock()
	h.observers[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.observers, id)
			h.mu.Unlock()
		})
	}
}

// Len reports the number of registered observers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Publish stamps the event and delivers it to every observer. A panicking
// observer is logged and skipped.
func (h *Hub) Publish(event Event) Event {
	if h == nil {
		return event
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = h.now().UTC()
	}

	h.mu.RLock()
	observers := make([]Observer, 0, len(h.observers))
	for _, fn := range h.observers {
		observers = append(observers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range observers {
		deliver(fn, event)
	}
	return event
}

func deliver(fn Observer, event Event) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Interface("panic", p).
				Str("event_type", string(event.Type)).
				Str("event_id", event.ID).
				Msg("Event observer panicked")
		}
	}()
	fn(event)
}
