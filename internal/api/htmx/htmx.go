package htmx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ThemeChangedEvent is the client event fired after any theme write.
const ThemeChangedEvent = "themeChanged"

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// Trigger sets HX-Trigger. With a detail payload the header carries the
// JSON object form htmx expects.
func Trigger(w http.ResponseWriter, event string, detail any) {
	if detail == nil {
		w.Header().Set("HX-Trigger", event)
		return
	}
	encoded, err := json.Marshal(map[string]any{event: detail})
	if err != nil {
		w.Header().Set("HX-Trigger", event)
		return
	}
	w.Header().Set("HX-Trigger", string(encoded))
}
