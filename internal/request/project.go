package request

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const projectIDKey = "project_id"

// ParseProjectID parses a positive int64 project ID from a query value.
func ParseProjectID(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	projectID, err := strconv.ParseInt(value, 10, 64)
	if err != nil || projectID <= 0 {
		return 0, false
	}

	return projectID, true
}

// ProjectIDFromRequest reads project_id from the query, or from the page URL
// htmx sends in HX-Current-URL. It returns nil when neither names a project
// and an error when the query value is malformed.
func ProjectIDFromRequest(r *http.Request) (*int64, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get(projectIDKey)); raw != "" {
		projectID, ok := ParseProjectID(raw)
		if !ok {
			return nil, fmt.Errorf("%s must be a positive integer", projectIDKey)
		}
		return &projectID, nil
	}

	currentURL := strings.TrimSpace(r.Header.Get("HX-Current-URL"))
	if currentURL == "" {
		return nil, nil
	}

	parsed, err := url.Parse(currentURL)
	if err != nil {
		log.Ctx(r.Context()).
			Debug().
			Err(err).
			Str("hx_current_url", currentURL).
			Msg("Failed to parse HX-Current-URL")
		return nil, nil
	}

	if projectID, ok := ParseProjectID(parsed.Query().Get(projectIDKey)); ok {
		return &projectID, nil
	}
	return nil, nil
}
