package request

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProjectIDFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		currentURL string
		want       int64
		wantNil    bool
		wantErr    bool
	}{
		{name: "absent", wantNil: true},
		{name: "query", query: "?project_id=12", want: 12},
		{name: "query_wins", query: "?project_id=12", currentURL: "http://localhost/projects?project_id=3", want: 12},
		{name: "zero", query: "?project_id=0", wantErr: true},
		{name: "not_a_number", query: "?project_id=abc", wantErr: true},
		{name: "hx_current_url", currentURL: "http://localhost/projects?project_id=3", want: 3},
		{name: "hx_current_url_without_project", currentURL: "http://localhost/settings", wantNil: true},
		{name: "hx_current_url_malformed", currentURL: "http://[::1", wantNil: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/themes/effective"+test.query, nil)
			if test.currentURL != "" {
				r.Header.Set("HX-Current-URL", test.currentURL)
			}

			got, err := ProjectIDFromRequest(r)
			if (err != nil) != test.wantErr {
				t.Fatalf("ProjectIDFromRequest() error = %v, wantErr %v", err, test.wantErr)
			}
			if test.wantErr {
				return
			}
			if test.wantNil != (got == nil) {
				t.Fatalf("ProjectIDFromRequest() = %v, wantNil %v", got, test.wantNil)
			}
			if got != nil && *got != test.want {
				t.Fatalf("ProjectIDFromRequest() = %d, want %d", *got, test.want)
			}
		})
	}
}
