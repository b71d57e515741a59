package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	enabled := Middleware(Config{Enabled: true, Token: "s3cret"})(ok)
	disabled := Middleware(Config{})(ok)

	tests := []struct {
		name    string
		handler http.Handler
		path    string
		header  string
		want    int
	}{
		{"disabled passes everything", disabled, "/api/v1/objects/99942/impacts", "", http.StatusNoContent},
		{"probe is public", enabled, "/healthz", "", http.StatusNoContent},
		{"tab list is public", enabled, "/api/v1/tabs", "", http.StatusNoContent},
		{"missing header", enabled, "/api/v1/objects/99942/impacts", "", http.StatusUnauthorized},
		{"wrong scheme", enabled, "/api/v1/objects/99942/impacts", "Basic s3cret", http.StatusUnauthorized},
		{"empty token", enabled, "/api/v1/objects/99942/impacts", "Bearer ", http.StatusUnauthorized},
		{"wrong token", enabled, "/api/v1/objects/99942/impacts", "Bearer nope", http.StatusUnauthorized},
		{"valid token", enabled, "/api/v1/objects/99942/impacts", "Bearer s3cret", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
