package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWriteProtect(t *testing.T) {
	protected := WriteProtectAuth([]string{"secret"})(okHandler())
	open := WriteProtectAuth(nil)(okHandler())

	tests := []struct {
		name    string
		handler http.Handler
		method  string
		key     string
		want    int
	}{
		{"read without key", protected, http.MethodGet, "", http.StatusOK},
		{"head without key", protected, http.MethodHead, "", http.StatusOK},
		{"preflight without key", protected, http.MethodOptions, "", http.StatusOK},
		{"create without key", protected, http.MethodPost, "", http.StatusUnauthorized},
		{"replace without key", protected, http.MethodPut, "", http.StatusUnauthorized},
		{"patch without key", protected, http.MethodPatch, "", http.StatusUnauthorized},
		{"delete without key", protected, http.MethodDelete, "", http.StatusUnauthorized},
		{"create with wrong key", protected, http.MethodPost, "wrong", http.StatusUnauthorized},
		{"create with key", protected, http.MethodPost, "secret", http.StatusOK},
		{"delete with key", protected, http.MethodDelete, "secret", http.StatusOK},
		{"no keys configured", open, http.MethodDelete, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/goals/g1", nil)
			if tt.key != "" {
				req.Header.Set("X-API-KEY", tt.key)
			}
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("%s %q: status = %d, want %d", tt.method, tt.key, w.Code, tt.want)
			}
		})
	}
}

func TestAPIKey_GuardsReads(t *testing.T) {
	handler := APIKey(NewAuthConfigWithKeys([]string{"", "secret"}))(okHandler())

	for key, want := range map[string]int{"": http.StatusUnauthorized, "secret": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
		if key != "" {
			req.Header.Set("X-API-KEY", key)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("key %q: status = %d, want %d", key, w.Code, want)
		}
	}
}

func TestAuthConfig(t *testing.T) {
	if NewAuthConfigWithKeys([]string{"", ""}).Enabled() {
		t.Error("only empty keys: want disabled")
	}

	cfg := NewAuthConfigWithKeys([]string{"a", "b"})
	if !cfg.Enabled() {
		t.Fatal("want enabled")
	}
	for key, want := range map[string]bool{"a": true, "b": true, "c": false, "": false} {
		if got := cfg.Valid(key); got != want {
			t.Errorf("Valid(%q) = %v, want %v", key, got, want)
		}
	}
}
