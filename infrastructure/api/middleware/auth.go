package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	apiKeys [][]byte
	enabled bool
}

// NewAuthConfigWithKeys creates a new AuthConfig. Empty keys are ignored and
// a config without keys disables authentication.
func NewAuthConfigWithKeys(apiKeys []string) AuthConfig {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		return AuthConfig{enabled: false}
	}
	return AuthConfig{
		apiKeys: keys,
		enabled: true,
	}
}

// Enabled returns true if authentication is enabled.
func (c AuthConfig) Enabled() bool { return c.enabled }

// Valid reports whether key is one of the configured keys.
func (c AuthConfig) Valid(key string) bool {
	candidate := []byte(key)
	for _, k := range c.apiKeys {
		if subtle.ConstantTimeCompare(k, candidate) == 1 {
			return true
		}
	}
	return false
}

// APIKey returns a middleware that requires a valid X-API-KEY header on
// every request. If the config has no keys, all requests pass.
func APIKey(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authorize(config, w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtect returns a middleware that requires a valid X-API-KEY header
// on mutating methods only. GET, HEAD and OPTIONS always pass.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !authorize(config, w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtectAuth is a convenience function that creates write protection
// from a slice of API keys.
func WriteProtectAuth(apiKeys []string) func(http.Handler) http.Handler {
	return WriteProtect(NewAuthConfigWithKeys(apiKeys))
}

func authorize(config AuthConfig, w http.ResponseWriter, r *http.Request) bool {
	if !config.enabled {
		return true
	}
	key := r.Header.Get("X-API-KEY")
	if key == "" {
		WriteError(w, r, NewAuthenticationError("X-API-KEY header is required"), slog.Default())
		return false
	}
	if !config.Valid(key) {
		WriteError(w, r, NewAuthenticationError("invalid API key"), slog.Default())
		return false
	}
	return true
}
