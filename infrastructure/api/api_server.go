// Package api provides the HTTP API for the affinity service.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/affinity"
	apimiddleware "github.com/helixml/affinity/infrastructure/api/middleware"
	v1 "github.com/helixml/affinity/infrastructure/api/v1"
	mcpinternal "github.com/helixml/affinity/internal/mcp"
)

// RequestTimeout bounds every /api/v1 request.
const RequestTimeout = 60 * time.Second

// APIServer provides an HTTP API backed by an affinity Client.
type APIServer struct {
	client       *affinity.Client
	apiKeys      []string
	corsOrigins  []string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
// apiKeys configures write-protection: POST, PUT and DELETE under /api/v1
// require a valid X-API-KEY. Reads, matching, health and MCP stay open.
func NewAPIServer(client *affinity.Client, apiKeys []string) *APIServer {
	return &APIServer{
		client:  client,
		apiKeys: apiKeys,
		logger:  client.Logger(),
	}
}

// WithCORSOrigins allows browser clients from the given origins.
func (a *APIServer) WithCORSOrigins(origins []string) *APIServer {
	a.corsOrigins = origins
	return a
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	goalsRouter := v1.NewGoalsRouter(c)
	contactsRouter := v1.NewContactsRouter(c)

	router.Get("/healthz", a.health)
	router.Mount("/docs", NewDocsRouter("/docs/openapi.json").Routes())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(RequestTimeout))
		r.Use(apimiddleware.WriteProtectAuth(a.apiKeys))

		r.Mount("/goals", goalsRouter.Routes())
		r.Mount("/contacts", contactsRouter.Routes())
	})

	// MCP manages its own streaming and session headers, so it sits outside
	// the Timeout middleware.
	mcpSrv := mcpinternal.NewServer(c.Matching, c.Directory, affinity.Version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

type healthResponse struct {
	Status         string `json:"status"`
	EmbeddingModel string `json:"embedding_model"`
	Error          string `json:"error,omitempty"`
}

func (a *APIServer) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", EmbeddingModel: a.client.EmbeddingModel()}
	if err := a.client.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Error = err.Error()
		apimiddleware.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, resp)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger, WithCORSOrigins(a.corsOrigins))
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
