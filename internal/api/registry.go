package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes mounts every endpoint on router. Handlers that need
// initialization are wrapped with initMiddleware.
func (r *Registry) RegisterRoutes(router chi.Router, initMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		router.Method(method, path, handler)
	}
}

// BuildCommands returns the "api" command tree for all endpoints.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running ResumeWorthy server via HTTP.

These commands require a running server (resumeworthy serve).
Use --server to specify a custom server URL.

Examples:
  resumeworthy api health
  resumeworthy api blocks list
  resumeworthy api blocks ingest resume.pdf`,
	}

	groups := map[string]*cobra.Command{}
	for _, ep := range r.endpoints {
		cmd := ep.Command(getServerURL)
		if cmd == nil {
			continue
		}
		g, ok := ep.(Grouped)
		if !ok || g.CommandGroup() == "" {
			apiCmd.AddCommand(cmd)
			continue
		}
		parent, exists := groups[g.CommandGroup()]
		if !exists {
			parent = &cobra.Command{Use: g.CommandGroup(), Short: g.CommandGroup() + " commands"}
			groups[g.CommandGroup()] = parent
			apiCmd.AddCommand(parent)
		}
		parent.AddCommand(cmd)
	}
	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
