// Package endpoints implements the HTTP API surface. Each endpoint is both
// a server route and a CLI command, registered through the api.Registry.
package endpoints

import "github.com/lumenstudy/lumen/internal/api"

// All returns every endpoint in registration order.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&DocumentsUploadEndpoint{},
		&DocumentsListEndpoint{},
		&DocumentsGetEndpoint{},
		&ProcessEndpoint{},
		&ProgressGetEndpoint{},
		&ProgressSetEndpoint{},
		&ResultEndpoint{},
	}
}

// NewRegistry returns an api.Registry populated with all endpoints.
func NewRegistry() *api.Registry {
	r := api.NewRegistry()
	for _, ep := range All() {
		r.Register(ep)
	}
	return r
}
