// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/lumenstudy/lumen/internal/config"
	"github.com/lumenstudy/lumen/internal/document"
	"github.com/lumenstudy/lumen/internal/home"
	"github.com/lumenstudy/lumen/internal/progress"
	"github.com/lumenstudy/lumen/internal/providers"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	ConfigManager *config.Manager
	Registry      *providers.Registry
	Documents     *document.Store
	Progress      progress.Store
	Home          *home.Dir
	Logger        *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// RegistryFrom extracts the generator registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// DocumentsFrom extracts the document store from context.
func DocumentsFrom(ctx context.Context) *document.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Documents
	}
	return nil
}

// ProgressFrom extracts the progress store from context.
func ProgressFrom(ctx context.Context) progress.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Progress
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// LoggerFrom extracts the logger from context. Falls back to slog.Default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
