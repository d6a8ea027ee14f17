package main

import (
	"context"

	"github.com/spf13/cobra"

	applicationrun "github.com/oronts/datahub/internal/application/run"
	"github.com/oronts/datahub/internal/ports"
)

// AppContext bundles the long-lived services created at startup, following
// the teacher's cmd/streamy AppContext bundling idiom.
type AppContext struct {
	Logger  ports.Logger
	Events  ports.EventPublisher
	Metrics ports.MetricsCollector
	Secrets ports.SecretProvider
	Run     *applicationrun.Service
}

// CommandContext returns the command's context (falling back to
// Background).
func (a *AppContext) CommandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
