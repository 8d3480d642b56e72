package api

import (
	"github.com/governet/arbiter/internal/config"
	"github.com/governet/arbiter/internal/engine"
	"github.com/governet/arbiter/internal/infrastructure"
	"github.com/governet/arbiter/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Engine     engine.Config
	Evidence   config.EvidenceConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Agent:     cfg.Agent,
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Engine:     cfg.Engine.Engine(),
		Evidence:   cfg.Evidence,
	}
}
