package engine

import (
	"log/slog"

	"github.com/governet/arbiter/internal/evidence"
	"github.com/governet/arbiter/internal/protocol"
)

// Runtime bundles the dependencies that orchestrator nodes require. It is
// constructed by higher-level composition code from Infrastructure and
// Domain systems.
type Runtime struct {
	Evaluator Evaluator
	Evidence  evidence.Gateway
	Recorder  protocol.Recorder
	Logger    *slog.Logger
	Config    Config
}
