package api

import (
	"github.com/governet/arbiter/internal/cases"
	"github.com/governet/arbiter/internal/controls"
	"github.com/governet/arbiter/internal/engine"
	"github.com/governet/arbiter/internal/evidence"
	"github.com/governet/arbiter/internal/protocol"
	"github.com/governet/arbiter/internal/sessions"
	"github.com/governet/arbiter/internal/topics"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Cases    cases.System
	Topics   topics.System
	Controls controls.System
	Sessions sessions.System
}

// NewDomain creates all domain systems from the API runtime. The review
// engine runtime is assembled here: an agent-backed evaluator, the evidence
// gateway (HTTP client, or the deterministic stub when no base URL is
// configured), and the Postgres protocol recorder.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	caseSystem := cases.New(db, runtime.Logger, runtime.Pagination)
	topicSystem := topics.New(db, runtime.Logger, runtime.Pagination)
	controlSystem := controls.New(db, runtime.Logger)

	var gateway evidence.Gateway
	if runtime.Evidence.BaseURL != "" {
		gateway = evidence.NewClient(
			runtime.Evidence.BaseURL,
			runtime.Evidence.TimeoutDuration(),
			runtime.Logger,
		)
	} else {
		gateway = evidence.NewStub(runtime.Evidence.StubResults)
	}

	engineRuntime := &engine.Runtime{
		Evaluator: engine.NewAgentEvaluator(runtime.Agent, runtime.Logger),
		Evidence:  gateway,
		Recorder:  protocol.NewPostgres(db, runtime.Logger),
		Logger:    runtime.Logger,
		Config:    runtime.Engine,
	}

	sessionSystem := sessions.New(
		db,
		caseSystem,
		topicSystem,
		controlSystem,
		engineRuntime,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Cases:    caseSystem,
		Topics:   topicSystem,
		Controls: controlSystem,
		Sessions: sessionSystem,
	}
}
