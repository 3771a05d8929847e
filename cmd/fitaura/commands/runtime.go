package commands

import (
	"context"
	"fmt"

	"github.com/moolen/fitaura/internal/config"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/reasoning"
	"github.com/moolen/fitaura/internal/store"
)

// runtime is the part of the application every command needs: the store,
// the instrumented reasoning backend and the orchestrator on top.
type runtime struct {
	store        store.Store
	orchestrator *orchestrator.Orchestrator
}

type runtimeOptions struct {
	recorder  reasoning.Recorder
	observers []orchestrator.Observer
}

func newRuntime(ctx context.Context, cfg *config.Config, opts runtimeOptions) (*runtime, error) {
	backend, err := reasoning.New(ctx, cfg.Reasoning)
	if err != nil {
		return nil, fmt.Errorf("reasoning backend: %w", err)
	}

	instrumentOpts := []reasoning.InstrumentOption{reasoning.WithTimeout(cfg.Reasoning.Timeout)}
	if opts.recorder != nil {
		instrumentOpts = append(instrumentOpts, reasoning.WithRecorder(opts.recorder))
	}
	svc := reasoning.Instrument(backend, cfg.Reasoning.Backend, instrumentOpts...)

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	orch, err := orchestrator.NewFromService(svc, st, st,
		orchestrator.WithMaxSteps(cfg.Orchestrator.MaxSteps),
		orchestrator.WithObservers(opts.observers...),
	)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &runtime{store: st, orchestrator: orch}, nil
}

func (r *runtime) Close() error {
	return r.store.Close()
}
