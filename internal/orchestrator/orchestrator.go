// Package orchestrator runs the bounded supervisor loop that turns one user
// message into one wellness reply.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/reasoning"
	"github.com/moolen/fitaura/internal/store"
)

// DefaultMaxSteps bounds the supervisor calls of one run.
const DefaultMaxSteps = 8

// ErrEmptyMessage is returned for blank messages.
var ErrEmptyMessage = errors.New("message must not be empty")

// Classifier is the intent gate.
type Classifier interface {
	Classify(ctx context.Context, message string) (agent.Classification, error)
}

// Router picks the next agent.
type Router interface {
	Decide(ctx context.Context, message string, profile agent.Profile, state *agent.State) (agent.AgentID, error)
}

// Merger produces the final reply from the state.
type Merger interface {
	Merge(ctx context.Context, state *agent.State) (string, error)
}

// Deps are the collaborators of an Orchestrator. Profiles and History are
// optional: without Profiles every run sees an empty profile, without History
// nothing is recorded.
type Deps struct {
	Classifier  Classifier
	Router      Router
	Team        agent.Team
	Synthesizer Merger
	Profiles    store.ProfileStore
	History     store.HistoryStore
}

// Orchestrator is safe for concurrent use; every Run owns its own state.
type Orchestrator struct {
	deps      Deps
	maxSteps  int
	observers []Observer
	tracer    trace.Tracer
	logger    *logging.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxSteps overrides DefaultMaxSteps. Values below 1 are ignored.
func WithMaxSteps(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxSteps = n
		}
	}
}

// WithObservers registers observers that see the events of every run.
func WithObservers(obs ...Observer) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, obs...) }
}

// WithTracer overrides the tracer (defaults to the global provider).
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// New validates deps and returns an Orchestrator.
func New(deps Deps, opts ...Option) (*Orchestrator, error) {
	if deps.Classifier == nil {
		return nil, errors.New("orchestrator: classifier is required")
	}
	if deps.Router == nil {
		return nil, errors.New("orchestrator: router is required")
	}
	if deps.Synthesizer == nil {
		return nil, errors.New("orchestrator: synthesizer is required")
	}
	if err := deps.Team.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	o := &Orchestrator{
		deps:     deps,
		maxSteps: DefaultMaxSteps,
		tracer:   otel.Tracer("fitaura.orchestrator"),
		logger:   logging.GetLogger("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// NewFromService wires the default components around one shared reasoning
// handle.
func NewFromService(svc reasoning.Service, profiles store.ProfileStore, history store.HistoryStore, opts ...Option) (*Orchestrator, error) {
	return New(Deps{
		Classifier:  agent.NewIntentClassifier(svc),
		Router:      agent.NewSupervisor(svc),
		Team:        agent.NewTeam(svc),
		Synthesizer: agent.NewSynthesizer(svc),
		Profiles:    profiles,
		History:     history,
	}, opts...)
}

// MaxSteps returns the configured step budget.
func (o *Orchestrator) MaxSteps() int {
	return o.maxSteps
}

type runConfig struct {
	runID     string
	observers []Observer
}

// RunOption configures a single Run.
type RunOption func(*runConfig)

// WithObserver adds an observer for this run only.
func WithObserver(obs Observer) RunOption {
	return func(rc *runConfig) { rc.observers = append(rc.observers, obs) }
}

// WithRunID sets the run id instead of generating one.
func WithRunID(id string) RunOption {
	return func(rc *runConfig) { rc.runID = id }
}

// run carries the per-request bookkeeping of one Run call.
type run struct {
	o         *Orchestrator
	id        string
	userID    string
	message   string
	observers []Observer
	logger    *logging.Logger
}

func (r *run) emit(ctx context.Context, ev Event) {
	ev.RunID = r.id
	ev.UserID = r.userID
	ev.Time = time.Now()
	for _, obs := range r.observers {
		obs.OnEvent(ctx, ev)
	}
}

// Run processes message for userID. Supervisor parse failures, backend
// failures and cancellation abort the run with an error; a duplicate or
// unknown agent choice and an exhausted step budget end it normally.
func (o *Orchestrator) Run(ctx context.Context, userID, message string, opts ...RunOption) (*Result, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	rc := runConfig{}
	for _, opt := range opts {
		opt(&rc)
	}
	if rc.runID == "" {
		rc.runID = uuid.NewString()
	}

	ctx = logging.WithRunID(ctx, rc.runID)
	ctx, span := o.tracer.Start(ctx, "orchestrator.Run",
		trace.WithAttributes(
			attribute.String("run.id", rc.runID),
			attribute.String("user.id", userID),
			attribute.Int("message.chars", len(message)),
		))
	defer span.End()

	r := &run{
		o:         o,
		id:        rc.runID,
		userID:    userID,
		message:   message,
		observers: append(slices.Clone(o.observers), rc.observers...),
		logger:    o.logger.WithContext(ctx),
	}

	start := time.Now()
	r.emit(ctx, Event{Type: EventRunStarted, Text: message})
	r.logger.InfoWithFields("Run started",
		logging.Field("user_id", userID),
		logging.Field("message_chars", len(message)),
	)

	res, err := r.execute(ctx)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.emit(ctx, Event{Type: EventRunFailed, Err: err, Duration: elapsed})
		r.logger.ErrorWithFields("Run failed",
			logging.Field("error", err.Error()),
			logging.Field("duration_ms", elapsed.Milliseconds()),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("run.termination", string(res.Termination)),
		attribute.Int("run.steps", res.Steps),
		attribute.StringSlice("run.agents", res.AgentNames()),
	)
	r.emit(ctx, Event{
		Type:        EventRunCompleted,
		Text:        res.FinalText,
		InDomain:    res.InDomain,
		Termination: res.Termination,
		AgentsUsed:  slices.Clone(res.AgentsUsed),
		Step:        res.Steps,
		Duration:    elapsed,
	})
	r.logger.InfoWithFields("Run finished",
		logging.Field("termination", string(res.Termination)),
		logging.Field("agents", strings.Join(res.AgentNames(), ",")),
		logging.Field("steps", res.Steps),
		logging.Field("duration_ms", elapsed.Milliseconds()),
	)

	r.recordTurn(ctx, res)
	return res, nil
}

func (r *run) execute(ctx context.Context) (*Result, error) {
	o := r.o

	cls, err := o.deps.Classifier.Classify(ctx, r.message)
	if err != nil {
		return nil, fmt.Errorf("classify intent: %w", err)
	}
	r.emit(ctx, Event{Type: EventIntentClassified, InDomain: cls.IsWellness, Category: cls.Category})

	res := &Result{
		RunID:          r.id,
		AgentsUsed:     make([]agent.AgentID, 0, len(agent.Specialists)),
		InDomain:       cls.IsWellness,
		Classification: cls,
	}
	if !cls.IsWellness {
		r.logger.Info("Message is outside the wellness domain (category %q)", cls.Category)
		res.FinalText = OutOfDomainReply
		res.Termination = TerminationOutOfDomain
		return res, nil
	}

	profile, err := r.loadProfile(ctx)
	if err != nil {
		return nil, err
	}

	state := agent.NewState()

loop:
	for res.Steps < o.maxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Steps++
		step := res.Steps

		next, err := o.deps.Router.Decide(ctx, r.message, profile, state)
		if err != nil {
			var unknown *agent.UnknownAgentError
			if !errors.As(err, &unknown) {
				return nil, fmt.Errorf("supervisor decision at step %d: %w", step, err)
			}
			if err := r.stopUnknown(ctx, step, unknown.Name, state); err != nil {
				return nil, err
			}
			res.Termination = TerminationUnknownAgent
			break loop
		}

		// Routers outside the agent package can hand back any id.
		if next != agent.Finish && !next.IsSpecialist() {
			if err := r.stopUnknown(ctx, step, next.String(), state); err != nil {
				return nil, err
			}
			res.Termination = TerminationUnknownAgent
			break loop
		}
		r.emit(ctx, Event{Type: EventSupervisorDecision, Step: step, Agent: next})

		switch {
		case next == agent.Finish:
			res.Termination = TerminationFinished
			break loop
		case slices.Contains(res.AgentsUsed, next):
			r.logger.Warn("Supervisor repeated %s at step %d, stopping", next, step)
			res.Termination = TerminationDuplicateAgent
			break loop
		}

		res.AgentsUsed = append(res.AgentsUsed, next)
		text, err := r.dispatch(ctx, step, next, agent.Input{Message: r.message, Profile: profile, State: state})
		if err != nil {
			return nil, err
		}
		if err := state.Put(next.Domain(), text); err != nil {
			return nil, err
		}
	}

	if res.Termination == "" {
		r.logger.Warn("Step budget of %d exhausted", o.maxSteps)
		if err := state.Put(agent.StateKeyNote, MaxStepsNote); err != nil {
			return nil, err
		}
		res.Termination = TerminationMaxSteps
	}

	final, err := o.deps.Synthesizer.Merge(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("synthesize reply: %w", err)
	}
	res.FinalText = final
	res.State = state.Snapshot()
	return res, nil
}

// stopUnknown records a decision naming no known agent and leaves a note
// for the synthesizer.
func (r *run) stopUnknown(ctx context.Context, step int, name string, state *agent.State) error {
	name = strings.TrimSpace(name)
	r.emit(ctx, Event{Type: EventSupervisorDecision, Step: step, Agent: agent.Unknown, Text: name})
	r.logger.Warn("Supervisor chose unknown agent %q at step %d, stopping", name, step)
	return state.Put(agent.StateKeyNote, fmt.Sprintf(unknownAgentNote, name))
}

func (r *run) dispatch(ctx context.Context, step int, id agent.AgentID, in agent.Input) (string, error) {
	ctx, span := r.o.tracer.Start(ctx, "orchestrator.dispatch",
		trace.WithAttributes(
			attribute.String("agent", id.String()),
			attribute.Int("step", step),
		))
	defer span.End()

	r.emit(ctx, Event{Type: EventAgentStarted, Step: step, Agent: id})
	start := time.Now()

	text, err := r.o.deps.Team[id].Run(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("run %s: %w", id, err)
	}

	elapsed := time.Since(start)
	r.emit(ctx, Event{Type: EventAgentCompleted, Step: step, Agent: id, Text: text, Duration: elapsed})
	r.logger.DebugWithFields("Specialist completed",
		logging.Field("agent", id.String()),
		logging.Field("step", step),
		logging.Field("chars", len(text)),
		logging.Field("duration_ms", elapsed.Milliseconds()),
	)
	return text, nil
}

func (r *run) loadProfile(ctx context.Context) (agent.Profile, error) {
	if r.o.deps.Profiles == nil || strings.TrimSpace(r.userID) == "" {
		return agent.Profile{}, nil
	}
	profile, err := r.o.deps.Profiles.Get(ctx, r.userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		profile = agent.Profile{}
	}
	return profile, nil
}

// recordTurn appends the finished exchange to the history. Failures are
// logged and otherwise ignored.
func (r *run) recordTurn(ctx context.Context, res *Result) {
	if r.o.deps.History == nil || strings.TrimSpace(r.userID) == "" {
		return
	}
	err := r.o.deps.History.AppendTurn(ctx, r.userID, store.Turn{
		Timestamp:  time.Now(),
		Message:    r.message,
		Response:   res.FinalText,
		AgentsUsed: res.AgentNames(),
		RunID:      res.RunID,
	})
	if err != nil {
		r.logger.Warn("Failed to record history turn: %v", err)
	}
}
