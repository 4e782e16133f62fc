package steps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blackcoderx/apicheck/pkg/core/scenario"
)

// DefaultStepTimeout is the per-step ceiling when none is configured.
const DefaultStepTimeout = 30 * time.Second

// Status is the outcome of a step or scenario.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusUndefined Status = "undefined"
)

// Step is one phrase of a scenario with its optional data table.
type Step struct {
	Text  string
	Table scenario.Table
}

// Scenario is an ordered list of phrases run against one fresh Context.
type Scenario struct {
	Name  string
	Steps []Step
}

// StepResult records one phrase.
type StepResult struct {
	Text     string
	Status   Status
	Kind     FailureKind
	Err      error
	Duration time.Duration
}

// Result records one scenario run.
type Result struct {
	Name     string
	Status   Status
	Steps    []StepResult
	Duration time.Duration
}

// Err returns the error of the failing step, if any.
func (r Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Err
		}
	}
	return nil
}

// Factory creates the Context for one scenario.
type Factory func() *scenario.Context

// Dispatcher runs phrases through a Registry.
type Dispatcher struct {
	registry *Registry
	factory  Factory
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStepTimeout sets the per-step ceiling. Zero or less disables it.
func WithStepTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.timeout = d }
}

// WithLogger sets the logger used for step failures.
func WithLogger(l *slog.Logger) Option {
	return func(disp *Dispatcher) { disp.logger = l }
}

func NewDispatcher(registry *Registry, factory Factory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		factory:  factory,
		timeout:  DefaultStepTimeout,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

// NewContext creates a Context through the dispatcher's factory.
func (d *Dispatcher) NewContext() *scenario.Context { return d.factory() }

// Run executes the scenario's phrases in order against a fresh Context. The
// first failure fails the scenario and the remaining phrases are skipped.
func (d *Dispatcher) Run(ctx context.Context, s Scenario) Result {
	sc := d.factory()
	defer sc.Close()

	start := time.Now()
	result := Result{Name: s.Name, Status: StatusPassed, Steps: make([]StepResult, 0, len(s.Steps))}
	for _, step := range s.Steps {
		if result.Status != StatusPassed {
			result.Steps = append(result.Steps, StepResult{Text: step.Text, Status: StatusSkipped})
			continue
		}

		stepStart := time.Now()
		err := d.RunStep(ctx, sc, step)
		sr := StepResult{Text: step.Text, Status: StatusPassed, Duration: time.Since(stepStart)}
		if err != nil {
			sr.Err = err
			sr.Kind = Classify(err)
			sr.Status = StatusFailed
			if sr.Kind == FailureUndefined {
				sr.Status = StatusUndefined
			}
			result.Status = sr.Status
		}
		result.Steps = append(result.Steps, sr)
	}
	result.Duration = time.Since(start)
	return result
}

// RunStep resolves one phrase and runs its handler under the step ceiling.
func (d *Dispatcher) RunStep(ctx context.Context, sc *scenario.Context, step Step) error {
	def, args, err := d.registry.Match(step.Text)
	if err != nil {
		d.logger.Debug("step not matched", "step", step.Text, "error", err)
		return err
	}
	switch {
	case def.Table && step.Table == nil:
		return fmt.Errorf("step %q expects a data table", step.Text)
	case !def.Table && step.Table != nil:
		return fmt.Errorf("step %q does not take a data table", step.Text)
	}
	args.Table = step.Table

	if err := d.invoke(ctx, def, sc, args); err != nil {
		d.logger.Debug("step failed", "step", step.Text, "kind", Classify(err).String(), "error", err)
		return err
	}
	return nil
}

// invoke runs the handler in its own goroutine so a hung handler can be
// abandoned when the ceiling passes. An abandoned handler may still touch
// the Context, which is discarded with the failed scenario.
func (d *Dispatcher) invoke(ctx context.Context, def *Definition, sc *scenario.Context, args Args) error {
	if d.timeout <= 0 {
		return safeCall(ctx, def, sc, args)
	}

	stepCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- safeCall(stepCtx, def, sc, args)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %w", ErrStepTimeout, d.timeout, err)
		}
		return err
	case <-stepCtx.Done():
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("%w after %s", ErrStepTimeout, d.timeout)
	}
}

// safeCall turns a handler panic into a step failure.
func safeCall(ctx context.Context, def *Definition, sc *scenario.Context, args Args) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %q panicked: %v", def.Template, r)
		}
	}()
	return def.handler(ctx, sc, args)
}
