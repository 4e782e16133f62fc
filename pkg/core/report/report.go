// Package report turns the outcome of a feature run into a summary that can
// be printed, rendered for a terminal and saved next to the project.
package report

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a scenario, using godog's vocabulary.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusUndefined Status = "undefined"
	StatusPending   Status = "pending"
	StatusSkipped   Status = "skipped"
)

// statusOrder is both the severity order (worst last) and the order of the
// summary table.
var statusOrder = []Status{StatusPassed, StatusSkipped, StatusPending, StatusUndefined, StatusFailed}

func (s Status) rank() int {
	for i, o := range statusOrder {
		if o == s {
			return i
		}
	}
	return 0
}

func (s Status) worse(than Status) bool {
	return s.rank() > than.rank()
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Feature    string        `json:"feature"`
	URI        string        `json:"uri,omitempty"`
	Name       string        `json:"name"`
	Tags       []string      `json:"tags,omitempty"`
	Status     Status        `json:"status"`
	Duration   time.Duration `json:"duration"`
	FailedStep string        `json:"failed_step,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Run is the outcome of one invocation of the runner.
type Run struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	StartTime time.Time        `json:"start_time"`
	Duration  time.Duration    `json:"duration"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// NewRun creates an empty run with a fresh id.
func NewRun(name string) *Run {
	return &Run{ID: uuid.NewString(), Name: name}
}

// Add appends a scenario and accumulates its duration.
func (r *Run) Add(sr ScenarioResult) {
	r.Scenarios = append(r.Scenarios, sr)
	r.Duration += sr.Duration
}

// Count returns the number of scenarios with the given status.
func (r *Run) Count(status Status) int {
	n := 0
	for _, s := range r.Scenarios {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Passed reports whether no scenario failed, was undefined or pending.
func (r *Run) Passed() bool {
	return r.Count(StatusFailed)+r.Count(StatusUndefined)+r.Count(StatusPending) == 0
}

// Failures returns the scenarios that did not pass or get skipped.
func (r *Run) Failures() []ScenarioResult {
	var out []ScenarioResult
	for _, s := range r.Scenarios {
		if s.Status != StatusPassed && s.Status != StatusSkipped {
			out = append(out, s)
		}
	}
	return out
}
