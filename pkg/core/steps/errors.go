package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackcoderx/apicheck/pkg/core/assert"
	"github.com/blackcoderx/apicheck/pkg/core/client"
	"github.com/blackcoderx/apicheck/pkg/core/vars"
)

var (
	// ErrUndefinedStep means no registered template matches a phrase.
	ErrUndefinedStep = errors.New("undefined step")
	// ErrStepTimeout means a step ran past the per-step ceiling.
	ErrStepTimeout = errors.New("step timed out")
	// ErrAmbiguousStep is returned by Register for overlapping templates.
	ErrAmbiguousStep = errors.New("ambiguous step template")
)

// UndefinedStepError carries the phrase that matched nothing.
type UndefinedStepError struct {
	Phrase string
}

func (e *UndefinedStepError) Error() string {
	return fmt.Sprintf("undefined step: %q", e.Phrase)
}

func (e *UndefinedStepError) Is(target error) bool { return target == ErrUndefinedStep }

// FailureKind classifies a step failure.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureUndefined
	FailureMissingVariable
	FailureAssertion
	FailureTransport
	FailureTimeout
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureUndefined:
		return "undefined step"
	case FailureMissingVariable:
		return "missing variable"
	case FailureAssertion:
		return "assertion failure"
	case FailureTransport:
		return "transport failure"
	case FailureTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// Classify maps an error onto the failure taxonomy. A request cut off by the
// step ceiling is a timeout; one cut off by the client's own timeout is a
// transport failure.
func Classify(err error) FailureKind {
	var transport *client.TransportError
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrUndefinedStep):
		return FailureUndefined
	case errors.Is(err, vars.ErrMissingVariable), errors.Is(err, vars.ErrUnresolvedPlaceholder):
		return FailureMissingVariable
	case errors.Is(err, ErrStepTimeout):
		return FailureTimeout
	case assert.IsAssertion(err):
		return FailureAssertion
	case errors.As(err, &transport):
		return FailureTransport
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureOther
	}
}
