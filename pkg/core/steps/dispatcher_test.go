package steps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiassert "github.com/blackcoderx/apicheck/pkg/core/assert"
	"github.com/blackcoderx/apicheck/pkg/core/client"
	"github.com/blackcoderx/apicheck/pkg/core/scenario"
	"github.com/blackcoderx/apicheck/pkg/core/vars"
	"github.com/blackcoderx/apicheck/pkg/testutil/fakeapi"
)

func newTestDispatcher(t *testing.T, r *Registry, opts ...Option) (*Dispatcher, *fakeapi.API) {
	t.Helper()
	api, srv := fakeapi.NewServer(t)
	factory := func() *scenario.Context {
		return scenario.New(scenario.Options{BaseURL: srv.URL})
	}
	return NewDispatcher(r, factory, opts...), api
}

func TestDispatcher_FailFastSkipsRemaining(t *testing.T) {
	var ran []string
	r := NewRegistry()
	r.MustRegister(`step {string}`, func(_ context.Context, _ *scenario.Context, a Args) error {
		ran = append(ran, a.Text(0))
		if a.Text(0) == "b" {
			return &apiassert.Error{Check: "demo", Expected: 1, Actual: 2}
		}
		return nil
	})
	d, _ := newTestDispatcher(t, r)

	res := d.Run(context.Background(), Scenario{Name: "fail fast", Steps: []Step{
		{Text: `step "a"`}, {Text: `step "b"`}, {Text: `step "c"`},
	}})

	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, StatusFailed, res.Status)
	require.Len(t, res.Steps, 3)
	assert.Equal(t, StatusPassed, res.Steps[0].Status)
	assert.Equal(t, StatusFailed, res.Steps[1].Status)
	assert.Equal(t, FailureAssertion, res.Steps[1].Kind)
	assert.Equal(t, StatusSkipped, res.Steps[2].Status)
	assert.True(t, apiassert.IsAssertion(res.Err()))
}

func TestDispatcher_UndefinedStep(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(`known`, nop)
	d, _ := newTestDispatcher(t, r)

	res := d.Run(context.Background(), Scenario{Steps: []Step{{Text: "unknown"}, {Text: "known"}}})
	assert.Equal(t, StatusUndefined, res.Status)
	assert.Equal(t, FailureUndefined, res.Steps[0].Kind)
	assert.ErrorContains(t, res.Steps[0].Err, `"unknown"`)
	assert.Equal(t, StatusSkipped, res.Steps[1].Status)
}

func TestDispatcher_StepTimeout(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(`hang`, func(ctx context.Context, _ *scenario.Context, _ Args) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	r.MustRegister(`ignore deadline`, func(context.Context, *scenario.Context, Args) error {
		time.Sleep(time.Second)
		return nil
	})
	d, _ := newTestDispatcher(t, r, WithStepTimeout(20*time.Millisecond))

	res := d.Run(context.Background(), Scenario{Steps: []Step{{Text: "ignore deadline"}}})
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, errors.Is(res.Err(), ErrStepTimeout))
	assert.Equal(t, FailureTimeout, res.Steps[0].Kind)

	res = d.Run(context.Background(), Scenario{Steps: []Step{{Text: "hang"}}})
	assert.True(t, errors.Is(res.Err(), ErrStepTimeout))
}

func TestDispatcher_TableMismatch(t *testing.T) {
	r := NewRegistry()
	r.MustRegisterTable(`the data:`, nop)
	r.MustRegister(`plain`, nop)
	d, _ := newTestDispatcher(t, r)
	sc := d.NewContext()
	defer sc.Close()

	assert.ErrorContains(t, d.RunStep(context.Background(), sc, Step{Text: "the data:"}), "expects a data table")
	assert.ErrorContains(t, d.RunStep(context.Background(), sc, Step{Text: "plain", Table: scenario.Table{{"a"}}}), "does not take")
	assert.NoError(t, d.RunStep(context.Background(), sc, Step{Text: "the data:", Table: scenario.Table{{"h"}}}))
}

func TestDispatcher_PanicIsAFailure(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"with step timeout", nil},
		{"without step timeout", []Option{WithStepTimeout(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			r.MustRegister(`boom`, func(context.Context, *scenario.Context, Args) error { panic("kaboom") })
			r.MustRegister(`after`, func(context.Context, *scenario.Context, Args) error { return nil })
			d, _ := newTestDispatcher(t, r, tt.opts...)

			res := d.Run(context.Background(), Scenario{Steps: []Step{{Text: "boom"}, {Text: "after"}}})
			assert.Equal(t, StatusFailed, res.Status)
			assert.ErrorContains(t, res.Err(), "kaboom")
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, FailureNone},
		{"undefined", &UndefinedStepError{Phrase: "x"}, FailureUndefined},
		{"missing variable", substituteErr(), FailureMissingVariable},
		{"assertion", &apiassert.Error{Check: "c"}, FailureAssertion},
		{"transport", &client.TransportError{Method: "GET", URL: "u", Err: errors.New("refused")}, FailureTransport},
		{"wrapped transport", errWrap(&client.TransportError{Err: context.DeadlineExceeded}), FailureTransport},
		{"timeout", ErrStepTimeout, FailureTimeout},
		{"other", errors.New("x"), FailureOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func substituteErr() error {
	_, err := vars.NewStore().Substitute("/posts/{id}")
	return err
}

func errWrap(err error) error {
	return errors.Join(errors.New("context"), err)
}
