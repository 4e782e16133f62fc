package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/blackcoderx/apicheck/pkg/core/scenario"
)

type contextKey struct{}

// plainStep and tableStep catch every Gherkin step and hand it to the
// registry; table phrases end with ":".
const (
	plainStep = `^(.*[^:])$`
	tableStep = `^(.*:)$`
)

// Bind wires the dispatcher into a godog scenario: a fresh Context before
// each scenario, disposal after it, and every step routed through the
// registry.
func Bind(sc *godog.ScenarioContext, d *Dispatcher) {
	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		c := d.NewContext()
		c.Logger().Debug("scenario started", "scenario", s.Name)
		return context.WithValue(ctx, contextKey{}, c), nil
	})

	sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		if c, ok := ctx.Value(contextKey{}).(*scenario.Context); ok {
			c.Logger().Debug("scenario finished", "scenario", s.Name, "failed", err != nil)
			c.Close()
		}
		return ctx, nil
	})

	sc.Step(plainStep, func(ctx context.Context, text string) error {
		c, err := fromContext(ctx)
		if err != nil {
			return err
		}
		return d.RunStep(ctx, c, Step{Text: text})
	})

	sc.Step(tableStep, func(ctx context.Context, text string, table *godog.Table) error {
		c, err := fromContext(ctx)
		if err != nil {
			return err
		}
		return d.RunStep(ctx, c, Step{Text: text, Table: convertTable(table)})
	})
}

func fromContext(ctx context.Context) (*scenario.Context, error) {
	c, ok := ctx.Value(contextKey{}).(*scenario.Context)
	if !ok {
		return nil, fmt.Errorf("no scenario context; was the Before hook registered?")
	}
	return c, nil
}

func convertTable(t *godog.Table) scenario.Table {
	if t == nil {
		return scenario.Table{}
	}
	out := make(scenario.Table, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.Value
		}
		out[i] = cells
	}
	return out
}
