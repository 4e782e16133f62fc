package steps

import (
	"context"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"

	"github.com/blackcoderx/apicheck/pkg/core/scenario"
	"github.com/blackcoderx/apicheck/pkg/storage"
	"github.com/blackcoderx/apicheck/pkg/testutil/fakeapi"
)

const projectDir = "../../../.apicheck"

// TestFeatures runs the repository's feature files against the fake API.
// Scenarios tagged @live depend on real network timing and are left out.
func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("feature suite skipped in short mode")
	}

	api, srv := fakeapi.NewServer(t)
	env, err := storage.LoadEnvironment(projectDir, "dev")
	require.NoError(t, err)

	d := NewDispatcher(NewAPIRegistry(), func() *scenario.Context {
		return scenario.New(scenario.Options{
			BaseURL:        srv.URL,
			RequestTimeout: 5 * time.Second,
			ProjectDir:     projectDir,
			SchemasDir:     projectDir + "/schemas",
			Environment:    env,
		})
	}, WithStepTimeout(10*time.Second))

	suite := godog.TestSuite{
		Name: "apicheck",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				api.Reset()
				return ctx, nil
			})
			Bind(sc, d)
		},
		Options: &godog.Options{
			Format:      "progress",
			Paths:       []string{"../../../features"},
			Tags:        "~@live",
			Concurrency: 1,
			Strict:      true,
			TestingT:    t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature suite failed")
	}
}
