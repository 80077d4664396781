package bdd

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/kanban-go/test/bdd/steps"
	"github.com/andrescamacho/kanban-go/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/simulation"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, helpers.ResetSharedTestDB()
	})

	steps.InitializeSimulationScenario(sc)
}

func TestMain(m *testing.M) {
	// One in-memory database for every scenario; each scenario starts from a reset
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("Failed to initialize shared test database: " + err.Error())
	}
	code := m.Run()
	_ = helpers.CloseSharedTestDB()
	os.Exit(code)
}
