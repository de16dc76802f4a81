package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/san-kum/chaindyn/internal/config"
	"github.com/san-kum/chaindyn/internal/sweep"
)

const scenarioYAML = `name: smoke
description: one of each
steps:
  - name: wall sweep
    kind: sweep
    model: planar2
    preset: wall
    joint: 1
    from: -1
    to: 1
    steps: 20
  - kind: rollout
    config: chain.yaml
    dt: 0.01
    duration: 0.2
    integrator: euler
  - kind: montecarlo
    model: arm6
    preset: surface
    trials: 25
    perturbation: 0.1
    seed: 7
`

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	test.That(t, config.Save(filepath.Join(dir, "chain.yaml"), config.GetPreset("pendulum", "hanging")), test.ShouldBeNil)
	path := filepath.Join(dir, "scenario.yaml")
	test.That(t, os.WriteFile(path, []byte(scenarioYAML), 0644), test.ShouldBeNil)
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t)
	sc, err := LoadScenario(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sc.Name, test.ShouldEqual, "smoke")
	test.That(t, len(sc.Steps), test.ShouldEqual, 3)
	test.That(t, sc.Steps[1].Config, test.ShouldEqual, filepath.Join(filepath.Dir(path), "chain.yaml"))
	test.That(t, sc.Steps[2].Trials, test.ShouldEqual, 25)
	test.That(t, sc.Steps[2].Seed, test.ShouldEqual, int64(7))

	test.That(t, sc.Steps[0].Label(), test.ShouldEqual, "wall sweep")
	test.That(t, sc.Steps[1].Label(), test.ShouldEqual, "chain.yaml")
	test.That(t, sc.Steps[2].Label(), test.ShouldEqual, "arm6/surface")
}

func TestValidateCollectsErrors(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Kind: KindSweep, Model: "planar2"},
		{Kind: KindRollout, Model: "planar2", Dt: 0.01, Duration: 1, Integrator: "leapfrog"},
		{Kind: "orbit"},
	}}
	err := sc.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	// missing steps, unknown integrator, no model, unknown kind
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 4)

	test.That(t, (&Scenario{}).Validate(), test.ShouldNotBeNil)
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t))
	test.That(t, err, test.ShouldBeNil)

	results, err := RunScenario(context.Background(), sc, zaptest.NewLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(results), test.ShouldEqual, 3)

	test.That(t, len(results[0].Result.Samples), test.ShouldEqual, 21)
	test.That(t, results[0].Config.Name, test.ShouldEqual, "planar2")
	test.That(t, results[0].Result.Metrics["constraint_residual"], test.ShouldBeLessThan, 1e-8)

	test.That(t, len(results[1].Result.Samples), test.ShouldEqual, 21)
	test.That(t, results[1].Config.Name, test.ShouldEqual, "pendulum")

	mc := results[2].Result
	test.That(t, len(mc.Samples)+mc.Failed, test.ShouldEqual, 25)
	test.That(t, mc.Metrics["constraint_residual"], test.ShouldBeLessThan, 1e-6)
}

func TestRunScenarioStopsAtFailure(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Kind: KindSweep, Model: "pendulum", Steps: 4, To: 1},
		{Kind: KindSweep, Model: "pendulum", Preset: "upside-down", Steps: 4},
	}}
	results, err := RunScenario(context.Background(), sc, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(results), test.ShouldEqual, 1)
}

func TestMonteCarloSeeded(t *testing.T) {
	cfg := config.GetPreset("planar3", "free")
	r, err := sweep.New(cfg, nil)
	test.That(t, err, test.ShouldBeNil)

	mc := MonteCarlo{Trials: 10, Perturbation: 0.2, Seed: 42}
	a, err := RunMonteCarlo(context.Background(), r, cfg, mc)
	test.That(t, err, test.ShouldBeNil)
	b, err := RunMonteCarlo(context.Background(), r, cfg, mc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(a.Samples), test.ShouldEqual, 10)
	for i := range a.Samples {
		test.That(t, a.Samples[i].Q, test.ShouldResemble, b.Samples[i].Q)
		test.That(t, a.Samples[i].Param, test.ShouldEqual, float64(i))
	}

	q0, _, _, _ := cfg.Inputs()
	for _, s := range a.Samples {
		for j := range q0 {
			test.That(t, s.Q[j], test.ShouldAlmostEqual, q0[j], 0.2)
		}
	}

	bounded, unbounded := Stats(a, 1e6)
	test.That(t, bounded, test.ShouldEqual, 10)
	test.That(t, unbounded, test.ShouldEqual, 0)

	_, err = RunMonteCarlo(context.Background(), r, cfg, MonteCarlo{Trials: 0})
	test.That(t, err, test.ShouldNotBeNil)
}
