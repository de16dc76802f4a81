// Package automation runs scripted batches of sweeps, rollouts and Monte
// Carlo perturbation studies described in YAML.
package automation

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaindyn/internal/config"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/integrators"
	"github.com/san-kum/chaindyn/internal/sweep"
)

const (
	KindSweep      = "sweep"
	KindRollout    = "rollout"
	KindMonteCarlo = "montecarlo"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep selects a chain, by preset or by file, and one kind of run.
// Only the fields of its kind are read.
type ScenarioStep struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Model  string `yaml:"model"`
	Preset string `yaml:"preset"`
	Config string `yaml:"config"`
	Solver string `yaml:"solver"`

	Joint int     `yaml:"joint"`
	From  float64 `yaml:"from"`
	To    float64 `yaml:"to"`
	Steps int     `yaml:"steps"`

	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Integrator string  `yaml:"integrator"`

	MonteCarlo `yaml:",inline"`
}

// MonteCarlo perturbs every joint position and velocity of the configured
// state uniformly within ±Perturbation. A zero Seed draws one from the clock.
type MonteCarlo struct {
	Trials       int     `yaml:"trials"`
	Perturbation float64 `yaml:"perturbation"`
	Seed         int64   `yaml:"seed"`
}

// StepResult pairs a step with the chain it ran on and its samples.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *dynamo.Result
}

// LoadScenario reads a scenario. Chain files are resolved relative to the
// scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario")
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	dir := filepath.Dir(path)
	for i := range sc.Steps {
		if c := sc.Steps[i].Config; c != "" && !filepath.IsAbs(c) {
			sc.Steps[i].Config = filepath.Join(dir, c)
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate reports every malformed step.
func (sc *Scenario) Validate() error {
	var err error
	if len(sc.Steps) == 0 {
		err = multierr.Append(err, errors.New("scenario has no steps"))
	}
	for i, st := range sc.Steps {
		if st.Config == "" && st.Model == "" {
			err = multierr.Append(err, errors.Errorf("step %d: needs a model or a config file", i+1))
		}
		switch st.Kind {
		case KindSweep:
			if st.Steps < 1 {
				err = multierr.Append(err, errors.Errorf("step %d: sweep needs steps > 0", i+1))
			}
		case KindRollout:
			if st.Dt <= 0 || st.Duration <= 0 {
				err = multierr.Append(err, errors.Errorf("step %d: rollout needs positive dt and duration", i+1))
			}
			if _, ierr := integrators.ByName(st.integrator()); ierr != nil {
				err = multierr.Append(err, errors.Wrapf(ierr, "step %d", i+1))
			}
		case KindMonteCarlo:
			if st.Trials < 1 {
				err = multierr.Append(err, errors.Errorf("step %d: montecarlo needs trials > 0", i+1))
			}
		default:
			err = multierr.Append(err, errors.Errorf("step %d: unknown kind %q", i+1, st.Kind))
		}
	}
	return err
}

func (st ScenarioStep) integrator() string {
	if st.Integrator == "" {
		return "rk4"
	}
	return st.Integrator
}

// Label names the step in logs and stored runs.
func (st ScenarioStep) Label() string {
	if st.Name != "" {
		return st.Name
	}
	if st.Config != "" {
		return filepath.Base(st.Config)
	}
	return st.Model + "/" + st.Preset
}

// LoadConfig returns the chain the step runs on.
func (st ScenarioStep) LoadConfig() (*config.Config, error) {
	var cfg *config.Config
	if st.Config != "" {
		c, err := config.Load(st.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		preset := st.Preset
		if preset == "" {
			if names := config.ListPresets(st.Model); len(names) > 0 {
				preset = names[0]
			}
		}
		cfg = config.GetPreset(st.Model, preset)
		if cfg == nil {
			return nil, errors.Errorf("unknown preset %s/%s", st.Model, preset)
		}
	}
	if st.Solver != "" {
		cfg.Solver = st.Solver
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results completed so far.
func RunScenario(ctx context.Context, sc *Scenario, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]StepResult, 0, len(sc.Steps))

	for i, st := range sc.Steps {
		logger.Info("running step",
			zap.Int("step", i+1),
			zap.Int("of", len(sc.Steps)),
			zap.String("name", st.Label()),
			zap.String("kind", st.Kind))

		cfg, err := st.LoadConfig()
		if err != nil {
			return results, errors.Wrapf(err, "step %d", i+1)
		}
		runner, err := sweep.New(cfg, logger)
		if err != nil {
			return results, errors.Wrapf(err, "step %d", i+1)
		}
		runner.DefaultMetrics()

		var res *dynamo.Result
		switch st.Kind {
		case KindSweep:
			res, err = runner.Joint(ctx, sweep.JointSweep{Joint: st.Joint, From: st.From, To: st.To, Steps: st.Steps})
		case KindRollout:
			res, err = runner.Rollout(ctx, sweep.Rollout{Dt: st.Dt, Duration: st.Duration, Integrator: st.integrator()})
		case KindMonteCarlo:
			res, err = RunMonteCarlo(ctx, runner, cfg, st.MonteCarlo)
		default:
			err = errors.Errorf("unknown kind %q", st.Kind)
		}
		if err != nil {
			return results, errors.Wrapf(err, "step %d %s", i+1, st.Label())
		}
		results = append(results, StepResult{Step: st, Config: cfg, Result: res})
	}

	return results, nil
}

// RunMonteCarlo solves mc.Trials randomly perturbed copies of the state in
// cfg. Sample params are trial numbers.
func RunMonteCarlo(ctx context.Context, runner *sweep.Runner, cfg *config.Config, mc MonteCarlo) (*dynamo.Result, error) {
	if mc.Trials < 1 {
		return nil, errors.Errorf("trials must be positive, got %d", mc.Trials)
	}
	if mc.Perturbation < 0 {
		return nil, errors.Errorf("perturbation must not be negative, got %f", mc.Perturbation)
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	q0, qdot0, _, _ := cfg.Inputs()
	states := make([]sweep.State, mc.Trials)
	for trial := range states {
		q, qdot := q0.Clone(), qdot0.Clone()
		for i := range q {
			q[i] += (rng.Float64()*2 - 1) * mc.Perturbation
			qdot[i] += (rng.Float64()*2 - 1) * mc.Perturbation
		}
		states[trial] = sweep.State{Param: float64(trial), Q: q, QDot: qdot}
	}
	return runner.States(ctx, states)
}

// Stats counts samples whose joint accelerations stay within bound.
func Stats(res *dynamo.Result, bound float64) (bounded, unbounded int) {
	for _, s := range res.Samples {
		if s.QDDot.IsValid() && s.QDDot.Norm() <= bound {
			bounded++
		} else {
			unbounded++
		}
	}
	unbounded += res.Failed
	return bounded, unbounded
}
