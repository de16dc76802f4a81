// Package sweep runs the hybrid solver over families of states: a joint swept
// across a range, or a rollout integrated in time.
package sweep

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/config"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/kinematics"
	"github.com/san-kum/chaindyn/internal/metrics"
	"github.com/san-kum/chaindyn/internal/spatial"
)

// Runner owns the chain built from a config. Each worker gets its own solver;
// the chain is shared read-only.
type Runner struct {
	cfg     *config.Config
	chain   *chain.Chain
	alfa    *mat.Dense
	beta    dynamo.JntArray
	metrics []metrics.Metric
	logger  *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	c, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building chain")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		chain:  c,
		alfa:   cfg.Alfa(),
		beta:   cfg.Beta(),
		logger: logger,
	}, nil
}

func (r *Runner) Chain() *chain.Chain { return r.chain }

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }

// DefaultMetrics adds the residual, energy, effort and boundedness metrics.
func (r *Runner) DefaultMetrics() {
	r.AddMetric(metrics.NewConstraintResidual(r.alfa, r.beta))
	r.AddMetric(metrics.NewKineticEnergy(r.chain))
	r.AddMetric(metrics.NewTorqueEffort())
	r.AddMetric(metrics.NewBoundedness(1e3))
}

// worker solves single states. Not safe for concurrent use.
type worker struct {
	r       *Runner
	solver  dynamo.HybridSolver
	kin     *kinematics.Solver
	applied dynamo.JntArray
	fext    []spatial.Wrench
}

func (r *Runner) newWorker() (*worker, error) {
	solver, err := r.cfg.NewSolver(r.chain, r.logger)
	if err != nil {
		return nil, err
	}
	_, _, applied, fext := r.cfg.Inputs()
	return &worker{r: r, solver: solver, kin: kinematics.NewSolver(r.chain), applied: applied, fext: fext}, nil
}

type magnitudes interface{ ConstraintMagnitudes() []float64 }

type multipliers interface{ Lambda() []float64 }

func (w *worker) solve(param float64, q, qdot dynamo.JntArray) (dynamo.Sample, error) {
	s := dynamo.Sample{
		Param:   param,
		Q:       q.Clone(),
		QDot:    qdot.Clone(),
		QDDot:   dynamo.NewJntArray(len(q)),
		Applied: w.applied.Clone(),
		Torques: w.applied.Clone(),
	}
	if err := w.solver.CartToJnt(s.Q, s.QDot, s.QDDot, w.r.alfa, w.r.beta, w.fext, s.Torques); err != nil {
		return s, err
	}
	switch m := w.solver.(type) {
	case magnitudes:
		s.Nu = m.ConstraintMagnitudes()
	case multipliers:
		// lambda pushes the tip along +alfa, nu along -alfa
		s.Nu = m.Lambda()
		floats.Scale(-1, s.Nu)
	}
	tip, err := w.kin.TipAcceleration(s.Q, s.QDot, s.QDDot, w.r.cfg.RootAcceleration())
	if err != nil {
		return s, err
	}
	s.Tip = tip
	return s, nil
}

func (r *Runner) finish(res *dynamo.Result) {
	res.Metrics = metrics.Collect(res.Samples, r.metrics...)
}
