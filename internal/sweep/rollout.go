package sweep

import (
	"context"

	"github.com/pkg/errors"

	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/integrators"
)

// Rollout integrates the constrained motion from the configured state under
// constant applied torques and external wrenches.
type Rollout struct {
	Dt         float64
	Duration   float64
	Integrator string
}

func (r *Runner) validateRollout(ro Rollout) error {
	if ro.Dt <= 0 {
		return errors.Errorf("dt must be positive, got %f", ro.Dt)
	}
	if ro.Duration <= 0 {
		return errors.Errorf("duration must be positive, got %f", ro.Duration)
	}
	return nil
}

// system adapts a worker to x = [q; qdot], x' = [qdot; qdd].
type system struct {
	w  *worker
	nj int
}

func (s *system) Derive(t float64, x, dx []float64) error {
	q, qdot := dynamo.JntArray(x[:s.nj]), dynamo.JntArray(x[s.nj:])
	sample, err := s.w.solve(t, q, qdot)
	if err != nil {
		return err
	}
	copy(dx[:s.nj], qdot)
	copy(dx[s.nj:], sample.QDDot)
	return nil
}

// Rollout records one sample per step, Param holding the time. On a failed
// step the samples so far are returned with the error.
func (r *Runner) Rollout(ctx context.Context, ro Rollout) (*dynamo.Result, error) {
	if err := r.validateRollout(ro); err != nil {
		return nil, err
	}
	integ, err := integrators.ByName(ro.Integrator)
	if err != nil {
		return nil, err
	}
	w, err := r.newWorker()
	if err != nil {
		return nil, err
	}
	nj := r.chain.NrOfJoints()
	sys := &system{w: w, nj: nj}

	q, qdot, _, _ := r.cfg.Inputs()
	x := append(q.Clone(), qdot...)

	steps := int(ro.Duration/ro.Dt + 0.5)
	res := &dynamo.Result{Samples: make([]dynamo.Sample, 0, steps+1)}
	defer r.finish(res)

	t := 0.0
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		s, err := w.solve(t, dynamo.JntArray(x[:nj]), dynamo.JntArray(x[nj:]))
		if err != nil {
			res.Failed++
			return res, errors.Wrapf(err, "solving at t=%.4f", t)
		}
		if !s.QDDot.IsValid() {
			res.Failed++
			return res, errors.Errorf("invalid acceleration at t=%.4f", t)
		}
		res.Samples = append(res.Samples, s)
		if i == steps {
			break
		}

		x, err = integ.Step(sys, x, t, ro.Dt)
		if err != nil {
			res.Failed++
			return res, errors.Wrapf(err, "integrating at t=%.4f", t)
		}
		t += ro.Dt
	}
	return res, nil
}
