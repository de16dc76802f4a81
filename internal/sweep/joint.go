package sweep

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/chaindyn/internal/dynamo"
)

// JointSweep moves one joint from From to To in Steps equal intervals while
// the rest of the state stays at the configured values.
type JointSweep struct {
	Joint    int
	From, To float64
	Steps    int
}

// State is one point of a sweep; Param labels the resulting sample.
type State struct {
	Param   float64
	Q, QDot dynamo.JntArray
}

const minChunk = 16

func (r *Runner) validateJoint(js JointSweep) error {
	if js.Joint < 0 || js.Joint >= r.chain.NrOfJoints() {
		return errors.Errorf("joint %d out of range, chain has %d joints", js.Joint, r.chain.NrOfJoints())
	}
	if js.Steps < 1 {
		return errors.Errorf("steps must be positive, got %d", js.Steps)
	}
	return nil
}

// Joint solves Steps+1 states in parallel. Samples whose solve fails are
// dropped and counted in Result.Failed.
func (r *Runner) Joint(ctx context.Context, js JointSweep) (*dynamo.Result, error) {
	if err := r.validateJoint(js); err != nil {
		return nil, err
	}
	q0, qdot, _, _ := r.cfg.Inputs()
	states := make([]State, js.Steps+1)
	for i := range states {
		param := js.From + (js.To-js.From)*float64(i)/float64(js.Steps)
		q := q0.Clone()
		q[js.Joint] = param
		states[i] = State{Param: param, Q: q, QDot: qdot}
	}
	return r.States(ctx, states)
}

// States solves every state in parallel, keeping the input order. Samples
// whose solve fails are dropped and counted in Result.Failed.
func (r *Runner) States(ctx context.Context, states []State) (*dynamo.Result, error) {
	nj := r.chain.NrOfJoints()
	for i, st := range states {
		if len(st.Q) != nj || len(st.QDot) != nj {
			return nil, errors.Errorf("state %d has %d positions and %d velocities, chain has %d joints", i, len(st.Q), len(st.QDot), nj)
		}
	}

	n := len(states)
	samples := make([]dynamo.Sample, n)
	ok := make([]bool, n)
	var failed int64

	err := dynamo.ParallelFor(ctx, n, minChunk, func(ctx context.Context, start, end int) error {
		w, err := r.newWorker()
		if err != nil {
			return err
		}
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			st := states[i]
			s, err := w.solve(st.Param, st.Q, st.QDot)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				r.logger.Warn("sample failed", zap.Float64("param", st.Param), zap.Error(err))
				continue
			}
			samples[i], ok[i] = s, true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &dynamo.Result{Samples: make([]dynamo.Sample, 0, n), Failed: int(failed)}
	for i, s := range samples {
		if ok[i] {
			res.Samples = append(res.Samples, s)
		}
	}
	r.finish(res)
	return res, nil
}
