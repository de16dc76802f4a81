package sweep

import (
	"context"
	"math"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/san-kum/chaindyn/internal/config"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/metrics"
)

func newRunner(t *testing.T, model, preset string) *Runner {
	t.Helper()
	cfg := config.GetPreset(model, preset)
	if cfg == nil {
		t.Fatalf("no preset %s/%s", model, preset)
	}
	r, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestJointSweepPendulum(t *testing.T) {
	r := newRunner(t, "pendulum", "hanging")
	res, err := r.Joint(context.Background(), JointSweep{Joint: 0, From: -math.Pi, To: math.Pi, Steps: 64})
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(res.Samples) != 65 || res.Failed != 0 {
		t.Fatalf("expected 65 samples, got %d (%d failed)", len(res.Samples), res.Failed)
	}

	for i, s := range res.Samples {
		want := -math.Pi + 2*math.Pi*float64(i)/64
		if math.Abs(s.Param-want) > 1e-12 || s.Q[0] != s.Param {
			t.Fatalf("sample %d out of order: param %v", i, s.Param)
		}
		acc := -config.DefaultGravity * math.Sin(s.Param) / 1.01
		if math.Abs(s.QDDot[0]-acc) > 1e-9 {
			t.Errorf("q=%v: qdd = %v, want %v", s.Param, s.QDDot[0], acc)
		}
	}
}

func TestJointSweepSolversAgree(t *testing.T) {
	vr := newRunner(t, "planar2", "wall")
	vr.DefaultMetrics()

	cfg := config.GetPreset("planar2", "wall")
	cfg.Solver = config.SolverDense
	dr, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	js := JointSweep{Joint: 1, From: 0.3, To: 2.0, Steps: 40}
	vres, err := vr.Joint(context.Background(), js)
	if err != nil {
		t.Fatal(err)
	}
	dres, err := dr.Joint(context.Background(), js)
	if err != nil {
		t.Fatal(err)
	}

	for i := range vres.Samples {
		for j := range vres.Samples[i].QDDot {
			if math.Abs(vres.Samples[i].QDDot[j]-dres.Samples[i].QDDot[j]) > 1e-8 {
				t.Errorf("sample %d joint %d: %v vs %v", i, j, vres.Samples[i].QDDot[j], dres.Samples[i].QDDot[j])
			}
		}
		if len(vres.Samples[i].Nu) != 1 || math.Abs(vres.Samples[i].Nu[0]-dres.Samples[i].Nu[0]) > 1e-6 {
			t.Errorf("sample %d: constraint magnitudes %v vs %v", i, vres.Samples[i].Nu, dres.Samples[i].Nu)
		}
	}

	if vres.Metrics["constraint_residual"] > 1e-8 {
		t.Errorf("constraint residual %v", vres.Metrics["constraint_residual"])
	}
	if vres.Metrics["boundedness"] != 1 {
		t.Errorf("boundedness %v", vres.Metrics["boundedness"])
	}
	if len(dres.Metrics) != 0 {
		t.Errorf("runner without metrics reported %v", dres.Metrics)
	}
}

func TestJointSweepInvalid(t *testing.T) {
	r := newRunner(t, "planar2", "free")
	tests := []struct {
		name string
		js   JointSweep
	}{
		{"negative joint", JointSweep{Joint: -1, Steps: 10}},
		{"joint out of range", JointSweep{Joint: 2, Steps: 10}},
		{"zero steps", JointSweep{Joint: 0, Steps: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Joint(context.Background(), tt.js); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestJointSweepCancelled(t *testing.T) {
	r := newRunner(t, "arm6", "free")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Joint(ctx, JointSweep{Joint: 0, From: 0, To: 1, Steps: 200}); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestRolloutConservesEnergy(t *testing.T) {
	r := newRunner(t, "pendulum", "hanging")
	res, err := r.Rollout(context.Background(), Rollout{Dt: 1e-3, Duration: 1, Integrator: "rk4"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Samples) != 1001 {
		t.Fatalf("expected 1001 samples, got %d", len(res.Samples))
	}
	if last := res.Samples[1000].Param; math.Abs(last-1) > 1e-9 {
		t.Errorf("last sample at t=%v", last)
	}

	energy := func(s dynamo.Sample) float64 {
		return 0.5*1.01*s.QDot[0]*s.QDot[0] - config.DefaultGravity*math.Cos(s.Q[0])
	}
	e0 := energy(res.Samples[0])
	for _, s := range res.Samples {
		if math.Abs(energy(s)-e0) > 1e-8 {
			t.Fatalf("energy drift %v at t=%v", energy(s)-e0, s.Param)
		}
	}
}

func TestRolloutBraked(t *testing.T) {
	r := newRunner(t, "pendulum", "braked")
	res, err := r.Rollout(context.Background(), Rollout{Dt: 0.01, Duration: 0.5, Integrator: "euler"})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range res.Samples {
		if math.Abs(s.Q[0]-1) > 1e-12 || math.Abs(s.QDDot[0]) > 1e-12 {
			t.Fatalf("braked joint moved: %+v", s)
		}
	}
}

func TestRolloutInvalid(t *testing.T) {
	r := newRunner(t, "pendulum", "hanging")
	tests := []struct {
		name string
		ro   Rollout
	}{
		{"zero dt", Rollout{Dt: 0, Duration: 1, Integrator: "rk4"}},
		{"negative duration", Rollout{Dt: 0.1, Duration: -1, Integrator: "rk4"}},
		{"unknown integrator", Rollout{Dt: 0.1, Duration: 1, Integrator: "leapfrog"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Rollout(context.Background(), tt.ro); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRolloutCancelled(t *testing.T) {
	r := newRunner(t, "pendulum", "hanging")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Rollout(ctx, Rollout{Dt: 0.01, Duration: 1, Integrator: "rk4"})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil || len(res.Samples) != 0 {
		t.Error("expected an empty partial result")
	}
}

func TestRolloutPendulumFrequency(t *testing.T) {
	r := newRunner(t, "pendulum", "hanging")
	r.AddMetric(metrics.NewDominantFrequency(0))
	res, err := r.Rollout(context.Background(), Rollout{Dt: 0.01, Duration: 20, Integrator: "rk4"})
	if err != nil {
		t.Fatal(err)
	}

	// small-angle frequency sqrt(g m l / I)/2π, within one bin of the spectrum
	want := math.Sqrt(9.81/1.01) / (2 * math.Pi)
	got := res.Metrics["dominant_frequency_q0"]
	if math.Abs(got-want) > 1.0/20 {
		t.Errorf("expected about %f Hz, got %f", want, got)
	}
}

func TestStatesKeepsOrder(t *testing.T) {
	r := newRunner(t, "planar2", "free")
	states := make([]State, 40)
	for i := range states {
		states[i] = State{Param: float64(i), Q: dynamo.JntArray{0.1 * float64(i), -0.2}, QDot: dynamo.JntArray{0, 0.5}}
	}
	res, err := r.States(context.Background(), states)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Samples) != len(states) || res.Failed != 0 {
		t.Fatalf("expected %d samples, got %d (%d failed)", len(states), len(res.Samples), res.Failed)
	}
	for i, s := range res.Samples {
		if s.Param != float64(i) || s.Q[0] != states[i].Q[0] {
			t.Fatalf("sample %d out of order: param %f q0 %f", i, s.Param, s.Q[0])
		}
	}

	if _, err := r.States(context.Background(), []State{{Q: dynamo.JntArray{0}, QDot: dynamo.JntArray{0, 0}}}); err == nil {
		t.Error("expected error for a short state")
	}
}
