package metrics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain/chaintest"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/spatial"
)

func TestKineticEnergyPendulum(t *testing.T) {
	m, l, ic := 2.0, 1.5, 0.1
	e := NewKineticEnergy(chaintest.Pendulum(m, l, ic))

	e.Observe(dynamo.Sample{Q: dynamo.JntArray{0.3}, QDot: dynamo.JntArray{2}})
	e.Observe(dynamo.Sample{Q: dynamo.JntArray{1.2}, QDot: dynamo.JntArray{0}})

	ke := 0.5 * (ic + m*l*l) * 4
	if math.Abs(e.Value()-ke/2) > 1e-9 {
		t.Errorf("expected mean energy %f, got %f", ke/2, e.Value())
	}
	if math.Abs(e.Peak()-ke) > 1e-9 {
		t.Errorf("expected peak %f, got %f", ke, e.Peak())
	}

	e.Reset()
	if e.Value() != 0 || e.Peak() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestKineticEnergyIgnoresMismatchedSamples(t *testing.T) {
	e := NewKineticEnergy(chaintest.Planar([]float64{1, 1}, []float64{1, 1}))
	e.Observe(dynamo.Sample{Q: dynamo.JntArray{0, 0}, QDot: dynamo.JntArray{1}})
	if e.Value() != 0 {
		t.Errorf("expected no observation, got %f", e.Value())
	}
}

func TestTorqueEffort(t *testing.T) {
	e := NewTorqueEffort()
	e.Observe(dynamo.Sample{Applied: dynamo.JntArray{3}, Torques: dynamo.JntArray{1}})
	e.Observe(dynamo.Sample{Applied: dynamo.JntArray{0, 0}, Torques: dynamo.JntArray{3, 4}})

	if math.Abs(e.Value()-4.5) > 1e-12 {
		t.Errorf("expected effort 4.5, got %f", e.Value())
	}
	e.Reset()
	if e.Value() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestConstraintResidual(t *testing.T) {
	alfa := mat.NewDense(6, 1, []float64{1, 0, 0, 0, 0, 0})
	r := NewConstraintResidual(alfa, []float64{0.5})
	r.Observe(dynamo.Sample{Tip: spatial.Twist{Vel: r3.Vector{X: 0.2, Y: 9}}})
	r.Observe(dynamo.Sample{Tip: spatial.Twist{Vel: r3.Vector{X: 0.4}}})
	if math.Abs(r.Value()-0.3) > 1e-12 {
		t.Errorf("expected residual 0.3, got %f", r.Value())
	}

	free := NewConstraintResidual(nil, nil)
	free.Observe(dynamo.Sample{Tip: spatial.Twist{Vel: r3.Vector{X: 1}}})
	if free.Value() != 0 {
		t.Errorf("unconstrained residual should be zero, got %f", free.Value())
	}
}

func TestBoundedness(t *testing.T) {
	b := NewBoundedness(10)
	if b.Value() != 1 {
		t.Error("expected full boundedness with no samples")
	}
	b.Observe(dynamo.Sample{QDDot: dynamo.JntArray{1, -2}})
	b.Observe(dynamo.Sample{QDDot: dynamo.JntArray{-20}})
	b.Observe(dynamo.Sample{QDDot: dynamo.JntArray{math.NaN()}})
	if math.Abs(b.Value()-1.0/3) > 1e-12 {
		t.Errorf("expected 1/3, got %f", b.Value())
	}
}

func TestCollect(t *testing.T) {
	samples := []dynamo.Sample{
		{Applied: dynamo.JntArray{2}, Torques: dynamo.JntArray{0}, QDDot: dynamo.JntArray{1}},
	}
	effort := NewTorqueEffort()
	effort.Observe(dynamo.Sample{Torques: dynamo.JntArray{100}})

	got := Collect(samples, effort, NewBoundedness(0.5))
	if got["torque_effort"] != 2 {
		t.Errorf("Collect should reset metrics first, got %v", got)
	}
	if got["boundedness"] != 0 {
		t.Errorf("expected boundedness 0, got %v", got["boundedness"])
	}
}

func TestDominantFrequency(t *testing.T) {
	d := NewDominantFrequency(1)
	if d.Name() != "dominant_frequency_q1" {
		t.Errorf("unexpected name %s", d.Name())
	}

	dt := 0.01
	samples := make([]dynamo.Sample, 500)
	for i := range samples {
		tm := float64(i) * dt
		samples[i] = dynamo.Sample{Param: tm, Q: dynamo.JntArray{0, math.Cos(2 * math.Pi * 4 * tm)}}
	}
	got := Collect(samples, d)["dominant_frequency_q1"]
	if math.Abs(got-4) > 1/(500*dt) {
		t.Errorf("expected 4 Hz, got %f", got)
	}

	d.Reset()
	d.Observe(dynamo.Sample{Q: dynamo.JntArray{1}})
	if d.Value() != 0 {
		t.Errorf("expected 0 without samples of joint 1, got %f", d.Value())
	}
}
