package integrators

import "testing"

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	x := []float64{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Step(oscillator{}, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	x := []float64{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Step(oscillator{}, x, 0, 0.01)
	}
}
