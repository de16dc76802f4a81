package integrators

type Euler struct {
	dx []float64
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, x []float64, t float64, dt float64) ([]float64, error) {
	if len(e.dx) != len(x) {
		e.dx = make([]float64, len(x))
	}
	if err := sys.Derive(t, x, e.dx); err != nil {
		return nil, err
	}
	result := make([]float64, len(x))
	for i := range x {
		result[i] = x[i] + dt*e.dx[i]
	}
	return result, nil
}
