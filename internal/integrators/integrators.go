// Package integrators advances first-order systems x' = f(t, x) in time.
package integrators

import (
	"sort"

	"github.com/pkg/errors"
)

// System writes the time derivative of x into dx. len(dx) == len(x).
type System interface {
	Derive(t float64, x, dx []float64) error
}

// Integrator takes one fixed step and returns the new state. x is not
// modified.
type Integrator interface {
	Step(sys System, x []float64, t, dt float64) ([]float64, error)
}

var registry = map[string]func() Integrator{
	"euler": func() Integrator { return NewEuler() },
	"rk4":   func() Integrator { return NewRK4() },
}

// ByName returns a fresh integrator; each instance keeps its own scratch
// buffers.
func ByName(name string) (Integrator, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown integrator %q (have %v)", name, Names())
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
