// Package metrics summarises a sweep of hybrid solves into scalars.
package metrics

import "github.com/san-kum/chaindyn/internal/dynamo"

// Metric accumulates one scalar over the samples of a sweep. Samples are
// observed in sweep order from a single goroutine.
type Metric interface {
	Name() string
	Observe(s dynamo.Sample)
	Value() float64
	Reset()
}

// Collect observes every sample with every metric and returns the values by
// name.
func Collect(samples []dynamo.Sample, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range samples {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
