// Package analysis inspects time series recorded by rollouts.
//
//   - [Spectrum]: one-sided amplitude spectrum of a uniformly sampled signal
//   - [DominantFrequency]: frequency of the strongest non-constant component
//
// A small-amplitude pendulum rollout oscillates at sqrt(g m l / I) / 2π:
//
//	f, _ := analysis.DominantFrequency(res.Series(func(s dynamo.Sample) float64 { return s.Q[0] }), dt)
package analysis
