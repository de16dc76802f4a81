package dynamo

import "github.com/san-kum/chaindyn/internal/spatial"

// Sample is one hybrid solve taken while sweeping a joint.
type Sample struct {
	Param   float64       `json:"param"`
	Q       JntArray      `json:"q"`
	QDot    JntArray      `json:"qdot"`
	QDDot   JntArray      `json:"qddot"`
	Applied JntArray      `json:"applied"`
	Torques JntArray      `json:"torques"`
	Nu      []float64     `json:"nu,omitempty"`
	Tip     spatial.Twist `json:"tip"`
}

type Result struct {
	Samples []Sample           `json:"samples"`
	Metrics map[string]float64 `json:"metrics"`
	// Failed counts samples whose solve returned an error.
	Failed int `json:"failed"`
}

// Params returns the swept parameter of every sample.
func (r *Result) Params() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Param
	}
	return out
}

// Series returns one column of the samples, e.g. Series(func(s Sample) float64 { return s.QDDot[0] }).
func (r *Result) Series(f func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = f(s)
	}
	return out
}
