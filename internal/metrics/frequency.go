package metrics

import (
	"fmt"

	"github.com/san-kum/chaindyn/internal/analysis"
	"github.com/san-kum/chaindyn/internal/dynamo"
)

// DominantFrequency is the strongest oscillation frequency of one joint
// position over a rollout. Sample params are taken as uniformly spaced times.
type DominantFrequency struct {
	joint  int
	times  []float64
	values []float64
}

func NewDominantFrequency(joint int) *DominantFrequency {
	return &DominantFrequency{joint: joint}
}

func (d *DominantFrequency) Name() string {
	return fmt.Sprintf("dominant_frequency_q%d", d.joint)
}

func (d *DominantFrequency) Observe(s dynamo.Sample) {
	if d.joint < 0 || d.joint >= len(s.Q) {
		return
	}
	d.times = append(d.times, s.Param)
	d.values = append(d.values, s.Q[d.joint])
}

// Value is 0 when fewer than four samples were observed.
func (d *DominantFrequency) Value() float64 {
	n := len(d.times)
	if n < 4 {
		return 0
	}
	dt := (d.times[n-1] - d.times[0]) / float64(n-1)
	f, err := analysis.DominantFrequency(d.values, dt)
	if err != nil {
		return 0
	}
	return f
}

func (d *DominantFrequency) Reset() {
	d.times = d.times[:0]
	d.values = d.values[:0]
}
