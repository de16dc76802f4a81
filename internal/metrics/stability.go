package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/chaindyn/internal/dynamo"
)

// Boundedness is the fraction of samples whose joint accelerations are finite
// and no larger than threshold in magnitude.
type Boundedness struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewBoundedness(threshold float64) *Boundedness {
	return &Boundedness{
		name:      "boundedness",
		threshold: threshold,
	}
}

func (b *Boundedness) Name() string {
	return b.name
}

func (b *Boundedness) Observe(s dynamo.Sample) {
	b.samples++
	if len(s.QDDot) == 0 {
		return
	}
	if !s.QDDot.IsValid() || floats.Norm(s.QDDot, math.Inf(1)) > b.threshold {
		b.violations++
	}
}

func (b *Boundedness) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Boundedness) Reset() {
	b.violations = 0
	b.samples = 0
}
