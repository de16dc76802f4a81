package hybrid

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/spatial"
)

// segmentInfo is the working state of one segment. Entry 0 of the solver's
// array is the root, entry i+1 belongs to chain segment i. Twists and wrenches
// are expressed in the segment tip frame unless noted.
type segmentInfo struct {
	F     spatial.Frame // pose relative to the parent tip
	FBase spatial.Frame // pose relative to the base
	Z     spatial.Twist // unit joint twist, at the segment root
	V     spatial.Twist
	Acc   spatial.Twist
	C     spatial.Twist // velocity-product acceleration, at the segment root

	H      spatial.ArticulatedBodyInertia // rigid inertia of the segment
	P      spatial.ArticulatedBodyInertia // articulated inertia, at the segment root
	PTilde spatial.ArticulatedBodyInertia

	U      spatial.Wrench // velocity-product and external bias force
	R      spatial.Wrench // articulated bias force, at the segment root
	RTilde spatial.Wrench
	PZ     spatial.Wrench
	PC     spatial.Wrench
	D      float64

	// projected is false for fixed and locked joints: the subtree then moves
	// rigidly with the parent.
	projected bool
	locked    bool

	// constraint data, nil when nc == 0
	E      *mat.Dense    // 6 x nc constraint force basis, at the segment root
	ETilde *mat.Dense    // 6 x nc, in the tip frame
	M      *mat.Dense    // nc x nc acceleration energy
	G      *mat.VecDense // nc bias acceleration energy
	EZ     *mat.VecDense // nc

	totalBias        float64
	u                float64
	nullspaceAccComp float64
	constAccComp     float64
	biasAccComp      float64
	parentAccComp    float64
	constraintTorque float64
}

func newSegmentInfo(nc int) segmentInfo {
	s := segmentInfo{F: spatial.IdentityFrame(), FBase: spatial.IdentityFrame()}
	if nc > 0 {
		s.E = mat.NewDense(6, nc, nil)
		s.ETilde = mat.NewDense(6, nc, nil)
		s.M = mat.NewDense(nc, nc, nil)
		s.G = mat.NewVecDense(nc, nil)
		s.EZ = mat.NewVecDense(nc, nil)
	}
	return s
}
