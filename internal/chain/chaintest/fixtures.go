// Package chaintest builds reference chains for tests.
package chaintest

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/spatial"
)

// Pendulum is a single RotZ link of length l hanging along -Y at q = 0, with
// mass m at the tip and rotational inertia ic about the tip.
func Pendulum(m, l, ic float64) *chain.Chain {
	c := chain.New()
	c.AddSegment(chain.NewSegment("link",
		chain.NewJoint("hinge", chain.RotZ),
		spatial.Translation(r3.Vector{Y: -l}),
		spatial.NewRigidBodyInertia(m, r3.Vector{}, spatial.NewRotationalInertia(0, 0, ic, 0, 0, 0)),
	))
	return c
}

// Planar builds RotZ links along X, each a uniform rod.
func Planar(masses, lengths []float64) *chain.Chain {
	c := chain.New()
	for i := range masses {
		m, l := masses[i], lengths[i]
		c.AddSegment(chain.NewSegment("link",
			chain.NewJoint("joint", chain.RotZ),
			spatial.Translation(r3.Vector{X: l}),
			spatial.NewRigidBodyInertia(m, r3.Vector{X: -l / 2}, spatial.NewRotationalInertia(0, m*l*l/12, m*l*l/12, 0, 0, 0)),
		))
	}
	return c
}

// Spatial is a six-segment arm mixing every joint kind: revolute about canonical
// and arbitrary axes, prismatic, a fixed mount, scale, offset and armature.
func Spatial() *chain.Chain {
	c := chain.New()
	c.AddSegment(chain.NewSegment("base",
		chain.NewJoint("yaw", chain.RotZ),
		spatial.Translation(r3.Vector{Z: 0.3}),
		spatial.NewRigidBodyInertia(2, r3.Vector{Z: -0.15}, spatial.NewRotationalInertia(0.02, 0.02, 0.01, 0, 0, 0)),
	))
	c.AddSegment(chain.NewSegment("upper",
		chain.NewJoint("shoulder", chain.RotY),
		spatial.NewFrame(spatial.RPY(0.1, 0, 0), r3.Vector{X: 0.4}),
		spatial.NewRigidBodyInertia(1.5, r3.Vector{X: -0.2, Y: 0.01}, spatial.NewRotationalInertia(0.003, 0.02, 0.02, 0.001, 0, 0)),
	))
	c.AddSegment(chain.NewSegment("mount",
		chain.NewJoint("mount", chain.Fixed),
		spatial.NewFrame(spatial.RPY(0, 0.2, 0), r3.Vector{X: 0.05, Z: 0.02}),
		spatial.NewRigidBodyInertia(0.3, r3.Vector{X: 0.01}, spatial.NewRotationalInertia(0.001, 0.001, 0.001, 0, 0, 0)),
	))
	elbow, err := chain.NewAxisJoint("elbow", chain.RotAxis, r3.Vector{Y: 0.02}, r3.Vector{X: 1, Y: 1})
	if err != nil {
		panic(err)
	}
	c.AddSegment(chain.NewSegment("fore",
		elbow,
		spatial.Translation(r3.Vector{X: 0.3}),
		spatial.NewRigidBodyInertia(1, r3.Vector{X: -0.15, Z: 0.01}, spatial.NewRotationalInertia(0.002, 0.01, 0.01, 0, 0.0005, 0)),
	))
	c.AddSegment(chain.NewSegment("slide",
		chain.NewJoint("extend", chain.TransX),
		spatial.Translation(r3.Vector{X: 0.1}),
		spatial.NewRigidBodyInertia(0.5, r3.Vector{X: 0.05}, spatial.NewRotationalInertia(0.001, 0.002, 0.002, 0, 0, 0)),
	))
	wrist := chain.NewJoint("wrist", chain.RotX)
	wrist.Scale = 1.2
	wrist.Offset = 0.1
	wrist.Armature = 0.01
	c.AddSegment(chain.NewSegment("hand",
		wrist,
		spatial.Translation(r3.Vector{X: 0.05}),
		spatial.NewRigidBodyInertia(0.2, r3.Vector{X: 0.02, Z: 0.01}, spatial.NewRotationalInertia(0.0004, 0.0003, 0.0003, 0, 0, 0)),
	))
	return c
}

// SpatialState returns a generic posture, joint rates and external wrenches
// for Spatial.
func SpatialState() (q, qdot []float64, fext []spatial.Wrench) {
	q = []float64{0.3, -0.6, 0.9, 0.05, -0.4}
	qdot = []float64{0.5, -0.2, 0.8, 0.1, 1.1}
	fext = make([]spatial.Wrench, 6)
	fext[3] = spatial.NewWrench(r3.Vector{X: 0.5, Y: -1, Z: 2}, r3.Vector{Z: 0.1})
	fext[5] = spatial.NewWrench(r3.Vector{Y: 0.3}, r3.Vector{X: -0.05, Y: 0.02})
	return q, qdot, fext
}

// Gravity is the root acceleration emulating standard gravity along -Z.
func Gravity() spatial.Twist {
	return spatial.GravityTwist(r3.Vector{Z: -9.81})
}
