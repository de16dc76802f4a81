package chain

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/chaindyn/internal/spatial"
)

// Segment is a rigid link driven by a joint. Tip is the pose of the link's tip
// frame relative to the joint's moving frame. Inertia is expressed in the tip
// frame.
type Segment struct {
	Name    string
	Joint   Joint
	Tip     spatial.Frame
	Inertia spatial.RigidBodyInertia
}

func NewSegment(name string, j Joint, tip spatial.Frame, inertia spatial.RigidBodyInertia) Segment {
	return Segment{Name: name, Joint: j, Tip: tip, Inertia: inertia}
}

// Pose maps the segment tip frame into the segment root frame.
func (s Segment) Pose(q float64) spatial.Frame {
	return s.Joint.Pose(q).Mul(s.Tip)
}

// Twist is the velocity of the tip frame origin produced by the joint moving at
// qdot, expressed in the segment root orientation.
func (s Segment) Twist(q, qdot float64) spatial.Twist {
	return s.Joint.Twist(qdot).RefPoint(s.Joint.Pose(q).Apply(s.Tip.P))
}

// PointMass is a body of mass m concentrated at p.
func PointMass(m float64, p r3.Vector) spatial.RigidBodyInertia {
	return spatial.NewRigidBodyInertia(m, p, spatial.RotationalInertia{})
}
