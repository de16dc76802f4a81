package chain

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/san-kum/chaindyn/internal/spatial"
)

type JointType int

const (
	Fixed JointType = iota
	RotAxis
	RotX
	RotY
	RotZ
	TransAxis
	TransX
	TransY
	TransZ
)

var jointTypeNames = map[JointType]string{
	Fixed:     "fixed",
	RotAxis:   "rot_axis",
	RotX:      "rot_x",
	RotY:      "rot_y",
	RotZ:      "rot_z",
	TransAxis: "trans_axis",
	TransX:    "trans_x",
	TransY:    "trans_y",
	TransZ:    "trans_z",
}

func (t JointType) String() string {
	if s, ok := jointTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("JointType(%d)", int(t))
}

func ParseJointType(s string) (JointType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range jointTypeNames {
		if name == s {
			return t, nil
		}
	}
	return Fixed, errors.Errorf("unknown joint type %q", s)
}

func (t JointType) IsRotational() bool {
	return t == RotAxis || t == RotX || t == RotY || t == RotZ
}

// Joint is a single degree of freedom, or none for Fixed. The joint position
// seen by the kinematics is scale*q + offset.
type Joint struct {
	Name     string
	Type     JointType
	Origin   r3.Vector // a point on the axis, only used by RotAxis and TransAxis
	Axis     r3.Vector
	Scale    float64
	Offset   float64
	Armature float64 // reflected rotor inertia added on the joint axis
}

// NewJoint returns a joint of type t about or along its canonical axis.
func NewJoint(name string, t JointType) Joint {
	j := Joint{Name: name, Type: t, Scale: 1}
	switch t {
	case RotX, TransX:
		j.Axis = r3.Vector{X: 1}
	case RotY, TransY:
		j.Axis = r3.Vector{Y: 1}
	case RotZ, TransZ:
		j.Axis = r3.Vector{Z: 1}
	}
	return j
}

// NewAxisJoint returns a RotAxis or TransAxis joint about axis through origin.
func NewAxisJoint(name string, t JointType, origin, axis r3.Vector) (Joint, error) {
	if t != RotAxis && t != TransAxis {
		return Joint{}, errors.Errorf("joint %q: type %s does not take an explicit axis", name, t)
	}
	n := axis.Norm()
	if n < 1e-12 {
		return Joint{}, errors.Errorf("joint %q: zero axis", name)
	}
	return Joint{Name: name, Type: t, Origin: origin, Axis: axis.Mul(1 / n), Scale: 1}, nil
}

func (j Joint) IsFixed() bool { return j.Type == Fixed }

// Pose is the transform produced by the joint at position q.
func (j Joint) Pose(q float64) spatial.Frame {
	x := j.Scale*q + j.Offset
	switch j.Type {
	case RotX:
		return spatial.NewFrame(spatial.RotX(x), r3.Vector{})
	case RotY:
		return spatial.NewFrame(spatial.RotY(x), r3.Vector{})
	case RotZ:
		return spatial.NewFrame(spatial.RotZ(x), r3.Vector{})
	case RotAxis:
		rot := spatial.AxisAngle(j.Axis, x)
		return spatial.NewFrame(rot, j.Origin.Sub(rot.Apply(j.Origin)))
	case TransX, TransY, TransZ:
		return spatial.Translation(j.Axis.Mul(x))
	case TransAxis:
		return spatial.Translation(j.Origin.Add(j.Axis.Mul(x)))
	default:
		return spatial.IdentityFrame()
	}
}

// Twist is the joint velocity at rate qdot, referred to the origin of the
// joint's parent frame.
func (j Joint) Twist(qdot float64) spatial.Twist {
	x := j.Scale * qdot
	switch j.Type {
	case RotX, RotY, RotZ:
		return spatial.Twist{Rot: j.Axis.Mul(x)}
	case RotAxis:
		w := j.Axis.Mul(x)
		return spatial.Twist{Vel: j.Origin.Cross(w), Rot: w}
	case TransX, TransY, TransZ, TransAxis:
		return spatial.Twist{Vel: j.Axis.Mul(x)}
	default:
		return spatial.Twist{}
	}
}
