package config

import (
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/linalg"
	"github.com/san-kum/chaindyn/internal/spatial"
)

const (
	DefaultGravity = 9.81
	DefaultSolver  = SolverVereshchagin
	DefaultAxisTol = 1e-12

	SolverVereshchagin = "vereshchagin"
	SolverDense        = "dense"
)

type Vec3 [3]float64

func (v Vec3) R3() r3.Vector { return r3.Vector{X: v[0], Y: v[1], Z: v[2]} }

// Config describes a chain, the constraints on its end-effector and the state
// to solve at.
type Config struct {
	Name        string           `yaml:"name"`
	Solver      string           `yaml:"solver"`
	Gravity     Vec3             `yaml:"gravity,flow"`
	Segments    []SegmentConfig  `yaml:"segments"`
	Constraints ConstraintConfig `yaml:"constraints"`
	State       StateConfig      `yaml:"state"`
	Tolerances  ToleranceConfig  `yaml:"tolerances"`
}

type SegmentConfig struct {
	Name    string        `yaml:"name"`
	Joint   JointConfig   `yaml:"joint"`
	Tip     TipConfig     `yaml:"tip"`
	Inertia InertiaConfig `yaml:"inertia"`
}

type JointConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	// Origin and Axis are read for rot_axis and trans_axis only.
	Origin   Vec3    `yaml:"origin,flow,omitempty"`
	Axis     Vec3    `yaml:"axis,flow,omitempty"`
	Scale    float64 `yaml:"scale,omitempty"` // 0 reads as 1
	Offset   float64 `yaml:"offset,omitempty"`
	Armature float64 `yaml:"armature,omitempty"`
}

// TipConfig places the segment tip relative to the joint. Quaternion, given as
// [w, x, y, z], takes precedence over RPY.
type TipConfig struct {
	XYZ        Vec3      `yaml:"xyz,flow"`
	RPY        Vec3      `yaml:"rpy,flow,omitempty"`
	Quaternion []float64 `yaml:"quaternion,flow,omitempty"`
}

// InertiaConfig is expressed in the tip frame; the rotational terms are about
// the centre of mass.
type InertiaConfig struct {
	Mass float64 `yaml:"mass"`
	Cog  Vec3    `yaml:"cog,flow"`
	Ixx  float64 `yaml:"ixx,omitempty"`
	Iyy  float64 `yaml:"iyy,omitempty"`
	Izz  float64 `yaml:"izz,omitempty"`
	Ixy  float64 `yaml:"ixy,omitempty"`
	Ixz  float64 `yaml:"ixz,omitempty"`
	Iyz  float64 `yaml:"iyz,omitempty"`
}

// ConstraintConfig lists unit constraint wrenches in the base orientation,
// [fx fy fz tx ty tz] each, and the imposed accelerations along them.
type ConstraintConfig struct {
	Directions [][6]float64 `yaml:"directions,flow"`
	Beta       []float64    `yaml:"beta,flow"`
}

type StateConfig struct {
	Q        []float64      `yaml:"q,flow"`
	QDot     []float64      `yaml:"qdot,flow"`
	Torques  []float64      `yaml:"torques,flow"`
	Wrenches []WrenchConfig `yaml:"wrenches,omitempty"`
}

// WrenchConfig is an external wrench on a segment, in the base orientation at
// the segment tip.
type WrenchConfig struct {
	Segment int  `yaml:"segment"`
	Force   Vec3 `yaml:"force,flow"`
	Torque  Vec3 `yaml:"torque,flow"`
}

type ToleranceConfig struct {
	SingularValue         float64 `yaml:"singular_value"`
	RelativeSingularValue float64 `yaml:"relative_singular_value"`
	AxisInertia           float64 `yaml:"axis_inertia"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:    "pendulum",
		Solver:  DefaultSolver,
		Gravity: Vec3{0, -DefaultGravity, 0},
		Segments: []SegmentConfig{{
			Name:    "link",
			Joint:   JointConfig{Name: "hinge", Type: "rot_z"},
			Tip:     TipConfig{XYZ: Vec3{0, -1, 0}},
			Inertia: InertiaConfig{Mass: 1},
		}},
		State: StateConfig{Q: []float64{0.5}},
		Tolerances: ToleranceConfig{
			SingularValue: linalg.DefaultTolerance,
			AxisInertia:   DefaultAxisTol,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg := DefaultConfig()
	cfg.Segments = nil
	cfg.State = StateConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(err)
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

func (c *Config) NrOfJoints() int {
	n := 0
	for _, s := range c.Segments {
		if t, err := chain.ParseJointType(s.Joint.Type); err == nil && t != chain.Fixed {
			n++
		}
	}
	return n
}

func (c *Config) NrOfConstraints() int { return len(c.Constraints.Directions) }

// Validate reports every problem found in c.
func (c *Config) Validate() error {
	var err error
	if len(c.Segments) == 0 {
		err = multierr.Append(err, errors.New("no segments"))
	}
	if c.Solver != SolverVereshchagin && c.Solver != SolverDense {
		err = multierr.Append(err, errors.Errorf("unknown solver %q", c.Solver))
	}
	for i, s := range c.Segments {
		if _, e := buildSegment(s); e != nil {
			err = multierr.Append(err, &dynamo.SegmentError{Segment: i, Name: s.Name, Wrapped: e})
		}
	}
	nj, ns := c.NrOfJoints(), len(c.Segments)
	for _, a := range []struct {
		name   string
		values []float64
	}{{"q", c.State.Q}, {"qdot", c.State.QDot}, {"torques", c.State.Torques}} {
		if len(a.values) != 0 && len(a.values) != nj {
			err = multierr.Append(err, errors.Wrapf(dynamo.ErrSizeMismatch, "state %s has %d entries for %d joints", a.name, len(a.values), nj))
		}
	}
	for _, w := range c.State.Wrenches {
		if w.Segment < 0 || w.Segment >= ns {
			err = multierr.Append(err, errors.Errorf("wrench on segment %d, chain has %d", w.Segment, ns))
		}
	}
	if len(c.Constraints.Beta) != len(c.Constraints.Directions) {
		err = multierr.Append(err, errors.Wrapf(dynamo.ErrConstraintSizeMismatch,
			"%d constraint directions but %d beta values", len(c.Constraints.Directions), len(c.Constraints.Beta)))
	}
	return err
}

func buildSegment(s SegmentConfig) (chain.Segment, error) {
	typ, err := chain.ParseJointType(s.Joint.Type)
	if err != nil {
		return chain.Segment{}, err
	}
	var j chain.Joint
	if typ == chain.RotAxis || typ == chain.TransAxis {
		j, err = chain.NewAxisJoint(s.Joint.Name, typ, s.Joint.Origin.R3(), s.Joint.Axis.R3())
		if err != nil {
			return chain.Segment{}, err
		}
	} else {
		j = chain.NewJoint(s.Joint.Name, typ)
	}
	if s.Joint.Scale != 0 {
		j.Scale = s.Joint.Scale
	}
	j.Offset = s.Joint.Offset
	if s.Joint.Armature < 0 {
		return chain.Segment{}, errors.Errorf("negative armature %v", s.Joint.Armature)
	}
	j.Armature = s.Joint.Armature

	rot := spatial.RPY(s.Tip.RPY[0], s.Tip.RPY[1], s.Tip.RPY[2])
	if q := s.Tip.Quaternion; len(q) != 0 {
		if len(q) != 4 {
			return chain.Segment{}, errors.Errorf("quaternion needs 4 values, got %d", len(q))
		}
		rot = spatial.RotationFromQuaternion(quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]})
	}

	in := s.Inertia
	if in.Mass < 0 {
		return chain.Segment{}, errors.Errorf("negative mass %v", in.Mass)
	}
	inertia := spatial.NewRigidBodyInertia(in.Mass, in.Cog.R3(),
		spatial.NewRotationalInertia(in.Ixx, in.Iyy, in.Izz, in.Ixy, in.Ixz, in.Iyz))
	return chain.NewSegment(s.Name, j, spatial.NewFrame(rot, s.Tip.XYZ.R3()), inertia), nil
}

// Build constructs the chain described by c.
func (c *Config) Build() (*chain.Chain, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := chain.New()
	for i, s := range c.Segments {
		seg, err := buildSegment(s)
		if err != nil {
			return nil, &dynamo.SegmentError{Segment: i, Name: s.Name, Wrapped: err}
		}
		out.AddSegment(seg)
	}
	return out, nil
}

// RootAcceleration emulates the gravity field by accelerating the base.
func (c *Config) RootAcceleration() spatial.Twist {
	return spatial.GravityTwist(c.Gravity.R3())
}

// Alfa returns the 6 x nc constraint matrix, nil without constraints.
func (c *Config) Alfa() *mat.Dense {
	nc := c.NrOfConstraints()
	if nc == 0 {
		return nil
	}
	alfa := mat.NewDense(6, nc, nil)
	for k, d := range c.Constraints.Directions {
		for i, x := range d {
			alfa.Set(i, k, x)
		}
	}
	return alfa
}

func (c *Config) Beta() dynamo.JntArray {
	return dynamo.JntArray(c.Constraints.Beta).Clone()
}

// Inputs returns the joint state and external wrenches; missing arrays read as
// zeros.
func (c *Config) Inputs() (q, qdot, torques dynamo.JntArray, fext []spatial.Wrench) {
	nj := c.NrOfJoints()
	fill := func(a []float64) dynamo.JntArray {
		out := dynamo.NewJntArray(nj)
		copy(out, a)
		return out
	}
	fext = make([]spatial.Wrench, len(c.Segments))
	for _, w := range c.State.Wrenches {
		if w.Segment >= 0 && w.Segment < len(fext) {
			fext[w.Segment] = fext[w.Segment].Add(spatial.NewWrench(w.Force.R3(), w.Torque.R3()))
		}
	}
	return fill(c.State.Q), fill(c.State.QDot), fill(c.State.Torques), fext
}
