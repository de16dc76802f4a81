package config

import "sort"

func rod(name, joint, jointType string, length, mass float64) SegmentConfig {
	i := mass * length * length / 12
	return SegmentConfig{
		Name:    name,
		Joint:   JointConfig{Name: joint, Type: jointType},
		Tip:     TipConfig{XYZ: Vec3{length, 0, 0}},
		Inertia: InertiaConfig{Mass: mass, Cog: Vec3{-length / 2, 0, 0}, Iyy: i, Izz: i},
	}
}

func pendulum() []SegmentConfig {
	return []SegmentConfig{{
		Name:    "link",
		Joint:   JointConfig{Name: "hinge", Type: "rot_z"},
		Tip:     TipConfig{XYZ: Vec3{0, -1, 0}},
		Inertia: InertiaConfig{Mass: 1, Izz: 0.01},
	}}
}

func planar(n int) []SegmentConfig {
	lengths := []float64{1, 0.8, 0.6}
	masses := []float64{2, 1.5, 1}
	segs := make([]SegmentConfig, n)
	for i := range segs {
		segs[i] = rod("link"+string(rune('1'+i)), "joint"+string(rune('1'+i)), "rot_z", lengths[i], masses[i])
	}
	return segs
}

func arm6() []SegmentConfig {
	return []SegmentConfig{
		{
			Name:    "base",
			Joint:   JointConfig{Name: "shoulder_pan", Type: "rot_z"},
			Tip:     TipConfig{XYZ: Vec3{0, 0, 0.15}},
			Inertia: InertiaConfig{Mass: 3, Cog: Vec3{0, 0, -0.075}, Ixx: 0.01, Iyy: 0.01, Izz: 0.005},
		},
		{
			Name:    "upper_arm",
			Joint:   JointConfig{Name: "shoulder_lift", Type: "rot_y"},
			Tip:     TipConfig{XYZ: Vec3{0.42, 0, 0}},
			Inertia: InertiaConfig{Mass: 8, Cog: Vec3{-0.21, 0, 0}, Ixx: 0.01, Iyy: 0.12, Izz: 0.12},
		},
		{
			Name:    "forearm",
			Joint:   JointConfig{Name: "elbow", Type: "rot_y"},
			Tip:     TipConfig{XYZ: Vec3{0.39, 0, 0}},
			Inertia: InertiaConfig{Mass: 2.3, Cog: Vec3{-0.195, 0, 0}, Ixx: 0.005, Iyy: 0.03, Izz: 0.03},
		},
		{
			Name:    "wrist_1",
			Joint:   JointConfig{Name: "wrist_1", Type: "rot_y"},
			Tip:     TipConfig{XYZ: Vec3{0.1, 0, 0}},
			Inertia: InertiaConfig{Mass: 1.2, Cog: Vec3{-0.05, 0, 0}, Ixx: 0.002, Iyy: 0.002, Izz: 0.002},
		},
		{
			Name:    "wrist_2",
			Joint:   JointConfig{Name: "wrist_2", Type: "rot_z"},
			Tip:     TipConfig{XYZ: Vec3{0, 0, -0.09}},
			Inertia: InertiaConfig{Mass: 1.2, Cog: Vec3{0, 0, 0.045}, Ixx: 0.002, Iyy: 0.002, Izz: 0.002},
		},
		{
			Name:    "wrist_3",
			Joint:   JointConfig{Name: "wrist_3", Type: "rot_x", Armature: 0.002},
			Tip:     TipConfig{XYZ: Vec3{0.08, 0, 0}},
			Inertia: InertiaConfig{Mass: 0.25, Cog: Vec3{-0.04, 0, 0}, Ixx: 0.0002, Iyy: 0.0002, Izz: 0.0002},
		},
		{
			Name:    "tool",
			Joint:   JointConfig{Name: "tool_mount", Type: "fixed"},
			Tip:     TipConfig{XYZ: Vec3{0.05, 0, 0}},
			Inertia: InertiaConfig{Mass: 0.5, Cog: Vec3{-0.02, 0, 0}, Ixx: 0.0005, Iyy: 0.0005, Izz: 0.0005},
		},
	}
}

func preset(name string, segs []SegmentConfig, gravity Vec3, state StateConfig, dirs [][6]float64, beta []float64) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Segments = segs
	cfg.Gravity = gravity
	cfg.State = state
	cfg.Constraints = ConstraintConfig{Directions: dirs, Beta: beta}
	return cfg
}

var (
	gravityY = Vec3{0, -DefaultGravity, 0}
	gravityZ = Vec3{0, 0, -DefaultGravity}

	linX = [6]float64{1, 0, 0, 0, 0, 0}
	linY = [6]float64{0, 1, 0, 0, 0, 0}
	linZ = [6]float64{0, 0, 1, 0, 0, 0}
	angX = [6]float64{0, 0, 0, 1, 0, 0}
	angY = [6]float64{0, 0, 0, 0, 1, 0}
	angZ = [6]float64{0, 0, 0, 0, 0, 1}
)

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"hanging": preset("pendulum", pendulum(), gravityY,
			StateConfig{Q: []float64{0.5}}, nil, nil),
		"inverted": preset("pendulum", pendulum(), gravityY,
			StateConfig{Q: []float64{3.0}, QDot: []float64{0.2}}, nil, nil),
		"braked": preset("pendulum", pendulum(), gravityY,
			StateConfig{Q: []float64{1.0}}, [][6]float64{angZ}, []float64{0}),
	},
	"planar2": {
		"free": preset("planar2", planar(2), gravityY,
			StateConfig{Q: []float64{0.4, 1.1}, QDot: []float64{0.3, -0.5}}, nil, nil),
		"wall": preset("planar2", planar(2), gravityY,
			StateConfig{Q: []float64{0.4, 1.1}, QDot: []float64{0.3, -0.5}}, [][6]float64{linX}, []float64{0}),
		"push": preset("planar2", planar(2), gravityY,
			StateConfig{Q: []float64{-0.3, 1.4}, Torques: []float64{25, 5}}, [][6]float64{linX}, []float64{0.5}),
	},
	"planar3": {
		"free": preset("planar3", planar(3), gravityY,
			StateConfig{Q: []float64{0.2, 0.6, -0.4}}, nil, nil),
		"track": preset("planar3", planar(3), gravityY,
			StateConfig{Q: []float64{0.2, 0.6, -0.4}, QDot: []float64{0.1, 0.2, 0.3}}, [][6]float64{linX, linY}, []float64{0, 0}),
	},
	"arm6": {
		"free": preset("arm6", arm6(), gravityZ,
			StateConfig{Q: []float64{0.2, -0.8, 1.2, -0.4, 0.6, 0.1}}, nil, nil),
		"surface": preset("arm6", arm6(), gravityZ,
			StateConfig{
				Q:        []float64{0.2, -0.8, 1.2, -0.4, 0.6, 0.1},
				QDot:     []float64{0.1, 0.2, -0.1, 0.3, 0, 0.5},
				Wrenches: []WrenchConfig{{Segment: 6, Force: Vec3{0, 0, -5}}},
			},
			[][6]float64{linZ}, []float64{0}),
		"level": preset("arm6", arm6(), gravityZ,
			StateConfig{Q: []float64{0.2, -0.8, 1.2, -0.4, 0.6, 0.1}},
			[][6]float64{angX, angY, angZ}, []float64{0, 0, 0}),
		"redundant": preset("arm6", arm6(), gravityZ,
			StateConfig{Q: []float64{0.2, -0.8, 1.2, -0.4, 0.6, 0.1}},
			[][6]float64{linX, linX}, []float64{0, 0}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
