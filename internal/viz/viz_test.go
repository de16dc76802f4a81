package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/hybrid"
	"github.com/san-kum/chaindyn/internal/spatial"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	c.Set(-1, 3)
	c.Set(8, 0)

	if !c.IsSet(0, 0) || !c.IsSet(7, 7) {
		t.Error("expected corner dots to be set")
	}
	if c.IsSet(1, 0) || c.IsSet(8, 0) {
		t.Error("unexpected dot")
	}
	if c.Grid[0][0] != 0x2801 || c.Grid[1][3] != 0x2880 {
		t.Errorf("unexpected cells %U %U", c.Grid[0][0], c.Grid[1][3])
	}

	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 || len([]rune(lines[0])) != 4 {
		t.Errorf("unexpected layout %q", c.String())
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("Clear should reset every dot")
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 11)
	for _, p := range [][2]int{{0, 0}, {19, 11}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("endpoint %v not drawn", p)
		}
	}
	c.Clear()
	c.DrawLine(5, 2, 5, 2)
	if !c.IsSet(5, 2) {
		t.Error("degenerate line should set one dot")
	}
}

func TestScatterCorners(t *testing.T) {
	c := Scatter([]float64{0, 1, math.NaN()}, []float64{0, 2, 1}, 5, 5)
	if !c.IsSet(0, 19) || !c.IsSet(9, 0) {
		t.Errorf("expected min at bottom left and max at top right:\n%s", c)
	}
}

func TestPosture(t *testing.T) {
	frames := []spatial.Frame{
		spatial.Translation(r3.Vector{X: 1}),
		spatial.Translation(r3.Vector{X: 1, Z: 1}),
	}
	c := Posture(frames, View{Zoom: 1}, 20, 10)

	dots := 0
	for x := 0; x < 40; x++ {
		for y := 0; y < 40; y++ {
			if c.IsSet(x, y) {
				dots++
			}
		}
	}
	if dots < 10 {
		t.Errorf("posture too sparse (%d dots):\n%s", dots, c)
	}
}

func TestViewProjectSideOn(t *testing.T) {
	v := View{Zoom: 1}
	x, y := v.Project(r3.Vector{X: 1, Z: 2})
	if math.Abs(x-1) > 1e-12 || math.Abs(y-2) > 1e-12 {
		t.Errorf("side view should map x right and z up, got (%v, %v)", x, y)
	}
	v.Rotate(0, 10)
	if v.Pitch != math.Pi/2 {
		t.Errorf("pitch should clamp at pi/2, got %v", v.Pitch)
	}
}

func TestJointTable(t *testing.T) {
	out := JointTable([]string{"shoulder"}, dynamo.JntArray{0.5, 1}, nil, dynamo.JntArray{-4.25, 2}, dynamo.JntArray{1.5, 0})
	for _, want := range []string{"shoulder", "#1", "-4.25", "1.5", "torque"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestContributionTable(t *testing.T) {
	out := ContributionTable([]string{"a", "b"}, []hybrid.Contribution{
		{Joint: 0, Nullspace: 1.25, D: 2},
		{Joint: 1, Locked: true},
	})
	if !strings.Contains(out, "1.25") || !strings.Contains(out, "locked") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestMetricsTableSorted(t *testing.T) {
	out := MetricsTable(map[string]float64{"zeta": 1, "alpha": 2})
	if strings.Index(out, "alpha") > strings.Index(out, "zeta") {
		t.Errorf("metrics not sorted:\n%s", out)
	}
}

func TestPlotSeries(t *testing.T) {
	out := PlotSeries([][]float64{{0, 1, 2, 3}, {3, 2, 1, 0}}, "qdd vs q", 20, 5)
	if !strings.Contains(out, "qdd vs q") {
		t.Errorf("caption missing:\n%s", out)
	}
	if out := PlotSeries([][]float64{{math.NaN()}}, "bad", 20, 5); !strings.Contains(out, "no data") {
		t.Errorf("expected placeholder, got %q", out)
	}
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	if !strings.ContainsRune(out, '▁') || !strings.ContainsRune(out, '█') {
		t.Errorf("unexpected sparkline %q", out)
	}
	if Sparkline(nil, 3) != "───" {
		t.Error("empty sparkline should be a rule")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("ocean").Name != "ocean" || GetTheme("nope").Name != Themes[0].Name {
		t.Error("GetTheme mismatch")
	}
	th := Themes[len(Themes)-1]
	if th.Next().Name != Themes[0].Name {
		t.Error("Next should wrap around")
	}
}
