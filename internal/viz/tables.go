package viz

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/hybrid"
	"github.com/san-kum/chaindyn/internal/spatial"
)

func num(v float64) string { return fmt.Sprintf("%.5g", v) }

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Inherit(MetricLabel).Bold(true)
			case col == 0:
				return s.Inherit(Subtle)
			default:
				return s.Inherit(MetricValue).Bold(false)
			}
		})
}

// JointTable lists q, qdot, qdd and torque per joint. names may be shorter
// than the arrays.
func JointTable(names []string, q, qdot, qdd, torques dynamo.JntArray) string {
	t := newTable("joint", "q", "qdot", "qdd", "torque")
	for i := range qdd {
		name := fmt.Sprintf("#%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		t.Row(name, num(at(q, i)), num(at(qdot, i)), num(qdd[i]), num(at(torques, i)))
	}
	return t.String()
}

// ContributionTable shows how every joint acceleration splits into its
// sources. Locked joints are flagged.
func ContributionTable(names []string, parts []hybrid.Contribution) string {
	t := newTable("joint", "D", "nullspace", "constraint", "parent", "bias", "torque")
	for _, p := range parts {
		name := fmt.Sprintf("#%d", p.Joint)
		if p.Joint < len(names) && names[p.Joint] != "" {
			name = names[p.Joint]
		}
		if p.Locked {
			name += " " + StatusWarn.Render("locked")
		}
		t.Row(name, num(p.D), num(p.Nullspace), num(p.Constraint), num(p.Parent), num(p.Bias), num(p.Torque))
	}
	return t.String()
}

// LinkTable shows the tip position and spatial acceleration of every segment.
// acc has one more entry than poses, the root acceleration first.
func LinkTable(names []string, poses []spatial.Frame, acc []spatial.Twist) string {
	t := newTable("segment", "x", "y", "z", "ax", "ay", "az", "alpha")
	for i, f := range poses {
		name := fmt.Sprintf("#%d", i)
		if i < len(names) {
			name = names[i]
		}
		var a spatial.Twist
		if i+1 < len(acc) {
			a = acc[i+1]
		}
		t.Row(name, num(f.P.X), num(f.P.Y), num(f.P.Z), num(a.Vel.X), num(a.Vel.Y), num(a.Vel.Z), num(a.Rot.Norm()))
	}
	return t.String()
}

// MetricsTable lists metrics sorted by name.
func MetricsTable(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	t := newTable("metric", "value")
	for _, name := range names {
		t.Row(name, num(metrics[name]))
	}
	return t.String()
}

// ConstraintTable lists constraint magnitudes next to their targets.
func ConstraintTable(beta, nu []float64) string {
	t := newTable("constraint", "beta", "nu")
	for i := range beta {
		t.Row(fmt.Sprintf("#%d", i), num(beta[i]), num(at(nu, i)))
	}
	return t.String()
}

func at(a []float64, i int) float64 {
	if i < len(a) {
		return a[i]
	}
	return 0
}
