package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/config"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/hybrid"
	"github.com/san-kum/chaindyn/internal/integrators"
	"github.com/san-kum/chaindyn/internal/kinematics"
	"github.com/san-kum/chaindyn/internal/spatial"
	"github.com/san-kum/chaindyn/internal/viz"
)

var (
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const historyLen = 60

// Explorer is a bubbletea model that re-solves the chain whenever a joint
// position or velocity changes, and can play the constrained motion forward.
type Explorer struct {
	cfg    *config.Config
	chain  *chain.Chain
	names  []string
	solver dynamo.HybridSolver
	kin    *kinematics.Solver
	integ  integrators.Integrator

	alfa       *mat.Dense
	beta       dynamo.JntArray
	fext       []spatial.Wrench
	applied    dynamo.JntArray
	q, qdot    dynamo.JntArray
	q0, qdot0  dynamo.JntArray
	qdd, out   dynamo.JntArray
	frames     []spatial.Frame
	err        error
	cursor     int
	step       float64
	dt         float64
	simTime    float64
	playing    bool
	showDetail bool
	history    []float64

	view  viz.View
	theme viz.Theme

	width  int
	height int
}

func NewExplorer(cfg *config.Config, logger *zap.Logger) (*Explorer, error) {
	c, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	solver, err := cfg.NewSolver(c, logger)
	if err != nil {
		return nil, err
	}
	q, qdot, applied, fext := cfg.Inputs()
	m := &Explorer{
		cfg:     cfg,
		chain:   c,
		names:   c.JointNames(),
		solver:  solver,
		kin:     kinematics.NewSolver(c),
		integ:   integrators.NewRK4(),
		alfa:    cfg.Alfa(),
		beta:    cfg.Beta(),
		fext:    fext,
		applied: applied,
		q:       q,
		qdot:    qdot,
		q0:      q.Clone(),
		qdot0:   qdot.Clone(),
		qdd:     dynamo.NewJntArray(c.NrOfJoints()),
		out:     dynamo.NewJntArray(c.NrOfJoints()),
		frames:  make([]spatial.Frame, c.NrOfSegments()),
		step:    0.05,
		dt:      0.005,
		view:    viz.DefaultView(),
		theme:   viz.Themes[0],
		width:   100,
		height:  32,
	}
	m.solve()
	return m, nil
}

// solve recomputes accelerations, constraint torques and link frames for the
// current state.
func (m *Explorer) solve() {
	copy(m.out, m.applied)
	m.err = m.solver.CartToJnt(m.q, m.qdot, m.qdd, m.alfa, m.beta, m.fext, m.out)
	if err := m.kin.LinkFrames(m.q, m.frames); err != nil && m.err == nil {
		m.err = err
	}
}

// Derive lets the explorer drive an integrator over x = [q; qdot].
func (m *Explorer) Derive(t float64, x, dx []float64) error {
	nj := len(m.q)
	tau := m.applied.Clone()
	qdd := dynamo.NewJntArray(nj)
	if err := m.solver.CartToJnt(x[:nj], x[nj:], qdd, m.alfa, m.beta, m.fext, tau); err != nil {
		return err
	}
	copy(dx[:nj], x[nj:])
	copy(dx[nj:], qdd)
	return nil
}

func (m *Explorer) advance() {
	nj := len(m.q)
	x := append(m.q.Clone(), m.qdot...)
	next, err := m.integ.Step(m, x, m.simTime, m.dt)
	if err != nil {
		m.err = err
		m.playing = false
		return
	}
	copy(m.q, next[:nj])
	copy(m.qdot, next[nj:])
	m.simTime += m.dt
	m.solve()
	if !m.qdd.IsValid() {
		m.playing = false
	}
	if nj > 0 {
		m.history = append(m.history, m.q[m.cursor])
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
	}
}

func (m *Explorer) reset() {
	copy(m.q, m.q0)
	copy(m.qdot, m.qdot0)
	m.simTime = 0
	m.playing = false
	m.history = nil
	m.solve()
}

func (m *Explorer) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		if !m.playing {
			return m, nil
		}
		// about real time at 60 frames per second
		for i := 0; i < 3 && m.playing; i++ {
			m.advance()
		}
		if m.playing {
			return m, tick()
		}
	}
	return m, nil
}

func (m *Explorer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nj := len(m.q)
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.history = nil
		}
	case "down", "j":
		if m.cursor < nj-1 {
			m.cursor++
			m.history = nil
		}
	case "left", "h":
		m.nudge(m.q, -m.step)
	case "right", "l":
		m.nudge(m.q, m.step)
	case "[":
		m.nudge(m.qdot, -m.step)
	case "]":
		m.nudge(m.qdot, m.step)
	case "+", "=":
		m.step = math.Min(m.step*2, 1.6)
	case "-", "_":
		m.step = math.Max(m.step/2, 0.00625)
	case "a":
		m.view.Rotate(-0.15, 0)
	case "d":
		m.view.Rotate(0.15, 0)
	case "w":
		m.view.Rotate(0, 0.15)
	case "s":
		m.view.Rotate(0, -0.15)
	case "z":
		m.view.ZoomIn()
	case "x":
		m.view.ZoomOut()
	case "t":
		m.theme = m.theme.Next()
	case "c":
		m.showDetail = !m.showDetail
	case "r":
		m.reset()
	case " ", "p":
		m.playing = !m.playing
		if m.playing {
			return m, tick()
		}
	}
	return m, nil
}

func (m *Explorer) nudge(a dynamo.JntArray, d float64) {
	if len(a) == 0 {
		return
	}
	a[m.cursor] += d
	m.solve()
}

// State returns copies of q, qdot and the last solved qdd and torques.
func (m *Explorer) State() (q, qdot, qdd, torques dynamo.JntArray) {
	return m.q.Clone(), m.qdot.Clone(), m.qdd.Clone(), m.out.Clone()
}

func (m *Explorer) Err() error { return m.err }

func (m *Explorer) View() string {
	var b strings.Builder

	title := m.theme.Title().Render(m.cfg.Name)
	status := green.Render("● solved")
	if m.err != nil {
		status = viz.StatusError.Render(fmt.Sprintf("● status %d: %v", dynamo.StatusCode(m.err), m.err))
	} else if m.playing {
		status = yellow.Render(fmt.Sprintf("▶ t=%.2fs", m.simTime))
	}
	b.WriteString(fmt.Sprintf("\n %s  %s  %s\n\n", title, dim.Render(m.cfg.Solver), status))

	cw := max(m.width/2-4, 30)
	ch := max(m.height-14, 10)
	posture := viz.Panel.Render(viz.Posture(m.frames, m.view, cw, ch).String())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, posture, " ", m.jointList()))
	b.WriteString("\n")

	if m.showDetail {
		if v, ok := m.solver.(*hybrid.Vereshchagin); ok {
			b.WriteString(viz.ContributionTable(m.names, v.Contributions()))
			b.WriteString("\n")
			if len(m.beta) > 0 {
				b.WriteString(viz.ConstraintTable(m.beta, v.ConstraintMagnitudes()))
				b.WriteString("\n")
			}
		} else {
			b.WriteString(dim.Render(" contributions need the vereshchagin solver\n"))
		}
	}

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf(" %s %s\n", dim.Render("q"+fmt.Sprint(m.cursor)), viz.Sparkline(m.history, 40)))
	}

	b.WriteString(viz.KeyHint.Render(fmt.Sprintf(
		" ↑↓ joint  ←→ q  [] qdot (step %.3g)  ±step  wasd view  zx zoom  c detail  t theme  space play  r reset  q quit", m.step)))
	b.WriteString("\n")
	return b.String()
}

func (m *Explorer) jointList() string {
	var b strings.Builder
	b.WriteString(m.theme.Title().Render("joints") + "\n")
	for i := range m.q {
		name := fmt.Sprintf("#%d", i)
		if i < len(m.names) {
			name = m.names[i]
		}
		line := fmt.Sprintf("%-14s q=%8.4f  qd=%8.4f  qdd=%10.4f  τc=%9.4f", name, m.q[i], m.qdot[i], m.qdd[i], m.out[i])
		if i == m.cursor {
			b.WriteString(m.theme.Highlight().Render("▸ "+line) + "\n")
		} else {
			b.WriteString(white.Render("  "+line) + "\n")
		}
	}
	if v, ok := m.solver.(*hybrid.Vereshchagin); ok {
		if locked := v.DegenerateJoints(); len(locked) > 0 {
			b.WriteString(viz.StatusWarn.Render(fmt.Sprintf("locked joints %v", locked)) + "\n")
		}
	}
	return b.String()
}

func Run(cfg *config.Config, logger *zap.Logger) error {
	m, err := NewExplorer(cfg, logger)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
