package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kmdra/horizon/internal/integrators"
	"github.com/kmdra/horizon/internal/ocp"
	"github.com/kmdra/horizon/internal/sim"
)

const historyCapacity = 600

type TickMsg time.Time

// planner is satisfied by controllers that expose a predicted
// horizon; the receding-horizon controller does.
type planner interface {
	Plan() ([]ocp.State, []ocp.Control)
}

type resetter interface {
	Reset()
}

// Live watches one closed-loop run: a phase portrait (or first-state
// chart) on the left, readouts and the applied-input chart on the
// right.
type Live struct {
	Title  string
	Target ocp.State

	model      ocp.Model
	stepper    integrators.Stepper
	controller sim.Controller

	dt       float64
	duration float64

	x0   ocp.State
	x    ocp.State
	u    ocp.Control
	t    float64
	step int

	firstHist []float64
	ctrlHist  []float64
	phase     [][2]float64

	running bool
	done    bool
	failErr error
}

func NewLive(title string, m ocp.Model, st integrators.Stepper, c sim.Controller, x0, target ocp.State, dt, duration float64) Live {
	return Live{
		Title:      title,
		Target:     target.Clone(),
		model:      m,
		stepper:    st,
		controller: c,
		dt:         dt,
		duration:   duration,
		x0:         x0.Clone(),
		x:          x0.Clone(),
		u:          make(ocp.Control, m.ControlDim()),
		running:    true,
	}
}

func (l Live) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (l Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return l, tea.Quit
		case " ":
			if !l.done && l.failErr == nil {
				l.running = !l.running
			}
		case "r":
			l.reset()
		}
	case TickMsg:
		if l.running && !l.done && l.failErr == nil {
			l.advance()
		}
		return l, tick()
	}
	return l, nil
}

// advance runs one closed-loop stage.
func (l *Live) advance() {
	u, err := l.controller.Compute(l.x, l.t)
	if err != nil {
		l.failErr = err
		l.running = false
		return
	}
	l.u = u

	l.x = l.stepper.Step(l.model, l.x, u, l.dt)
	l.step++
	l.t = float64(l.step) * l.dt

	if !l.x.IsValid() {
		l.failErr = &sim.UnstableError{Time: l.t, Step: l.step - 1}
		l.running = false
		return
	}

	l.firstHist = appendCapped(l.firstHist, l.x[0])
	if len(u) > 0 {
		l.ctrlHist = appendCapped(l.ctrlHist, u[0])
	}
	if len(l.x) >= 2 {
		l.phase = append(l.phase, [2]float64{l.x[0], l.x[1]})
		if len(l.phase) > historyCapacity {
			l.phase = l.phase[1:]
		}
	}

	if l.t >= l.duration-1e-9 {
		l.done = true
		l.running = false
	}
}

func (l *Live) reset() {
	l.x = l.x0.Clone()
	l.u = make(ocp.Control, l.model.ControlDim())
	l.t = 0
	l.step = 0
	l.firstHist = nil
	l.ctrlHist = nil
	l.phase = nil
	l.done = false
	l.failErr = nil
	l.running = true
	if r, ok := l.controller.(resetter); ok {
		r.Reset()
	}
}

func (l Live) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(l.Title)) + "\n")
	s.WriteString(l.status() + "\n\n")

	s.WriteString(MetricLabel.Render("Time   ") + MetricValue.Render(fmt.Sprintf("%.2fs", l.t)) + "\n")
	s.WriteString(MetricLabel.Render("Step   ") + MetricValue.Render(fmt.Sprintf("%d", l.step)) + "\n")
	s.WriteString(MetricLabel.Render("State  ") + MetricValue.Render(formatVec(l.x)) + "\n")
	s.WriteString(MetricLabel.Render("Input  ") + MetricValue.Render(formatVec(l.u)) + "\n")
	if p, ok := l.controller.(planner); ok {
		_, us := p.Plan()
		s.WriteString(MetricLabel.Render("Plan   ") + MetricValue.Render(fmt.Sprintf("%d stages ahead", len(us))) + "\n")
	}

	s.WriteString("\n" + ProgressBar(l.t/l.duration, 32) + "\n")

	if len(l.ctrlHist) > 1 {
		chart := asciigraph.Plot(l.ctrlHist,
			asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("applied input"))
		s.WriteString("\n" + chart + "\n")
	}
	stats := PanelStyle.Render(s.String())

	var left string
	switch {
	case len(l.phase) > 1 && len(l.Target) >= 2:
		left = PanelStyle.Render(
			RenderPhase(l.phase, l.planPhase(), [2]float64{l.Target[0], l.Target[1]}, 38, 14) +
				Subtle.Render("phase x[0] vs x[1]"))
	case len(l.firstHist) > 1:
		left = PanelStyle.Render(asciigraph.Plot(l.firstHist,
			asciigraph.Height(12), asciigraph.Width(40), asciigraph.Caption("x[0]")))
	default:
		left = PanelStyle.Render("collecting...")
	}

	view := lipgloss.JoinHorizontal(lipgloss.Top, left, stats)
	return view + "\n" + KeyHint.Render("space: pause   r: reset   q: quit") + "\n"
}

func (l Live) status() string {
	switch {
	case l.failErr != nil:
		return StatusFailed.Render("FAILED") + " " + Subtle.Render(l.failErr.Error())
	case l.done:
		return StatusRunning.Render("DONE")
	case !l.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

// planPhase projects the controller's predicted states onto the
// phase plane.
func (l Live) planPhase() [][2]float64 {
	p, ok := l.controller.(planner)
	if !ok {
		return nil
	}
	xs, _ := p.Plan()
	pts := make([][2]float64, 0, len(xs))
	for _, x := range xs {
		if len(x) >= 2 {
			pts = append(pts, [2]float64{x[0], x[1]})
		}
	}
	return pts
}

func appendCapped(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func formatVec(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%7.3f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
