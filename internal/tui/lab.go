package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/beerslab/internal/concentration"
)

const (
	canvasWidth  = 44
	canvasHeight = 16
	historyLen   = 60
	maxSpeed     = 16
)

type control int

const (
	ctrlSolvent control = iota
	ctrlDrain
	ctrlEvaporator
	numControls
)

var controlNames = [numControls]string{"solvent in", "drain", "evaporation"}

// Lab is the interactive Bubble Tea front end of a concentration model.
type Lab struct {
	model    *concentration.Model
	dt       float64
	t        float64
	speed    int
	paused   bool
	selected control
	history  []float64
	theme    int
	styles   styles
	canvas   *Canvas
	status   string
	log      logrus.FieldLogger

	width  int
	height int
}

func NewLab(m *concentration.Model, dt float64, log logrus.FieldLogger) Lab {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return Lab{
		model:   m,
		dt:      dt,
		speed:   1,
		history: make([]float64, 0, historyLen),
		styles:  newStyles(Themes[0]),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		log:     log.WithField("component", "tui"),
		width:   100,
		height:  30,
	}
}

// WithTheme returns a copy of l using the named theme.
func (l Lab) WithTheme(name string) Lab {
	for i, t := range Themes {
		if t.Name == name {
			l.theme = i
			l.styles = newStyles(t)
		}
	}
	return l
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (l Lab) Init() tea.Cmd { return tick() }

// Time returns the simulated time.
func (l Lab) Time() float64 { return l.t }

func (l Lab) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return l.handleKey(msg)
	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.height = msg.Height
		return l, nil
	case tickMsg:
		if !l.paused {
			for i := 0; i < l.speed; i++ {
				l.step()
			}
		}
		return l, tick()
	}
	return l, nil
}

func (l *Lab) step() {
	if err := l.model.Step(l.dt); err != nil {
		l.fail("step", err)
		l.paused = true
		return
	}
	l.t += l.dt
	l.history = append(l.history, l.model.Solution.Concentration.Get())
	if len(l.history) > historyLen {
		l.history = l.history[1:]
	}
}

func (l *Lab) fail(what string, err error) {
	l.status = fmt.Sprintf("%s: %v", what, err)
	l.log.WithError(err).Warn(what)
}

func (l Lab) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m := l.model
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return l, tea.Quit
	case " ", "p":
		l.paused = !l.paused
	case "up", "k":
		l.selected = (l.selected + numControls - 1) % numControls
	case "down", "j":
		l.selected = (l.selected + 1) % numControls
	case "right", "l":
		l.adjust(+0.1)
	case "left", "h":
		l.adjust(-0.1)
	case "0":
		l.adjust(-1)
	case "s":
		if m.Shaker.Visible.Get() {
			l.check("shaker", m.Shaker.Dispensing.Set(!m.Shaker.Dispensing.Get()))
		}
	case "d":
		if m.Dropper.Visible.Get() {
			l.check("dropper", m.Dropper.Dispensing.Set(!m.Dropper.Dispensing.Get()))
		}
	case "f":
		form := concentration.Liquid
		if m.SoluteForm.Get() == concentration.Liquid {
			form = concentration.Solid
		}
		l.check("form", m.SetSoluteForm(form))
	case "tab", "n":
		l.cycleSolute(1)
	case "shift+tab", "N":
		l.cycleSolute(-1)
	case "x":
		l.check("remove solute", m.RemoveSolute())
	case "r":
		l.check("reset", m.Reset())
		l.t = 0
		l.history = l.history[:0]
	case "+", "=":
		l.speed = min(l.speed*2, maxSpeed)
	case "-", "_":
		l.speed = max(l.speed/2, 1)
	case "t":
		l.theme = (l.theme + 1) % len(Themes)
		l.styles = newStyles(Themes[l.theme])
	}
	return l, nil
}

func (l *Lab) check(what string, err error) {
	if err != nil {
		l.fail(what, err)
		return
	}
	l.status = ""
}

// adjust moves the selected rate by frac of its maximum.
func (l *Lab) adjust(frac float64) {
	m := l.model
	clamp := func(v, hi float64) float64 { return max(0, min(v, hi)) }
	switch l.selected {
	case ctrlSolvent:
		f := m.SolventFaucet
		l.check("solvent", f.SetFlowRate(clamp(f.FlowRate.Get()+frac*f.MaxFlowRate, f.MaxFlowRate)))
	case ctrlDrain:
		f := m.DrainFaucet
		l.check("drain", f.SetFlowRate(clamp(f.FlowRate.Get()+frac*f.MaxFlowRate, f.MaxFlowRate)))
	case ctrlEvaporator:
		e := m.Evaporator
		l.check("evaporation", e.SetEvaporationRate(clamp(e.Rate()+frac*e.MaxEvaporationRate, e.MaxEvaporationRate)))
	}
}

func (l *Lab) cycleSolute(dir int) {
	solutes := l.model.Solutes()
	if len(solutes) == 0 {
		return
	}
	current := l.model.Solution.Solute.Get()
	idx := 0
	for i, s := range solutes {
		if s == current {
			idx = i
			break
		}
	}
	next := solutes[(idx+dir+len(solutes))%len(solutes)]
	l.check("solute", l.model.SelectSolute(next))
}

func (l Lab) View() string {
	m := l.model
	st := l.styles
	snap := m.Snapshot()

	level := drawScene(l.canvas, m)
	liquid := lipgloss.NewStyle().Foreground(lipgloss.Color(snap.Color))
	var scene strings.Builder
	for i, row := range l.canvas.Rows() {
		if i >= level.top && i <= level.bottom {
			scene.WriteString(liquid.Render(row))
		} else {
			scene.WriteString(st.muted.Render(row))
		}
		scene.WriteByte('\n')
	}

	var s strings.Builder
	s.WriteString(st.header.Render(m.Solution.Solute.Get().Name) + "\n")
	status := st.ok.Render("RUNNING")
	if l.paused {
		status = st.warn.Render("PAUSED")
	}
	fmt.Fprintf(&s, "%s  x%d\n\n", status, l.speed)

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("time", fmt.Sprintf("%.2f s", l.t))
	row("volume", fmt.Sprintf("%.3f L", snap.Volume))
	row("solute", fmt.Sprintf("%.3f mol (%s)", snap.SoluteAmount, snap.SoluteForm))
	row("concentration", fmt.Sprintf("%.3f mol/L", snap.Concentration))
	row("percent", fmt.Sprintf("%.2f %%", snap.PercentConcentration))
	if snap.Saturated {
		row("saturated", st.warn.Render(fmt.Sprintf("yes, %.3f mol solid", snap.PrecipitateAmount)))
	} else {
		row("saturated", "no")
	}
	s.WriteString("\n")

	rates := [numControls][2]float64{
		{snap.SolventFlowRate, m.SolventFaucet.MaxFlowRate},
		{snap.DrainFlowRate, m.DrainFaucet.MaxFlowRate},
		{snap.EvaporationRate, m.Evaporator.MaxEvaporationRate},
	}
	for c := control(0); c < numControls; c++ {
		line := fmt.Sprintf("%-12s %s %.3f L/s", controlNames[c], Gauge(rates[c][0], rates[c][1], 10), rates[c][0])
		if c == l.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.UnsetWidth().Render(line) + "\n")
		}
	}
	if m.Shaker.Visible.Get() {
		fmt.Fprintf(&s, "  %-12s %s\n", "shaker", onOff(snap.ShakerRate > 0))
	}
	if m.Dropper.Visible.Get() {
		fmt.Fprintf(&s, "  %-12s %s\n", "dropper", onOff(snap.DropperFlowRate > 0))
	}

	if len(l.history) > 1 {
		chart := asciigraph.Plot(l.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("mol/L"))
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}
	if l.status != "" {
		s.WriteString("\n" + st.errStyle.Render(l.status) + "\n")
	}
	s.WriteString(st.help.Render("↑↓ select  ←→ rate  0 off  s shaker  d dropper\nf form  tab solute  x remove  r reset  sp pause  t theme  q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, scene.String(), st.panel.Render(s.String()))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
