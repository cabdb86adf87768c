package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dynobj/internal/experiment"
)

const (
	recentRecords   = 12
	historyCapacity = 600
	trackWidth      = 36
	trackHeight     = 8
)

type TickMsg time.Time

type point struct{ x, y float64 }

// Model steps an experiment once per tick and shows the recent transcript
// next to a history plot of one metric.
type Model struct {
	exp      *experiment.Experiment
	name     string
	tick     time.Duration
	running  bool
	frame    int
	recent   []experiment.Record
	history  map[string][]float64
	tracks   map[string][]point
	fields   []string
	selected int
	result   *experiment.Result
	err      error
	showHelp bool
	canvas   *Canvas
}

// NewModel wraps an experiment that has already been set up.
func NewModel(exp *experiment.Experiment, tick time.Duration) Model {
	name := ""
	if s := exp.Scenario(); s != nil {
		name = s.Name
	}
	return Model{
		exp:     exp,
		name:    name,
		tick:    tick,
		running: true,
		recent:  make([]experiment.Record, 0, recentRecords),
		history: make(map[string][]float64),
		tracks:  make(map[string][]point),
		canvas:  NewCanvas(trackWidth, trackHeight),
	}
}

func (m Model) Init() tea.Cmd {
	return m.nextTick()
}

func (m Model) nextTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Result returns the closed experiment's result once the model finished.
func (m Model) Result() (*experiment.Result, error) { return m.result, m.err }
func (m Model) Finished() bool                      { return m.result != nil || m.err != nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.finish()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "tab":
			if len(m.fields) > 0 {
				m.selected = (m.selected + 1) % len(m.fields)
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.Finished() {
			return m, nil
		}
		m.frame++
		if m.running {
			m.step()
		}
		return m, m.nextTick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.Finished() {
		return
	}
	if m.exp.Done() {
		m.finish()
		return
	}

	rec, err := m.exp.Next()
	if err != nil {
		m.err = err
		m.finish()
		return
	}

	m.recent = append(m.recent, rec)
	if len(m.recent) > recentRecords {
		m.recent = m.recent[1:]
	}

	added := false
	for k, v := range rec.Metrics {
		field := rec.Instance + "." + k
		if _, ok := m.history[field]; !ok {
			added = true
		}
		h := append(m.history[field], v)
		if len(h) > historyCapacity {
			h = h[1:]
		}
		m.history[field] = h
	}
	if added {
		m.refreshFields()
	}

	dist, okd := rec.Metrics["distance"]
	alt, oka := rec.Metrics["altitude"]
	if okd && oka {
		t := append(m.tracks[rec.Instance], point{dist, alt})
		if len(t) > historyCapacity {
			t = t[1:]
		}
		m.tracks[rec.Instance] = t
	}
}

func (m *Model) refreshFields() {
	current := ""
	if m.selected < len(m.fields) {
		current = m.fields[m.selected]
	}
	m.fields = m.fields[:0]
	for f := range m.history {
		m.fields = append(m.fields, f)
	}
	sort.Strings(m.fields)
	m.selected = 0
	for i, f := range m.fields {
		if f == current {
			m.selected = i
		}
	}
}

func (m *Model) finish() {
	if m.result != nil {
		return
	}
	res, err := m.exp.Close()
	m.result = res
	if err != nil && m.err == nil {
		m.err = err
	}
}

func (m Model) selectedField() string {
	if m.selected < len(m.fields) {
		return m.fields[m.selected]
	}
	return ""
}

func (m Model) View() string {
	var left strings.Builder

	left.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")

	status := okStyle().Render(AnimatedSpinner(m.frame) + " RUNNING")
	switch {
	case m.err != nil:
		status = errStyle().Render("ERROR: " + m.err.Error())
	case m.result != nil:
		status = titleStyle().Render("FINISHED")
	case !m.running:
		status = warnStyle().Render("PAUSED")
	}
	done, total := m.exp.Progress()
	left.WriteString(fmt.Sprintf("%s  %s %d/%d\n\n", status, ProgressBar(done, total, 30), done, total))

	for _, rec := range m.recent {
		left.WriteString(RecordLine(rec) + "\n")
	}
	if m.result != nil {
		left.WriteString("\n" + Summary(m.result))
	}

	right := m.metricsPanel()
	view := lipgloss.JoinHorizontal(lipgloss.Top, left.String(), "  ", panelStyle().Render(right))

	help := keyHint("space", "pause") + keyHint("n", "step") + keyHint("tab", "metric") +
		keyHint("t", "theme") + keyHint("?", "help") + keyHint("q", "quit")
	view += "\n" + help

	if m.showHelp {
		return helpOverlay + "\n\n" + view
	}
	return view
}

func (m Model) metricsPanel() string {
	field := m.selectedField()
	if field == "" {
		return subtleStyle().Render("no metrics yet")
	}

	var b strings.Builder
	values := m.history[field]
	if len(values) > 1 {
		b.WriteString(Plot(field, nil, values, 6, 36) + "\n")
	} else {
		b.WriteString(titleStyle().Render(field) + "\n")
	}
	b.WriteString(Sparkline(values, 36) + "\n\n")

	instance, _, _ := strings.Cut(field, ".")
	latest := make(map[string]float64)
	for f, h := range m.history {
		if strings.HasPrefix(f, instance+".") && len(h) > 0 {
			latest[strings.TrimPrefix(f, instance+".")] = h[len(h)-1]
		}
	}
	b.WriteString(Metrics(latest))

	if track := m.tracks[instance]; len(track) > 1 {
		xs := make([]float64, len(track))
		ys := make([]float64, len(track))
		for i, p := range track {
			xs[i], ys[i] = p.x, p.y
		}
		m.canvas.Clear()
		m.canvas.Track(xs, ys)
		b.WriteString("\n" + subtleStyle().Render("flight track") + "\n" + accentStyle().Render(m.canvas.String()))
	}
	return b.String()
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume stepping    ║
║  N        - Single step when paused  ║
║  Tab      - Cycle plotted metric     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Finish and quit          ║
╚══════════════════════════════════════╝`

// RunLive runs exp under a full-screen Bubble Tea program and returns the
// closed result.
func RunLive(exp *experiment.Experiment, tick time.Duration) (*experiment.Result, error) {
	final, err := tea.NewProgram(NewModel(exp, tick), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Result()
}
