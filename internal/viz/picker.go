package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dynobj/internal/experiment"
)

type Options struct {
	Seed     int64
	Capacity int
	Glider   map[string]float64
	Tick     time.Duration
}

const (
	stateMenu = iota
	stateLive
)

// picker lists the registered scenarios and hands the chosen one to a
// live Model.
type picker struct {
	state, cursor int
	scenarios     *experiment.Registry
	names         []string
	opts          Options
	live          Model
	err           error
}

func newPicker(scenarios *experiment.Registry, opts Options) picker {
	return picker{
		state:     stateMenu,
		scenarios: scenarios,
		names:     scenarios.List(),
		opts:      opts,
	}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateLive {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p picker) start() (tea.Model, tea.Cmd) {
	if len(p.names) == 0 {
		return p, nil
	}
	s, err := p.scenarios.Get(p.names[p.cursor])
	if err != nil {
		p.err = err
		return p, nil
	}
	exp := experiment.New(experiment.Config{Seed: p.opts.Seed, Capacity: p.opts.Capacity, Glider: p.opts.Glider})
	if err := exp.Setup(s); err != nil {
		p.err = err
		return p, nil
	}
	p.live = NewModel(exp, p.opts.Tick)
	p.state = stateLive
	return p, p.live.Init()
}

func (p picker) View() string {
	if p.state == stateLive {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle().Render("DYNOBJ") + "\n    " +
		subtleStyle().Render("object model scenarios") + "\n    " +
		subtleStyle().Render("─────────────────────────") + "\n\n")

	for i, name := range p.names {
		desc := ""
		if s, err := p.scenarios.Get(name); err == nil {
			desc = s.Description
		}
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", titleStyle().Render("▸"),
				valueStyle().Bold(true).Render(fmt.Sprintf("%-12s", name)), accentStyle().Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", subtleStyle().Render(fmt.Sprintf("%-12s", name)), subtleStyle().Render(desc)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + errStyle().Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHint("j/k", "navigate") + keyHint("enter", "run") + keyHint("q", "quit") + "\n")
	return b.String()
}

// RunPicker lets the user choose a scenario and runs it live. The result
// is nil when the user quits from the menu.
func RunPicker(scenarios *experiment.Registry, opts Options) (*experiment.Result, error) {
	final, err := tea.NewProgram(newPicker(scenarios, opts), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	p := final.(picker)
	if p.state != stateLive {
		return nil, p.err
	}
	return p.live.Result()
}
