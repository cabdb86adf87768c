package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dynobj/internal/experiment"
)

func newLive(t *testing.T, scenario string) Model {
	t.Helper()
	s, err := experiment.NewRegistry().Get(scenario)
	if err != nil {
		t.Fatal(err)
	}
	exp := experiment.New(experiment.Config{Seed: 42})
	if err := exp.Setup(s); err != nil {
		t.Fatal(err)
	}
	return NewModel(exp, time.Millisecond)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLive_RunsToCompletion(t *testing.T) {
	m := newLive(t, "animals")
	if m.Init() == nil {
		t.Fatal("Init should schedule a tick")
	}

	for i := 0; i < 100 && !m.Finished(); i++ {
		var cmd tea.Cmd
		m, cmd = update(m, TickMsg(time.Now()))
		if !m.Finished() && cmd == nil {
			t.Fatal("tick should schedule the next tick while running")
		}
	}
	if !m.Finished() {
		t.Fatal("experiment never finished")
	}

	res, err := m.Result()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 8 || res.Failures != 0 || res.Leaked != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if len(m.recent) != 8 {
		t.Errorf("expected 8 recent records, got %d", len(m.recent))
	}

	if _, cmd := update(m, TickMsg(time.Now())); cmd != nil {
		t.Error("finished model should stop ticking")
	}

	view := m.View()
	for _, want := range []string{"ANIMALS", "FINISHED", "rex.makeSound"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLive_PauseAndStep(t *testing.T) {
	m := newLive(t, "zones")

	m, _ = update(m, key(" "))
	if m.running {
		t.Fatal("space should pause")
	}
	m, _ = update(m, TickMsg(time.Now()))
	if done, _ := m.exp.Progress(); done != 0 {
		t.Errorf("paused tick stepped to %d", done)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show PAUSED")
	}

	m, _ = update(m, key("n"))
	m, _ = update(m, key("n"))
	if done, _ := m.exp.Progress(); done != 2 {
		t.Errorf("two single steps reached %d", done)
	}

	m, _ = update(m, key(" "))
	if !m.running {
		t.Error("space should resume")
	}
	m, _ = update(m, key("n"))
	if done, _ := m.exp.Progress(); done != 2 {
		t.Error("n should not step while running")
	}
}

func TestLive_MetricSelection(t *testing.T) {
	m := newLive(t, "glide")
	for i := 0; i < 5; i++ {
		m, _ = update(m, TickMsg(time.Now()))
	}

	if len(m.fields) == 0 {
		t.Fatal("no metric fields collected")
	}
	first := m.selectedField()
	m, _ = update(m, key("tab"))
	if m.selectedField() == first {
		t.Error("tab should move to the next metric")
	}
	if len(m.tracks["glider"]) != 5 {
		t.Errorf("expected 5 track points, got %d", len(m.tracks["glider"]))
	}
	if !strings.Contains(m.View(), "flight track") {
		t.Error("airframe view should draw a flight track")
	}
}

func TestLive_QuitCloses(t *testing.T) {
	m := newLive(t, "annealing")
	m, _ = update(m, TickMsg(time.Now()))

	m, cmd := update(m, key("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit the program")
	}

	res, err := m.Result()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Leaked != 0 {
		t.Errorf("quit should close after one step: %+v", res)
	}
	if m.exp.Registry().Live() != 0 {
		t.Error("quit left instances alive")
	}
}

func TestPicker(t *testing.T) {
	p := newPicker(experiment.NewRegistry(), Options{Seed: 1, Tick: time.Millisecond})
	if len(p.names) != 5 {
		t.Fatalf("expected 5 scenarios, got %v", p.names)
	}
	if !strings.Contains(p.View(), "animals") {
		t.Error("menu should list scenarios")
	}

	next, _ := p.Update(key("j"))
	p = next.(picker)
	if p.cursor != 1 {
		t.Errorf("cursor = %d, want 1", p.cursor)
	}

	next, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(picker)
	if p.state != stateLive || cmd == nil {
		t.Fatalf("enter should start the live view, err %v", p.err)
	}
	if p.live.name != p.names[1] {
		t.Errorf("started %s, want %s", p.live.name, p.names[1])
	}

	next, _ = p.Update(TickMsg(time.Now()))
	p = next.(picker)
	if done, _ := p.live.exp.Progress(); done != 1 {
		t.Errorf("tick should reach the live model, progress %d", done)
	}
}
