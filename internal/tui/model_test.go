package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
)

func TestModelCountsResults(t *testing.T) {
	var model tea.Model = NewModel(Config{Dir: "/tiles", Total: 3, Workers: 2})

	model, _ = model.Update(ResultMsg{Done: 1, Total: 3, Result: domain.Result{InputPath: "/tiles/a.las", Status: domain.StatusConverted, Elapsed: time.Second}})
	model, _ = model.Update(ResultMsg{Done: 2, Total: 3, Result: domain.Result{InputPath: "/tiles/b.las", Status: domain.StatusSkipped}})
	model, _ = model.Update(ResultMsg{Done: 3, Total: 3, Result: domain.Result{
		InputPath: "/tiles/c.las",
		Status:    domain.StatusFailed,
		Err:       appErrors.Wrap(appErrors.ExternalTool, "pdal pipeline", "/tiles/c.las", errors.New("bad header")),
	}})

	m := model.(Model)
	if m.Summary.Converted != 1 || m.Summary.Skipped != 1 || m.Summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", m.Summary)
	}
	if m.percent() != 1 {
		t.Fatalf("expected full progress, got %v", m.percent())
	}

	view := m.View()
	for _, want := range []string{"3/3 files", "a.las", "c.las", "bad header"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestModelKeepsOnlyRecentResults(t *testing.T) {
	m := NewModel(Config{Total: 10})
	var model tea.Model = m
	for i := 1; i <= 10; i++ {
		model, _ = model.Update(ResultMsg{Done: i, Total: 10, Result: domain.Result{Status: domain.StatusConverted}})
	}
	if got := len(model.(Model).recent); got != recentLimit {
		t.Fatalf("expected %d recent results, got %d", recentLimit, got)
	}
}

func TestModelQuitsWhenDone(t *testing.T) {
	model, cmd := NewModel(Config{Total: 1}).Update(DoneMsg{})
	if model.(Model).Phase != PhaseDone {
		t.Fatalf("expected done phase")
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestModelQuitKey(t *testing.T) {
	model, _ := NewModel(Config{}).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m := model.(Model)
	if !m.Quitting || m.View() != "" {
		t.Fatalf("expected quitting model with empty view")
	}
}
