package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
	"lascopc/internal/presentation"
)

const recentLimit = 6

type Phase int

const (
	PhaseConverting Phase = iota
	PhaseDone
)

type (
	// ResultMsg reports one finished file.
	ResultMsg struct {
		Done   int
		Total  int
		Result domain.Result
	}
	// DoneMsg ends the program once the batch has returned.
	DoneMsg struct{}
)

type Config struct {
	Dir     string
	Total   int
	Workers int
}

type Model struct {
	config   Config
	Phase    Phase
	spinner  spinner.Model
	progress progress.Model
	done     int
	recent   []domain.Result
	Summary  domain.Summary
	Quitting bool
}

func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		config:   cfg,
		Phase:    PhaseConverting,
		spinner:  s,
		progress: p,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.Quitting = true
			return m, tea.Quit
		}

	case ResultMsg:
		m.done = msg.Done
		if msg.Total > 0 {
			m.config.Total = msg.Total
		}
		m.recent = append(m.recent, msg.Result)
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
		m.Summary = addResult(m.Summary, msg.Result)
		return m, m.progress.SetPercent(m.percent())

	case DoneMsg:
		m.Phase = PhaseDone
		return m, tea.Quit

	case spinner.TickMsg:
		if m.Phase == PhaseConverting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func addResult(s domain.Summary, r domain.Result) domain.Summary {
	switch r.Status {
	case domain.StatusConverted:
		s.Converted++
		s.TotalElapsed += r.Elapsed
	case domain.StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
	return s
}

func (m Model) percent() float64 {
	if m.config.Total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.config.Total)
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("lascopc"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%s %s  (%d workers)", iconFolder, m.config.Dir, m.config.Workers)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Converting to COPC"))
	b.WriteString("\n\n")

	status := m.spinner.View() + " Converting..."
	if m.Phase == PhaseDone {
		status = successStyle.Render(iconSuccess + " Batch finished")
	}
	b.WriteString("  " + status + "\n\n")
	b.WriteString("  " + m.progress.ViewAs(m.percent()) + "\n")
	b.WriteString(fmt.Sprintf("  %s %s\n",
		countStyle.Render(fmt.Sprintf("%d/%d files", m.done, m.config.Total)),
		dimStyle.Render(fmt.Sprintf("(%.0f%%)", m.percent()*100)),
	))

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, r := range m.recent {
			b.WriteString("  " + formatRecent(r) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d converted, %d skipped, %d failed",
		m.Summary.Converted, m.Summary.Skipped, m.Summary.Failed)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Press q to hide this view; running conversions still finish"))
	return b.String()
}

func formatRecent(r domain.Result) string {
	name := fileNameStyle.Render(filepath.Base(r.InputPath))
	switch r.Status {
	case domain.StatusConverted:
		return fmt.Sprintf("%s %s  %s", successStyle.Render(iconSuccess), name, dimStyle.Render(presentation.FormatDuration(r.Elapsed)))
	case domain.StatusSkipped:
		return fmt.Sprintf("%s %s  %s", dimStyle.Render(iconSkipped), name, dimStyle.Render("skipped"))
	default:
		return fmt.Sprintf("%s %s  %s", errorStyle.Render(iconError), name, errorStyle.Render(appErrors.UserMessage(r.Err)))
	}
}
