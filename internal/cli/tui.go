package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/chaosgame/pkg/pipeline"
)

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	barMinWidth = 10
	barMaxWidth = 50
)

// =============================================================================
// RenderModel - Frame progress while a run executes
// =============================================================================

// frameMsg reports a frame written by the pipeline.
type frameMsg pipeline.Progress

// runDoneMsg ends the program once the run returns.
type runDoneMsg struct{ err error }

// RenderModel is the bubbletea model for the frame progress bar.
type RenderModel struct {
	Title    string
	Total    int
	Frame    int
	Cached   int
	Width    int
	Start    time.Time
	Done     bool
	Err      error
	Quitting bool // the user asked to stop the run
}

// NewRenderModel creates a progress model for a run of total frames.
func NewRenderModel(title string, total int) RenderModel {
	return RenderModel{Title: title, Total: total, Width: 80, Start: time.Now()}
}

func (m RenderModel) Init() tea.Cmd {
	return nil
}

func (m RenderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.Frame = msg.Frame
		if msg.Cached {
			m.Cached++
		}
	case runDoneMsg:
		m.Done = true
		m.Err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

func (m RenderModel) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	frac := 0.0
	if m.Total > 0 {
		frac = float64(m.Frame) / float64(m.Total)
	}

	width := m.Width - len(m.Title) - 30
	width = max(barMinWidth, min(barMaxWidth, width))
	filled := int(frac * float64(width))

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("  ")
	b.WriteString(barFilledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", width-filled)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d  %3.0f%%", m.Frame, m.Total, frac*100)))
	if eta := m.eta(); eta > 0 {
		b.WriteString(StyleDim.Render("  eta " + eta.Round(time.Second).String()))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q to stop"))
	return b.String()
}

// eta extrapolates linearly from the frames written so far. Later frames
// draw more points, so this underestimates on long runs.
func (m RenderModel) eta() time.Duration {
	if m.Frame == 0 || m.Frame >= m.Total {
		return 0
	}
	perFrame := time.Since(m.Start) / time.Duration(m.Frame)
	return perFrame * time.Duration(m.Total-m.Frame)
}

// runWithProgress runs fn under a progress bar on stderr. fn receives the
// callback to pass as Options.Progress. Quitting the UI cancels fn's context.
func runWithProgress(ctx context.Context, title string, total int, fn func(context.Context, func(pipeline.Progress)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewRenderModel(title, total), tea.WithOutput(os.Stderr))

	errc := make(chan error, 1)
	go func() {
		err := fn(ctx, func(pr pipeline.Progress) { p.Send(frameMsg(pr)) })
		errc <- err
		p.Send(runDoneMsg{err: err})
	}()

	final, uiErr := p.Run()
	if m, ok := final.(RenderModel); ok && m.Quitting {
		cancel()
	}
	if uiErr != nil {
		loggerFromContext(ctx).Debug("progress display failed", "error", uiErr)
	}
	return <-errc
}
