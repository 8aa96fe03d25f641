package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/cinematch/cinematch/internal/service"
)

const pollInterval = 500 * time.Millisecond

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg triggers reading the run counters
type tickMsg time.Time

// runDoneMsg carries the finished run's result
type runDoneMsg struct {
	result *service.GenerateResult
	err    error
}

// progressModel is the bubbletea model for an in-process generation run.
type progressModel struct {
	counters   *service.Progress
	done       <-chan runDoneMsg
	cancelRun  context.CancelFunc
	snapshot   service.ProgressSnapshot
	progress   progress.Model
	theme      Theme
	result     *service.GenerateResult
	err        error
	finished   bool
	cancelling bool
}

// newProgressModel creates a new progress model.
func newProgressModel(counters *service.Progress, done <-chan runDoneMsg, cancelRun context.CancelFunc) progressModel {
	// Create progress bar with color blend
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		counters:  counters,
		done:      done,
		cancelRun: cancelRun,
		progress:  prog,
		theme:     defaultTheme,
	}
}

// Init returns the initial commands (start polling, wait for the run).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.waitForRun(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// The run is in-process: cancel it and wait for the
			// partial result instead of quitting immediately.
			m.cancelling = true
			m.cancelRun()
			return m, nil
		}

	case tickMsg:
		m.snapshot = m.counters.Snapshot()
		return m, tickCmd()

	case runDoneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		m.snapshot = m.counters.Snapshot()
		return m, tea.Quit

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.finished {
		return m.finalView()
	}

	var pct float64
	if m.snapshot.Total > 0 {
		pct = float64(m.snapshot.Processed) / float64(m.snapshot.Total)
	}

	status := m.theme.statusStyle().Render("[generating]")
	if m.cancelling {
		status = m.theme.errorStyle().Render("[cancelling]")
	}

	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d movies", m.snapshot.Processed, m.snapshot.Total)
	detail := fmt.Sprintf("generated %d, skipped %d, failed %d",
		m.snapshot.Generated, m.snapshot.Skipped, m.snapshot.Failed)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")

	return fmt.Sprintf("%s %s %s\n%s\n%s\n", status, progressBar, counts, detail, hint)
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.err != nil && m.result == nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Run failed: %s\n", m.err))
	}

	var output string
	switch {
	case m.cancelling:
		output += m.theme.errorStyle().Render("✗ Cancelled") + "\n\n"
	case m.err != nil:
		output += m.theme.errorStyle().Render(fmt.Sprintf("✗ Run failed: %s", m.err)) + "\n\n"
	default:
		output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
	}

	if m.result != nil {
		output += fmt.Sprintf("  Generated: %d\n", m.result.Generated)
		output += fmt.Sprintf("  Skipped:   %d\n", m.result.Skipped)
		output += fmt.Sprintf("  Failed:    %d\n", m.result.Failed)
		output += fmt.Sprintf("  Duration:  %s\n", m.result.Duration.Round(time.Millisecond))
		if len(m.result.Errors) > 0 {
			output += m.theme.errorStyle().Render(fmt.Sprintf("\nErrors (%d):\n", len(m.result.Errors)))
			for _, e := range m.result.Errors {
				output += fmt.Sprintf("  • %s\n", e)
			}
		}
	}
	return output
}

// waitForRun delivers the run's result to the UI when it finishes.
func (m progressModel) waitForRun() tea.Cmd {
	return func() tea.Msg {
		return <-m.done
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RunGenerateProgress runs the interactive progress UI over a generation run
// that is already executing in another goroutine. It returns the run's
// result once the run finishes or is cancelled.
func RunGenerateProgress(counters *service.Progress, done <-chan runDoneMsg, cancelRun context.CancelFunc) (*service.GenerateResult, error) {
	model := newProgressModel(counters, done, cancelRun)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		return m.result, m.err
	}
	return nil, nil
}
