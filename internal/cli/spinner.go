package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// workDoneMsg reports the end of the background work.
type workDoneMsg struct {
	err error
}

type spinnerModel struct {
	spinner     spinner.Model
	label       string
	work        func() error
	cancel      context.CancelFunc
	done        bool
	interrupted bool
	err         error
}

func newSpinnerModel(label string, work func() error, cancel context.CancelFunc) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(clrBrand)
	return spinnerModel{spinner: s, label: label, work: work, cancel: cancel}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m spinnerModel) run() tea.Msg {
	return workDoneMsg{err: m.work()}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			if m.cancel != nil {
				m.cancel()
			}
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.done || m.interrupted {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// runWithSpinner runs work while showing a spinner on out. Without a
// terminal, or in JSON or quiet mode, work runs directly.
func runWithSpinner(ctx context.Context, out *os.File, label string, work func(context.Context) error) error {
	if globalFlags.JSON || globalFlags.Quiet || !isTTY(out) {
		return work(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newSpinnerModel(label, func() error { return work(ctx) }, cancel)
	final, err := tea.NewProgram(m, tea.WithOutput(out)).Run()
	if err != nil {
		return err
	}
	result, ok := final.(spinnerModel)
	if !ok {
		return nil
	}
	if result.interrupted {
		return context.Canceled
	}
	return result.err
}
