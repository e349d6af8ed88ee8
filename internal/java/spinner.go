package java

import (
	"fmt"
	"time"

	"jhome/internal/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type spinnerFinishedMsg struct{}

type scannerModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
}

func newScannerModel(message string) scannerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.InfoStyle

	return scannerModel{
		spinner: s,
		message: message,
	}
}

func (m scannerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m scannerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case spinnerFinishedMsg:
		m.quitting = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m scannerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf(" %s %s\n", m.spinner.View(), m.message)
}

// WithScanner runs fn while a spinner shows message, and returns fn's error
func WithScanner(message string, fn func() error) error {
	p := tea.NewProgram(newScannerModel(message))

	errCh := make(chan error, 1)
	go func() {
		time.Sleep(50 * time.Millisecond) // Give UI time to start
		errCh <- fn()
		p.Send(spinnerFinishedMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}

	return <-errCh
}
