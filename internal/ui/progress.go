// Package ui renders terminal progress and results for the CLI.
package ui

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user aborts while work is running.
var ErrCancelled = errors.New("cancelled")

type doneMsg struct{}

// progressModel shows a spinner until doneMsg arrives or the user quits.
type progressModel struct {
	spinner   spinner.Model
	label     string
	done      bool
	cancelled bool
}

func newProgressModel(label string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return progressModel{spinner: s, label: label}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// WithSpinner runs work while a spinner labelled label is drawn on out.
// Quitting the spinner cancels the context handed to work.
func WithSpinner[T any](ctx context.Context, in io.Reader, out io.Writer, label string, work func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(label), tea.WithInput(in), tea.WithOutput(out))

	type result struct {
		v   T
		err error
	}
	resc := make(chan result, 1)
	go func() {
		v, err := work(ctx)
		resc <- result{v, err}
		p.Send(doneMsg{})
	}()

	final, err := p.Run()
	if m, ok := final.(progressModel); ok && m.cancelled {
		cancel()
		<-resc
		var zero T
		return zero, ErrCancelled
	}

	res := <-resc
	if err != nil && res.err == nil {
		return res.v, err
	}
	return res.v, res.err
}
