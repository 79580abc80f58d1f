// Package tui renders a live view of a suite run.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/savioxavier/termlink"

	"github.com/integrail/suggest-e2e/pkg/scenario"
)

const maxLines = 200

type (
	reportMsg string
	resultMsg scenario.Result
	doneMsg   struct{}
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF88")).Background(lipgloss.Color("#444444"))
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Background(lipgloss.Color("330000")).Foreground(lipgloss.Color("#FF3333"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type Model struct {
	viewport viewport.Model
	loader   spinner.Model
	lines    []string
	total    int
	results  []scenario.Result
	done     bool
	cancel   context.CancelFunc
}

// New returns a model expecting total results. cancel is called when the user quits.
func New(total int, cancel context.CancelFunc) *Model {
	vp := viewport.New(160, 30)
	vp.SetContent("Starting...")
	return &Model{
		viewport: vp,
		loader: spinner.New(
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
			spinner.WithSpinner(spinner.Dot),
		),
		total:  total,
		cancel: cancel,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.loader.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = lo.Max([]int{msg.Height - 4, 1})
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			return m, tea.Quit
		}
	case reportMsg:
		m.appendLine(messageStyle.Render(string(msg)))
	case resultMsg:
		res := scenario.Result(msg)
		m.results = append(m.results, res)
		m.appendLine(renderResult(res))
	case doneMsg:
		m.done = true
		m.appendLine(headerStyle.Render(m.summary()))
		return m, tea.Quit
	}
	return m, vpCmd
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[1:]
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func renderResult(res scenario.Result) string {
	switch res.Status {
	case scenario.Passed:
		return passStyle.Render("PASS ") + fmt.Sprintf("%s (%s)", res.Scenario.Title, res.Duration.Round(time.Millisecond))
	case scenario.Skipped:
		return skipStyle.Render("SKIP ") + fmt.Sprintf("%s: %v", res.Scenario.Title, res.Err)
	}
	line := failStyle.Render("FAIL ") + fmt.Sprintf("%s: %s failure: %v", res.Scenario.Title, res.Kind(), res.Err)
	if res.Screenshot != "" {
		line += "\n     screenshot: " + termlink.ColorLink(res.Scenario.Name+".png", "file://"+res.Screenshot, "italic green")
	}
	return line
}

func (m *Model) counts() (passed, failed, skipped int) {
	for _, res := range m.results {
		switch res.Status {
		case scenario.Passed:
			passed++
		case scenario.Failed:
			failed++
		case scenario.Skipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

func (m *Model) summary() string {
	passed, failed, skipped := m.counts()
	return fmt.Sprintf("%d/%d done: %d passed; %d failed; %d skipped", len(m.results), m.total, passed, failed, skipped)
}

func (m *Model) View() string {
	status := m.loader.View() + " running"
	if m.done {
		status = "finished"
	}
	return headerStyle.Render(m.summary()) + fmt.Sprintf("\n\n%s\n\n%s", m.viewport.View(), status) + "\n\n"
}

// Results returns the results received so far.
func (m *Model) Results() []scenario.Result {
	return m.results
}

type reporter struct {
	p *tea.Program
}

func (r reporter) Report(msg string) {
	r.p.Send(reportMsg(msg))
}

// Run executes scenarios with the runner built by newRunner while rendering
// progress. Quitting the view cancels the run.
func Run(ctx context.Context, scenarios []scenario.Scenario, newRunner func(opts ...scenario.RunnerOption) *scenario.Runner) ([]scenario.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(len(scenarios), cancel)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	runner := newRunner(
		scenario.WithReporter(reporter{p: p}),
		scenario.WithResultHandler(func(res scenario.Result) { p.Send(resultMsg(res)) }),
	)

	results := make(chan []scenario.Result, 1)
	go func() {
		results <- runner.Run(ctx, scenarios)
		p.Send(doneMsg{})
	}()

	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, errors.Wrapf(err, "failed to render run")
	}
	// the runner stops opening sessions once ctx is cancelled
	cancel()
	return <-results, nil
}
