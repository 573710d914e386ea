package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/marches/internal/analysis"
)

type operationsState int

const (
	operationsStateBrowse operationsState = iota
	operationsStateSummary
)

type OperationsModel struct {
	CommonModel
	analyzer *analysis.Analyzer

	state   operationsState
	table   table.Model
	summary table.Model
	views   []analysis.OperationView

	// set while the summary of one operation is shown
	current   *analysis.OperationSummary
	exercises []string
	exercise  string

	loading bool
	err     error
	status  string
}

func NewOperationsModel(a *analysis.Analyzer) OperationsModel {
	return OperationsModel{
		analyzer: a,
		loading:  true,
		table: newTable([]table.Column{
			{Title: "Operation", Width: 10},
			{Title: "Lots", Width: 5},
			{Title: "Labels", Width: 30},
			{Title: "Suppliers", Width: 24},
			{Title: "Initial", Width: 14},
			{Title: "Paid", Width: 14},
			{Title: "To execute", Width: 14},
			{Title: "Cons.", Width: 8},
		}),
		summary: newTable([]table.Column{
			{Title: "Contract", Width: 14},
			{Title: "Supplier", Width: 22},
			{Title: "Label", Width: 28},
			{Title: "Tranche", Width: 8},
			{Title: "Initial", Width: 14},
			{Title: "Paid", Width: 14},
			{Title: "Remaining", Width: 14},
		}),
	}
}

func (m OperationsModel) Title() string { return "Operations" }

func (m OperationsModel) ShortHelp() string {
	if m.state == operationsStateSummary {
		return "Esc: back to operations | e: next exercise"
	}

	return "Esc: back | Enter: summary | r: refresh"
}

func (m OperationsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m OperationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadOperationsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.views = msg.views
		m.refreshTable()

		return m, nil

	case loadSummaryMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading summary: %v", msg.err)
			return m, nil
		}

		m.status = ""
		m.current = msg.summary
		m.exercises = msg.exercises
		m.summary.SetRows(summaryRows(msg.summary))
		m.state = operationsStateSummary
		m.table.Blur()
		m.summary.Focus()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		m.summary.SetHeight(msg.Height - 12)

		return m, nil
	}

	if m.state == operationsStateSummary {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = operationsStateBrowse
				m.current = nil
				m.exercise = ""
				m.summary.Blur()
				m.table.Focus()

				return m, nil
			case "e":
				if m.current == nil {
					return m, nil
				}

				m.exercise = nextExercise(m.exercises, m.exercise)

				return m, m.loadSummaryCmd(m.current.Operation, m.exercise)
			}
		}

		var cmd tea.Cmd
		m.summary, cmd = m.summary.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.views) {
				m.exercise = ""
				return m, m.loadSummaryCmd(m.views[idx].Operation, "")
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m OperationsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading operations...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var content string

	if m.state == operationsStateSummary && m.current != nil {
		t := m.current.Total
		header := fmt.Sprintf("Operation %s | exercise: %s of %s\nTotal initial %s | paid %s | remaining %s",
			activeStyle(m.current.Operation),
			activeStyle(firstOr(m.current.Exercise, "all")),
			strings.Join(m.exercises, ", "),
			FormatAmount(t.InitialAmount),
			FormatAmount(t.Paid),
			FormatAmount(t.Remaining),
		)

		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			framed(m.summary),
		)
	} else {
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(fmt.Sprintf("%d operations", len(m.views))),
			framed(m.table),
		)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *OperationsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.views))
	for _, v := range m.views {
		rows = append(rows, table.Row{
			v.Operation,
			fmt.Sprint(v.Lots),
			v.Labels,
			v.Suppliers,
			FormatAmount(v.InitialAmount),
			FormatAmount(v.Paid),
			FormatAmount(v.RemainingToExecute),
			FormatPct(v.ConsumptionPct),
		})
	}

	m.table.SetRows(rows)
}

// nextExercise cycles through all exercises, then back to no filter.
func nextExercise(exercises []string, current string) string {
	if current == "" {
		if len(exercises) == 0 {
			return ""
		}

		return exercises[0]
	}

	i := slices.Index(exercises, current)
	if i < 0 || i+1 >= len(exercises) {
		return ""
	}

	return exercises[i+1]
}

func summaryRows(s *analysis.OperationSummary) []table.Row {
	rows := make([]table.Row, 0, len(s.Lines))
	for _, l := range s.Lines {
		rows = append(rows, table.Row{
			l.Contract,
			l.Supplier,
			l.Label,
			l.Tranche,
			FormatAmount(l.InitialAmount),
			FormatAmount(l.Paid),
			FormatAmount(l.Remaining),
		})
	}

	return rows
}

// Messages

type loadOperationsMsg struct {
	views []analysis.OperationView
	err   error
}

func (m OperationsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		views, err := m.analyzer.Operations(ctx)

		return loadOperationsMsg{views: views, err: err}
	}
}

type loadSummaryMsg struct {
	summary   *analysis.OperationSummary
	exercises []string
	err       error
}

func (m OperationsModel) loadSummaryCmd(op, exercise string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := m.analyzer.OperationSummary(ctx, op, exercise)
		if err != nil {
			return loadSummaryMsg{err: err}
		}

		exercises, err := m.analyzer.Exercises(ctx, op)
		if err != nil {
			return loadSummaryMsg{err: err}
		}

		return loadSummaryMsg{summary: summary, exercises: exercises}
	}
}
