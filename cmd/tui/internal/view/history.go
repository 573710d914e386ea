package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/marches/internal/analysis"
)

type historyState int

const (
	historyStatePeriod historyState = iota
	historyStateBrowse
	historyStateContract
)

type HistoryModel struct {
	CommonModel
	analyzer *analysis.Analyzer

	state    historyState
	picker   PeriodPicker
	contract textinput.Model
	table    table.Model
	entries  []analysis.HistoryEntry
	filter   analysis.HistoryFilter

	loading bool
	err     error
}

func NewHistoryModel(a *analysis.Analyzer) HistoryModel {
	ci := textinput.New()
	ci.Placeholder = "all contracts"
	ci.CharLimit = 32
	ci.Width = 20
	ci.Prompt = "Contract: "

	return HistoryModel{
		analyzer: a,
		picker:   NewPeriodPicker(time.Now()),
		contract: ci,
		table: newTable([]table.Column{
			{Title: "Contract", Width: 14},
			{Title: "Date", Width: 11},
			{Title: "Tranche", Width: 8},
			{Title: "Invoice", Width: 14},
			{Title: "Service fait", Width: 14},
			{Title: "TTC", Width: 14},
			{Title: "Mandate", Width: 10},
			{Title: "Status", Width: 17},
		}),
	}
}

func (m HistoryModel) Title() string { return "Invoice History" }

func (m HistoryModel) ShortHelp() string {
	switch m.state {
	case historyStateContract:
		return "Enter: apply | Esc: cancel"
	case historyStateBrowse:
		return "Esc: back | c: contract filter | p: period"
	}

	return "Esc: back | Enter: select"
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.filter.From, m.filter.To = msg.From, msg.To

		m.state = historyStateBrowse
		m.loading = true

		return m, m.loadCmd()

	case loadHistoryMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case historyStatePeriod:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.Choosing() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case historyStateContract:
		return m.updateContract(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "p":
			m.state = historyStatePeriod
			m.picker.Reset()

			return m, nil
		case "c":
			m.state = historyStateContract
			m.contract.SetValue(m.filter.Contract)
			m.table.Blur()

			return m, m.contract.Focus()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) updateContract(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = historyStateBrowse
			m.contract.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			m.filter.Contract = strings.TrimSpace(m.contract.Value())
			m.state = historyStateBrowse
			m.loading = true
			m.contract.Blur()
			m.table.Focus()

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.contract, cmd = m.contract.Update(msg)

	return m, cmd
}

func (m HistoryModel) View() string {
	if m.state == historyStatePeriod {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading history...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("%d invoices | contract: %s | %s",
		len(m.entries),
		activeStyle(firstOr(m.filter.Contract, "all")),
		activeStyle(m.rangeLabel()),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		framed(m.table),
	)

	if m.state == historyStateContract {
		content = lipgloss.JoinVertical(lipgloss.Left, m.contract.View(), "", content)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m HistoryModel) rangeLabel() string {
	if m.filter.From == nil && m.filter.To == nil {
		return "all dates"
	}

	return fmt.Sprintf("%s to %s", FormatDate(m.filter.From), FormatDate(m.filter.To))
}

func firstOr(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}

func (m *HistoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			e.Contract,
			e.ServiceDate,
			e.Tranche,
			e.InvoiceNumber,
			FormatAmount(e.ServiceAmount),
			FormatAmount(e.TTCAmount),
			e.Mandate,
			string(e.Status),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadHistoryMsg struct {
	entries []analysis.HistoryEntry
	err     error
}

func (m HistoryModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.analyzer.History(ctx, filter)

		return loadHistoryMsg{entries: entries, err: err}
	}
}
