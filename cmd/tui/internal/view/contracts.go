package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/marches/internal/amount"
	"github.com/MrJamesThe3rd/marches/internal/analysis"
	"github.com/MrJamesThe3rd/marches/internal/contract"
)

type contractsState int

const (
	contractsStateBrowse contractsState = iota
	contractsStateTranches
	contractsStateEdit
)

// contractForm is shared by pointer so the huh bindings survive model copies.
type contractForm struct {
	label    string
	supplier string
	kind     contract.Kind
	base     string
	notes    string
}

type ContractsModel struct {
	CommonModel
	analyzer  *analysis.Analyzer
	contracts *contract.Service

	state    contractsState
	table    table.Model
	tranches table.Model
	views    []analysis.ContractView

	form   *huh.Form
	fields *contractForm

	loading bool
	err     error
	status  string
}

func NewContractsModel(a *analysis.Analyzer, contracts *contract.Service) ContractsModel {
	return ContractsModel{
		analyzer:  a,
		contracts: contracts,
		loading:   true,
		table: newTable([]table.Column{
			{Title: "Contract", Width: 14},
			{Title: "Operation", Width: 10},
			{Title: "Supplier", Width: 22},
			{Title: "Initial", Width: 14},
			{Title: "Service fait", Width: 14},
			{Title: "Paid", Width: 14},
			{Title: "To pay", Width: 14},
			{Title: "Cons.", Width: 8},
			{Title: "Source", Width: 8},
		}),
		tranches: newTable([]table.Column{
			{Title: "Tranche", Width: 10},
			{Title: "Rows", Width: 6},
			{Title: "Initial", Width: 14},
			{Title: "Service fait", Width: 14},
			{Title: "Paid", Width: 14},
			{Title: "To execute", Width: 14},
			{Title: "To pay", Width: 14},
			{Title: "Cons.", Width: 8},
		}),
	}
}

func (m ContractsModel) Title() string { return "Contracts" }

func (m ContractsModel) ShortHelp() string {
	switch m.state {
	case contractsStateEdit:
		return "Navigate form | Esc: cancel"
	case contractsStateTranches:
		return "Esc: back to contracts"
	}

	return "Esc: back | Enter: tranches | e: edit override | r: refresh"
}

func (m ContractsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ContractsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadContractsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.views = msg.views
		m.refreshTable()

		return m, nil

	case loadTranchesMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading tranches: %v", msg.err)
			return m, nil
		}

		m.tranches.SetRows(trancheRows(msg.views))
		m.state = contractsStateTranches
		m.table.Blur()
		m.tranches.Focus()

		return m, nil

	case contractSaveMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = contractsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		m.tranches.SetHeight(msg.Height - 10)

		return m, nil
	}

	switch m.state {
	case contractsStateBrowse:
		return m.updateBrowse(msg)
	case contractsStateTranches:
		return m.updateTranches(msg)
	case contractsStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ContractsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			if v, ok := m.selected(); ok {
				return m, m.loadTranchesCmd(v.Contract)
			}

			return m, nil
		case "e":
			return m.enterEditMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ContractsModel) updateTranches(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = contractsStateBrowse
		m.tranches.Blur()
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.tranches, cmd = m.tranches.Update(msg)

	return m, cmd
}

func (m ContractsModel) selected() (analysis.ContractView, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.views) {
		return analysis.ContractView{}, false
	}

	return m.views[idx], true
}

func (m ContractsModel) enterEditMode() (tea.Model, tea.Cmd) {
	v, ok := m.selected()
	if !ok {
		return m, nil
	}

	fields := &contractForm{
		label:    v.Label,
		supplier: v.Supplier,
		kind:     contract.KindClassic,
	}

	ctx, cancel := DbCtx()
	defer cancel()

	existing, err := m.contracts.GetContract(ctx, v.Contract)
	switch {
	case err == nil:
		fields.label = existing.Label
		fields.supplier = existing.Supplier
		fields.kind = existing.Kind
		fields.notes = existing.Notes
		if existing.BaseAmount > 0 {
			fields.base = amount.Format(existing.BaseAmount)
		}
	case !errors.Is(err, contract.ErrNotFound):
		m.status = fmt.Sprintf("Error: %v", err)
		return m, nil
	}

	m.fields = fields
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("label").
				Title("Label").
				Value(&fields.label),

			huh.NewInput().
				Key("supplier").
				Title("Supplier").
				Value(&fields.supplier),

			huh.NewSelect[contract.Kind]().
				Key("kind").
				Title("Kind").
				Options(
					huh.NewOption("Classic", contract.KindClassic),
					huh.NewOption("Purchase orders", contract.KindPurchaseOrder),
				).
				Value(&fields.kind),

			huh.NewInput().
				Key("base").
				Title("Base amount").
				Description("Firm tranche, or whole amount for purchase orders. Empty keeps the imported amount.").
				Placeholder("0,00").
				Value(&fields.base).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					d, ok := amount.ParseDecimal(s)
					if !ok || d.IsNegative() {
						return fmt.Errorf("not a positive amount")
					}

					return nil
				}),

			huh.NewText().
				Key("notes").
				Title("Notes").
				Value(&fields.notes),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = contractsStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ContractsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = contractsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ContractsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading contracts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var content string

	switch m.state {
	case contractsStateTranches:
		v, _ := m.selected()
		header := fmt.Sprintf("Tranches of %s (%s)", activeStyle(v.Contract), v.Supplier)
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			framed(m.tranches),
		)
	default:
		header := fmt.Sprintf("%d contracts", len(m.views))
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			framed(m.table),
		)
	}

	if m.state == contractsStateEdit && m.form != nil {
		v, _ := m.selected()
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(
				fmt.Sprintf("Override %s\n\nComputed from rows: %s\n\n%s",
					v.Contract, FormatAmount(v.ComputedAmount), m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ContractsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.views))
	for _, v := range m.views {
		rows = append(rows, table.Row{
			v.Contract,
			v.Operation,
			v.Supplier,
			FormatAmount(v.InitialAmount),
			FormatAmount(v.ServiceFait),
			FormatAmount(v.Paid),
			FormatAmount(v.RemainingToPay),
			FormatPct(v.ConsumptionPct),
			string(v.AmountSource),
		})
	}

	m.table.SetRows(rows)
}

func trancheRows(views []analysis.TrancheView) []table.Row {
	rows := make([]table.Row, 0, len(views))
	for _, v := range views {
		rows = append(rows, table.Row{
			v.Tranche,
			fmt.Sprint(v.Rows),
			FormatAmount(v.InitialAmount),
			FormatAmount(v.ServiceFait),
			FormatAmount(v.Paid),
			FormatAmount(v.RemainingToExecute),
			FormatAmount(v.RemainingToPay),
			FormatPct(v.ConsumptionPct),
		})
	}

	return rows
}

// Messages

type loadContractsMsg struct {
	views []analysis.ContractView
	err   error
}

func (m ContractsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		views, err := m.analyzer.Contracts(ctx)

		return loadContractsMsg{views: views, err: err}
	}
}

type loadTranchesMsg struct {
	views []analysis.TrancheView
	err   error
}

func (m ContractsModel) loadTranchesCmd(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		views, err := m.analyzer.ContractTranches(ctx, code)

		return loadTranchesMsg{views: views, err: err}
	}
}

type contractSaveMsg struct {
	err error
}

func (m ContractsModel) saveCmd() tea.Cmd {
	v, ok := m.selected()
	if !ok {
		return nil
	}

	fields := *m.fields

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := m.contracts.GetContract(ctx, v.Contract)
		if errors.Is(err, contract.ErrNotFound) {
			c, err = &contract.Contract{Code: v.Contract}, nil
		}

		if err != nil {
			return contractSaveMsg{err: err}
		}

		c.Label = strings.TrimSpace(fields.label)
		c.Supplier = strings.TrimSpace(fields.supplier)
		c.Kind = fields.kind
		c.BaseAmount = amount.Parse(fields.base)
		c.Notes = fields.notes

		return contractSaveMsg{err: m.contracts.SaveContract(ctx, c)}
	}
}
