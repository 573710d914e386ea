package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/marches/internal/report"
)

const exportTimeout = 2 * time.Minute

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

type exportForm struct {
	path      string
	operation string
	exercise  string
}

type ExportModel struct {
	CommonModel
	reportService *report.Service

	state   exportState
	err     error
	form    *huh.Form
	fields  *exportForm
	spinner spinner.Model
	summary string
}

func NewExportModel(svc *report.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	fields := &exportForm{
		path: filepath.Join("exports", fmt.Sprintf("marches_%s.xlsx", time.Now().Format("20060102"))),
	}

	return ExportModel{
		reportService: svc,
		state:         exportStateForm,
		fields:        fields,
		form:          buildExportForm(fields),
		spinner:       s,
	}
}

func (m ExportModel) Title() string { return "Export Workbook" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(*m.fields))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.summary = result.body

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func buildExportForm(fields *exportForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output file").
				Description("Parent directory will be created if it doesn't exist").
				Value(&fields.path).
				Validate(func(s string) error {
					if !strings.HasSuffix(strings.ToLower(s), ".xlsx") {
						return fmt.Errorf("file must end with .xlsx")
					}

					return nil
				}),

			huh.NewInput().
				Key("operation").
				Title("Operation").
				Description("Leave empty to export every sheet").
				Value(&fields.operation),

			huh.NewInput().
				Key("exercise").
				Title("Exercise").
				Description("Operation export only, e.g. 2025. Leave empty for every year").
				Value(&fields.exercise),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Building workbook...", m.spinner.View()),
		)

	case exportStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(1).Render(errorText(fmt.Sprintf("Error: %v", m.err)))
		}

		header := lipgloss.NewStyle().Bold(true).Render(successText("Export Complete!"))

		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", m.summary),
		)
	}

	return ""
}

type exportResultMsg struct {
	body string
	err  error
}

func (m ExportModel) runExportCmd(fields exportForm) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		path := strings.TrimSpace(fields.path)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return exportResultMsg{err: err}
			}
		}

		op := strings.TrimSpace(fields.operation)
		if op == "" {
			if err := m.reportService.SaveAs(ctx, path); err != nil {
				return exportResultMsg{err: err}
			}

			return exportResultMsg{body: fmt.Sprintf("Saved %s", path)}
		}

		exercise := strings.TrimSpace(fields.exercise)

		wb, err := m.reportService.OperationWorkbook(ctx, op, exercise)
		if err != nil {
			return exportResultMsg{err: err}
		}
		defer wb.Close()

		if err := wb.SaveAs(path); err != nil {
			return exportResultMsg{err: err}
		}

		if exercise != "" {
			op = fmt.Sprintf("%s (exercise %s)", op, exercise)
		}

		return exportResultMsg{body: fmt.Sprintf("Saved summary of operation %s to %s", op, path)}
	}
}
