package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/marches/internal/importer"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

const syncTimeout = 2 * time.Minute

type syncState int

const (
	syncStateMenu syncState = iota
	syncStateFilePick
	syncStateConfirmClear
	syncStateSyncing
	syncStateResult
)

type syncAction int

const (
	syncActionSource syncAction = iota
	syncActionFile
	syncActionSnapshots
	syncActionClear
)

func (a syncAction) String() string {
	switch a {
	case syncActionSource:
		return "Sync configured workbook"
	case syncActionFile:
		return "Sync another file..."
	case syncActionSnapshots:
		return "Show sync history"
	case syncActionClear:
		return "Clear row cache"
	}

	return "Unknown"
}

type SyncModel struct {
	CommonModel
	importService *importer.Service
	ledgerService *ledger.Service
	source        string

	state      syncState
	actions    []syncAction
	cursor     int
	force      bool
	filePicker filepicker.Model
	spinner    spinner.Model
	confirm    *huh.Form
	cleared    *bool

	status string
	err    error
}

func NewSyncModel(impSvc *importer.Service, ledgerSvc *ledger.Service, source string) SyncModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".xlsx", ".xlsm", ".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	actions := []syncAction{syncActionFile, syncActionSnapshots, syncActionClear}
	if source != "" {
		actions = append([]syncAction{syncActionSource}, actions...)
	}

	return SyncModel{
		importService: impSvc,
		ledgerService: ledgerSvc,
		source:        source,
		actions:       actions,
		filePicker:    fp,
		spinner:       s,
	}
}

func (m SyncModel) Title() string { return "Synchronise" }

func (m SyncModel) ShortHelp() string {
	switch m.state {
	case syncStateMenu:
		return "Esc: back | Enter: select | f: toggle force"
	case syncStateSyncing:
		return "Synchronising..."
	}

	return "Esc: back | Enter: select"
}

func (m SyncModel) Init() tea.Cmd {
	return nil
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == syncStateMenu {
			return m.updateMenu(msg)
		}

		if m.state == syncStateResult {
			return m, nil
		}

	case syncResultMsg:
		m.state = syncStateResult
		m.err = msg.err
		m.status = msg.body

		return m, nil
	}

	switch m.state {
	case syncStateSyncing:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case syncStateConfirmClear:
		return m.updateConfirm(msg)

	case syncStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			return m.startSync(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m SyncModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case syncStateFilePick, syncStateConfirmClear, syncStateResult:
		m.state = syncStateMenu
		m.confirm = nil
		m.err = nil
		m.status = ""

		return m, nil
	case syncStateSyncing:
		return m, nil
	}

	return m, Back
}

func (m SyncModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.actions)-1 {
			m.cursor++
		}
	case "f":
		m.force = !m.force
	case "enter":
		switch m.actions[m.cursor] {
		case syncActionSource:
			return m.startSync(m.source)
		case syncActionFile:
			m.state = syncStateFilePick
			return m, m.filePicker.Init()
		case syncActionSnapshots:
			m.state = syncStateSyncing
			return m, tea.Batch(m.spinner.Tick, m.snapshotsCmd())
		case syncActionClear:
			m.cleared = new(false)
			m.confirm = huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Clear every cached row and snapshot?").
						Affirmative("Clear").
						Negative("Keep").
						Value(m.cleared),
				),
			).WithWidth(50).WithShowHelp(false)
			m.state = syncStateConfirmClear

			return m, m.confirm.Init()
		}
	}

	return m, nil
}

func (m SyncModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	if m.confirm.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.cleared {
		m.state = syncStateMenu
		m.confirm = nil

		return m, nil
	}

	m.state = syncStateSyncing

	return m, tea.Batch(m.spinner.Tick, m.clearCmd())
}

func (m SyncModel) startSync(path string) (tea.Model, tea.Cmd) {
	m.state = syncStateSyncing
	m.status = fmt.Sprintf("Synchronising %s...", path)

	return m, tea.Batch(m.spinner.Tick, m.syncCmd(path, m.force))
}

func (m SyncModel) View() string {
	switch m.state {
	case syncStateMenu:
		return m.viewMenu()
	case syncStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select workbook to synchronise:\n\n%s", m.filePicker.View()),
		)
	case syncStateConfirmClear:
		return lipgloss.NewStyle().Padding(1).Render(m.confirm.View())
	case syncStateSyncing:
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("%s %s", m.spinner.View(), m.status))
	case syncStateResult:
		return m.viewResult()
	}

	return ""
}

func (m SyncModel) viewMenu() string {
	s := ""
	if m.source != "" {
		s += fmt.Sprintf("Workbook: %s\n", activeStyle(m.source))
	}

	force := "off"
	if m.force {
		force = "on"
	}

	s += fmt.Sprintf("Force: %s\n\n", activeStyle(force))

	for i, a := range m.actions {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, a)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m SyncModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorText(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	return style.Render(successText(m.status) + "\n\n(Esc to go back)")
}

// Messages

type syncResultMsg struct {
	body string
	err  error
}

func (m SyncModel) syncCmd(path string, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		stats, err := m.importService.SyncFile(ctx, path, force)
		if err != nil {
			return syncResultMsg{err: err}
		}

		if stats.Status == ledger.StatusError {
			return syncResultMsg{err: errors.New(stats.Message)}
		}

		return syncResultMsg{body: statsSummary(stats)}
	}
}

func statsSummary(s ledger.Stats) string {
	if s.Status == ledger.StatusSkipped {
		return fmt.Sprintf("%s is unchanged (%s).", s.SourceKey, s.Message)
	}

	return fmt.Sprintf(
		"Synchronised %s in %s\n\n%d inserted, %d deleted, %d unchanged, %d duplicates",
		s.SourceKey, s.Duration.Round(time.Millisecond),
		s.Inserted, s.Deleted, s.Unchanged, s.Duplicates,
	)
}

func (m SyncModel) snapshotsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		snaps, err := m.ledgerService.History(ctx, m.source, 10)
		if err != nil {
			return syncResultMsg{err: err}
		}

		if len(snaps) == 0 {
			return syncResultMsg{body: "No synchronisation recorded."}
		}

		body := ""
		for _, s := range snaps {
			body += fmt.Sprintf("%s  %-7s  %5d rows  +%d -%d  %s\n",
				s.SyncedAt.Local().Format(time.DateTime), s.Status, s.RowCount, s.Inserted, s.Deleted, s.Message)
		}

		return syncResultMsg{body: body}
	}
}

func (m SyncModel) clearCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.ledgerService.Clear(ctx); err != nil {
			return syncResultMsg{err: err}
		}

		return syncResultMsg{body: "Row cache cleared."}
	}
}
