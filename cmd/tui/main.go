package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/marches/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/marches/internal/analysis"
	"github.com/MrJamesThe3rd/marches/internal/config"
	"github.com/MrJamesThe3rd/marches/internal/contract"
	contractStore "github.com/MrJamesThe3rd/marches/internal/contract/store"
	"github.com/MrJamesThe3rd/marches/internal/database"
	"github.com/MrJamesThe3rd/marches/internal/importer"
	"github.com/MrJamesThe3rd/marches/internal/importer/layout"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/marches/internal/ledger/store"
	"github.com/MrJamesThe3rd/marches/internal/logger"
	"github.com/MrJamesThe3rd/marches/internal/report"
)

// logFile receives the logs; stdout belongs to the terminal UI.
const logFile = "marches-tui.log"

type model struct {
	appName string
	source  string

	ledgerService   *ledger.Service
	contractService *contract.Service
	importService   *importer.Service
	reportService   *report.Service
	analyzer        *analysis.Analyzer

	currentView View

	syncView       view.SyncModel
	contractsView  view.ContractsModel
	operationsView view.OperationsModel
	historyView    view.HistoryModel
	exportView     view.ExportModel
}

type View int

const (
	ViewMenu       View = 0
	ViewSync       View = 1
	ViewContracts  View = 2
	ViewOperations View = 3
	ViewHistory    View = 4
	ViewExport     View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "path", logFile, "error", err)
		os.Exit(1)
	}

	log := logger.New(f, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	db, err := database.Open(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	ledgerSvc := ledger.NewService(ledgerStore.New(db, cfg.DB.Driver), ledger.WithLogger(log))
	contractSvc := contract.NewService(contractStore.New(db))
	analyzer := analysis.New(ledgerSvc, contractSvc)
	reportSvc := report.NewService(analyzer, contractSvc)

	impSvc, err := importer.NewService(layout.Default, ledgerSvc, log)
	if err != nil {
		log.Error("invalid column layout", "error", err)
		os.Exit(1)
	}

	return model{
		appName:         cfg.App.Name,
		source:          cfg.Sync.Source,
		ledgerService:   ledgerSvc,
		contractService: contractSvc,
		importService:   impSvc,
		reportService:   reportSvc,
		analyzer:        analyzer,
		currentView:     ViewMenu,
		syncView:        view.NewSyncModel(impSvc, ledgerSvc, cfg.Sync.Source),
		contractsView:   view.NewContractsModel(analyzer, contractSvc),
		operationsView:  view.NewOperationsModel(analyzer),
		historyView:     view.NewHistoryModel(analyzer),
		exportView:      view.NewExportModel(reportSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSync
				m.syncView = view.NewSyncModel(m.importService, m.ledgerService, m.source)

				return m, m.syncView.Init()
			case "2":
				m.currentView = ViewContracts
				m.contractsView = view.NewContractsModel(m.analyzer, m.contractService)

				return m, m.contractsView.Init()
			case "3":
				m.currentView = ViewOperations
				m.operationsView = view.NewOperationsModel(m.analyzer)

				return m, m.operationsView.Init()
			case "4":
				m.currentView = ViewHistory
				m.historyView = view.NewHistoryModel(m.analyzer)

				return m, m.historyView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.reportService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewSync:
		var newModel tea.Model
		newModel, cmd = m.syncView.Update(msg)
		m.syncView = newModel.(view.SyncModel)
	case ViewContracts:
		var newModel tea.Model
		newModel, cmd = m.contractsView.Update(msg)
		m.contractsView = newModel.(view.ContractsModel)
	case ViewOperations:
		var newModel tea.Model
		newModel, cmd = m.operationsView.Update(msg)
		m.operationsView = newModel.(view.OperationsModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Synchronise\n" +
				"2. Contracts\n" +
				"3. Operations\n" +
				"4. Invoice History\n" +
				"5. Export Workbook\n\n" +
				"q. Quit",
		)
	case ViewSync:
		return m.syncView.View()
	case ViewContracts:
		return m.contractsView.View()
	case ViewOperations:
		return m.operationsView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
