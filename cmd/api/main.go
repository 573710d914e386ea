package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/marches/internal/analysis"
	"github.com/MrJamesThe3rd/marches/internal/config"
	"github.com/MrJamesThe3rd/marches/internal/contract"
	contractStore "github.com/MrJamesThe3rd/marches/internal/contract/store"
	"github.com/MrJamesThe3rd/marches/internal/database"
	marchesHttp "github.com/MrJamesThe3rd/marches/internal/http"
	ingestHandler "github.com/MrJamesThe3rd/marches/internal/http/ingest"
	overrideHandler "github.com/MrJamesThe3rd/marches/internal/http/override"
	reportHandler "github.com/MrJamesThe3rd/marches/internal/http/report"
	viewHandler "github.com/MrJamesThe3rd/marches/internal/http/view"
	"github.com/MrJamesThe3rd/marches/internal/importer"
	"github.com/MrJamesThe3rd/marches/internal/importer/layout"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/marches/internal/ledger/store"
	"github.com/MrJamesThe3rd/marches/internal/logger"
	"github.com/MrJamesThe3rd/marches/internal/report"
	"github.com/MrJamesThe3rd/marches/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	db, err := database.Open(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		log.Error("failed to open database", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		ledgerService   = ledger.NewService(ledgerStore.New(db, cfg.DB.Driver), ledger.WithLogger(log))
		contractService = contract.NewService(contractStore.New(db))
		analyzer        = analysis.New(ledgerService, contractService)
		reportService   = report.NewService(analyzer, contractService)
	)

	importService, err := importer.NewService(layout.Default, ledgerService, log)
	if err != nil {
		log.Error("invalid column layout", "error", err)
		os.Exit(1)
	}

	if cfg.Sync.Schedule != "" {
		sched := scheduler.New(importService, cfg.Sync.Source, log)
		if err := sched.Start(cfg.Sync.Schedule); err != nil {
			log.Error("failed to start scheduler", "schedule", cfg.Sync.Schedule, "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	var (
		ingestH   = ingestHandler.NewHandler(importService, ledgerService, cfg.Sync.Source, cfg.Sync.UploadDir)
		viewH     = viewHandler.NewHandler(analyzer)
		overrideH = overrideHandler.NewHandler(contractService)
		reportH   = reportHandler.NewHandler(reportService)
	)

	router := marchesHttp.New(cfg.Server.AllowedOrigins, ingestH, viewH, overrideH, reportH)

	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("starting server", "port", port, "driver", cfg.DB.Driver)

	if err := http.ListenAndServe(port, router); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
