package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/categorize"
	"github.com/berlinbruno/money-trail/internal/config"
	"github.com/berlinbruno/money-trail/internal/database"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/inbox"
	"github.com/berlinbruno/money-trail/internal/insights"
	"github.com/berlinbruno/money-trail/internal/service"
)

// app holds the opened database and every service built on it.
type app struct {
	cfg config.Config
	log zerolog.Logger
	out io.Writer
	loc *time.Location
	now func() time.Time
	db  *sql.DB

	engine        *insights.Engine
	transactions  *repository.TransactionRepo
	ledger        *service.LedgerService
	reconciler    *service.Reconciler
	alerts        *service.AlertService
	notifications *service.NotificationService
	sync          *service.SyncService
	maintenance   *service.MaintenanceService
}

func newApp(cfg config.Config, log zerolog.Logger, out io.Writer) (*app, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if version, dirty, err := database.MigrationVersion(cfg.Database.Path); err == nil {
		log.Debug().Uint("version", version).Bool("dirty", dirty).Msg("schema ready")
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	rules, err := categorize.Load(cfg.Categorizer.RulesPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	loc := cfg.UI.Location()
	if _, err := time.LoadLocation(cfg.UI.Timezone); err != nil {
		log.Warn().Err(err).Str("timezone", cfg.UI.Timezone).Msg("unknown timezone, using UTC")
	}

	a := &app{cfg: cfg, log: log, out: out, loc: loc, now: time.Now, db: db}
	a.engine = insights.New(db, loc)
	a.transactions = repository.NewTransactionRepo(db)

	account := cfg.Sync.DefaultAccount
	a.ledger = &service.LedgerService{
		Transactions:   a.transactions,
		DefaultAccount: account,
		Location:       loc,
		Log:            log.With().Str("service", "ledger").Logger(),
	}
	a.reconciler = &service.Reconciler{Transactions: a.transactions}
	a.alerts = &service.AlertService{
		Alerts: repository.NewAlertRepo(db),
		Engine: a.engine,
		Log:    log.With().Str("service", "alerts").Logger(),
	}
	a.notifications = &service.NotificationService{
		Notifications:  repository.NewNotificationRepo(db),
		Engine:         a.engine,
		CurrencySymbol: cfg.UI.CurrencySymbol,
		Dedupe:         cfg.Alerts.DedupeNotifications,
		Log:            log.With().Str("service", "notifications").Logger(),
	}
	a.sync = &service.SyncService{
		Config: repository.NewConfigRepo(db),
		Source: &inbox.FileSource{Path: cfg.Sync.InboxPath},
		Ingest: &service.IngestService{
			Transactions:   a.transactions,
			Categorizer:    rules,
			DefaultAccount: account,
			Log:            log.With().Str("service", "ingest").Logger(),
		},
		MaxCount: cfg.Sync.MaxCount,
		Log:      log.With().Str("service", "sync").Logger(),
	}
	a.maintenance = &service.MaintenanceService{DB: db, Log: log}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}
