package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/berlinbruno/money-trail/internal/api"
	"github.com/berlinbruno/money-trail/internal/config"
	"github.com/berlinbruno/money-trail/internal/database"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/export"
	"github.com/berlinbruno/money-trail/internal/scheduler"
	"github.com/berlinbruno/money-trail/internal/service"
	"github.com/berlinbruno/money-trail/internal/tui"
)

var errUnknownCommand = errors.New("unknown command")

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: moneytrail <command> [flags]

commands:
  sync      read new messages from the inbox export
  serve     run the HTTP API and the periodic sync
  approve   review pending transactions in the terminal
  report    print income, expense and category insights
  export    write the ledger to an .xlsx workbook
  notify    generate alert notifications
  seed      load a demo ledger into an empty database
  init      write the current configuration to the config file
  reset     delete all data (requires -yes)
`)
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "sync":
		return a.cmdSync(ctx)
	case "serve":
		return a.cmdServe(ctx, args)
	case "approve":
		return a.cmdApprove(ctx)
	case "report":
		return a.cmdReport(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	case "notify":
		return a.cmdNotify(ctx)
	case "seed":
		return a.cmdSeed(ctx)
	case "init":
		return a.cmdInit()
	case "reset":
		return a.cmdReset(ctx, args)
	case "help", "-h", "--help":
		usage(a.out)
		return nil
	}
	usage(a.out)
	return fmt.Errorf("%w: %q", errUnknownCommand, cmd)
}

func (a *app) cmdSync(ctx context.Context) error {
	res, err := a.sync.RunSync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "fetched %d, inserted %d, skipped %d, errors %d\n",
		res.Fetched, len(res.Inserted), res.Skipped, len(res.Errors))
	for _, e := range res.Errors {
		fmt.Fprintf(a.out, "  error: %v\n", e)
	}
	if res.WatermarkSet {
		fmt.Fprintf(a.out, "watermark advanced to %s\n", res.Watermark.In(a.loc).Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *app) cmdServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", a.cfg.Server.Addr, "listen address")
	noSync := fs.Bool("no-sync", false, "disable the periodic inbox sync")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*noSync {
		sched, err := scheduler.New(scheduler.Config{
			Schedule: a.cfg.Sync.Schedule,
			Location: a.loc,
		}, a.sync, a.notifications, a.log.With().Str("component", "scheduler").Logger())
		if err != nil {
			return err
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	h := api.NewRouter(api.Deps{
		Engine:        a.engine,
		Transactions:  a.transactions,
		Ledger:        a.ledger,
		Reconciler:    a.reconciler,
		Alerts:        a.alerts,
		Notifications: a.notifications,
		Sync:          a.sync,
	}, a.log)
	return api.Serve(ctx, *addr, h, a.log)
}

func (a *app) cmdApprove(ctx context.Context) error {
	model := tui.New(ctx, tui.Services{
		Ledger:      a.ledger,
		Reconciler:  a.reconciler,
		Engine:      a.engine,
		Maintenance: a.maintenance,
	}, a.loc, a.cfg.UI.CurrencySymbol)
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *app) cmdReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	period := fs.String("period", string(domain.PeriodMonthly), "Daily, Weekly, Monthly or Yearly")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := domain.ParsePeriod(*period)
	if err != nil {
		return err
	}
	out, err := tui.Report(ctx, a.engine, p, a.cfg.UI.CurrencySymbol)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, out)
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	path := fs.String("o", "moneytrail.xlsx", "output file")
	preset := fs.String("preset", string(service.PresetAll), "all, Today, This Week or Last 30 Days")
	txType := fs.String("type", "", "credit or debit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var f repository.TransactionFilters
	if *txType != "" {
		t, err := domain.ParseTransactionType(*txType)
		if err != nil {
			return err
		}
		f.Type = t
	}
	if p := service.Preset(*preset); p != service.PresetAll {
		f.Start, f.End = service.PresetRange(p, a.now(), a.loc)
	}

	file, err := os.Create(*path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	n, err := export.Ledger(ctx, a.transactions, f, a.loc, file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "exported %d transactions to %s\n", n, *path)
	return nil
}

func (a *app) cmdNotify(ctx context.Context) error {
	stored, err := a.notifications.GenerateAlertNotifications(ctx)
	if err != nil {
		return err
	}
	for _, n := range stored {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", n.Severity, n.Title, n.Message)
	}
	fmt.Fprintf(a.out, "%d notifications generated\n", len(stored))
	return nil
}

func (a *app) cmdSeed(ctx context.Context) error {
	seeded, err := database.SeedDemo(ctx, a.db, a.now())
	if err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	if !seeded {
		fmt.Fprintln(a.out, "database already has transactions, nothing seeded")
		return nil
	}
	fmt.Fprintln(a.out, "demo data loaded")
	return nil
}

func (a *app) cmdInit() error {
	if err := config.Save(a.cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "config written to %s\n", config.Path())
	return nil
}

func (a *app) cmdReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm deleting all data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("refusing to reset without -yes")
	}
	if err := a.maintenance.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "all data deleted")
	return nil
}
