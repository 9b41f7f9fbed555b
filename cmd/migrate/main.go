package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	names := migrate.Names(migrate.Definitions())
	return &cli.App{
		Name:        "migrate",
		Usage:       "apply or revert database migrations",
		Description: "Known migrations, in order:\n  " + strings.Join(names, "\n  "),
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return withRunner(c.Context, func(r *migrate.Runner) error {
						applied, err := r.Up(c.Context)
						for _, name := range applied {
							fmt.Fprintf(c.App.Writer, "applied %s\n", name)
						}
						if err == nil && len(applied) == 0 {
							fmt.Fprintln(c.App.Writer, "nothing to apply")
						}
						return err
					})
				},
			},
			{
				Name:  "down",
				Usage: "revert the most recently applied migration",
				Action: func(c *cli.Context) error {
					return withRunner(c.Context, func(r *migrate.Runner) error {
						res, err := r.Down(c.Context)
						if err != nil {
							return err
						}
						switch res.Status {
						case migrate.DownNothingApplied:
							fmt.Fprintln(c.App.Writer, "no migrations to revert")
						case migrate.DownUnknownMigration:
							fmt.Fprintf(c.App.Writer, "latest migration %s has no definition; nothing reverted\n", res.Name)
						case migrate.DownReverted:
							fmt.Fprintf(c.App.Writer, "reverted %s\n", res.Name)
						}
						return nil
					})
				},
			},
			{
				Name:  "list",
				Usage: "show applied migrations",
				Action: func(c *cli.Context) error {
					return withRunner(c.Context, func(r *migrate.Runner) error {
						recs, err := r.List(c.Context)
						if err != nil {
							return err
						}
						if len(recs) == 0 {
							fmt.Fprintln(c.App.Writer, "no migrations applied")
						}
						for _, rec := range recs {
							fmt.Fprintf(c.App.Writer, "%s\t%s\n", rec.Name, rec.AppliedAt.Format(time.RFC3339))
						}
						return nil
					})
				},
			},
		},
	}
}

func withRunner(ctx context.Context, fn func(*migrate.Runner) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer conn.Close()

	return fn(migrate.NewRunner(migrate.NewSQLLedger(conn), conn, migrate.Definitions(), logger))
}
