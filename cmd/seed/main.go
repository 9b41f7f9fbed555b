package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/products"
	"storefront/internal/seed"
)

type seedFunc func(ctx context.Context, file string, out io.Writer) error

func main() {
	if err := newApp(run).RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func newApp(fn seedFunc) *cli.App {
	return &cli.App{
		Name:  "seed",
		Usage: "load demo users and products from a YAML fixture",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "fixture path (defaults to SEED_PATH)",
			},
		},
		Action: func(c *cli.Context) error {
			return fn(c.Context, c.String("file"), c.App.Writer)
		},
	}
}

// fixturePath prefers the --file flag over SEED_PATH.
func fixturePath(file string, cfg config.Config) string {
	if file != "" {
		return file
	}
	return cfg.SeedPath
}

func run(ctx context.Context, file string, out io.Writer) error {
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

	s := seed.New(auth.NewStore(conn), products.NewStore(conn), logger)
	res, err := s.RunFile(ctx, fixturePath(file, cfg))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "users: %d created, %d skipped\nproducts: %d created, %d skipped\n",
		res.UsersCreated, res.UsersSkipped, res.ProductsCreated, res.ProductsSkipped)
	return nil
}
