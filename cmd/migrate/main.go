package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"davspay.backend/internal/config"
	"davspay.backend/internal/infrastructure/datasources/postgres"
)

type migrateDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	openDB  func(cfg config.DatabaseConfig) (*sql.DB, error)
	run     func(ctx context.Context, db *sql.DB, command string) error
	out     io.Writer
}

func defaultMigrateDeps() migrateDeps {
	return migrateDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		openDB:  postgres.Open,
		run:     postgres.RunMigrations,
		out:     os.Stdout,
	}
}

func resolveCommand(args []string) (string, error) {
	if len(args) == 0 {
		return "up", nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("expected a single command, got %d arguments", len(args))
	}
	switch args[0] {
	case "up", "down", "status":
		return args[0], nil
	}
	return "", fmt.Errorf("unknown command %q (use up, down or status)", args[0])
}

func runMigrate(args []string, deps migrateDeps) error {
	def := defaultMigrateDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.openDB == nil {
		deps.openDB = def.openDB
	}
	if deps.run == nil {
		deps.run = def.run
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(deps.out)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(deps.out, "usage: migrate [up|down|status]")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	command, err := resolveCommand(fs.Args())
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()

	db, err := deps.openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := deps.run(context.Background(), db, command); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(deps.out, "migrate %s: ok (%s@%s/%s)\n", command, cfg.Database.User, cfg.Database.Host, cfg.Database.DBName)
	return nil
}

func main() {
	if err := runMigrate(os.Args[1:], defaultMigrateDeps()); err != nil {
		log.Fatal(err)
	}
}
