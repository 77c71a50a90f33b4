package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gokatarajesh/sdk-quiz/internal/cli"
	"github.com/gokatarajesh/sdk-quiz/internal/config"
	"github.com/gokatarajesh/sdk-quiz/internal/logging"
	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/scoring"
	"github.com/gokatarajesh/sdk-quiz/internal/results"
)

func main() {
	err := run()
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "\nquiz: interrupted")
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "quiz: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode is 130 for an interrupt, as shells report SIGINT, and 1 for other failures.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

func run() error {
	if os.Getenv("APP_ENV") != "production" {
		// Missing file is fine; the CLI has defaults for everything.
		_ = godotenv.Load("configs/.env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadCLI(ctx)
	if err != nil {
		return err
	}
	bank := flag.String("bank", cfg.Bank, "question bank to open (agents, runner, ...)")
	flag.Parse()

	logger := logging.New(logging.Options{App: "sdk-quiz", Env: cfg.Env, Level: cfg.LogLevel, Out: os.Stderr})

	catalog, err := question.Default()
	if err != nil {
		return err
	}

	selector := quiz.NewSelector()
	if cfg.Seed != 0 {
		selector = quiz.NewSeededSelector(cfg.Seed)
	}

	opts := cli.Options{
		Catalog:  catalog,
		Selector: selector,
		Engine:   scoring.NewEngine(scoring.ConfigFor(cfg.Weighting)),
		Player:   cfg.Player,
		Logger:   logger,
	}
	if cfg.HistoryPath != "" {
		store, err := results.OpenSQLite(ctx, cfg.HistoryPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.History = store
	}

	return cli.New(opts).Run(ctx, os.Stdin, os.Stdout, *bank)
}
