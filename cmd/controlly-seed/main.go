package main

import (
	"context"
	"flag"
	"os"
	"time"

	"controlly/internal/cli"
	"controlly/internal/log"
	"controlly/internal/seed"
)

func main() {
	var (
		counts   seed.Counts
		seedFlag int64
	)
	flag.IntVar(&counts.Cards, "cards", 3, "number of cards to create")
	flag.IntVar(&counts.Transactions, "transactions", 120, "number of transactions to create")
	flag.IntVar(&counts.Goals, "goals", 4, "number of goals to create")
	flag.IntVar(&counts.Months, "months", 6, "how many months back transaction dates reach")
	flag.Int64Var(&seedFlag, "seed", 0, "random seed, 0 picks one")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	app, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	gen := seed.NewGenerator(app.Transactions, app.Cards, app.Goals, seedFlag, logger, nil)
	_, err = gen.Run(ctx, counts)
	if closeErr := app.Close(); closeErr != nil {
		logger.Error("Failed to release backend", log.FieldError, closeErr)
	}
	if err != nil {
		logger.Error("Seeding failed", log.FieldError, err)
		os.Exit(1)
	}
}
