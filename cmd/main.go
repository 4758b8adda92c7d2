package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/cli"
	"github.com/meghashyamc/wheresthat-client/config"
	"github.com/meghashyamc/wheresthat-client/db/kvdb"
	"github.com/meghashyamc/wheresthat-client/history"
	"github.com/meghashyamc/wheresthat-client/logger"
	"github.com/meghashyamc/wheresthat-client/validation"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
		return err
	}

	log := logger.New(cfg.GetLogLevel())

	kvDB, err := kvdb.New(log, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open history database: %s\n", err)
		return err
	}
	defer kvDB.Close()

	validator, err := validation.New(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create validator: %s\n", err)
		return err
	}

	client, err := api.NewClient(log, cfg.GetBaseURL(), &http.Client{Timeout: cfg.GetRequestTimeout()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return err
	}

	rootCmd := cli.NewRootCommand(cli.Dependencies{
		Logger:       log,
		Client:       client,
		Validator:    validator,
		Paths:        history.New(log, kvDB, history.PathsList),
		Queries:      history.New(log, kvDB, history.QueriesList),
		PollInterval: cfg.GetPollInterval(),
	}, os.Stdout)

	return rootCmd.ExecuteContext(context.Background())
}
