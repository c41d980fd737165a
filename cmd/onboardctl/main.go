package main

import (
	"fmt"
	"os"

	"github.com/kakpu/IT-onboarding/internal/cli"
	"github.com/kakpu/IT-onboarding/internal/config"
	"github.com/kakpu/IT-onboarding/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := database.Connect(cfg); err != nil {
		return err
	}
	defer database.Close(database.DB)

	return cli.NewRootCmd(&cli.App{DB: database.DB, Out: os.Stdout}).Execute()
}
