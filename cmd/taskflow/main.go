package main

import (
	"fmt"
	"os"

	"github.com/tgienger/taskflow/internal/config"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/log"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("taskflow %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run provisions the store and reports what it holds
func run() error {
	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		return err
	}

	logger, logCloser, err := log.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	database, err := db.New(cfg.Store.Path, db.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	projects, err := database.ProjectCount()
	if err != nil {
		return err
	}
	tasks, err := database.TaskCount()
	if err != nil {
		return err
	}
	tags, err := database.TagCount()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d projects, %d tasks, %d tags\n", database.Path(), projects, tasks, tags)
	return nil
}
