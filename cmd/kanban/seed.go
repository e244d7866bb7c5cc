package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"kanban/internal/seed"
	"kanban/internal/service"
)

var (
	seedReset bool
	seedFile  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo projects and tasks",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "delete all tasks and projects first")
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture to load instead of the bundled one")
}

func runSeed(cmd *cobra.Command, args []string) error {
	fixture, err := loadFixture()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		logger.Error("unable to open store", slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	res, err := seed.Run(ctx, service.New(store, logger), fixture, seedReset, logger)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Projects: %d\nTasks: %d\n", res.Projects, res.Tasks)
	return nil
}

func loadFixture() (seed.Fixture, error) {
	if seedFile == "" {
		return seed.Default()
	}
	f, err := os.Open(seedFile)
	if err != nil {
		return seed.Fixture{}, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return seed.Load(f)
}
