package main

import (
	"context"
	"fmt"
	"io"

	"github.com/baiirun/deck/internal/chaser"
	"github.com/baiirun/deck/internal/config"
	"github.com/baiirun/deck/internal/seed"
	"github.com/baiirun/deck/internal/tui"
	"github.com/spf13/cobra"
)

var flagForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo roster and tasks into an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runSeed(cmd.Context(), a, cmd.OutOrStdout(), flagForce)
		})
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUICmd(cmd)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ~/.deck/config.yaml",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		if err := config.WriteDefault(path, flagForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&flagForce, "force", false, "replace existing data")
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

// runSeed replaces the stored snapshot with demo data. The store is left
// alone unless it is empty or force is set.
func runSeed(ctx context.Context, a *app, w io.Writer, force bool) error {
	snap := a.store.Snapshot()
	if (len(snap.People) > 0 || len(snap.Tasks) > 0) && !force {
		return fmt.Errorf("store already has %d people and %d tasks (use --force to replace)", len(snap.People), len(snap.Tasks))
	}
	demo := seed.Snapshot(a.store.Now(), nil)
	if err := a.repo.Save(ctx, demo); err != nil {
		return fmt.Errorf("failed to save demo data: %w", err)
	}
	a.log.Info("demo data seeded", "people", len(demo.People), "tasks", len(demo.Tasks), "force", force)
	fmt.Fprintf(w, "Seeded %d people and %d tasks\n", len(demo.People), len(demo.Tasks))
	return nil
}

func runTUICmd(cmd *cobra.Command) error {
	return withApp(cmd.Context(), func(a *app) error {
		return tui.Run(tui.Options{
			Store:      a.store,
			Dispatcher: chaser.NewOutboxDispatcher(a.repo, nil, a.store.Now),
			Refresh:    a.cfg.RefreshInterval(),
			SignOff:    a.cfg.Chaser.Sender,
			Logger:     a.log.Logger,
		})
	})
}
