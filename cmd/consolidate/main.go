// Command consolidate merges duplicate contributor profiles from a YAML plan.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pubops-backend/internal/config"
	"pubops-backend/internal/shared"
	"pubops-backend/pkg/container"
	"pubops-backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		planPath string
		dryRun   bool
		actorID  int64
	)

	cmd := &cobra.Command{
		Use:   "consolidate --plan <file>",
		Short: "Merge duplicate contributors into their preferred profile",
		Long: `Merge duplicate contributors listed in a YAML plan.

Each pair moves the role assignments and history of every merge_from
contributor onto the preferred one, then deletes the duplicate. Pairs run
one transaction each; a failing pair stops the run and earlier pairs stay.

Flags:
  --plan      Path to the YAML plan (required)
  --actor-id  User recorded as the author of role changes (required)
  --dry-run   Execute every pair and roll it back, printing what would happen`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := loadPlan(planPath)
			if err != nil {
				return err
			}

			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger.Init(cfg.App.Environment, cfg.App.LogLevel)

			c, err := container.NewConsolidationContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Cleanup()

			report, err := c.Consolidator.Run(cmd.Context(), shared.Actor{ID: actorID}, plan, dryRun)
			if report != nil {
				if perr := printReport(cmd.OutOrStdout(), report); perr != nil {
					log.Warn().Err(perr).Msg("failed to print report")
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to the YAML merge plan")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "roll every pair back after computing its decisions")
	cmd.Flags().Int64Var(&actorID, "actor-id", 0, "user id recorded on role changes")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("actor-id")
	return cmd
}
