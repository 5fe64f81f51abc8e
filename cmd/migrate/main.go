package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"biolink/internal/engine/migration"
	"biolink/internal/pkg/logger"
	"biolink/internal/platform/config"
	"biolink/internal/platform/store"
)

var (
	configPath   string
	apply        bool
	uppercaseIDs bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "biolink-migrate",
	Short: "Normalise tenant keys to uppercase slugs",
	Long: `Rewrites every tenant:{slug} record to tenant:{SLUG}. With --uppercase-ids the
tenant id is uppercased too, and the config, analytics and user records that
reference it are moved along.

Without --apply the tool only logs what it would do. Runs are idempotent:
re-running after a completed or interrupted apply finishes the remaining work.
Per-tenant failures are logged and do not change the exit code.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Logging)

		kv, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
		}
		defer kv.Close()

		if !apply {
			log.Info().Msg("Dry run: no changes will be written, pass --apply to migrate")
		}

		sum, err := migration.New(kv, log.Logger).Run(cmd.Context(), migration.Options{
			Apply:        apply,
			UppercaseIDs: uppercaseIDs,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"tenants moved: %d, configs moved: %d, analytics moved: %d, users updated: %d, conflicts: %d, errors: %d\n",
			sum.TenantsMoved, sum.ConfigsMoved, sum.AnalyticsMoved, sum.UsersUpdated, sum.Conflicts, sum.Errors)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "Path to config file")
	rootCmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	rootCmd.Flags().BoolVar(&uppercaseIDs, "uppercase-ids", false, "Also uppercase tenant ids and move dependent records")
}
