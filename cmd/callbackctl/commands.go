package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paycallback/internal/app"
	"paycallback/internal/bootstrap"
	"paycallback/internal/config"
	"paycallback/internal/models"
	"paycallback/internal/payment"
	"paycallback/internal/repository"
)

func openDatabase() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg, err := config.LoadDatabaseOnly()
			if err != nil {
				return err
			}
			db, err := config.NewDatabase(dbCfg)
			if err != nil {
				return err
			}
			if err := bootstrap.MigrateAndSeed(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema migration and default seed completed")
			return nil
		},
	}
}

func orderCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "order [order-id]",
		Short: "Show an order and its latest callback deliveries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			order, err := repository.NewOrderRepository(db).FindByOrderID(ctx, args[0])
			if err != nil {
				return err
			}
			logs, err := repository.NewCallbackLogRepository(db).FindByOrderID(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, models.OrderView{Order: order, Callbacks: logs})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of deliveries to show")
	return cmd
}

func replayCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "replay [callback-log-id]",
		Short: "Process a stored delivery again",
		Long: `Replay re-runs a stored callback delivery through the full pipeline:
authentication, out-of-band confirmation and the conditional order update.
Replaying a delivery that was already applied changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid callback log id %q", args[0])
			}

			logger := zap.NewNop()
			if verbose {
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
			}

			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			components, err := app.Build(cfg, db, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			ack, err := components.Replay(cmd.Context(), uint(id))
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{"http_status": ack.HTTPStatus, "body": ack.Body})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the pipeline steps")
	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the callback routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := payment.NewRegistry(config.PaymentConfig{}, nil)
			for _, name := range append(registry.Names(), payment.DonationRoute) {
				fmt.Fprintf(cmd.OutOrStdout(), "POST /callback/%s\n", name)
			}
			return nil
		},
	}
}

func donateRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "donate-rate [percent]",
		Short: "Show or set the percentage credited per donated unit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			return runDonateRate(cmd, repository.NewSettingRepository(db), args)
		},
	}
}

func runDonateRate(cmd *cobra.Command, settings *repository.SettingRepository, args []string) error {
	ctx := cmd.Context()
	if len(args) == 1 {
		rate, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || rate <= 0 {
			return fmt.Errorf("invalid donate rate %q", args[0])
		}
		if err := settings.SetDonateRate(ctx, rate); err != nil {
			return err
		}
	}
	rate, err := settings.GetDonateRate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "donate rate: %d%%\n", rate)
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
