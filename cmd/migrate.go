package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go-order-hub/internal/application/facade"
	"go-order-hub/internal/infrastructure/store"
)

// silentNotifier drops change notifications; offline commands have no subscribers.
type silentNotifier struct{}

func (silentNotifier) NotifyChange(context.Context) {}

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Backfill missing order statuses and resync the id sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(rootOpts)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repo, err := store.Open(ctx, cfg.Store, log)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer repo.Close()

			result, err := facade.NewOrderApplicationService(repo, silentNotifier{}, log).Backfill(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d orders updated\n",
				result.Message, result.OrdersUpdated, result.TotalOrders)
			return nil
		},
	}
}
