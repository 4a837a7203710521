package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"go-order-hub/internal/application/facade"
	"go-order-hub/internal/infrastructure/export"
	"go-order-hub/internal/infrastructure/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Format string
	Output string
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every order to a csv or xlsx file",
		Long: `Write every order to a csv or xlsx file.

Example:
  orderhub export --format xlsx
  orderhub export --format csv --output -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", string(export.FormatCSV), "output format (csv|xlsx)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", `output path, "-" for stdout (default orders_<date>.<ext>)`)

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	cfg, log, err := loadRuntime(opts.RootOptions)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	repo, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer repo.Close()

	orders, err := facade.NewOrderApplicationService(repo, silentNotifier{}, log).List(ctx)
	if err != nil {
		return err
	}

	path := opts.Output
	if path == "" {
		path = format.FileName(time.Now())
	}

	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.New().Write(w, format, orders); err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d orders to %s\n", len(orders), path)
	}
	return nil
}
