package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/induction/app"
	"github.com/kilianp07/induction/config"
	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/pkg/export"
)

var (
	exportDate   string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a day's decisions as JSON or CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", string(model.Today()), "service date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *app.Service, cfg *config.Config) error {
		date, err := model.ParseDate(exportDate)
		if err != nil {
			return err
		}
		recs, err := svc.Store.Day(ctx, date)
		if err != nil {
			return err
		}
		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		switch exportFormat {
		case "json":
			return export.WriteJSON(w, recs)
		case "csv":
			return export.WriteCSV(w, recs)
		default:
			return fmt.Errorf("unsupported format %s", exportFormat)
		}
	})
}
