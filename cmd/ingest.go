package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/induction/app"
	"github.com/kilianp07/induction/config"
	"github.com/kilianp07/induction/core/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <csv-file>",
	Short: "Load a depot feed CSV into the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *app.Service, cfg *config.Config) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open feed: %w", err)
		}
		defer func() { _ = f.Close() }()

		rows, err := readFeedCSV(f)
		if err != nil {
			return err
		}
		recs, err := svc.Normalizer.NormalizeBatch(ctx, rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ingested %d rows (%d dropped)\n", len(recs), len(rows)-len(recs))
		return nil
	})
}

// readFeedCSV decodes a headered CSV into raw feed rows. Column names match
// the JSON field names of the HTTP and MQTT feeds; unknown columns are
// ignored and missing ones default to empty.
func readFeedCSV(r io.Reader) ([]ingest.RawRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	cell := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	var rows []ingest.RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, ingest.RawRow{
			TrainsetID:     cell(rec, "trainset_id"),
			Date:           cell(rec, "date"),
			FitnessRSDays:  cell(rec, "fitness_rs_days"),
			FitnessSigDays: cell(rec, "fitness_sig_days"),
			FitnessTelDays: cell(rec, "fitness_tel_days"),
			JobCardStatus:  cell(rec, "job_card_status"),
			BrandingHours:  cell(rec, "branding_hours"),
			MileageKM:      cell(rec, "mileage_km"),
			CleaningSlots:  cell(rec, "cleaning_slots"),
			StablingScore:  cell(rec, "stabling_score"),
		})
	}
	return rows, nil
}
