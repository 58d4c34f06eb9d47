package cmd

import (
	"strings"
	"testing"
)

func TestReadFeedCSV(t *testing.T) {
	data := `trainset_id,date,fitness_rs_days,job_card_status,mileage_km,extra
TS-01,2025-06-01,40,closed,12000,ignored
TS-02,2025-06-01,35,open,15000,ignored
`
	rows, err := readFeedCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].TrainsetID != "TS-01" || rows[0].FitnessRSDays != "40" || rows[0].MileageKM != "12000" {
		t.Fatalf("row 0 mismatch: %+v", rows[0])
	}
	if rows[1].JobCardStatus != "open" {
		t.Fatalf("row 1 mismatch: %+v", rows[1])
	}
	// Columns absent from the file come back empty for lenient coercion.
	if rows[0].StablingScore != "" {
		t.Fatalf("missing column should be empty: %+v", rows[0])
	}
}

func TestReadFeedCSVEmptyFile(t *testing.T) {
	if _, err := readFeedCSV(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for missing header")
	}
}
