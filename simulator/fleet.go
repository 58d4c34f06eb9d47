// Package simulator generates synthetic depot feed rows for load and
// acceptance testing without live depot systems.
package simulator

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/kilianp07/induction/core/ingest"
	"github.com/kilianp07/induction/core/model"
)

// FleetConfig holds parameters for bulk feed generation.
type FleetConfig struct {
	// Size is the number of trainsets, IDs TS-001..TS-NNN.
	Size int
	// OpenJobCardPct is the fraction of trainsets with an open work order.
	OpenJobCardPct float64
	// DirtyRatePct is the fraction of rows with garbage numeric cells,
	// exercising the lenient ingest path.
	DirtyRatePct float64
	// Seed makes generation reproducible. Zero seeds from entropy.
	Seed int64
}

// SetDefaults applies sane defaults.
func (c *FleetConfig) SetDefaults() {
	if c.Size <= 0 {
		c.Size = 25
	}
	if c.OpenJobCardPct == 0 {
		c.OpenJobCardPct = 0.15
	}
}

// GenerateDay creates one feed row per trainset for the given date.
func GenerateDay(cfg FleetConfig, date model.Date) []ingest.RawRow {
	cfg.SetDefaults()
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	rows := make([]ingest.RawRow, 0, cfg.Size)
	for i := 1; i <= cfg.Size; i++ {
		status := "closed"
		if rng.Float64() < cfg.OpenJobCardPct {
			status = "open"
		}
		row := ingest.RawRow{
			TrainsetID:     fmt.Sprintf("TS-%03d", i),
			Date:           string(date),
			FitnessRSDays:  strconv.Itoa(rng.Intn(365)),
			FitnessSigDays: strconv.Itoa(rng.Intn(365)),
			FitnessTelDays: strconv.Itoa(rng.Intn(365)),
			JobCardStatus:  status,
			BrandingHours:  strconv.Itoa(rng.Intn(200)),
			MileageKM:      strconv.Itoa(5000 + rng.Intn(45000)),
			CleaningSlots:  strconv.Itoa(rng.Intn(4)),
			StablingScore:  strconv.FormatFloat(rng.Float64()*10, 'f', 2, 64),
		}
		if cfg.DirtyRatePct > 0 && rng.Float64() < cfg.DirtyRatePct {
			row.MileageKM = "n/a"
			row.StablingScore = ""
		}
		rows = append(rows, row)
	}
	return rows
}
