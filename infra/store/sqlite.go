// Package store provides the SQLite-backed record store.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/induction/core/model"
	corestore "github.com/kilianp07/induction/core/store"
)

// SQLiteStore persists train records to a SQLite database. The rowid order of
// insertion doubles as the stable batch order the ranking engine relies on
// for tie-breaking.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS trains (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        trainset_id TEXT NOT NULL,
        date TEXT NOT NULL,
        fitness_rs_days INTEGER,
        fitness_sig_days INTEGER,
        fitness_tel_days INTEGER,
        job_card_status TEXT,
        branding_hours INTEGER,
        mileage_km INTEGER,
        cleaning_slots INTEGER,
        stabling_score REAL,
        predicted_score REAL,
        decision TEXT NOT NULL DEFAULT '',
        UNIQUE (trainset_id, date)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Upsert inserts rec or merges its attribute fields into the existing row for
// the same (trainset, date). Decision and predicted score stay untouched on
// conflict.
func (s *SQLiteStore) Upsert(ctx context.Context, rec model.TrainRecord) (model.TrainRecord, error) {
	if err := rec.Validate(); err != nil {
		return model.TrainRecord{}, err
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO trains
          (trainset_id, date, fitness_rs_days, fitness_sig_days, fitness_tel_days,
           job_card_status, branding_hours, mileage_km, cleaning_slots, stabling_score)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (trainset_id, date) DO UPDATE SET
          fitness_rs_days = excluded.fitness_rs_days,
          fitness_sig_days = excluded.fitness_sig_days,
          fitness_tel_days = excluded.fitness_tel_days,
          job_card_status = excluded.job_card_status,
          branding_hours = excluded.branding_hours,
          mileage_km = excluded.mileage_km,
          cleaning_slots = excluded.cleaning_slots,
          stabling_score = excluded.stabling_score`,
		rec.TrainsetID, string(rec.Date), rec.FitnessRSDays, rec.FitnessSigDays,
		rec.FitnessTelDays, string(rec.JobCardStatus), rec.BrandingHours,
		rec.MileageKM, rec.CleaningSlots, rec.StablingScore)
	if err != nil {
		return model.TrainRecord{}, fmt.Errorf("upsert %s on %s: %w", rec.TrainsetID, rec.Date, err)
	}
	return s.get(ctx, rec.Date, rec.TrainsetID)
}

// Day returns every record for the date in insertion order.
func (s *SQLiteStore) Day(ctx context.Context, date model.Date) ([]model.TrainRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectCols+` WHERE date = ? ORDER BY id`, string(date))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.TrainRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ApplyDecisions applies the batch inside one transaction. A change whose row
// does not exist aborts and rolls back the whole batch.
func (s *SQLiteStore) ApplyDecisions(ctx context.Context, date model.Date, changes []corestore.DecisionChange) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, c := range changes {
		var score any
		if c.Score != nil {
			score = *c.Score
		}
		res, err := tx.ExecContext(ctx, `
            UPDATE trains
            SET decision = ?, predicted_score = COALESCE(?, predicted_score)
            WHERE trainset_id = ? AND date = ?`,
			string(c.Decision), score, c.TrainsetID, string(date))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set decision for %s on %s: %w", c.TrainsetID, date, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if n == 0 {
			_ = tx.Rollback()
			return fmt.Errorf("set decision for %s on %s: %w", c.TrainsetID, date, corestore.ErrNotFound)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

const selectCols = `SELECT trainset_id, date, fitness_rs_days, fitness_sig_days,
    fitness_tel_days, job_card_status, branding_hours, mileage_km,
    cleaning_slots, stabling_score, predicted_score, decision FROM trains`

func (s *SQLiteStore) get(ctx context.Context, date model.Date, trainsetID string) (model.TrainRecord, error) {
	row := s.db.QueryRowContext(ctx, selectCols+` WHERE trainset_id = ? AND date = ?`,
		trainsetID, string(date))
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return model.TrainRecord{}, corestore.ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.TrainRecord, error) {
	var (
		rec      model.TrainRecord
		date     string
		jobCard  string
		decision string
		score    sql.NullFloat64
	)
	err := sc.Scan(&rec.TrainsetID, &date, &rec.FitnessRSDays, &rec.FitnessSigDays,
		&rec.FitnessTelDays, &jobCard, &rec.BrandingHours, &rec.MileageKM,
		&rec.CleaningSlots, &rec.StablingScore, &score, &decision)
	if err != nil {
		return model.TrainRecord{}, err
	}
	rec.Date = model.Date(date)
	rec.JobCardStatus = model.JobCardStatus(jobCard)
	rec.Decision = model.Decision(decision)
	if score.Valid {
		v := score.Float64
		rec.PredictedScore = &v
	}
	return rec, nil
}
