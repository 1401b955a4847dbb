package refdata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed copies tables into the reference schema when the doctor directory is
// still empty. A populated database is left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool, tables *Tables, logger *slog.Logger) error {
	var existing int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM reference.doctors`).Scan(&existing); err != nil {
		return fmt.Errorf("count doctors: %w", err)
	}
	if existing > 0 {
		logger.Info("reference data already seeded", "doctors", existing)
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range seedCopies(tables) {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"reference", c.table}, c.columns, pgx.CopyFromRows(c.rows))
		if err != nil {
			return fmt.Errorf("seed %s: %w", c.table, err)
		}
		logger.Info("reference table seeded", "table", c.table, "rows", n)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

type seedCopy struct {
	table   string
	columns []string
	rows    [][]any
}

// seedCopies lays out each table in insertion order so the serial keys keep file order.
func seedCopies(t *Tables) []seedCopy {
	specs := seedCopy{table: "disease_specialization", columns: []string{"disease", "specialization"}}
	for _, s := range t.Specializations {
		specs.rows = append(specs.rows, []any{s.Disease, s.Specialization})
	}

	docs := seedCopy{table: "doctors", columns: []string{
		"doctor_id", "doctor_name", "specialization", "location",
		"patient_rating", "experience_years", "consultation_fee",
		"availability", "insurance_accepted",
		"normalized_rating", "normalized_experience",
	}}
	for _, d := range t.Doctors {
		docs.rows = append(docs.rows, []any{
			d.ID, d.Name, d.Specialization, d.Location,
			d.PatientRating, d.ExperienceYears, d.ConsultationFee,
			d.Availability, d.InsuranceAccepted,
			d.NormalizedRating, d.NormalizedExperience,
		})
	}

	descs := seedCopy{table: "symptom_description", columns: []string{"disease", "description"}}
	for _, d := range t.Descriptions {
		descs.rows = append(descs.rows, []any{d.Disease, d.Description})
	}

	advice := seedCopy{table: "symptom_precaution", columns: []string{
		"disease", "precaution_1", "precaution_2", "precaution_3", "precaution_4",
	}}
	for _, a := range t.Advice {
		advice.rows = append(advice.rows, []any{a.Disease, a.Precautions[0], a.Precautions[1], a.Precautions[2], a.Precautions[3]})
	}

	return []seedCopy{specs, docs, descs, advice}
}
