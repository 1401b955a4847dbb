package refdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

// PostgresSource reads the reference tables from the reference schema.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) Load(ctx context.Context) (*Tables, error) {
	tables := &Tables{}
	var err error

	if tables.Specializations, err = s.loadSpecializations(ctx); err != nil {
		return nil, err
	}
	if tables.Doctors, err = s.loadDoctors(ctx); err != nil {
		return nil, err
	}
	if tables.Descriptions, err = s.loadDescriptions(ctx); err != nil {
		return nil, err
	}
	if tables.Advice, err = s.loadAdvice(ctx); err != nil {
		return nil, err
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *PostgresSource) loadSpecializations(ctx context.Context) ([]DiseaseSpecialization, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT disease, specialization
		FROM reference.disease_specialization
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query specializations: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (DiseaseSpecialization, error) {
		var ds DiseaseSpecialization
		err := row.Scan(&ds.Disease, &ds.Specialization)
		return ds, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan specializations: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) loadDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT doctor_id, doctor_name, specialization, location,
			patient_rating, experience_years, consultation_fee,
			availability, insurance_accepted,
			normalized_rating, normalized_experience
		FROM reference.doctors
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Doctor, error) {
		var d Doctor
		err := row.Scan(
			&d.ID, &d.Name, &d.Specialization, &d.Location,
			&d.PatientRating, &d.ExperienceYears, &d.ConsultationFee,
			&d.Availability, &d.InsuranceAccepted,
			&d.NormalizedRating, &d.NormalizedExperience,
		)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan doctors: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) loadDescriptions(ctx context.Context) ([]Description, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT disease, description
		FROM reference.symptom_description
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query descriptions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Description, error) {
		var d Description
		err := row.Scan(&d.Disease, &d.Description)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan descriptions: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) loadAdvice(ctx context.Context) ([]Advice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT disease,
			COALESCE(precaution_1, ''), COALESCE(precaution_2, ''),
			COALESCE(precaution_3, ''), COALESCE(precaution_4, '')
		FROM reference.symptom_precaution
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query precautions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Advice, error) {
		var a Advice
		err := row.Scan(&a.Disease, &a.Precautions[0], &a.Precautions[1], &a.Precautions[2], &a.Precautions[3])
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan precautions: %w", err)
	}
	return out, nil
}
