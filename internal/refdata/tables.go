// Package refdata loads the read-only reference tables from CSV files or Postgres.
package refdata

import (
	"context"
	"fmt"
	"sort"
)

// Source loads the reference tables once at startup.
type Source interface {
	Load(ctx context.Context) (*Tables, error)
}

// DiseaseSpecialization maps a disease to the medical field that treats it.
type DiseaseSpecialization struct {
	Disease        string
	Specialization string
}

// Doctor is one row of the doctor directory.
type Doctor struct {
	ID                string
	Name              string
	Specialization    string
	Location          string
	PatientRating     float64
	ExperienceYears   int
	ConsultationFee   float64
	Availability      string
	InsuranceAccepted bool

	// NormalizedRating and NormalizedExperience are pre-scaled to [0,1].
	NormalizedRating     float64
	NormalizedExperience float64
}

// Description is the free-text description of a disease.
type Description struct {
	Disease     string
	Description string
}

// MaxPrecautions is the number of precaution columns in the advice table.
const MaxPrecautions = 4

// Advice holds the raw precaution columns for a disease; empty cells stay empty.
type Advice struct {
	Disease     string
	Precautions [MaxPrecautions]string
}

// Tables is the read-only reference data shared by every request.
// Nothing mutates a Tables value after Validate succeeds.
type Tables struct {
	Specializations []DiseaseSpecialization
	Doctors         []Doctor
	Descriptions    []Description
	Advice          []Advice
}

// Validate checks the invariants the scoring pipeline relies on.
func (t *Tables) Validate() error {
	for i, s := range t.Specializations {
		if s.Disease == "" || s.Specialization == "" {
			return fmt.Errorf("specialization row %d: disease and specialization are required", i+1)
		}
	}
	for i, d := range t.Doctors {
		if d.ID == "" {
			return fmt.Errorf("doctor row %d: id is required", i+1)
		}
		if d.Specialization == "" || d.Location == "" {
			return fmt.Errorf("doctor %s: specialization and location are required", d.ID)
		}
		if d.NormalizedRating < 0 || d.NormalizedRating > 1 {
			return fmt.Errorf("doctor %s: normalized rating %v outside [0,1]", d.ID, d.NormalizedRating)
		}
		if d.NormalizedExperience < 0 || d.NormalizedExperience > 1 {
			return fmt.Errorf("doctor %s: normalized experience %v outside [0,1]", d.ID, d.NormalizedExperience)
		}
	}
	for i, d := range t.Descriptions {
		if d.Disease == "" {
			return fmt.Errorf("description row %d: disease is required", i+1)
		}
	}
	for i, a := range t.Advice {
		if a.Disease == "" {
			return fmt.Errorf("advice row %d: disease is required", i+1)
		}
	}
	return nil
}

// Locations returns the distinct doctor locations, sorted.
func (t *Tables) Locations() []string {
	seen := make(map[string]struct{}, len(t.Doctors))
	for _, d := range t.Doctors {
		seen[d.Location] = struct{}{}
	}
	return sortedKeys(seen)
}

// Diseases returns the distinct diseases that have a specialization, sorted.
func (t *Tables) Diseases() []string {
	seen := make(map[string]struct{}, len(t.Specializations))
	for _, s := range t.Specializations {
		seen[s.Disease] = struct{}{}
	}
	return sortedKeys(seen)
}

// Counts reports row counts per table, keyed by table name.
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		"disease_specialization": len(t.Specializations),
		"doctors":                len(t.Doctors),
		"symptom_description":    len(t.Descriptions),
		"symptom_precaution":     len(t.Advice),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
