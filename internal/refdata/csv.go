package refdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names inside the data directory.
const (
	SpecializationFile = "disease_specialization.csv"
	DoctorsFile        = "doctors.csv"
	DescriptionFile    = "symptom_description.csv"
	PrecautionFile     = "symptom_precaution.csv"
)

// CSVSource reads the reference tables from CSV exports in Dir.
type CSVSource struct {
	Dir string
}

func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{Dir: dir}
}

func (s *CSVSource) Load(_ context.Context) (*Tables, error) {
	tables := &Tables{}
	var err error

	if tables.Specializations, err = s.loadSpecializations(); err != nil {
		return nil, err
	}
	if tables.Doctors, err = s.loadDoctors(); err != nil {
		return nil, err
	}
	if tables.Descriptions, err = s.loadDescriptions(); err != nil {
		return nil, err
	}
	if tables.Advice, err = s.loadAdvice(); err != nil {
		return nil, err
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *CSVSource) loadSpecializations() ([]DiseaseSpecialization, error) {
	tbl, err := readTable(filepath.Join(s.Dir, SpecializationFile))
	if err != nil {
		return nil, err
	}
	if err := tbl.require("Disease", "Specialization"); err != nil {
		return nil, err
	}
	out := make([]DiseaseSpecialization, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		out = append(out, DiseaseSpecialization{
			Disease:        tbl.cell(row, "Disease"),
			Specialization: tbl.cell(row, "Specialization"),
		})
	}
	return out, nil
}

func (s *CSVSource) loadDoctors() ([]Doctor, error) {
	tbl, err := readTable(filepath.Join(s.Dir, DoctorsFile))
	if err != nil {
		return nil, err
	}
	if err := tbl.require(
		"Doctor ID", "Doctor Name", "Specialization", "Location",
		"normalized weighted average", "normalized experience",
	); err != nil {
		return nil, err
	}

	out := make([]Doctor, 0, len(tbl.rows))
	for i, row := range tbl.rows {
		line := i + 2
		d := Doctor{
			ID:                tbl.cell(row, "Doctor ID"),
			Name:              tbl.cell(row, "Doctor Name"),
			Specialization:    tbl.cell(row, "Specialization"),
			Location:          tbl.cell(row, "Location"),
			Availability:      tbl.cell(row, "Availability"),
			InsuranceAccepted: parseFlag(tbl.cell(row, "Insurance Accepted")),
		}
		if d.PatientRating, err = parseFloat(tbl.cell(row, "Patient Rating")); err != nil {
			return nil, fmt.Errorf("%s line %d: patient rating: %w", DoctorsFile, line, err)
		}
		if d.ExperienceYears, err = parseInt(tbl.cell(row, "Experience (Years)")); err != nil {
			return nil, fmt.Errorf("%s line %d: experience: %w", DoctorsFile, line, err)
		}
		if d.ConsultationFee, err = parseFloat(tbl.cell(row, "Consultation Fee ($)")); err != nil {
			return nil, fmt.Errorf("%s line %d: fee: %w", DoctorsFile, line, err)
		}
		if d.NormalizedRating, err = strconv.ParseFloat(tbl.cell(row, "normalized weighted average"), 64); err != nil {
			return nil, fmt.Errorf("%s line %d: normalized weighted average: %w", DoctorsFile, line, err)
		}
		if d.NormalizedExperience, err = strconv.ParseFloat(tbl.cell(row, "normalized experience"), 64); err != nil {
			return nil, fmt.Errorf("%s line %d: normalized experience: %w", DoctorsFile, line, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *CSVSource) loadDescriptions() ([]Description, error) {
	tbl, err := readTable(filepath.Join(s.Dir, DescriptionFile))
	if err != nil {
		return nil, err
	}
	if err := tbl.require("Disease", "Description"); err != nil {
		return nil, err
	}
	out := make([]Description, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		out = append(out, Description{
			Disease:     tbl.cell(row, "Disease"),
			Description: tbl.cell(row, "Description"),
		})
	}
	return out, nil
}

func (s *CSVSource) loadAdvice() ([]Advice, error) {
	tbl, err := readTable(filepath.Join(s.Dir, PrecautionFile))
	if err != nil {
		return nil, err
	}
	if err := tbl.require("Disease"); err != nil {
		return nil, err
	}
	out := make([]Advice, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		a := Advice{Disease: tbl.cell(row, "Disease")}
		for i := range a.Precautions {
			a.Precautions[i] = tbl.cell(row, fmt.Sprintf("Precaution_%d", i+1))
		}
		out = append(out, a)
	}
	return out, nil
}

// table is a parsed CSV file with columns resolved by header name.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), errors.New("empty file"))
	}

	columns := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		columns[headerKey(cell)] = i
	}
	return &table{name: filepath.Base(path), columns: columns, rows: rows[1:]}, nil
}

func (t *table) require(names ...string) error {
	for _, name := range names {
		if _, ok := t.columns[headerKey(name)]; !ok {
			return fmt.Errorf("%s: missing column %q", t.name, name)
		}
	}
	return nil
}

func (t *table) cell(row []string, name string) string {
	idx, ok := t.columns[headerKey(name)]
	if !ok || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

func headerKey(v string) string {
	return strings.ToLower(cleanCell(v))
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

func parseFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimPrefix(v, "$"), 64)
}

func parseInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseFlag(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}
