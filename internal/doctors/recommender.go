// Package doctors filters the doctor directory and ranks doctors for a
// disease and location, falling back to General Medicine.
package doctors

import (
	"sort"
	"strings"

	"github.com/Skufu/carepath/internal/apperrors"
	"github.com/Skufu/carepath/internal/ranker"
	"github.com/Skufu/carepath/internal/refdata"
)

// GeneralMedicine is searched when no specialist practises in the location.
const GeneralMedicine = "General Medicine"

const (
	RatingWeight     = 0.8
	ExperienceWeight = 0.2
)

const (
	MsgMissingInput     = "Disease or location not provided"
	MsgNoSpecialization = "No specialization found for this disease"
	MsgNoDoctors        = "No doctors available for the given specialization and location."
)

// Recommendation is the display projection of a ranked doctor.
type Recommendation struct {
	DoctorID        string  `json:"doctor_id"`
	DoctorName      string  `json:"doctor_name"`
	Specialization  string  `json:"specialization"`
	PatientRating   float64 `json:"patient_rating"`
	ExperienceYears int     `json:"experience_years"`
	Fee             float64 `json:"fee"`
	Availability    string  `json:"availability"`
	Insurance       bool    `json:"insurance"`
	// Score is the weighted score as a 0-100 percentage, 2 decimals.
	Score float64 `json:"score"`
}

// Result carries the ranked doctors and how the specialization was resolved.
type Result struct {
	Specialization string
	Fallback       bool
	Doctors        []Recommendation
}

// Recommender resolves a disease to a specialization and ranks the doctors
// practising it in a location.
type Recommender struct {
	specializations map[string]string
	directory       Directory
}

func NewRecommender(tables *refdata.Tables) *Recommender {
	specializations := make(map[string]string, len(tables.Specializations))
	for _, s := range tables.Specializations {
		if _, exists := specializations[s.Disease]; !exists {
			specializations[s.Disease] = s.Specialization
		}
	}
	return &Recommender{
		specializations: specializations,
		directory:       NewDirectory(tables.Doctors),
	}
}

// Score is the unrounded weighted score in [0,1].
func Score(d refdata.Doctor) float64 {
	return RatingWeight*d.NormalizedRating + ExperienceWeight*d.NormalizedExperience
}

// Recommend ranks doctors for disease in location by descending score,
// falling back to General Medicine when no specialist is available there.
func (r *Recommender) Recommend(disease, location string) (Result, error) {
	disease = strings.TrimSpace(disease)
	location = strings.TrimSpace(location)
	if disease == "" || location == "" {
		return Result{}, apperrors.InvalidInput(MsgMissingInput)
	}

	specialization, ok := r.specializations[disease]
	if !ok {
		return Result{}, apperrors.NotFound(MsgNoSpecialization)
	}

	result := Result{Specialization: specialization}
	matches := r.directory.Where(All(BySpecialization(specialization), ByLocation(location)))
	if len(matches) == 0 && specialization != GeneralMedicine {
		matches = r.directory.Where(All(BySpecialization(GeneralMedicine), ByLocation(location)))
		result.Specialization = GeneralMedicine
		result.Fallback = true
	}
	if len(matches) == 0 {
		return Result{}, apperrors.NotFound(MsgNoDoctors)
	}

	// ordered on the unrounded score
	sort.SliceStable(matches, func(i, j int) bool {
		return Score(matches[i]) > Score(matches[j])
	})

	result.Doctors = make([]Recommendation, 0, len(matches))
	for _, d := range matches {
		result.Doctors = append(result.Doctors, Recommendation{
			DoctorID:        d.ID,
			DoctorName:      d.Name,
			Specialization:  d.Specialization,
			PatientRating:   d.PatientRating,
			ExperienceYears: d.ExperienceYears,
			Fee:             d.ConsultationFee,
			Availability:    d.Availability,
			Insurance:       d.InsuranceAccepted,
			Score:           ranker.Percent(Score(d)),
		})
	}
	return result, nil
}
