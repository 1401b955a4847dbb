package doctors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/carepath/internal/apperrors"
	"github.com/Skufu/carepath/internal/refdata"
)

func directoryFixture() *refdata.Tables {
	return &refdata.Tables{
		Specializations: []refdata.DiseaseSpecialization{
			{Disease: "Flu", Specialization: "Infectious Disease"},
			{Disease: "Migraine", Specialization: "Neurology"},
			{Disease: "Common Cold", Specialization: GeneralMedicine},
			{Disease: "Migraine", Specialization: "Psychiatry"},
		},
		Doctors: []refdata.Doctor{
			{ID: "GM1", Name: "Dr. Ada", Specialization: GeneralMedicine, Location: "Boston", NormalizedRating: 0.6, NormalizedExperience: 0.5, ExperienceYears: 10, InsuranceAccepted: true},
			{ID: "N1", Name: "Dr. Ben", Specialization: "Neurology", Location: "Boston", NormalizedRating: 0.7, NormalizedExperience: 0.9},
			{ID: "GM2", Name: "Dr. Cy", Specialization: GeneralMedicine, Location: "Boston", NormalizedRating: 0.9, NormalizedExperience: 0.2, ConsultationFee: 120},
			{ID: "N2", Name: "Dr. Dee", Specialization: "Neurology", Location: "Boston", NormalizedRating: 0.9, NormalizedExperience: 1.0},
			{ID: "N3", Name: "Dr. Eve", Specialization: "Neurology", Location: "Chicago", NormalizedRating: 1.0, NormalizedExperience: 1.0},
			{ID: "ID1", Name: "Dr. Fay", Specialization: "Infectious Disease", Location: "Denver", NormalizedRating: 0.5, NormalizedExperience: 0.5},
		},
	}
}

func ids(recs []Recommendation) []string {
	out := []string{}
	for _, r := range recs {
		out = append(out, r.DoctorID)
	}
	return out
}

func TestRecommendSpecialistsSortedByScore(t *testing.T) {
	res, err := NewRecommender(directoryFixture()).Recommend("Migraine", "Boston")
	require.NoError(t, err)

	assert.False(t, res.Fallback)
	assert.Equal(t, "Neurology", res.Specialization)
	assert.Equal(t, []string{"N2", "N1"}, ids(res.Doctors))
	assert.Equal(t, 92.0, res.Doctors[0].Score)
	assert.Equal(t, 74.0, res.Doctors[1].Score)
}

func TestRecommendFallsBackToGeneralMedicine(t *testing.T) {
	res, err := NewRecommender(directoryFixture()).Recommend("Flu", "Boston")
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, GeneralMedicine, res.Specialization)
	require.Len(t, res.Doctors, 2)
	assert.Equal(t, []string{"GM2", "GM1"}, ids(res.Doctors))
	assert.Equal(t, 76.0, res.Doctors[0].Score)
	assert.Equal(t, 58.0, res.Doctors[1].Score)
	assert.Equal(t, 120.0, res.Doctors[0].Fee)
	assert.True(t, res.Doctors[1].Insurance)
	assert.Equal(t, 10, res.Doctors[1].ExperienceYears)
}

func TestRecommendGeneralMedicineDiseaseIsNotAFallback(t *testing.T) {
	res, err := NewRecommender(directoryFixture()).Recommend("Common Cold", "Boston")
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Len(t, res.Doctors, 2)
}

func TestRecommendUsesFirstSpecializationRow(t *testing.T) {
	res, err := NewRecommender(directoryFixture()).Recommend("Migraine", "Chicago")
	require.NoError(t, err)
	assert.Equal(t, "Neurology", res.Specialization)
	assert.Equal(t, []string{"N3"}, ids(res.Doctors))
	assert.Equal(t, 100.0, res.Doctors[0].Score)
}

func TestRecommendErrors(t *testing.T) {
	rec := NewRecommender(directoryFixture())

	tests := []struct {
		name      string
		disease   string
		location  string
		notFound  bool
		errorText string
	}{
		{"missing disease", "", "Boston", false, MsgMissingInput},
		{"blank location", "Flu", "   ", false, MsgMissingInput},
		{"unknown disease", "UnknownDisease123", "Boston", true, MsgNoSpecialization},
		{"no doctors after fallback", "Flu", "Seattle", true, MsgNoDoctors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rec.Recommend(tt.disease, tt.location)
			require.Error(t, err)
			assert.Equal(t, tt.notFound, apperrors.IsNotFound(err))
			assert.Equal(t, !tt.notFound, apperrors.IsInvalidInput(err))
			assert.Equal(t, tt.errorText, apperrors.From(err).PublicMessage())
		})
	}
}

func TestRecommendOrderingUsesUnroundedScore(t *testing.T) {
	tables := &refdata.Tables{
		Specializations: []refdata.DiseaseSpecialization{{Disease: "X", Specialization: "S"}},
		Doctors: []refdata.Doctor{
			{ID: "low", Specialization: "S", Location: "L", NormalizedRating: 0.50001},
			{ID: "high", Specialization: "S", Location: "L", NormalizedRating: 0.50004},
			{ID: "tie", Specialization: "S", Location: "L", NormalizedRating: 0.50001},
		},
	}
	res, err := NewRecommender(tables).Recommend("X", "L")
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "low", "tie"}, ids(res.Doctors))
	for _, d := range res.Doctors {
		assert.Equal(t, 40.0, d.Score)
	}
}

func TestRecommendScoresStayInRange(t *testing.T) {
	res, err := NewRecommender(directoryFixture()).Recommend("Migraine", "Boston")
	require.NoError(t, err)
	for i, d := range res.Doctors {
		assert.GreaterOrEqual(t, d.Score, 0.0)
		assert.LessOrEqual(t, d.Score, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Doctors[i-1].Score, d.Score)
		}
	}
}

func TestRecommendIsIdempotent(t *testing.T) {
	rec := NewRecommender(directoryFixture())
	first, err := rec.Recommend("Flu", "Boston")
	require.NoError(t, err)
	second, err := rec.Recommend("Flu", "Boston")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDirectoryWhere(t *testing.T) {
	dir := NewDirectory(directoryFixture().Doctors)
	assert.Len(t, dir.Where(ByLocation("Boston")), 4)
	assert.Len(t, dir.Where(All(BySpecialization("Neurology"), ByLocation("Boston"))), 2)
	assert.Empty(t, dir.Where(ByLocation("Nowhere")))
	assert.Len(t, dir.Where(All()), 6)
}
