// Package service runs the symptom-to-doctor pipeline over one loaded model
// and one set of reference tables.
package service

import (
	"context"
	"log/slog"

	"github.com/Skufu/carepath/internal/advisory"
	"github.com/Skufu/carepath/internal/apperrors"
	"github.com/Skufu/carepath/internal/classifier"
	"github.com/Skufu/carepath/internal/doctors"
	"github.com/Skufu/carepath/internal/encoder"
	"github.com/Skufu/carepath/internal/metrics"
	"github.com/Skufu/carepath/internal/ranker"
	"github.com/Skufu/carepath/internal/refdata"
)

// Prediction is the response of a symptom prediction.
type Prediction struct {
	TopDiseases []ranker.DiseaseScore `json:"top_diseases"`
}

// Service wires the scoring pipeline over the shared, read-only model and tables.
type Service struct {
	encoder     *encoder.Encoder
	ranker      *ranker.Ranker
	advisories  *advisory.Resolver
	recommender *doctors.Recommender
	tables      *refdata.Tables
	logger      *slog.Logger
}

func New(model classifier.Classifier, tables *refdata.Tables, logger *slog.Logger) *Service {
	return &Service{
		encoder:     encoder.New(model.FeatureNames()),
		ranker:      ranker.New(model),
		advisories:  advisory.NewResolver(tables),
		recommender: doctors.NewRecommender(tables),
		tables:      tables,
		logger:      logger,
	}
}

// Predict encodes symptoms and returns the top candidate diseases.
func (s *Service) Predict(ctx context.Context, symptoms []string) (Prediction, error) {
	vec, err := s.encoder.Encode(symptoms)
	if err != nil {
		metrics.RecordPrediction("invalid")
		return Prediction{}, err
	}

	top, err := s.ranker.Rank(ctx, vec.Values)
	if err != nil {
		metrics.RecordPrediction("error")
		return Prediction{}, err
	}

	metrics.RecordPrediction("ok")
	s.logger.Debug("prediction completed",
		"supplied", len(symptoms),
		"matched", vec.Active,
		"top_disease", top[0].Disease,
	)
	return Prediction{TopDiseases: top}, nil
}

// Advisories returns descriptions and precautions for the given diseases.
func (s *Service) Advisories(diseases []string) []advisory.Record {
	return s.advisories.Resolve(diseases)
}

// RecommendDoctors ranks doctors for a disease in a location.
func (s *Service) RecommendDoctors(disease, location string) ([]doctors.Recommendation, error) {
	res, err := s.recommender.Recommend(disease, location)
	if err != nil {
		if apperrors.IsNotFound(err) {
			metrics.RecordRecommendation(metrics.OutcomeNone)
		}
		return nil, err
	}

	outcome := metrics.OutcomeSpecialist
	if res.Fallback {
		outcome = metrics.OutcomeFallback
	}
	metrics.RecordRecommendation(outcome)
	s.logger.Debug("doctors recommended",
		"disease", disease,
		"location", location,
		"specialization", res.Specialization,
		"fallback", res.Fallback,
		"count", len(res.Doctors),
	)
	return res.Doctors, nil
}

// Symptoms lists the known symptoms in display form.
func (s *Service) Symptoms() []string { return s.encoder.KnownSymptoms() }

// Diseases lists the diseases a doctor can be recommended for.
func (s *Service) Diseases() []string { return s.tables.Diseases() }

// Locations lists the locations present in the doctor directory.
func (s *Service) Locations() []string { return s.tables.Locations() }
