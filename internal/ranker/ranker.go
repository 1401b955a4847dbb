// Package ranker orders a classifier's class probabilities into the top
// candidate diseases.
package ranker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Skufu/carepath/internal/apperrors"
	"github.com/Skufu/carepath/internal/classifier"
)

// TopK is the number of candidate diseases returned per prediction.
const TopK = 5

// DiseaseScore is a candidate disease with its probability as a 0-100
// percentage rounded to two decimals.
type DiseaseScore struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
}

// Ranker turns a classifier distribution into the top candidates.
type Ranker struct {
	model classifier.Classifier
	k     int
}

func New(model classifier.Classifier) *Ranker {
	return &Ranker{model: model, k: TopK}
}

// Rank runs the classifier and returns up to TopK diseases, highest
// probability first. Equal probabilities keep the classifier's label order.
// Any classifier failure is reported as a prediction error.
func (r *Ranker) Rank(ctx context.Context, features []float32) ([]DiseaseScore, error) {
	probs, err := r.model.PredictProba(ctx, features)
	if err != nil {
		return nil, apperrors.Prediction(err)
	}
	classes := r.model.Classes()
	if len(classes) == 0 {
		return nil, apperrors.Prediction(errors.New("classifier reports no classes"))
	}
	if len(probs) != len(classes) {
		return nil, apperrors.Prediction(fmt.Errorf("%w: %d probabilities for %d classes",
			classifier.ErrShape, len(probs), len(classes)))
	}

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return probs[order[a]] > probs[order[b]]
	})

	n := min(r.k, len(order))
	out := make([]DiseaseScore, 0, n)
	for _, idx := range order[:n] {
		out = append(out, DiseaseScore{
			Disease:     classes[idx],
			Probability: Percent(probs[idx]),
		})
	}
	return out, nil
}

// Percent converts a [0,1] fraction to a percentage rounded to 2 decimals.
func Percent(fraction float64) float64 {
	return math.Round(fraction*100*100) / 100
}
