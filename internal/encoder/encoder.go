// Package encoder turns free-form symptom strings into the fixed-order binary
// feature vector a classifier expects.
package encoder

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/Skufu/carepath/internal/apperrors"
)

const (
	MsgNoSymptoms      = "No symptoms provided"
	MsgNoKnownSymptoms = "None of the provided symptoms are recognized"
)

// Normalize folds a symptom to its canonical token: NFKC, trimmed, lowercased,
// with each run of internal whitespace replaced by a single underscore.
func Normalize(symptom string) string {
	s := strings.ToLower(norm.NFKC.String(symptom))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_'
	}), "_")
}

// Vector is one encoded request.
type Vector struct {
	// Values is ordered exactly like the classifier's feature names.
	Values []float32
	// Active lists the matched feature names in first-seen input order.
	Active []string
}

// Encoder maps symptoms onto a fixed feature schema.
type Encoder struct {
	features []string
	index    map[string]int
}

// New builds an encoder for the given ordered feature names. Names are indexed
// by their normalized form; if two collide the first position wins.
func New(featureNames []string) *Encoder {
	index := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		key := Normalize(name)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	features := make([]string, len(featureNames))
	copy(features, featureNames)
	return &Encoder{features: features, index: index}
}

// Len is the feature count, i.e. the length of every encoded vector.
func (e *Encoder) Len() int { return len(e.features) }

// Encode builds the binary vector for symptoms. Unknown symptoms are dropped;
// it fails with an invalid-input error when nothing was supplied or nothing matched.
func (e *Encoder) Encode(symptoms []string) (Vector, error) {
	values := make([]float32, len(e.features))
	active := []string{}
	supplied := 0

	for _, raw := range symptoms {
		key := Normalize(raw)
		if key == "" {
			continue
		}
		supplied++
		pos, ok := e.index[key]
		if !ok || values[pos] == 1 {
			continue
		}
		values[pos] = 1
		active = append(active, e.features[pos])
	}

	if supplied == 0 {
		return Vector{}, apperrors.InvalidInput(MsgNoSymptoms)
	}
	if len(active) == 0 {
		return Vector{}, apperrors.InvalidInput(MsgNoKnownSymptoms)
	}
	return Vector{Values: values, Active: active}, nil
}

// KnownSymptoms returns the feature names in display form ("skin_rash" -> "skin rash").
func (e *Encoder) KnownSymptoms() []string {
	out := make([]string, len(e.features))
	for i, f := range e.features {
		out[i] = strings.ReplaceAll(Normalize(f), "_", " ")
	}
	return out
}
