// Package advisory joins disease descriptions with their precautions.
package advisory

import (
	"strings"

	"github.com/Skufu/carepath/internal/refdata"
)

// Record is the joined description and precautions for one disease.
type Record struct {
	Disease     string   `json:"disease"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}

// Resolver joins disease names against the description and precaution tables.
type Resolver struct {
	advice       []refdata.Advice
	descriptions map[string][]string
}

func NewResolver(tables *refdata.Tables) *Resolver {
	descriptions := make(map[string][]string, len(tables.Descriptions))
	for _, d := range tables.Descriptions {
		descriptions[d.Disease] = append(descriptions[d.Disease], d.Description)
	}
	return &Resolver{advice: tables.Advice, descriptions: descriptions}
}

// Resolve returns one record per (advice row, description row) pair whose
// disease is in diseases, in advice-table order. A disease missing from
// either table yields nothing.
func (r *Resolver) Resolve(diseases []string) []Record {
	wanted := make(map[string]struct{}, len(diseases))
	for _, d := range diseases {
		wanted[d] = struct{}{}
	}

	out := []Record{}
	for _, a := range r.advice {
		if _, ok := wanted[a.Disease]; !ok {
			continue
		}
		for _, desc := range r.descriptions[a.Disease] {
			out = append(out, Record{
				Disease:     a.Disease,
				Description: desc,
				Precautions: precautions(a),
			})
		}
	}
	return out
}

func precautions(a refdata.Advice) []string {
	out := make([]string, 0, refdata.MaxPrecautions)
	for _, p := range a.Precautions {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
