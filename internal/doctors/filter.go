package doctors

import "github.com/Skufu/carepath/internal/refdata"

// Predicate selects doctor directory rows.
type Predicate func(refdata.Doctor) bool

func BySpecialization(specialization string) Predicate {
	return func(d refdata.Doctor) bool { return d.Specialization == specialization }
}

func ByLocation(location string) Predicate {
	return func(d refdata.Doctor) bool { return d.Location == location }
}

// All matches rows that satisfy every predicate.
func All(preds ...Predicate) Predicate {
	return func(d refdata.Doctor) bool {
		for _, p := range preds {
			if !p(d) {
				return false
			}
		}
		return true
	}
}

// Directory is a read-only view over the doctor table.
type Directory struct {
	doctors []refdata.Doctor
}

func NewDirectory(doctors []refdata.Doctor) Directory {
	return Directory{doctors: doctors}
}

// Where returns matching rows in directory order.
func (d Directory) Where(p Predicate) []refdata.Doctor {
	out := []refdata.Doctor{}
	for _, doc := range d.doctors {
		if p(doc) {
			out = append(out, doc)
		}
	}
	return out
}
