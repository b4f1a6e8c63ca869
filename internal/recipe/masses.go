package recipe

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrZeroTotal    = errors.New("total ingredient mass is zero")
	ErrNegativeMass = errors.New("ingredient mass is negative")
)

// Masses are ingredient quantities in kilograms, in catalog order.
type Masses [NumIngredients]float64

// Percentages are ingredient shares of the total mass, in catalog order.
type Percentages [NumIngredients]float64

// DefaultMasses returns the starting quantities of the estimator.
func DefaultMasses() Masses {
	var m Masses
	for i, ing := range Catalog {
		m[i] = ing.Default
	}
	return m
}

func (m Masses) Total() float64 {
	return floats.Sum(m[:])
}

// Clamp limits every mass to its ingredient's allowed range.
func (m Masses) Clamp() Masses {
	var out Masses
	for i, v := range m {
		switch {
		case math.IsNaN(v) || v < Catalog[i].Min:
			out[i] = Catalog[i].Min
		case v > Catalog[i].Max:
			out[i] = Catalog[i].Max
		default:
			out[i] = v
		}
	}
	return out
}

func (m Masses) validate() error {
	for i, v := range m {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s: %w", Catalog[i].Name, ErrNegativeMass)
		}
	}
	return nil
}

// Percentages converts masses to percent of the total. It fails with
// ErrZeroTotal when nothing has been added.
func (m Masses) Percentages() (Percentages, error) {
	if err := m.validate(); err != nil {
		return Percentages{}, err
	}
	total := m.Total()
	if total == 0 {
		return Percentages{}, ErrZeroTotal
	}

	var p Percentages
	for i, v := range m {
		p[i] = v / total * 100
	}
	return p, nil
}

// Rescale returns the masses scaled so they add up to basis.
func (m Masses) Rescale(basis float64) (Masses, error) {
	if err := m.validate(); err != nil {
		return Masses{}, err
	}
	total := m.Total()
	if total == 0 {
		return Masses{}, ErrZeroTotal
	}

	factor := basis / total
	var out Masses
	for i, v := range m {
		out[i] = v * factor
	}
	return out, nil
}

// Round returns every value rounded to 2 decimals.
func (p Percentages) Round() Percentages {
	var out Percentages
	for i, v := range p {
		out[i] = Round2(v)
	}
	return out
}

func (p Percentages) Sum() float64 {
	return floats.Sum(p[:])
}

// Slice returns the percentages as a model input vector.
func (p Percentages) Slice() []float64 {
	out := make([]float64, NumIngredients)
	copy(out, p[:])
	return out
}

// Round2 rounds half away from zero to 2 decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
