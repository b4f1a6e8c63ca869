package recipe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePrediction = Prediction{Viscosity: 1520.456, PH: 9.871, DS: 52.349}

func TestStore_Save(t *testing.T) {
	s := NewStore()

	r, err := s.Save("  Recept 2025-04 test ", DefaultMasses(), samplePrediction)
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Recept 2025-04 test", r.Name)
	assert.Equal(t, 111.11, r.Masses[0])
	assert.Equal(t, 555.56, r.Masses[6])
	assert.InDelta(t, Basis, r.Masses.Total(), 0.05)
	assert.Equal(t, Prediction{Viscosity: 1520.46, PH: 9.87, DS: 52.35}, r.Prediction)
	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, 1, s.Len())
}

func TestStore_SaveRejections(t *testing.T) {
	s := NewStore()

	_, err := s.Save("leeg", Masses{}, samplePrediction)
	assert.ErrorIs(t, err, ErrZeroTotal)

	_, err = s.Save("   ", DefaultMasses(), samplePrediction)
	assert.ErrorIs(t, err, ErrEmptyName)

	// zero total is reported before a missing name
	_, err = s.Save("", Masses{}, samplePrediction)
	assert.ErrorIs(t, err, ErrZeroTotal)

	assert.Equal(t, 0, s.Len())
}

func TestStore_DuplicateSavesAreKept(t *testing.T) {
	s := NewStore()
	first, err := s.Save("A", DefaultMasses(), samplePrediction)
	require.NoError(t, err)
	second, err := s.Save("A", DefaultMasses(), samplePrediction)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Masses, second.Masses)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	var ids []string
	for i := 0; i < 4; i++ {
		r, err := s.Save(fmt.Sprintf("R%d", i), DefaultMasses(), samplePrediction)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	require.NoError(t, s.Delete(ids[2]))
	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"R0", "R1", "R3"}, names(list))

	_, err := s.Get(ids[2])
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ids[2]), ErrNotFound)
	assert.Equal(t, 3, s.Len())
}

func TestStore_DeleteIsStableUnderFiltering(t *testing.T) {
	s := NewStore()
	_, _ = s.Save("basis", DefaultMasses(), samplePrediction)
	target, _ := s.Save("variant zoet", DefaultMasses(), samplePrediction)
	_, _ = s.Save("variant zout", DefaultMasses(), samplePrediction)

	// the filtered view and the store disagree on positions; ids do not
	filtered := s.Filter("zoet")
	require.Len(t, filtered, 1)
	require.NoError(t, s.Delete(filtered[0].ID))

	assert.Equal(t, []string{"basis", "variant zout"}, names(s.List()))
	_, err := s.Get(target.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	_, _ = s.Save("A", DefaultMasses(), samplePrediction)
	_, _ = s.Save("B", DefaultMasses(), samplePrediction)

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
}

func TestStore_Filter(t *testing.T) {
	s := NewStore()
	_, _ = s.Save("Proef Alpha", DefaultMasses(), samplePrediction)
	_, _ = s.Save("Proef Beta", DefaultMasses(), Prediction{Viscosity: 800, PH: 8.5, DS: 40})
	other := DefaultMasses()
	other[9] = 0
	_, _ = s.Save("Gamma zonder suiker", other, samplePrediction)

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"Proef Alpha", "Proef Beta", "Gamma zonder suiker"}},
		{"alpha", []string{"Proef Alpha"}},
		{"PROEF", []string{"Proef Alpha", "Proef Beta"}},
		{"  beta ", []string{"Proef Beta"}},
		{"800", []string{"Proef Beta"}},
		{"1520.46", []string{"Proef Alpha", "Gamma zonder suiker"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, names(s.Filter(tt.term)))
		})
	}
}

func TestStore_Select(t *testing.T) {
	s := NewStore()
	a, _ := s.Save("A", DefaultMasses(), samplePrediction)
	_, _ = s.Save("B", DefaultMasses(), samplePrediction)
	c, _ := s.Save("C", DefaultMasses(), samplePrediction)

	assert.Equal(t, []string{"A", "C"}, names(s.Select([]string{c.ID, a.ID, "unknown"})))
	assert.Nil(t, s.Select(nil))
}

func TestStore_ListIsACopy(t *testing.T) {
	s := NewStore()
	_, _ = s.Save("A", DefaultMasses(), samplePrediction)

	list := s.List()
	list[0].Name = "changed"
	assert.Equal(t, "A", s.List()[0].Name)
}

func TestRecipe_Fields(t *testing.T) {
	r := Recipe{
		Name:       "X",
		Masses:     Masses{110.5, 55.25, 11.05, 220.99, 5.52, 5.52, 552.49, 5.52, 5.52, 22.1},
		Prediction: Prediction{Viscosity: 1500, PH: 9.5, DS: 50.12},
	}
	fields := r.Fields()
	require.Len(t, fields, 14)
	assert.Equal(t, "X", fields[0])
	assert.Equal(t, "110.5", fields[1])
	assert.Equal(t, "1500", fields[11])
	assert.Equal(t, "50.12", fields[13])
}

func names(rs []Recipe) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}
