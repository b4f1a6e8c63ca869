package recipe

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMasses(t *testing.T) {
	m := DefaultMasses()
	assert.Equal(t, 900.0, m.Total())
	assert.Equal(t, Masses{100, 50, 10, 200, 5, 5, 500, 5, 5, 20}, m)
}

func TestPercentages_DefaultScenario(t *testing.T) {
	p, err := DefaultMasses().Percentages()
	require.NoError(t, err)

	assert.InDelta(t, 100.0, p.Sum(), 1e-9)
	assert.InDelta(t, 100.0/900*100, p[0], 1e-9)
	assert.InDelta(t, 500.0/900*100, p[6], 1e-9)
	assert.Len(t, p.Slice(), NumIngredients)
}

func TestPercentages_SumTo100(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		var m Masses
		for j := range m {
			if rng.Intn(3) == 0 {
				continue
			}
			m[j] = rng.Float64() * Catalog[j].Max
		}
		if m.Total() == 0 {
			m[0] = 1
		}

		p, err := m.Percentages()
		require.NoError(t, err)
		assert.InDelta(t, 100.0, p.Sum(), 1e-9)
		assert.InDelta(t, 100.0, p.Round().Sum(), 0.06)
	}
}

func TestPercentages_ZeroTotal(t *testing.T) {
	var m Masses
	_, err := m.Percentages()
	assert.ErrorIs(t, err, ErrZeroTotal)

	_, err = m.Rescale(Basis)
	assert.ErrorIs(t, err, ErrZeroTotal)
}

func TestPercentages_NegativeMass(t *testing.T) {
	m := DefaultMasses()
	m[3] = -1
	_, err := m.Percentages()
	assert.ErrorIs(t, err, ErrNegativeMass)
	assert.Contains(t, err.Error(), "Krijt Slurry")
}

func TestRescale(t *testing.T) {
	scaled, err := DefaultMasses().Rescale(Basis)
	require.NoError(t, err)

	assert.InDelta(t, Basis, scaled.Total(), 1e-9)
	assert.InDelta(t, 100*Basis/900, scaled[0], 1e-9)
}

func TestClamp(t *testing.T) {
	m := Masses{-5, 2000, 10, 200, 5, 5, 2500, 150, math.NaN(), 20}
	c := m.Clamp()

	assert.Equal(t, 0.0, c[0])
	assert.Equal(t, 1000.0, c[1])
	assert.Equal(t, 2000.0, c[6])
	assert.Equal(t, 100.0, c[7])
	assert.Equal(t, 0.0, c[8])
	assert.Equal(t, 20.0, c[9])
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.24, Round2(1.2351))
	assert.Equal(t, 110.5, Round2(110.49999))
	assert.Equal(t, 0.0, Round2(0.001))
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{
		"LV-Dex (%)", "HV-Dex (%)", "Borax (%)", "Krijt Slurry (%)", "MBL (%)",
		"LA1209 (%)", "Water (%)", "Struktol (%)", "Loog (%)", "Suiker (%)",
	}, FeatureColumns())
	assert.Equal(t, []string{"Viscosity Brookfield", "pH [-]", "DS"}, TargetColumns())

	export := ExportColumns()
	require.Len(t, export, 14)
	assert.Equal(t, "Naam", export[0])
	assert.Equal(t, "LV-Dex (kg)", export[1])
	assert.Equal(t, "DS", export[13])
}

func TestPredictionFromSlice(t *testing.T) {
	p, err := PredictionFromSlice([]float64{1234.567, 9.123, 45.678})
	require.NoError(t, err)
	assert.Equal(t, Prediction{Viscosity: 1234.57, PH: 9.12, DS: 45.68}, p.Round())
	assert.Equal(t, "1234.57 mPa.s", p.ViscosityLabel())
	assert.Equal(t, "9.12", p.PHLabel())
	assert.Equal(t, "45.68 %", p.DSLabel())

	_, err = PredictionFromSlice([]float64{1, 2})
	assert.Error(t, err)
}
