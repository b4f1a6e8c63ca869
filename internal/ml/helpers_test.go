package ml

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"recept-slider/internal/forest"
	"recept-slider/internal/recipe"
)

// trainedModel fits a small forest on synthetic compositions around the
// default recipe. Viscosity rises with the dextrins, pH with the lye and DS
// falls with water.
func trainedModel(t *testing.T) *forest.Forest {
	t.Helper()

	rng := rand.New(rand.NewSource(1))
	var x, y [][]float64
	for i := 0; i < 200; i++ {
		var m recipe.Masses
		for j, ing := range recipe.Catalog {
			m[j] = ing.Default * (0.5 + rng.Float64())
		}
		pct, err := m.Percentages()
		require.NoError(t, err)

		row := pct.Slice()
		x = append(x, row)
		y = append(y, []float64{
			1000 + 300*(row[0]+row[1]),
			7 + 0.5*row[8],
			100 - row[6],
		})
	}

	params := forest.DefaultParams()
	params.NumTrees = 10
	model, err := forest.Fit(context.Background(), x, y, recipe.FeatureColumns(), recipe.TargetColumns(), params)
	require.NoError(t, err)
	return model
}

func defaultPercentages(t *testing.T) recipe.Percentages {
	t.Helper()
	pct, err := recipe.DefaultMasses().Percentages()
	require.NoError(t, err)
	return pct
}
