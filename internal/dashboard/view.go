package dashboard

import (
	"fmt"
	"strconv"

	"recept-slider/internal/ml"
	"recept-slider/internal/recipe"
)

type sliderView struct {
	Index int
	Name  string
	Min   string
	Max   string
	Value string
}

type percentView struct {
	Index int
	Name  string
	Value string
}

type predictionView struct {
	Viscosity string
	PH        string
	DS        string
}

type recipeView struct {
	ID       string
	Cells    []string
	Selected bool
}

type pageData struct {
	Sliders     []sliderView
	Total       string
	Error       string
	Prediction  *predictionView
	Percentages []percentView
	OutOfRange  []string
	Flash       *Flash
	Query       string
	HasRecipes  bool
	Columns     []string
	Recipes     []recipeView
	Compare     []recipeView
	Model       ml.ModelInfo
}

func formatInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sliders(m recipe.Masses) []sliderView {
	out := make([]sliderView, recipe.NumIngredients)
	for i, ing := range recipe.Catalog {
		out[i] = sliderView{
			Index: i,
			Name:  ing.Name,
			Min:   formatInput(ing.Min),
			Max:   formatInput(ing.Max),
			Value: formatInput(m[i]),
		}
	}
	return out
}

func percentages(p recipe.Percentages) []percentView {
	p = p.Round()
	out := make([]percentView, recipe.NumIngredients)
	for i, ing := range recipe.Catalog {
		out[i] = percentView{Index: i, Name: ing.Name, Value: fmt.Sprintf("%.2f", p[i])}
	}
	return out
}

func newPredictionView(p recipe.Prediction) *predictionView {
	return &predictionView{
		Viscosity: p.ViscosityLabel(),
		PH:        p.PHLabel(),
		DS:        p.DSLabel(),
	}
}

func recipeViews(recipes []recipe.Recipe, selected map[string]bool) []recipeView {
	out := make([]recipeView, len(recipes))
	for i, r := range recipes {
		out[i] = recipeView{ID: r.ID, Cells: r.Fields(), Selected: selected[r.ID]}
	}
	return out
}
