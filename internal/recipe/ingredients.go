// Package recipe holds the formulation domain: the fixed ingredient catalog,
// mass and percentage vectors, predicted properties and the per-session store
// of saved recipes.
package recipe

// NumIngredients is the length of every mass and percentage vector.
const NumIngredients = 10

// Basis is the total mass a saved recipe is rescaled to.
const Basis = 1000.0

// Ingredient describes one raw material and its input range in kilograms.
type Ingredient struct {
	Name          string  `json:"name"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Default       float64 `json:"default"`
	FeatureColumn string  `json:"feature_column"`
	ExportColumn  string  `json:"export_column"`
}

// Catalog is ordered; the order is the model's input order.
var Catalog = [NumIngredients]Ingredient{
	{Name: "LV-Dex", Min: 0, Max: 1000, Default: 100, FeatureColumn: "LV-Dex (%)", ExportColumn: "LV-Dex (kg)"},
	{Name: "HV-Dex", Min: 0, Max: 1000, Default: 50, FeatureColumn: "HV-Dex (%)", ExportColumn: "HV-Dex (kg)"},
	{Name: "Borax", Min: 0, Max: 1000, Default: 10, FeatureColumn: "Borax (%)", ExportColumn: "Borax (kg)"},
	{Name: "Krijt Slurry", Min: 0, Max: 1000, Default: 200, FeatureColumn: "Krijt Slurry (%)", ExportColumn: "Krijt Slurry (kg)"},
	{Name: "MBL", Min: 0, Max: 1000, Default: 5, FeatureColumn: "MBL (%)", ExportColumn: "MBL (kg)"},
	{Name: "LA1209", Min: 0, Max: 1000, Default: 5, FeatureColumn: "LA1209 (%)", ExportColumn: "LA1209 (kg)"},
	{Name: "Water", Min: 0, Max: 2000, Default: 500, FeatureColumn: "Water (%)", ExportColumn: "Water (kg)"},
	{Name: "Struktol", Min: 0, Max: 100, Default: 5, FeatureColumn: "Struktol (%)", ExportColumn: "Struktol (kg)"},
	{Name: "Loog", Min: 0, Max: 100, Default: 5, FeatureColumn: "Loog (%)", ExportColumn: "Loog (kg)"},
	{Name: "Suiker", Min: 0, Max: 1000, Default: 20, FeatureColumn: "Suiker (%)", ExportColumn: "Suiker (kg)"},
}

// Target column names in the training sheet, in prediction order.
const (
	TargetViscosity = "Viscosity Brookfield"
	TargetPH        = "pH [-]"
	TargetDS        = "DS"
)

// FeatureColumns returns the model input column names in catalog order.
func FeatureColumns() []string {
	cols := make([]string, NumIngredients)
	for i, ing := range Catalog {
		cols[i] = ing.FeatureColumn
	}
	return cols
}

// TargetColumns returns the three measured properties in prediction order.
func TargetColumns() []string {
	return []string{TargetViscosity, TargetPH, TargetDS}
}

// ExportColumns returns the spreadsheet header for saved recipes.
func ExportColumns() []string {
	cols := make([]string, 0, NumIngredients+4)
	cols = append(cols, "Naam")
	for _, ing := range Catalog {
		cols = append(cols, ing.ExportColumn)
	}
	return append(cols, "Viscositeit", "pH", "DS")
}
