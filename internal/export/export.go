// Package export writes saved recipes to an .xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"recept-slider/internal/common"
	"recept-slider/internal/recipe"
)

// Build creates a workbook with a single sheet holding one header row and one
// row per recipe: name, ten masses, viscosity, pH and DS.
func Build(recipes []recipe.Recipe) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := common.ExportSheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := recipe.ExportColumns()
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range recipes {
		row := make([]interface{}, 0, len(header))
		row = append(row, r.Name)
		for _, m := range r.Masses {
			row = append(row, m)
		}
		row = append(row, r.Prediction.Viscosity, r.Prediction.PH, r.Prediction.DS)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write recipe %q: %w", r.Name, err)
		}
	}

	return f, nil
}

// WriteRecipes streams the workbook for recipes to w.
func WriteRecipes(w io.Writer, recipes []recipe.Recipe) error {
	f, err := Build(recipes)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
