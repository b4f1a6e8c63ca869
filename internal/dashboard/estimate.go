package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"recept-slider/internal/ml"
	"recept-slider/internal/recipe"
)

// User-facing messages.
const (
	msgZeroTotal     = "Totale hoeveelheid is 0, voeg wat grondstoffen toe."
	msgEmptyRecipe   = "Je kunt geen leeg recept opslaan."
	msgNoName        = "Geef eerst een naam aan het recept."
	msgSaved         = "Recept '%s' opgeslagen (omgerekend naar 1000 kg)"
	msgDeleted       = "Recept '%s' verwijderd."
	msgNotFound      = "Recept niet gevonden."
	msgReset         = "Alles is gereset!"
	msgInvalidInput  = "Ongeldige invoer: %v"
	msgPredictFailed = "Voorspelling mislukt: %v"
)

// Estimate is the outcome of one recomputation. Either Result or Err is set.
type Estimate struct {
	Masses      recipe.Masses
	Total       float64
	Percentages recipe.Percentages
	Result      *ml.Result
	Err         error
}

func (s *Server) estimate(ctx context.Context, m recipe.Masses) Estimate {
	e := Estimate{Masses: m, Total: m.Total()}

	pct, err := m.Percentages()
	if err != nil {
		e.Err = err
		return e
	}
	e.Percentages = pct

	res, err := s.predictor.Predict(ctx, pct)
	if err != nil {
		e.Err = fmt.Errorf("predict: %w", err)
		return e
	}
	res.Prediction = res.Prediction.Round()
	e.Result = &res
	return e
}

// Message renders Err for display.
func (e Estimate) Message() string {
	switch {
	case e.Err == nil:
		return ""
	case errors.Is(e.Err, recipe.ErrZeroTotal):
		return msgZeroTotal
	case errors.Is(e.Err, recipe.ErrNegativeMass):
		return fmt.Sprintf(msgInvalidInput, e.Err)
	default:
		return fmt.Sprintf(msgPredictFailed, e.Err)
	}
}

// parseMasses reads the m0..m9 fields. Blank fields count as zero, a decimal
// comma is accepted and values are clamped to the ingredient ranges.
func parseMasses(form url.Values) (recipe.Masses, error) {
	var m recipe.Masses
	for i := range m {
		key := "m" + strconv.Itoa(i)
		raw := strings.TrimSpace(form.Get(key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil {
			return m, fmt.Errorf("%s: %q is not a number", recipe.Catalog[i].Name, raw)
		}
		m[i] = v
	}
	return m.Clamp(), nil
}

// massesFromSlice converts a websocket payload.
func massesFromSlice(v []float64) (recipe.Masses, error) {
	var m recipe.Masses
	if len(v) != recipe.NumIngredients {
		return m, fmt.Errorf("expected %d masses, got %d", recipe.NumIngredients, len(v))
	}
	copy(m[:], v)
	return m.Clamp(), nil
}
