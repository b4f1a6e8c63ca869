package recipe

import "fmt"

// Prediction holds the three estimated properties of a mixture.
type Prediction struct {
	Viscosity float64 `json:"viscosity"`
	PH        float64 `json:"ph"`
	DS        float64 `json:"ds"`
}

// PredictionFromSlice maps a model output vector onto a Prediction.
func PredictionFromSlice(v []float64) (Prediction, error) {
	if len(v) != 3 {
		return Prediction{}, fmt.Errorf("expected 3 outputs, got %d", len(v))
	}
	return Prediction{Viscosity: v[0], PH: v[1], DS: v[2]}, nil
}

func (p Prediction) Round() Prediction {
	return Prediction{Viscosity: Round2(p.Viscosity), PH: Round2(p.PH), DS: Round2(p.DS)}
}

func (p Prediction) ViscosityLabel() string { return fmt.Sprintf("%.2f mPa.s", p.Viscosity) }
func (p Prediction) PHLabel() string        { return fmt.Sprintf("%.2f", p.PH) }
func (p Prediction) DSLabel() string        { return fmt.Sprintf("%.2f %%", p.DS) }
