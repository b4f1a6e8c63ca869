// Package forest implements a multi-output random forest regressor. One tree
// predicts every target jointly and the forest averages the trees.
package forest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyData    = errors.New("empty training data")
	ErrFeatureCount = errors.New("feature count mismatch")
)

// Params are the forest hyper-parameters.
type Params struct {
	NumTrees        int   `json:"num_trees"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	Bootstrap       bool  `json:"bootstrap"`
	Seed            int64 `json:"seed"`
}

func DefaultParams() Params {
	return Params{
		NumTrees:        100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Seed:            42,
	}
}

func (p Params) validate() error {
	switch {
	case p.NumTrees <= 0:
		return fmt.Errorf("num trees must be positive, got %d", p.NumTrees)
	case p.MaxDepth <= 0:
		return fmt.Errorf("max depth must be positive, got %d", p.MaxDepth)
	case p.MinSamplesSplit < 2:
		return fmt.Errorf("min samples split must be at least 2, got %d", p.MinSamplesSplit)
	case p.MinSamplesLeaf < 1:
		return fmt.Errorf("min samples leaf must be at least 1, got %d", p.MinSamplesLeaf)
	}
	return nil
}

// Forest is a fitted model. It is immutable once Fit returns and safe for
// concurrent prediction.
type Forest struct {
	Version       int          `json:"format_version"`
	FeatureNames  []string     `json:"feature_names"`
	TargetNames   []string     `json:"target_names"`
	Params        Params       `json:"params"`
	TrainedAt     time.Time    `json:"trained_at"`
	TrainingRows  int          `json:"training_rows"`
	FeatureRanges [][2]float64 `json:"feature_ranges"`
	Importances   []float64    `json:"feature_importances"`
	Trees         []*Node      `json:"trees"`
}

// Fit trains a forest on x (rows of features) and y (rows of targets). Trees
// are grown in parallel, each from its own seed drawn from params.Seed, so the
// result does not depend on scheduling.
func Fit(ctx context.Context, x, y [][]float64, featureNames, targetNames []string, params Params) (*Forest, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, ErrEmptyData
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("x has %d rows, y has %d", len(x), len(y))
	}
	for i := range x {
		if len(x[i]) != len(featureNames) {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrFeatureCount, i, len(x[i]), len(featureNames))
		}
		if len(y[i]) != len(targetNames) {
			return nil, fmt.Errorf("row %d has %d targets, want %d", i, len(y[i]), len(targetNames))
		}
		if !allFinite(x[i]) || !allFinite(y[i]) {
			return nil, fmt.Errorf("row %d contains NaN or Inf", i)
		}
	}

	master := rand.New(rand.NewSource(params.Seed))
	seeds := make([]int64, params.NumTrees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*Node, params.NumTrees)
	treeImportances := make([][]float64, params.NumTrees)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			trees[i], treeImportances[i] = buildTree(x, y, params, rand.New(rand.NewSource(seeds[i])))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forest fit interrupted: %w", err)
	}

	return &Forest{
		Version:       FormatVersion,
		FeatureNames:  append([]string(nil), featureNames...),
		TargetNames:   append([]string(nil), targetNames...),
		Params:        params,
		TrainedAt:     time.Now().UTC(),
		TrainingRows:  len(x),
		FeatureRanges: featureRanges(x),
		Importances:   meanImportances(treeImportances, len(featureNames)),
		Trees:         trees,
	}, nil
}

// meanImportances normalises each tree's impurity decrease, averages over the
// trees and normalises again so the result sums to 1. All zeros when no tree
// made a split.
func meanImportances(perTree [][]float64, features int) []float64 {
	out := make([]float64, features)
	for _, imp := range perTree {
		total := floats.Sum(imp)
		if total <= 0 {
			continue
		}
		for j, v := range imp {
			out[j] += v / total
		}
	}
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}

func allFinite(v []float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func featureRanges(x [][]float64) [][2]float64 {
	ranges := make([][2]float64, len(x[0]))
	for j := range ranges {
		ranges[j] = [2]float64{math.Inf(1), math.Inf(-1)}
	}
	for _, row := range x {
		for j, v := range row {
			ranges[j][0] = math.Min(ranges[j][0], v)
			ranges[j][1] = math.Max(ranges[j][1], v)
		}
	}
	return ranges
}

// Predict returns the mean of the tree outputs for one feature row.
func (f *Forest) Predict(x []float64) ([]float64, error) {
	if len(x) != len(f.FeatureNames) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), len(f.FeatureNames))
	}

	out := make([]float64, len(f.TargetNames))
	for _, t := range f.Trees {
		floats.Add(out, t.predict(x))
	}
	floats.Scale(1/float64(len(f.Trees)), out)
	return out, nil
}

// TargetScore holds hold-out metrics for one target column.
type TargetScore struct {
	Target string  `json:"target"`
	R2     float64 `json:"r2"`
	RMSE   float64 `json:"rmse"`
}

// Score evaluates the forest on labelled rows and reports R² and RMSE per
// target.
func (f *Forest) Score(x, y [][]float64) ([]TargetScore, error) {
	if len(x) == 0 {
		return nil, ErrEmptyData
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("x has %d rows, y has %d", len(x), len(y))
	}

	outputs := len(f.TargetNames)
	predicted := make([][]float64, outputs)
	actual := make([][]float64, outputs)
	for i, row := range x {
		p, err := f.Predict(row)
		if err != nil {
			return nil, err
		}
		for k := 0; k < outputs; k++ {
			predicted[k] = append(predicted[k], p[k])
			actual[k] = append(actual[k], y[i][k])
		}
	}

	scores := make([]TargetScore, outputs)
	for k, name := range f.TargetNames {
		scores[k] = TargetScore{
			Target: name,
			R2:     stat.RSquaredFrom(predicted[k], actual[k], nil),
			RMSE:   floats.Distance(predicted[k], actual[k], 2) / math.Sqrt(float64(len(x))),
		}
	}
	return scores, nil
}

// Depth is the depth of the deepest tree.
func (f *Forest) Depth() int {
	d := 0
	for _, t := range f.Trees {
		d = max(d, t.depth())
	}
	return d
}

// NodeCount is the total number of nodes over all trees.
func (f *Forest) NodeCount() int {
	n := 0
	for _, t := range f.Trees {
		n += t.size()
	}
	return n
}
