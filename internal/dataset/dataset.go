// Package dataset loads historical experiment sheets into feature and target
// matrices for training.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

var (
	ErrMissingColumns = errors.New("required columns missing")
	ErrNoRows         = errors.New("no complete rows")
)

// Dataset is a numeric table split into features and targets. Row i of X
// belongs to row i of Y.
type Dataset struct {
	FeatureNames []string
	TargetNames  []string
	X            [][]float64
	Y            [][]float64
	Dropped      int
}

func (d *Dataset) Len() int {
	return len(d.X)
}

// FromRows builds a dataset from a header row followed by data rows. Columns
// are matched by exact header text; unused columns are ignored. Rows with a
// blank or non-numeric value in any used column are dropped.
func FromRows(rows [][]string, features, targets []string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrMissingColumns)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	lookup := func(names []string) []int {
		cols := make([]int, len(names))
		for i, name := range names {
			col, ok := index[name]
			if !ok {
				missing = append(missing, name)
			}
			cols[i] = col
		}
		return cols
	}
	featureCols := lookup(features)
	targetCols := lookup(targets)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	d := &Dataset{
		FeatureNames: append([]string(nil), features...),
		TargetNames:  append([]string(nil), targets...),
	}

	for _, row := range rows[1:] {
		x, okX := parseCells(row, featureCols)
		y, okY := parseCells(row, targetCols)
		if !okX || !okY {
			d.Dropped++
			continue
		}
		d.X = append(d.X, x)
		d.Y = append(d.Y, y)
	}

	if d.Len() == 0 {
		return nil, fmt.Errorf("%w: %d rows dropped", ErrNoRows, d.Dropped)
	}
	return d, nil
}

func parseCells(row []string, cols []int) ([]float64, bool) {
	out := make([]float64, len(cols))
	for i, col := range cols {
		if col >= len(row) {
			return nil, false
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			return nil, false
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Subset returns the rows at the given indices, in that order.
func (d *Dataset) Subset(indices []int) *Dataset {
	sub := &Dataset{
		FeatureNames: d.FeatureNames,
		TargetNames:  d.TargetNames,
		X:            make([][]float64, len(indices)),
		Y:            make([][]float64, len(indices)),
	}
	for i, idx := range indices {
		sub.X[i] = d.X[idx]
		sub.Y[i] = d.Y[idx]
	}
	return sub
}

// TrainTestSplit shuffles the rows with a seeded source and holds out testSize of them.
// The held-out count is rounded up, and at least one row stays in training.
func (d *Dataset) TrainTestSplit(testSize float64, seed int64) (train, test *Dataset, err error) {
	if testSize < 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in [0, 1), got %f", testSize)
	}

	n := d.Len()
	nTest := int(math.Ceil(testSize*float64(n) - 1e-9))
	if n-nTest < 1 {
		return nil, nil, fmt.Errorf("%d rows are too few for a %.0f%% hold-out", n, testSize*100)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return d.Subset(perm[nTest:]), d.Subset(perm[:nTest]), nil
}

// FeatureRanges returns the observed [min, max] of every feature column.
func (d *Dataset) FeatureRanges() [][2]float64 {
	ranges := make([][2]float64, len(d.FeatureNames))
	for j := range ranges {
		ranges[j] = [2]float64{math.Inf(1), math.Inf(-1)}
	}
	for _, row := range d.X {
		for j, v := range row {
			ranges[j][0] = math.Min(ranges[j][0], v)
			ranges[j][1] = math.Max(ranges[j][1], v)
		}
	}
	return ranges
}
