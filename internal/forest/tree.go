package forest

import (
	"math/rand"
	"sort"
)

// Node is a binary regression tree node. A node without children is a leaf
// and carries the mean target vector of the rows that reached it.
type Node struct {
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Left      *Node     `json:"l,omitempty"`
	Right     *Node     `json:"r,omitempty"`
	Value     []float64 `json:"v,omitempty"`
}

func (n *Node) IsLeaf() bool {
	return n.Left == nil
}

func (n *Node) predict(x []float64) []float64 {
	for !n.IsLeaf() {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func (n *Node) depth() int {
	if n.IsLeaf() {
		return 0
	}
	return 1 + max(n.Left.depth(), n.Right.depth())
}

func (n *Node) size() int {
	if n.IsLeaf() {
		return 1
	}
	return 1 + n.Left.size() + n.Right.size()
}

// minGain keeps float noise from producing splits on constant targets.
const minGain = 1e-12

type treeBuilder struct {
	x           [][]float64
	y           [][]float64
	params      Params
	importances []float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// buildTree grows one tree on a bootstrap sample drawn from rng. It returns the
// tree and the total impurity decrease attributed to each feature.
func buildTree(x, y [][]float64, params Params, rng *rand.Rand) (*Node, []float64) {
	n := len(x)
	idx := make([]int, n)
	if params.Bootstrap {
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
	} else {
		for i := range idx {
			idx[i] = i
		}
	}

	b := &treeBuilder{
		x:           x,
		y:           y,
		params:      params,
		importances: make([]float64, len(x[0])),
	}
	return b.grow(idx, 0), b.importances
}

func (b *treeBuilder) grow(idx []int, depth int) *Node {
	sum, sq := b.moments(idx)
	impurity := sse(sum, sq, len(idx))

	if depth >= b.params.MaxDepth || len(idx) < b.params.MinSamplesSplit || impurity <= minGain {
		return b.leaf(sum, len(idx))
	}

	best, ok := b.bestSplit(idx, sum, sq, impurity)
	if !ok {
		return b.leaf(sum, len(idx))
	}
	b.importances[best.feature] += best.gain

	var left, right []int
	for _, i := range idx {
		if b.x[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:   best.feature,
		Threshold: best.threshold,
		Left:      b.grow(left, depth+1),
		Right:     b.grow(right, depth+1),
	}
}

func (b *treeBuilder) leaf(sum []float64, count int) *Node {
	value := make([]float64, len(sum))
	for k, s := range sum {
		value[k] = s / float64(count)
	}
	return &Node{Value: value}
}

func (b *treeBuilder) moments(idx []int) (sum, sq []float64) {
	outputs := len(b.y[0])
	sum = make([]float64, outputs)
	sq = make([]float64, outputs)
	for _, i := range idx {
		for k, v := range b.y[i] {
			sum[k] += v
			sq[k] += v * v
		}
	}
	return sum, sq
}

// sse is the squared error around the mean, summed over all outputs.
func sse(sum, sq []float64, count int) float64 {
	if count == 0 {
		return 0
	}
	total := 0.0
	for k := range sum {
		total += sq[k] - sum[k]*sum[k]/float64(count)
	}
	return total
}

// bestSplit scans every feature for the threshold with the largest decrease in
// summed squared error. Thresholds sit halfway between adjacent distinct values.
func (b *treeBuilder) bestSplit(idx []int, sum, sq []float64, impurity float64) (split, bool) {
	n := len(idx)
	outputs := len(sum)
	minLeaf := b.params.MinSamplesLeaf

	best := split{gain: minGain}
	found := false

	sorted := make([]int, n)
	leftSum := make([]float64, outputs)
	leftSq := make([]float64, outputs)
	rightSum := make([]float64, outputs)
	rightSq := make([]float64, outputs)

	for f := range b.importances {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.x[sorted[a]][f] < b.x[sorted[c]][f]
		})

		for k := range leftSum {
			leftSum[k], leftSq[k] = 0, 0
		}

		for i := 0; i < n-1; i++ {
			for k, v := range b.y[sorted[i]] {
				leftSum[k] += v
				leftSq[k] += v * v
			}

			lo, hi := b.x[sorted[i]][f], b.x[sorted[i+1]][f]
			if lo == hi {
				continue
			}
			nLeft, nRight := i+1, n-i-1
			if nLeft < minLeaf || nRight < minLeaf {
				continue
			}

			for k := range rightSum {
				rightSum[k] = sum[k] - leftSum[k]
				rightSq[k] = sq[k] - leftSq[k]
			}
			gain := impurity - sse(leftSum, leftSq, nLeft) - sse(rightSum, rightSq, nRight)
			if gain <= best.gain {
				continue
			}

			threshold := lo + (hi-lo)/2
			if threshold >= hi {
				threshold = lo
			}
			best = split{feature: f, threshold: threshold, gain: gain}
			found = true
		}
	}

	return best, found
}
