package forest

import (
	"math/rand"
	"sort"
)

// Node is one tree node. Leaves have Feature -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
}

// Tree is a binary regression tree stored as a flat node list; node 0 is
// the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
	// Importance is the total weighted variance reduction per feature.
	Importance []float64 `json:"importance"`
}

func (t *Tree) predict(row []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeBuilder struct {
	config   Config
	x        [][]float64
	y        []float64
	rng      *rand.Rand
	features int
	tree     *Tree
}

type split struct {
	feature   int
	threshold float64
	score     float64
	found     bool
}

func buildTree(config Config, x [][]float64, y []float64, samples []int, rng *rand.Rand) *Tree {
	b := &treeBuilder{
		config:   config,
		x:        x,
		y:        y,
		rng:      rng,
		features: len(x[0]),
		tree:     &Tree{Importance: make([]float64, len(x[0]))},
	}
	b.grow(samples, 0)
	return b.tree
}

func (b *treeBuilder) grow(samples []int, depth int) int {
	id := len(b.tree.Nodes)

	sum, sumSq := 0.0, 0.0
	for _, s := range samples {
		sum += b.y[s]
		sumSq += b.y[s] * b.y[s]
	}
	n := float64(len(samples))
	mean := sum / n
	b.tree.Nodes = append(b.tree.Nodes, Node{Feature: -1, Value: mean})

	if len(samples) < b.config.MinSamplesSplit || len(samples) < 2*b.config.MinSamplesLeaf {
		return id
	}
	if b.config.MaxDepth > 0 && depth >= b.config.MaxDepth {
		return id
	}
	impurity := sumSq - sum*sum/n
	if impurity <= 1e-12 {
		return id
	}

	best := b.bestSplit(samples, sum)
	if !best.found {
		return id
	}

	var left, right []int
	for _, s := range samples {
		if b.x[s][best.feature] <= best.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return id
	}

	// best.score is sum^2/n of both children; the reduction in squared
	// error is that minus the parent's sum^2/n.
	b.tree.Importance[best.feature] += best.score - sum*sum/n

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.tree.Nodes[id] = Node{Feature: best.feature, Threshold: best.threshold, Left: l, Right: r, Value: mean}
	return id
}

func (b *treeBuilder) maxFeatures() int {
	k := b.config.MaxFeatures
	if k <= 0 || k > b.features {
		k = b.features
	}
	return k
}

// bestSplit visits features in random order until maxFeatures of them have
// yielded a valid split. Features that cannot split the node (constant
// here, or no threshold honoring MinSamplesLeaf) do not count, so the
// search goes on past them as long as features remain.
func (b *treeBuilder) bestSplit(samples []int, total float64) split {
	var best split
	k := b.maxFeatures()
	tried := 0
	for _, f := range b.rng.Perm(b.features) {
		if tried >= k {
			break
		}
		var s split
		if b.config.Kind == KindExtraTrees {
			s = b.randomSplit(samples, f, total)
		} else {
			s = b.exhaustiveSplit(samples, f, total)
		}
		if !s.found {
			continue
		}
		tried++
		if !best.found || s.score > best.score {
			best = s
		}
	}
	return best
}

// exhaustiveSplit scans every midpoint between distinct sorted values of f.
func (b *treeBuilder) exhaustiveSplit(samples []int, f int, total float64) split {
	order := make([]int, len(samples))
	copy(order, samples)
	sort.Slice(order, func(i, j int) bool {
		return b.x[order[i]][f] < b.x[order[j]][f]
	})

	minLeaf := b.config.MinSamplesLeaf
	n := len(order)
	best := split{feature: f}
	leftSum := 0.0
	for i := 0; i < n-1; i++ {
		leftSum += b.y[order[i]]
		nl := i + 1
		nr := n - nl
		if nl < minLeaf {
			continue
		}
		if nr < minLeaf {
			break
		}
		v, next := b.x[order[i]][f], b.x[order[i+1]][f]
		if v == next {
			continue
		}
		rightSum := total - leftSum
		score := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr)
		if !best.found || score > best.score {
			best.found = true
			best.score = score
			best.threshold = v + (next-v)/2
			if best.threshold >= next {
				best.threshold = v
			}
		}
	}
	return best
}

// randomSplit draws one threshold uniformly between the extremes of f.
func (b *treeBuilder) randomSplit(samples []int, f int, total float64) split {
	lo, hi := b.x[samples[0]][f], b.x[samples[0]][f]
	for _, s := range samples[1:] {
		v := b.x[s][f]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return split{feature: f}
	}

	threshold := lo + b.rng.Float64()*(hi-lo)
	if threshold >= hi {
		threshold = lo
	}

	leftSum, nl := 0.0, 0
	for _, s := range samples {
		if b.x[s][f] <= threshold {
			leftSum += b.y[s]
			nl++
		}
	}
	nr := len(samples) - nl
	if nl < b.config.MinSamplesLeaf || nr < b.config.MinSamplesLeaf {
		return split{feature: f}
	}

	rightSum := total - leftSum
	return split{
		feature:   f,
		threshold: threshold,
		score:     leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr),
		found:     true,
	}
}
