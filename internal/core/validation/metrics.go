package validation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/agenthands/papersift/internal/core/model"
)

// contingency cross-tabulates two assignments over their common keys.
type contingency struct {
	n     int
	cells map[[2]int]int
	rows  map[int]int
	cols  map[int]int
}

func newContingency(a, b model.Assignment) contingency {
	c := contingency{
		cells: make(map[[2]int]int),
		rows:  make(map[int]int),
		cols:  make(map[int]int),
	}
	for key, ca := range a {
		cb, ok := b[key]
		if !ok {
			continue
		}
		c.cells[[2]int{ca, cb}]++
		c.rows[ca]++
		c.cols[cb]++
		c.n++
	}
	return c
}

func pairs(n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(combin.Binomial(n, 2))
}

// ARI is the adjusted Rand index of a and b over their common keys. Fewer
// than two common keys score 0; identical trivial partitions score 1.
func ARI(a, b model.Assignment) float64 {
	c := newContingency(a, b)
	if c.n < 2 {
		return 0
	}

	var index, sumRows, sumCols float64
	for _, v := range c.cells {
		index += pairs(v)
	}
	for _, v := range c.rows {
		sumRows += pairs(v)
	}
	for _, v := range c.cols {
		sumCols += pairs(v)
	}

	expected := sumRows * sumCols / pairs(c.n)
	maxIndex := (sumRows + sumCols) / 2
	if maxIndex == expected {
		return 1
	}
	return clamp((index-expected)/(maxIndex-expected), -1, 1)
}

// NMI is the mutual information of a and b normalised by the arithmetic
// mean of their entropies. Two single-cluster partitions score 1.
func NMI(a, b model.Assignment) float64 {
	c := newContingency(a, b)
	if c.n == 0 {
		return 0
	}
	n := float64(c.n)

	ha := stat.Entropy(distribution(c.rows, n))
	hb := stat.Entropy(distribution(c.cols, n))
	if ha == 0 && hb == 0 {
		return 1
	}

	// sorted so the float sum does not depend on map order
	cells := make([][2]int, 0, len(c.cells))
	for cell := range c.cells {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i][0] != cells[j][0] {
			return cells[i][0] < cells[j][0]
		}
		return cells[i][1] < cells[j][1]
	})

	var mi float64
	for _, cell := range cells {
		nij := float64(c.cells[cell])
		mi += nij / n * math.Log(n*nij/(float64(c.rows[cell[0]])*float64(c.cols[cell[1]])))
	}
	denom := (ha + hb) / 2
	if denom == 0 {
		return 0
	}
	return clamp(mi/denom, 0, 1)
}

func distribution(counts map[int]int, n float64) []float64 {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	p := make([]float64, len(keys))
	for i, k := range keys {
		p[i] = float64(counts[k]) / n
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
