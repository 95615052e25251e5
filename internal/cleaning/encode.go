package cleaning

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"surveypipe/domain/table"
)

// encoded holds the numeric view of a table used only for correlation
// computation. Categorical columns are label-encoded over the sorted
// distinct text forms of their values, with missing folded into a
// "nan" category. The encoding is never written back to the table.
type encoded struct {
	names  []string
	series map[string][]float64
	target []float64
}

type pair struct {
	a, b string
}

// encodeColumns builds the numeric view of every column except the
// target, which is encoded separately so tie-breaks can consult it
func encodeColumns(t *table.Table, targetName string) *encoded {
	e := &encoded{series: make(map[string][]float64)}
	for _, name := range t.ColumnNames() {
		col, _ := t.Column(name)
		series := encodeColumn(col)
		if name == targetName {
			e.target = series
			continue
		}
		e.names = append(e.names, name)
		e.series[name] = series
	}
	return e
}

func encodeColumn(col *table.Column) []float64 {
	if col.IsNumeric() {
		out := make([]float64, len(col.Values))
		for i, v := range col.Values {
			if v.IsMissing() {
				out[i] = math.NaN()
			} else {
				out[i] = v.Num
			}
		}
		return out
	}

	texts := make([]string, len(col.Values))
	distinct := make(map[string]struct{})
	for i, v := range col.Values {
		text := v.Text()
		if v.IsMissing() {
			text = "nan"
		}
		texts[i] = text
		distinct[text] = struct{}{}
	}
	classes := make([]string, 0, len(distinct))
	for text := range distinct {
		classes = append(classes, text)
	}
	sort.Strings(classes)
	ranks := make(map[string]float64, len(classes))
	for i, c := range classes {
		ranks[c] = float64(i)
	}
	out := make([]float64, len(texts))
	for i, text := range texts {
		out[i] = ranks[text]
	}
	return out
}

// correlatedPairs walks the lower triangle of the correlation matrix
// and returns every pair whose absolute correlation strictly exceeds
// the threshold. Pair order follows the column order of the table, so
// the result is deterministic for a given input.
func (e *encoded) correlatedPairs(threshold float64) []pair {
	var pairs []pair
	for i := range e.names {
		for j := 0; j < i; j++ {
			corr, ok := pairCorrelation(e.series[e.names[i]], e.series[e.names[j]])
			if ok && abs(corr) > threshold {
				pairs = append(pairs, pair{a: e.names[i], b: e.names[j]})
			}
		}
	}
	return pairs
}

// pairCorrelation computes the Pearson correlation over the rows where
// both series are present. It reports false when fewer than two
// complete observations exist or either side has zero variance.
func pairCorrelation(x, y []float64) (float64, bool) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0, false
	}
	corr := stat.Correlation(xs, ys, nil)
	if math.IsNaN(corr) {
		return 0, false
	}
	return corr, true
}
