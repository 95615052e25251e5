// Package cleaning implements the column-elimination pipeline: text
// normalization, sentinel masking, type coercion, then pruning of
// correlated, uniform and sparse columns.
package cleaning

import (
	"log"
	"strconv"
	"strings"

	"surveypipe/domain/core"
	"surveypipe/domain/table"
	"surveypipe/internal/errors"
)

// DefaultSentinelCutoff marks SPSS-style error codes (9997, 9999, ...)
const DefaultSentinelCutoff = 9990.0

// Thresholds bundles the knobs of one cleaning run. Protected columns
// are never masked or dropped. When TargetColumn is set, correlated
// pairs drop whichever member tracks the target less closely.
type Thresholds struct {
	MissingRatio    float64
	UniformityRatio float64
	Correlation     float64
	SentinelCutoff  float64
	Protected       []string
	TargetColumn    string
}

// DefaultThresholds returns a permissive configuration where no
// pruning stage drops anything
func DefaultThresholds() Thresholds {
	return Thresholds{
		MissingRatio:    1.0,
		UniformityRatio: 1.0,
		Correlation:     1.0,
		SentinelCutoff:  DefaultSentinelCutoff,
	}
}

// StageReport records what one stage did to the table
type StageReport struct {
	Stage   string
	Dropped []string
	Skipped bool
	Reason  string
}

// Report aggregates the stage outcomes of one cleaning run
type Report struct {
	RunID  core.ID
	Stages []StageReport
}

// TotalDropped returns the number of columns removed across all stages
func (r *Report) TotalDropped() int {
	n := 0
	for _, s := range r.Stages {
		n += len(s.Dropped)
	}
	return n
}

// Pipeline applies the cleaning stages in fixed order
type Pipeline struct {
	thresholds Thresholds
	protected  map[string]struct{}
}

// New creates a pipeline with the given thresholds
func New(thresholds Thresholds) *Pipeline {
	if thresholds.SentinelCutoff == 0 {
		thresholds.SentinelCutoff = DefaultSentinelCutoff
	}
	protected := make(map[string]struct{}, len(thresholds.Protected))
	for _, name := range thresholds.Protected {
		protected[name] = struct{}{}
	}
	return &Pipeline{thresholds: thresholds, protected: protected}
}

type stage struct {
	name string
	run  func(t *table.Table) ([]string, error)
}

// Clean runs every stage over the table, mutating it in place. A stage
// failure leaves the table unchanged for that stage and is recorded in
// the report, never propagated.
func (p *Pipeline) Clean(t *table.Table) (*table.Table, *Report) {
	report := &Report{RunID: core.NewID()}

	stages := []stage{
		{"normalize", p.normalize},
		{"sentinel", p.maskSentinels},
		{"coerce", p.coerceTypes},
		{"correlation", p.dropCorrelated},
		{"uniformity", p.dropUniform},
		{"missingness", p.dropSparse},
	}

	for _, s := range stages {
		dropped, err := s.run(t)
		if err != nil {
			log.Printf("[Cleaner] Stage %s skipped: %v", s.name, err)
			report.Stages = append(report.Stages, StageReport{
				Stage:   s.name,
				Skipped: true,
				Reason:  err.Error(),
			})
			continue
		}
		if len(dropped) > 0 {
			log.Printf("[Cleaner] Stage %s dropped %d columns", s.name, len(dropped))
		}
		report.Stages = append(report.Stages, StageReport{Stage: s.name, Dropped: dropped})
	}
	return t, report
}

func (p *Pipeline) isProtected(name string) bool {
	_, ok := p.protected[name]
	return ok
}

// textCleaner rewrites quote marks and commas away and turns line
// breaks and tabs into spaces so downstream CSV output stays one row
// per record
var textCleaner = strings.NewReplacer(
	"'", " ",
	",", "",
	"\"", "",
	"\\", "",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

func cleanText(s string) string {
	return strings.TrimSpace(textCleaner.Replace(s))
}

// normalize strips disruptive characters from column names and from
// every text value. Missing values pass through untouched. A name
// whose cleaned form collides with another column keeps its raw name.
func (p *Pipeline) normalize(t *table.Table) ([]string, error) {
	for _, name := range t.ColumnNames() {
		cleaned := cleanText(name)
		if cleaned == name || cleaned == "" {
			continue
		}
		if err := t.RenameColumn(name, cleaned); err != nil {
			log.Printf("[Cleaner] Keeping raw column name %q: %v", name, err)
		}
	}
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		for j, v := range col.Values {
			if v.IsString() {
				col.Values[j] = table.Str(cleanText(v.Str))
			}
		}
	}
	return nil, nil
}

// maskSentinels rewrites numeric values above the sentinel cutoff to
// missing, skipping protected identifier columns
func (p *Pipeline) maskSentinels(t *table.Table) ([]string, error) {
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		if p.isProtected(col.Name) {
			continue
		}
		for j, v := range col.Values {
			if v.IsNumeric() && v.Num > p.thresholds.SentinelCutoff {
				col.Values[j] = table.Missing()
			}
		}
	}
	return nil, nil
}

// coerceTypes converts the common textual missing markers to missing,
// then turns any column whose remaining values all parse as numbers
// into a numeric column. Columns with at least one unparseable value
// stay categorical.
func (p *Pipeline) coerceTypes(t *table.Table) ([]string, error) {
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		for j, v := range col.Values {
			if v.IsString() {
				switch v.Str {
				case "Missing", "Invalid", "N/A":
					col.Values[j] = table.Missing()
				}
			}
		}

		parsed := make([]table.Value, len(col.Values))
		numeric := true
		for j, v := range col.Values {
			switch {
			case v.IsMissing():
				parsed[j] = table.Missing()
			case v.IsNumeric():
				parsed[j] = v
			default:
				f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
				if err != nil {
					numeric = false
				} else {
					parsed[j] = table.Num(f)
				}
			}
			if !numeric {
				break
			}
		}
		if numeric {
			col.Values = parsed
		}
	}
	return nil, nil
}

// dropUniform removes columns whose most frequent non-missing value
// reaches the uniformity threshold. A threshold of 1.0 or more makes
// the stage a no-op. Columns with no non-missing values are left alone.
func (p *Pipeline) dropUniform(t *table.Table) ([]string, error) {
	threshold := p.thresholds.UniformityRatio
	if threshold >= 1.0 {
		return nil, nil
	}

	var toDrop []string
	for _, name := range t.ColumnNames() {
		if p.isProtected(name) {
			continue
		}
		col, _ := t.Column(name)
		counts := make(map[table.Value]int)
		valid := 0
		for _, v := range col.Values {
			if v.IsMissing() {
				continue
			}
			counts[v]++
			valid++
		}
		if valid == 0 {
			continue
		}
		top := 0
		for _, c := range counts {
			if c > top {
				top = c
			}
		}
		if float64(top)/float64(valid) >= threshold {
			toDrop = append(toDrop, name)
		}
	}
	return t.DropColumns(toDrop...), nil
}

// dropSparse removes columns whose missing fraction strictly exceeds
// the missing threshold
func (p *Pipeline) dropSparse(t *table.Table) ([]string, error) {
	rows := t.NumRows()
	if rows == 0 {
		return nil, nil
	}

	var toDrop []string
	for _, name := range t.ColumnNames() {
		if p.isProtected(name) {
			continue
		}
		col, _ := t.Column(name)
		ratio := float64(col.MissingCount()) / float64(rows)
		if ratio > p.thresholds.MissingRatio {
			toDrop = append(toDrop, name)
		}
	}
	return t.DropColumns(toDrop...), nil
}

// dropCorrelated removes one column from each pair whose absolute
// Pearson correlation strictly exceeds the threshold
func (p *Pipeline) dropCorrelated(t *table.Table) ([]string, error) {
	if p.thresholds.Correlation >= 1.0 {
		return nil, nil
	}

	encoded := encodeColumns(t, p.thresholds.TargetColumn)
	if len(encoded.names) == 0 {
		return nil, errors.StageFailed("correlation", core.ErrEmptyResult)
	}

	pairs := encoded.correlatedPairs(p.thresholds.Correlation)

	toDrop := make(map[string]struct{})
	for _, pair := range pairs {
		victim := pair.b
		if encoded.target != nil {
			corrA, okA := pairCorrelation(encoded.series[pair.a], encoded.target)
			corrB, okB := pairCorrelation(encoded.series[pair.b], encoded.target)
			if okA && okB && abs(corrA) < abs(corrB) {
				victim = pair.a
			}
		}
		if !p.isProtected(victim) {
			toDrop[victim] = struct{}{}
		}
	}
	if len(toDrop) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(toDrop))
	for _, name := range t.ColumnNames() {
		if _, ok := toDrop[name]; ok {
			names = append(names, name)
		}
	}
	return t.DropColumns(names...), nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
