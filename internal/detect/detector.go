// Package detect guesses which columns of a survey table carry the score,
// the school identifier, and the student identifier, by scoring column
// names against per-role keyword sets.
package detect

import (
	"log"
	"regexp"
	"strings"

	"surveypipe/domain/table"
)

// Role classifies a column for merging and cleaning purposes
type Role int

const (
	RoleNone Role = iota
	RoleScore
	RoleSchoolID
	RoleStudentID
)

// Keywords holds the per-role keyword sets used for name scoring
type Keywords struct {
	Score   []string
	School  []string
	Student []string
}

// DefaultKeywords returns the keyword sets tuned for assessment data
func DefaultKeywords() Keywords {
	return Keywords{
		Score:   []string{"plausible", "math", "value"},
		School:  []string{"school", "id"},
		Student: []string{"student", "id"},
	}
}

// Detection is the best-guess role assignment for one table.
// An empty string means the role was not detected.
type Detection struct {
	Score   string
	School  string
	Student string
}

// Detector scores column names against keyword sets
type Detector struct {
	keywords Keywords
}

// New creates a detector with the given keyword sets
func New(keywords Keywords) *Detector {
	return &Detector{keywords: keywords}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)
var nonAlnumSpace = regexp.MustCompile(`[^a-z0-9 ]`)

// compress lowercases and strips everything but letters and digits
func compress(text string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(text), "")
}

// keepWords lowercases and turns separators into spaces, preserving
// word boundaries
func keepWords(text string) string {
	return nonAlnumSpace.ReplaceAllString(strings.ToLower(text), " ")
}

// scoreName rates a column name against a keyword set: +2 for a
// whole-word match on the word-preserving form, else +1 for a substring
// match on the compressed form. Each keyword contributes at most once.
func scoreName(name string, keywords []string) int {
	raw := keepWords(name)
	norm := compress(name)
	score := 0
	for _, kw := range keywords {
		kwRaw := keepWords(kw)
		wordRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(kwRaw) + `\b`)
		if wordRe.MatchString(raw) {
			score += 2
			continue
		}
		if strings.Contains(norm, compress(kw)) {
			score++
		}
	}
	return score
}

// bestColumn returns the column whose name scores highest against the
// keyword set. Ties are broken by the count of distinct non-missing
// values: true identifiers have higher cardinality than categorical
// lookalikes. Returns "" when no column matches at all.
func bestColumn(t *table.Table, keywords []string) string {
	var best []string
	maxScore := 0
	for _, name := range t.ColumnNames() {
		s := scoreName(name, keywords)
		if s > maxScore {
			maxScore = s
			best = []string{name}
		} else if s == maxScore && s > 0 {
			best = append(best, name)
		}
	}
	if maxScore == 0 {
		return ""
	}
	if len(best) == 1 {
		return strings.TrimSpace(best[0])
	}
	winner := best[0]
	maxDistinct := -1
	for _, name := range best {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		if n := col.DistinctNonMissing(); n > maxDistinct {
			maxDistinct = n
			winner = name
		}
	}
	return strings.TrimSpace(winner)
}

// Detect returns the best-guess score, school and student columns for
// a single table
func (d *Detector) Detect(t *table.Table) Detection {
	return Detection{
		Score:   bestColumn(t, d.keywords.Score),
		School:  bestColumn(t, d.keywords.School),
		Student: bestColumn(t, d.keywords.Student),
	}
}

// DetectLeveled searches for a column derived from the detected score:
// its compressed name must contain the compressed score name plus the
// token "level". The first match in column order wins.
func (d *Detector) DetectLeveled(t *table.Table, scoreColumn string) string {
	if scoreColumn == "" {
		return ""
	}
	ns := compress(scoreColumn)
	for _, name := range t.ColumnNames() {
		nc := compress(name)
		if strings.Contains(nc, ns) && strings.Contains(nc, "level") {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// DetectAcross applies detection over a collection of tables. The score
// column comes from the first table where one is found. The school and
// student columns come, across all tables, from whichever detected
// column has the highest distinct-value count; ties keep the earlier
// table's pick. Tables that fail detection are skipped, not fatal.
func (d *Detector) DetectAcross(c *table.Collection) Detection {
	var result Detection
	maxSchool, maxStudent := -1, -1

	for _, name := range c.Names() {
		t, ok := c.Get(name)
		if !ok || t.NumCols() == 0 {
			log.Printf("[Detect] Skipping table %q: no columns", name)
			continue
		}
		det := d.Detect(t)

		if result.Score == "" && det.Score != "" {
			result.Score = det.Score
		}
		if det.School != "" {
			if col, ok := t.Column(det.School); ok {
				if n := col.DistinctNonMissing(); n > maxSchool {
					maxSchool = n
					result.School = det.School
				}
			}
		}
		if det.Student != "" {
			if col, ok := t.Column(det.Student); ok {
				if n := col.DistinctNonMissing(); n > maxStudent {
					maxStudent = n
					result.Student = det.Student
				}
			}
		}
	}
	return result
}
