// Package merging joins the cleaned per-file tables around the table
// that carries the score column, and splits wide tables by positional
// column ranges.
package merging

import (
	"log"

	"surveypipe/domain/table"
)

// PlausibleValue1 is relocated to the end of merged tables so the
// primary score reads last in exported files. Display convention only.
const PlausibleValue1 = "Plausible Value 1 in Mathematics"

// FullMergedName is the collection key of the fully folded table
const FullMergedName = "full_merged"

// MergedSuffix is appended to a table's name for its pairwise merge
const MergedSuffix = "_merged"

// Engine merges a collection of tables around the score-bearing base
type Engine struct {
	scoreColumn   string
	keyCandidates []string
}

// NewEngine creates a merge engine. keyCandidates are tried in order
// when discovering a join key; when none qualifies the first common
// column (in base-table order) is used instead.
func NewEngine(scoreColumn string, keyCandidates []string) *Engine {
	return &Engine{scoreColumn: scoreColumn, keyCandidates: keyCandidates}
}

// Process returns a new collection holding the original tables, one
// pairwise merge of the base with every joinable other table, and one
// fully merged table folding them all in. When no table contains the
// score column the result is empty. Unjoinable tables are skipped.
func (e *Engine) Process(c *table.Collection) (*table.Collection, error) {
	out := table.NewCollection()

	baseName := ""
	var base *table.Table
	for _, name := range c.Names() {
		t, _ := c.Get(name)
		if t.HasColumn(e.scoreColumn) {
			baseName, base = name, t
			break
		}
	}
	if base == nil {
		log.Printf("[Merger] No table contains score column %q", e.scoreColumn)
		return out, nil
	}
	log.Printf("[Merger] Base table: %q", baseName)

	for _, name := range c.Names() {
		t, _ := c.Get(name)
		if err := out.Add(name, t); err != nil {
			return nil, err
		}
	}

	type joined struct {
		name string
		key  string
	}
	var joins []joined

	for _, name := range c.Names() {
		if name == baseName {
			continue
		}
		other, _ := c.Get(name)
		key := e.discoverKey(base, other)
		if key == "" {
			log.Printf("[Merger] No common key with %q, skipping", name)
			continue
		}
		merged := leftJoin(base, other, key)
		merged.MoveToEnd(PlausibleValue1)
		if err := out.Add(name+MergedSuffix, merged); err != nil {
			return nil, err
		}
		joins = append(joins, joined{name: name, key: key})
	}

	if len(joins) == 0 {
		log.Printf("[Merger] No table joined, omitting %s", FullMergedName)
		return out, nil
	}

	full := base.Clone()
	for _, j := range joins {
		other, _ := c.Get(j.name)
		full = leftJoin(full, other, j.key)
		full.MoveToEnd(PlausibleValue1)
	}
	if err := out.Add(FullMergedName, full); err != nil {
		return nil, err
	}
	return out, nil
}

// discoverKey picks the join key for a base/other pair: the first
// candidate present in both, else the first of the base's columns (in
// base order) present in the other. Empty when nothing is shared.
func (e *Engine) discoverKey(base, other *table.Table) string {
	for _, key := range e.keyCandidates {
		if base.HasColumn(key) && other.HasColumn(key) {
			return key
		}
	}
	for _, name := range base.ColumnNames() {
		if other.HasColumn(name) {
			return name
		}
	}
	return ""
}

// leftJoin keeps every base row exactly once, attaching the right
// table's columns matched on the key. Duplicate keys on the right
// contribute their first occurrence only. Right columns whose names
// collide with existing columns are dropped, so the base always wins.
func leftJoin(base, other *table.Table, key string) *table.Table {
	result := base.Clone()

	baseKey, ok := base.Column(key)
	if !ok {
		return result
	}
	otherKey, ok := other.Column(key)
	if !ok {
		return result
	}

	rowIndex := make(map[table.Value]int, otherKey.Len())
	for i, v := range otherKey.Values {
		if v.IsMissing() {
			continue
		}
		if _, seen := rowIndex[v]; !seen {
			rowIndex[v] = i
		}
	}

	for _, name := range other.ColumnNames() {
		if name == key || result.HasColumn(name) {
			continue
		}
		src, _ := other.Column(name)
		values := make([]table.Value, baseKey.Len())
		for r, kv := range baseKey.Values {
			if kv.IsMissing() {
				values[r] = table.Missing()
				continue
			}
			if idx, found := rowIndex[kv]; found {
				values[r] = src.Values[idx]
			} else {
				values[r] = table.Missing()
			}
		}
		_ = result.AddColumn(name, values)
	}
	return result
}
