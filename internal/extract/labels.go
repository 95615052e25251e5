package extract

import (
	"log"
	"strings"

	"surveypipe/domain/table"
	"surveypipe/ports"
)

// ApplyLabels rewrites a raw extracted table into its human-readable
// form: coded cell values are replaced by their category text, then
// columns are renamed to their display labels. Columns without a label,
// or whose label would collide with an existing name, keep their raw
// name. Values without a dictionary entry keep their raw form.
func ApplyLabels(t *table.Table, meta ports.SourceMeta) *table.Table {
	out := t.Clone()

	for _, name := range out.ColumnNames() {
		dict := meta.ValueLabels[name]
		if len(dict) == 0 {
			continue
		}
		col, _ := out.Column(name)
		for i, v := range col.Values {
			if v.IsMissing() {
				continue
			}
			if label, ok := dict[v.Text()]; ok {
				col.Values[i] = table.Str(label)
			}
		}
	}

	for _, name := range out.ColumnNames() {
		label := strings.TrimSpace(meta.Labels[name])
		if label == "" || label == name {
			continue
		}
		if err := out.RenameColumn(name, label); err != nil {
			log.Printf("[Extract] Keeping raw name %q: label %q collides", name, label)
		}
	}
	return out
}
