package engine

// View is the filtered row subset plus the per-row flags every chart
// consumes. Built once per interaction pass; rows are shared with the
// table, never copied or mutated.
type View struct {
	Table       *IndicatorTable
	Rows        []CountryRecord
	Highlighted []bool
	Brushed     []bool
	BrushActive bool
	Sel         Snapshot
}

// BuildView applies the region filter first, then derives highlight
// flags from the selection and delegates the brush mask to
// EvaluateBrush over the filtered rows.
func BuildView(t *IndicatorTable, sel Snapshot) *View {
	var rows []CountryRecord
	if sel.Region == "" || sel.Region == RegionAll {
		rows = t.Rows
	} else {
		rows = make([]CountryRecord, 0, len(t.Rows))
		for _, r := range t.Rows {
			if r.Continent == sel.Region {
				rows = append(rows, r)
			}
		}
	}

	v := &View{
		Table:       t,
		Rows:        rows,
		Highlighted: make([]bool, len(rows)),
		Sel:         sel,
	}
	for i := range rows {
		v.Highlighted[i] = sel.Highlighted[rows[i].ISO3]
	}
	v.Brushed, v.BrushActive = EvaluateBrush(rows, sel.Brush)
	return v
}

// HighlightedISOs returns the highlighted codes actually visible in
// this view, in row order.
func (v *View) HighlightedISOs() []string {
	var out []string
	for i := range v.Rows {
		if v.Highlighted[i] {
			out = append(out, v.Rows[i].ISO3)
		}
	}
	return out
}
