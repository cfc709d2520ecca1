package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/stat"

	"backend/internal/models"
)

const (
	minTopN = 3
	maxTopN = 50

	brushedTableLimit = 40
	splomIndicators   = 5
)

// BuildKPI summarizes the filtered view for the dashboard cards.
func BuildKPI(v *View, indicator string) *models.KPIReport {
	rep := &models.KPIReport{
		Countries:  len(v.Rows),
		Indicators: len(v.Table.Indicators),
	}
	first := true
	var sum float64
	var n int
	for i := range v.Rows {
		val, ok := v.Rows[i].Value(indicator)
		if !ok {
			continue
		}
		sum += val
		n++
		if first || val > rep.Maximum {
			rep.Maximum = val
			rep.TopCountry = v.Rows[i].Name
		}
		if first || val < rep.Minimum {
			rep.Minimum = val
			rep.BottomCountry = v.Rows[i].Name
		}
		first = false
	}
	if n > 0 {
		rep.Average = sum / float64(n)
	}
	return rep
}

// BuildMap produces the choropleth payload: one entry per country
// with a present value, an optional log10 transform (non-positive
// values hidden, counted in the notes), and the highlight overlay.
func BuildMap(v *View, indicator string, logScale bool) (*models.MapPayload, error) {
	if indicator == "" || !v.Table.HasIndicator(indicator) {
		return nil, fmt.Errorf("no indicator selected")
	}
	p := &models.MapPayload{
		Indicator:   indicator,
		Label:       prettyLabel(indicator),
		Highlighted: v.HighlightedISOs(),
	}
	hidden := 0
	for i := range v.Rows {
		val, ok := v.Rows[i].Value(indicator)
		if !ok {
			continue
		}
		if logScale {
			if val <= 0 {
				hidden++
				continue
			}
			val = math.Log10(val)
		}
		p.Locations = append(p.Locations, v.Rows[i].ISO3)
		p.Names = append(p.Names, v.Rows[i].Name)
		p.Values = append(p.Values, val)
	}
	if logScale {
		p.Label = "Log10 " + p.Label
		if hidden > 0 {
			p.Notes = append(p.Notes, fmt.Sprintf("%d values <= 0 hidden for log10.", hidden))
		}
	}
	if len(v.Table.Unmatched) > 0 {
		sample := v.Table.Unmatched
		more := ""
		if len(sample) > 5 {
			sample = sample[:5]
			more = "..."
		}
		p.Notes = append(p.Notes, fmt.Sprintf("Unmatched regions: %s%s", strings.Join(sample, ", "), more))
	}
	return p, nil
}

// BuildScatter groups the bivariate scatter by government type so the
// legend doubles as a categorical filter. Rows missing either axis
// are dropped.
func BuildScatter(v *View, x, y string) (*models.ScatterPayload, error) {
	if x == "" || y == "" || !v.Table.HasIndicator(x) || !v.Table.HasIndicator(y) {
		return nil, fmt.Errorf("scatter needs two indicators")
	}
	groups := make(map[string][]models.ScatterPoint)
	for i := range v.Rows {
		xv, okX := v.Rows[i].Value(x)
		yv, okY := v.Rows[i].Value(y)
		if !okX || !okY {
			continue
		}
		gov := v.Rows[i].GovernmentType
		if gov == "" {
			gov = "Unknown"
		}
		groups[gov] = append(groups[gov], models.ScatterPoint{
			ISO3:        v.Rows[i].ISO3,
			Name:        v.Rows[i].Name,
			X:           xv,
			Y:           yv,
			Highlighted: v.Highlighted[i],
		})
	}
	p := &models.ScatterPayload{XLabel: prettyLabel(x), YLabel: prettyLabel(y)}
	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)
	for _, g := range names {
		p.Groups = append(p.Groups, models.ScatterGroup{GovernmentType: g, Points: groups[g]})
	}
	return p, nil
}

// ClampTopN forces the ranking size into [3, 50]; zero means the
// default of 10. Invalid input is clamped, never rejected.
func ClampTopN(n int) int {
	if n == 0 {
		n = 10
	}
	if n < minTopN {
		return minTopN
	}
	if n > maxTopN {
		return maxTopN
	}
	return n
}

// BuildRank returns the Top-N countries by indicator value,
// descending; ties break on name so the order is reproducible.
func BuildRank(v *View, indicator string, topN int) (*models.RankPayload, error) {
	if indicator == "" || !v.Table.HasIndicator(indicator) {
		return nil, fmt.Errorf("no indicator selected")
	}
	topN = ClampTopN(topN)
	var entries []models.RankEntry
	for i := range v.Rows {
		val, ok := v.Rows[i].Value(indicator)
		if !ok {
			continue
		}
		entries = append(entries, models.RankEntry{
			ISO3:        v.Rows[i].ISO3,
			Name:        v.Rows[i].Name,
			Value:       val,
			Highlighted: v.Highlighted[i],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return &models.RankPayload{
		Indicator: indicator,
		Heading:   "Top-N ranking based on " + prettyLabel(indicator),
		TopN:      topN,
		Entries:   entries,
	}, nil
}

// BuildCorrelation computes the pairwise-complete Pearson matrix over
// the chosen indicators, rounded to 2 decimals. Cells with fewer than
// two complete pairs stay null.
func BuildCorrelation(v *View, params []string) (*models.CorrelationPayload, error) {
	cols := filterIndicators(v.Table, params)
	if len(cols) == 0 {
		cols = v.Table.Indicators
	}
	if len(cols) < 2 {
		return nil, fmt.Errorf("select at least 2 parameters")
	}
	p := &models.CorrelationPayload{
		Indicators: cols,
		Matrix:     make([][]*float64, len(cols)),
	}
	for i := range cols {
		p.Matrix[i] = make([]*float64, len(cols))
		for j := range cols {
			if j < i {
				p.Matrix[i][j] = p.Matrix[j][i]
				continue
			}
			if r, ok := pearson(v.Rows, cols[i], cols[j]); ok {
				rounded := round2(r)
				p.Matrix[i][j] = &rounded
			}
		}
	}
	return p, nil
}

// pearson correlates two indicators over rows where both are present.
func pearson(rows []CountryRecord, a, b string) (float64, bool) {
	var xs, ys []float64
	for i := range rows {
		x, okX := rows[i].Value(a)
		y, okY := rows[i].Value(b)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0, false
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// BuildParcoords serves the parallel-coordinates plot: every axis
// with its observed range and any restored brush constraint, plus one
// line per complete row.
func BuildParcoords(v *View) (*models.ParcoordsPayload, error) {
	cols := v.Table.Indicators
	if len(cols) < 2 {
		return nil, fmt.Errorf("need at least 2 indicators")
	}
	p := &models.ParcoordsPayload{}

	// complete rows only; a line needs a value on every axis
	for i := range v.Rows {
		line := make([]float64, 0, len(cols))
		complete := true
		for _, c := range cols {
			val, ok := v.Rows[i].Value(c)
			if !ok {
				complete = false
				break
			}
			line = append(line, val)
		}
		if !complete {
			continue
		}
		p.ISO3 = append(p.ISO3, v.Rows[i].ISO3)
		p.Names = append(p.Names, v.Rows[i].Name)
		p.Lines = append(p.Lines, line)
		p.Highlighted = append(p.Highlighted, v.Highlighted[i])
	}
	if len(p.Lines) == 0 {
		return nil, fmt.Errorf("no complete rows to plot")
	}
	for j, c := range cols {
		axis := models.ParcoordsAxis{Name: c, Label: prettyLabel(c)}
		axis.Min = p.Lines[0][j]
		axis.Max = p.Lines[0][j]
		for _, line := range p.Lines {
			if line[j] < axis.Min {
				axis.Min = line[j]
			}
			if line[j] > axis.Max {
				axis.Max = line[j]
			}
		}
		if rng, ok := v.Sel.Brush[c]; ok {
			axis.Constraint = []float64{rng[0], rng[1]}
		}
		p.Axes = append(p.Axes, axis)
	}
	return p, nil
}

// BuildBrushedTable is the linked table under the parcoords plot.
// With no active brush it returns a prompt, never the full table.
func BuildBrushedTable(v *View) *models.BrushedTablePayload {
	p := &models.BrushedTablePayload{
		Active:   v.BrushActive,
		Columns:  v.Table.Indicators,
		Selected: v.HighlightedISOs(),
	}
	if !v.BrushActive {
		p.Message = "Brush on axes to see selected countries."
		return p
	}
	for i := range v.Rows {
		if !v.Brushed[i] {
			continue
		}
		p.Matched++
		if len(p.Rows) >= brushedTableLimit {
			continue
		}
		row := models.BrushedRow{
			ISO3:      v.Rows[i].ISO3,
			Name:      v.Rows[i].Name,
			Continent: v.Rows[i].Continent,
			Values:    make([]*float64, len(v.Table.Indicators)),
		}
		for j, c := range v.Table.Indicators {
			if val, ok := v.Rows[i].Value(c); ok {
				vv := val
				row.Values[j] = &vv
			}
		}
		p.Rows = append(p.Rows, row)
	}
	p.Shown = len(p.Rows)
	return p
}

// BuildSplom covers pairwise relationships between the first few
// indicators; complete rows only.
func BuildSplom(v *View) (*models.SplomPayload, error) {
	cols := v.Table.Indicators
	if len(cols) > splomIndicators {
		cols = cols[:splomIndicators]
	}
	if len(cols) < 2 || len(v.Rows) < 3 {
		return nil, fmt.Errorf("not enough data for SPLOM")
	}
	p := &models.SplomPayload{Indicators: cols}
	for i := range v.Rows {
		row := make([]float64, 0, len(cols))
		complete := true
		for _, c := range cols {
			val, ok := v.Rows[i].Value(c)
			if !ok {
				complete = false
				break
			}
			row = append(row, val)
		}
		if !complete {
			continue
		}
		p.Rows = append(p.Rows, row)
		p.ISO3 = append(p.ISO3, v.Rows[i].ISO3)
		p.Names = append(p.Names, v.Rows[i].Name)
		p.Continents = append(p.Continents, v.Rows[i].Continent)
	}
	if len(p.Rows) < 3 {
		return nil, fmt.Errorf("not enough data for SPLOM")
	}
	return p, nil
}

// BuildComparison assembles the side-by-side country table for the
// multi-country picker. Unknown codes are skipped, not fatal.
func BuildComparison(t *IndicatorTable, isos []string) (*models.ComparisonPayload, error) {
	p := &models.ComparisonPayload{Indicators: t.Indicators}
	for _, iso := range isos {
		rec := t.ByISO(strings.ToUpper(strings.TrimSpace(iso)))
		if rec == nil {
			continue
		}
		col := models.ComparisonColumn{
			ISO3:           rec.ISO3,
			Name:           rec.Name,
			Continent:      rec.Continent,
			GovernmentType: rec.GovernmentType,
			Values:         make([]*float64, len(t.Indicators)),
		}
		for j, c := range t.Indicators {
			if val, ok := rec.Value(c); ok {
				vv := val
				col.Values[j] = &vv
			}
		}
		p.Countries = append(p.Countries, col)
	}
	if len(p.Countries) == 0 {
		return nil, fmt.Errorf("no known countries selected")
	}
	return p, nil
}

// filterIndicators keeps the requested params that exist in the table.
func filterIndicators(t *IndicatorTable, params []string) []string {
	var out []string
	for _, par := range params {
		if t.HasIndicator(par) {
			out = append(out, par)
		}
	}
	return out
}

// prettyLabel turns "petroleum_bbl_per_day" into "Petroleum Bbl Per Day".
func prettyLabel(indicator string) string {
	words := strings.FieldsFunc(indicator, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		if len(runes) == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(runes[0])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
