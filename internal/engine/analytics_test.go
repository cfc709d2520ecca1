package engine

import (
	"strings"
	"testing"
)

func analyticsTable() *IndicatorTable {
	return &IndicatorTable{
		Name:       "t",
		Indicators: []string{"area", "gdp"},
		Rows: []CountryRecord{
			{ISO3: "USA", Name: "United States", Continent: "North America", GovernmentType: "federal republic",
				Values: map[string]float64{"gdp": 10, "area": 100}},
			{ISO3: "CAN", Name: "Canada", Continent: "North America", GovernmentType: "federal parliamentary democracy",
				Values: map[string]float64{"gdp": 20, "area": 200}},
			{ISO3: "MEX", Name: "Mexico", Continent: "North America",
				Values: map[string]float64{"gdp": 30, "area": 300}},
			{ISO3: "BRA", Name: "Brazil", Continent: "South America",
				Values: map[string]float64{"gdp": 25}}, // area missing
		},
	}
}

func analyticsView() *View {
	return BuildView(analyticsTable(), NewSelectionState().Snapshot())
}

func TestBuildKPI(t *testing.T) {
	rep := BuildKPI(analyticsView(), "gdp")
	if rep.Countries != 4 || rep.Indicators != 2 {
		t.Errorf("counts = %d/%d, want 4/2", rep.Countries, rep.Indicators)
	}
	if rep.Average != 21.25 {
		t.Errorf("average = %v, want 21.25", rep.Average)
	}
	if rep.TopCountry != "Mexico" || rep.BottomCountry != "United States" {
		t.Errorf("extremes = %q/%q", rep.TopCountry, rep.BottomCountry)
	}
}

func TestClampTopN(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 10}, {1, 3}, {3, 3}, {10, 10}, {50, 50}, {999, 50}, {-5, 3},
	}
	for _, tc := range cases {
		if got := ClampTopN(tc.in); got != tc.want {
			t.Errorf("ClampTopN(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBuildRank(t *testing.T) {
	p, err := BuildRank(analyticsView(), "gdp", 2)
	if err != nil {
		t.Fatal(err)
	}
	// n=2 clamps up to the minimum of 3
	if p.TopN != 3 {
		t.Errorf("TopN = %d, want 3", p.TopN)
	}
	if len(p.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(p.Entries))
	}
	if p.Entries[0].ISO3 != "MEX" || p.Entries[1].ISO3 != "BRA" || p.Entries[2].ISO3 != "CAN" {
		t.Errorf("order = %s,%s,%s, want MEX,BRA,CAN",
			p.Entries[0].ISO3, p.Entries[1].ISO3, p.Entries[2].ISO3)
	}

	if _, err := BuildRank(analyticsView(), "nope", 10); err == nil {
		t.Error("unknown indicator must fail")
	}
}

func TestBuildMapLogScale(t *testing.T) {
	tbl := analyticsTable()
	tbl.Rows[0].Values["gdp"] = -1 // hidden under log10
	tbl.Unmatched = []string{"Zzzzland"}
	v := BuildView(tbl, NewSelectionState().Snapshot())

	p, err := BuildMap(v, "gdp", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Locations) != 3 {
		t.Errorf("locations = %v, non-positive value should be hidden", p.Locations)
	}
	if !strings.HasPrefix(p.Label, "Log10 ") {
		t.Errorf("label = %q", p.Label)
	}
	found := false
	for _, n := range p.Notes {
		if strings.Contains(n, "1 values <= 0 hidden") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing hidden-values note, got %v", p.Notes)
	}
	if len(p.Notes) != 2 {
		t.Errorf("expected unmatched-regions note too, got %v", p.Notes)
	}
}

func TestBuildScatterGroups(t *testing.T) {
	p, err := BuildScatter(analyticsView(), "gdp", "area")
	if err != nil {
		t.Fatal(err)
	}
	// Brazil drops (missing area); three remaining rows, three
	// government types with the empty one mapped to Unknown.
	total := 0
	for _, g := range p.Groups {
		total += len(g.Points)
	}
	if total != 3 {
		t.Errorf("points = %d, want 3", total)
	}
	if len(p.Groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(p.Groups))
	}
	// groups come back sorted; "Unknown" (capital U) sorts first here
	if p.Groups[0].GovernmentType != "Unknown" {
		t.Errorf("first group = %q, want Unknown", p.Groups[0].GovernmentType)
	}
}

func TestBuildCorrelation(t *testing.T) {
	p, err := BuildCorrelation(analyticsView(), []string{"gdp", "area"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Matrix[0][0] == nil || *p.Matrix[0][0] != 1 {
		t.Error("diagonal must be 1")
	}
	// gdp and area are perfectly linear over their 3 complete pairs
	if p.Matrix[0][1] == nil || *p.Matrix[0][1] != 1 {
		t.Errorf("off-diagonal = %v, want 1", p.Matrix[0][1])
	}
	if *p.Matrix[0][1] != *p.Matrix[1][0] {
		t.Error("matrix must be symmetric")
	}
}

func TestBuildCorrelationNullCell(t *testing.T) {
	tbl := &IndicatorTable{
		Name:       "t",
		Indicators: []string{"a", "b"},
		Rows: []CountryRecord{
			{ISO3: "AAA", Name: "A", Values: map[string]float64{"a": 1}},
			{ISO3: "BBB", Name: "B", Values: map[string]float64{"b": 2}},
			{ISO3: "CCC", Name: "C", Values: map[string]float64{"a": 3, "b": 4}},
		},
	}
	v := BuildView(tbl, NewSelectionState().Snapshot())
	p, err := BuildCorrelation(v, nil)
	if err != nil {
		t.Fatal(err)
	}
	// only one complete (a, b) pair: not enough for a coefficient
	if p.Matrix[0][1] != nil {
		t.Errorf("cell = %v, want null", *p.Matrix[0][1])
	}
}

func TestBuildParcoords(t *testing.T) {
	sel := NewSelectionState()
	sel.SetBrush("gdp", 15, 35)
	v := BuildView(analyticsTable(), sel.Snapshot())

	p, err := BuildParcoords(v)
	if err != nil {
		t.Fatal(err)
	}
	// Brazil has no area value, so only 3 lines
	if len(p.Lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(p.Lines))
	}
	for _, ax := range p.Axes {
		if ax.Name != "gdp" {
			continue
		}
		if ax.Min != 10 || ax.Max != 30 {
			t.Errorf("gdp range = [%v, %v], want [10, 30]", ax.Min, ax.Max)
		}
		if len(ax.Constraint) != 2 || ax.Constraint[0] != 15 || ax.Constraint[1] != 35 {
			t.Errorf("constraint = %v, want [15 35]", ax.Constraint)
		}
	}
}

func TestBuildBrushedTable(t *testing.T) {
	// 1. No brush: prompt, zero rows
	v := analyticsView()
	p := BuildBrushedTable(v)
	if p.Active || len(p.Rows) != 0 || p.Message == "" {
		t.Errorf("inactive brush: %+v", p)
	}

	// 2. Active brush: matched subset only
	sel := NewSelectionState()
	sel.SetBrush("gdp", 15, 30)
	v = BuildView(analyticsTable(), sel.Snapshot())
	p = BuildBrushedTable(v)
	if !p.Active {
		t.Fatal("expected active brush")
	}
	if p.Matched != 3 || p.Shown != 3 {
		t.Errorf("matched/shown = %d/%d, want 3/3", p.Matched, p.Shown)
	}
	for _, row := range p.Rows {
		if row.ISO3 == "USA" {
			t.Error("USA (gdp=10) must not match the brush")
		}
	}
}

func TestBuildSplom(t *testing.T) {
	p, err := BuildSplom(analyticsView())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Indicators) != 2 {
		t.Errorf("indicators = %v", p.Indicators)
	}
	if len(p.Rows) != 3 {
		t.Errorf("rows = %d, want 3 complete rows", len(p.Rows))
	}

	small := BuildView(&IndicatorTable{Indicators: []string{"a", "b"}, Rows: analyticsTable().Rows[:2]},
		NewSelectionState().Snapshot())
	if _, err := BuildSplom(small); err == nil {
		t.Error("too few rows must fail")
	}
}

func TestBuildComparison(t *testing.T) {
	tbl := analyticsTable()
	p, err := BuildComparison(tbl, []string{"usa", " CAN ", "ZZZ"})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Countries) != 2 {
		t.Fatalf("countries = %d, want 2 (unknown skipped)", len(p.Countries))
	}
	if p.Countries[0].ISO3 != "USA" || p.Countries[1].ISO3 != "CAN" {
		t.Errorf("order = %s,%s", p.Countries[0].ISO3, p.Countries[1].ISO3)
	}
	if _, err := BuildComparison(tbl, []string{"ZZZ"}); err == nil {
		t.Error("all-unknown selection must fail")
	}
}

func TestPrettyLabel(t *testing.T) {
	if got := prettyLabel("petroleum_bbl_per_day"); got != "Petroleum Bbl Per Day" {
		t.Errorf("prettyLabel = %q", got)
	}
}
