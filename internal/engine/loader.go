package engine

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"backend/internal/country"
)

// Source names the files making up one dataset. The auxiliary paths
// are optional left-merges.
type Source struct {
	Name           string
	Path           string
	GeographyPath  string
	GovernmentPath string
}

const countryColumn = "Country"

// columns never treated as indicators
var skipColumns = map[string]bool{
	"Geographic_Coordinates": true,
}

// unit suffixes and symbols stripped before numeric coercion
var unitTokens = []string{
	" sq km", " km2", " km", " m ", "%",
	" million", " billion", " trillion", "$", " usd",
}

// CleanNumeric strips thousands separators, unit suffixes and
// currency symbols, then coerces to float64. Placeholder tokens
// ("NA", empty, "nan") and anything unparseable report missing.
// The cell is lowercased once up front; what remains of a valid
// number (digits, sign, dot, exponent) is case-insensitive anyway.
func CleanNumeric(s string) (float64, bool) {
	s = strings.ToLower(strings.ReplaceAll(s, ",", ""))
	for _, u := range unitTokens {
		s = strings.ReplaceAll(s, u, "")
	}
	s = strings.TrimSpace(s)
	switch s {
	case "", "na", "nan":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// LoadTable reads one dataset CSV, harmonizes country names, cleans
// numeric columns, deduplicates by ISO-3, and left-merges the
// auxiliary tables.
func LoadTable(src Source, res *country.Resolver) (*IndicatorTable, error) {
	start := time.Now()

	header, rows, err := readCSV(src.Path)
	if err != nil {
		return nil, err
	}
	cIdx := columnIndex(header, countryColumn)
	if cIdx < 0 {
		return nil, fmt.Errorf("dataset %s: no %q column", src.Name, countryColumn)
	}

	// 1. Parse + harmonize rows
	numericSeen := make(map[string]bool)
	var recs []CountryRecord
	var unmatched []string
	for _, row := range rows {
		if cIdx >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[cIdx])
		if raw == "" {
			continue
		}
		id := res.Resolve(raw)
		if !id.Matched() {
			unmatched = append(unmatched, raw)
			continue
		}
		rec := CountryRecord{
			RawName:   raw,
			Name:      id.Canonical,
			ISO3:      id.ISO3,
			Continent: id.Continent,
			Values:    make(map[string]float64),
		}
		for j, cell := range row {
			if j == cIdx || j >= len(header) {
				continue
			}
			col := strings.TrimSpace(header[j])
			if col == "" || skipColumns[col] {
				continue
			}
			if v, ok := CleanNumeric(cell); ok {
				rec.Values[col] = v
				numericSeen[col] = true
			}
		}
		recs = append(recs, rec)
	}
	if len(unmatched) > 0 {
		sample := unmatched
		if len(sample) > 20 {
			sample = sample[:20]
		}
		log.Printf("[WARN] %s: dropping %d countries with no ISO match: %v",
			src.Name, len(unmatched), sample)
	}

	// 2. Deduplicate by ISO-3, keeping the most complete row
	recs = dedupe(recs)

	t := &IndicatorTable{Name: src.Name, Rows: recs, Unmatched: unmatched}

	// 3. Optional left-merges by uppercased country name
	if src.GeographyPath != "" {
		if err := mergeNumericAux(t, src.GeographyPath, numericSeen); err != nil {
			log.Printf("[WARN] %s: geography merge skipped: %v", src.Name, err)
		}
	}
	if src.GovernmentPath != "" {
		if err := mergeGovernment(t, src.GovernmentPath); err != nil {
			log.Printf("[WARN] %s: government merge skipped: %v", src.Name, err)
		}
	}

	// 4. Final sorted indicator list
	inds := make([]string, 0, len(numericSeen))
	for col := range numericSeen {
		inds = append(inds, col)
	}
	sort.Strings(inds)
	t.Indicators = inds

	log.Printf("Loaded %s: %d rows, %d indicators. Time: %v",
		src.Name, len(t.Rows), len(t.Indicators), time.Since(start))
	return t, nil
}

// dedupe keeps one row per ISO-3: the row with the most non-missing
// values wins; ties break on raw name ascending so reloads are
// reproducible.
func dedupe(recs []CountryRecord) []CountryRecord {
	byISO := make(map[string]int, len(recs))
	out := recs[:0]
	for _, rec := range recs {
		idx, seen := byISO[rec.ISO3]
		if !seen {
			byISO[rec.ISO3] = len(out)
			out = append(out, rec)
			continue
		}
		cur := out[idx]
		if rec.NonMissing() > cur.NonMissing() ||
			(rec.NonMissing() == cur.NonMissing() && rec.RawName < cur.RawName) {
			out[idx] = rec
		}
	}
	return out
}

// mergeNumericAux left-merges an auxiliary numeric table (geography)
// keyed by uppercased country name. Misses leave the values absent.
func mergeNumericAux(t *IndicatorTable, path string, numericSeen map[string]bool) error {
	header, rows, err := readCSV(path)
	if err != nil {
		return err
	}
	cIdx := columnIndex(header, countryColumn)
	if cIdx < 0 {
		return fmt.Errorf("no %q column in %s", countryColumn, path)
	}
	byName := make(map[string]map[string]float64, len(rows))
	for _, row := range rows {
		if cIdx >= len(row) {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(row[cIdx]))
		if key == "" {
			continue
		}
		vals := make(map[string]float64)
		for j, cell := range row {
			if j == cIdx || j >= len(header) {
				continue
			}
			col := strings.TrimSpace(header[j])
			if col == "" || skipColumns[col] {
				continue
			}
			if v, ok := CleanNumeric(cell); ok {
				vals[col] = v
				numericSeen[col] = true
			}
		}
		byName[key] = vals
	}
	merged := 0
	for i := range t.Rows {
		vals, ok := byName[strings.ToUpper(t.Rows[i].RawName)]
		if !ok {
			continue
		}
		for col, v := range vals {
			if _, exists := t.Rows[i].Values[col]; !exists {
				t.Rows[i].Values[col] = v
			}
		}
		merged++
	}
	log.Printf("  Merged %s: %d of %d rows matched", path, merged, len(t.Rows))
	return nil
}

// mergeGovernment attaches Government_Type from the civics table,
// keyed the same way. Misses leave the field empty.
func mergeGovernment(t *IndicatorTable, path string) error {
	header, rows, err := readCSV(path)
	if err != nil {
		return err
	}
	cIdx := columnIndex(header, countryColumn)
	gIdx := columnIndex(header, "Government_Type")
	if cIdx < 0 || gIdx < 0 {
		return fmt.Errorf("missing Country/Government_Type columns in %s", path)
	}
	byName := make(map[string]string, len(rows))
	for _, row := range rows {
		if cIdx >= len(row) || gIdx >= len(row) {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(row[cIdx]))
		if key != "" {
			byName[key] = strings.TrimSpace(row[gIdx])
		}
	}
	merged := 0
	for i := range t.Rows {
		if gov, ok := byName[strings.ToUpper(t.Rows[i].RawName)]; ok && gov != "" {
			t.Rows[i].GovernmentType = gov
			merged++
		}
	}
	log.Printf("  Merged Government Type: %d of %d rows matched", merged, len(t.Rows))
	return nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	return all[0], all[1:], nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// PlaceholderTable is substituted when no dataset loads so the
// application stays usable.
func PlaceholderTable() *IndicatorTable {
	return &IndicatorTable{
		Name: "Demo",
		Rows: []CountryRecord{{
			RawName:   "United States",
			Name:      "United States",
			ISO3:      "USA",
			Continent: country.NorthAmerica,
			Values:    map[string]float64{"Value": 1},
		}},
		Indicators: []string{"Value"},
	}
}

// LoadAll loads every configured source, skipping the ones that fail.
func LoadAll(sources []Source, res *country.Resolver) *Store {
	store := NewStore()
	for _, src := range sources {
		t, err := LoadTable(src, res)
		if err != nil {
			log.Printf("[WARN] Missing/unreadable dataset %s: %v. Skipping.", src.Name, err)
			continue
		}
		store.Add(t)
	}
	if store.First() == nil {
		log.Printf("[WARN] No datasets loaded; serving placeholder data.")
		store.Add(PlaceholderTable())
	}
	return store
}
