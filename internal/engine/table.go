package engine

import "sort"

// CountryRecord is one harmonized row. Values holds indicator ->
// numeric value; an absent key means the source value was missing.
// Records are immutable after load.
type CountryRecord struct {
	RawName        string
	Name           string // canonical
	ISO3           string
	Continent      string
	GovernmentType string
	Values         map[string]float64
}

// Value returns the indicator value and whether it is present.
func (r *CountryRecord) Value(indicator string) (float64, bool) {
	v, ok := r.Values[indicator]
	return v, ok
}

// NonMissing counts present indicator values. Used by the loader's
// duplicate tie-break.
func (r *CountryRecord) NonMissing() int {
	return len(r.Values)
}

// IndicatorTable is a named collection of records sharing a schema.
// Invariant: every row has a unique, non-empty ISO-3 code.
type IndicatorTable struct {
	Name       string
	Rows       []CountryRecord
	Indicators []string // sorted
	Unmatched  []string // raw names dropped at load time
}

func (t *IndicatorTable) HasIndicator(name string) bool {
	for _, ind := range t.Indicators {
		if ind == name {
			return true
		}
	}
	return false
}

func (t *IndicatorTable) ByISO(iso string) *CountryRecord {
	for i := range t.Rows {
		if t.Rows[i].ISO3 == iso {
			return &t.Rows[i]
		}
	}
	return nil
}

// Continents returns the sorted distinct continents present in the
// table. Unknown continents are skipped; these rows are only visible
// under the "All" region.
func (t *IndicatorTable) Continents() []string {
	seen := make(map[string]bool)
	for i := range t.Rows {
		if c := t.Rows[i].Continent; c != "" {
			seen[c] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Store holds the loaded datasets, read-only after load.
type Store struct {
	tables map[string]*IndicatorTable
	order  []string
}

func NewStore() *Store {
	return &Store{tables: make(map[string]*IndicatorTable)}
}

func (s *Store) Add(t *IndicatorTable) {
	if _, exists := s.tables[t.Name]; !exists {
		s.order = append(s.order, t.Name)
	}
	s.tables[t.Name] = t
}

func (s *Store) Get(name string) *IndicatorTable {
	return s.tables[name]
}

// First returns the first loaded dataset, the active table for every
// chart unless a dataset is named explicitly.
func (s *Store) First() *IndicatorTable {
	if len(s.order) == 0 {
		return nil
	}
	return s.tables[s.order[0]]
}

func (s *Store) Names() []string {
	return append([]string(nil), s.order...)
}
