package engine

import (
	"sort"
	"sync"

	"backend/internal/models"
)

// RegionAll disables the region filter.
const RegionAll = "All"

// SelectionState is the process-wide linked-view state: the
// highlighted country set, the per-axis brush constraints, and the
// region filter. It is mutated only through the transition methods
// below, one event at a time. A region change deliberately leaves
// highlighted and brush untouched; cross-region selections simply
// stop rendering until the region changes back.
type SelectionState struct {
	mu          sync.Mutex
	highlighted map[string]bool
	brush       map[string][2]float64
	region      string
}

func NewSelectionState() *SelectionState {
	return &SelectionState{
		highlighted: make(map[string]bool),
		brush:       make(map[string][2]float64),
		region:      RegionAll,
	}
}

// ToggleHighlight flips membership of one ISO-3 code. Multi-select:
// clicking an already highlighted country removes only that country.
func (s *SelectionState) ToggleHighlight(iso string) {
	if iso == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highlighted[iso] {
		delete(s.highlighted, iso)
	} else {
		s.highlighted[iso] = true
	}
}

// SetBrush inserts or overwrites one axis constraint.
func (s *SelectionState) SetBrush(indicator string, lo, hi float64) {
	if indicator == "" {
		return
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brush[indicator] = [2]float64{lo, hi}
}

// ClearBrush removes one axis constraint.
func (s *SelectionState) ClearBrush(indicator string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.brush, indicator)
}

// ResetBrush clears every axis constraint. Highlighted is never
// touched by a reset.
func (s *SelectionState) ResetBrush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brush = make(map[string][2]float64)
}

// SetRegion changes the region filter. No invalidation of highlighted
// or brush happens here.
func (s *SelectionState) SetRegion(region string) {
	if region == "" {
		region = RegionAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = region
}

// PruneBrush drops constraints whose axis is absent from the active
// table, called when the active table changes.
func (s *SelectionState) PruneBrush(valid func(indicator string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ind := range s.brush {
		if !valid(ind) {
			delete(s.brush, ind)
		}
	}
}

// Snapshot is an immutable copy of the selection, taken once per
// recomputation pass and read by every builder.
type Snapshot struct {
	Highlighted map[string]bool
	Brush       map[string][2]float64
	Region      string
}

func (s *SelectionState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Highlighted: make(map[string]bool, len(s.highlighted)),
		Brush:       make(map[string][2]float64, len(s.brush)),
		Region:      s.region,
	}
	for iso := range s.highlighted {
		snap.Highlighted[iso] = true
	}
	for ind, rng := range s.brush {
		snap.Brush[ind] = rng
	}
	return snap
}

// HighlightedSorted returns the highlighted set as a sorted slice.
func (snap Snapshot) HighlightedSorted() []string {
	out := make([]string, 0, len(snap.Highlighted))
	for iso := range snap.Highlighted {
		out = append(out, iso)
	}
	sort.Strings(out)
	return out
}

// ResolveClick reduces a tagged per-view click payload to the single
// canonical ISO-3 it carries. Unknown sources and empty codes are
// rejected before they reach the state machine.
func ResolveClick(ev models.ClickEvent) (string, bool) {
	switch ev.Source {
	case "map", "scatter", "rank", "pca":
	default:
		return "", false
	}
	if ev.ISO3 == "" {
		return "", false
	}
	return ev.ISO3, true
}
