package engine

// EvaluateBrush computes the per-row mask for a set of axis range
// constraints. Constraints AND together: a row passes only if every
// constrained axis has a present value inside [lo, hi] inclusive.
//
// active=false reports an empty constraint set. That case is NOT the
// same as an all-true mask: consumers show a "brush to filter" prompt
// instead of treating every row as matched.
func EvaluateBrush(rows []CountryRecord, brush map[string][2]float64) (mask []bool, active bool) {
	mask = make([]bool, len(rows))
	if len(brush) == 0 {
		return mask, false
	}
	for i := range rows {
		pass := true
		for ind, rng := range brush {
			v, ok := rows[i].Value(ind)
			if !ok || v < rng[0] || v > rng[1] {
				pass = false
				break
			}
		}
		mask[i] = pass
	}
	return mask, true
}
