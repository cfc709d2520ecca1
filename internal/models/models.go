package models

// Placeholder is returned for a chart that cannot be computed.
// The frontend renders the message instead of the chart; other
// charts are unaffected.
type Placeholder struct {
	Message string `json:"message"`
}

type DatasetInfo struct {
	Name       string   `json:"name"`
	Rows       int      `json:"rows"`
	Indicators []string `json:"indicators"`
	Unmatched  []string `json:"unmatched,omitempty"`
	Continents []string `json:"continents"`
}

type SelectionSnapshot struct {
	Highlighted []string             `json:"highlighted"`
	Brush       map[string][]float64 `json:"brush"`
	Region      string               `json:"region"`
}

type KPIReport struct {
	Countries     int     `json:"countries"`
	Indicators    int     `json:"indicators"`
	Average       float64 `json:"average"`
	Maximum       float64 `json:"maximum"`
	Minimum       float64 `json:"minimum"`
	TopCountry    string  `json:"top_country"`
	BottomCountry string  `json:"bottom_country"`
}

type MapPayload struct {
	Indicator   string    `json:"indicator"`
	Label       string    `json:"label"`
	Locations   []string  `json:"locations"` // ISO-3
	Names       []string  `json:"names"`
	Values      []float64 `json:"values"`
	Highlighted []string  `json:"highlighted"`
	Notes       []string  `json:"notes,omitempty"`
}

type ScatterPoint struct {
	ISO3        string  `json:"iso3"`
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Highlighted bool    `json:"highlighted"`
}

type ScatterGroup struct {
	GovernmentType string         `json:"government_type"`
	Points         []ScatterPoint `json:"points"`
}

type ScatterPayload struct {
	XLabel string         `json:"x_label"`
	YLabel string         `json:"y_label"`
	Groups []ScatterGroup `json:"groups"`
}

type RankEntry struct {
	ISO3        string  `json:"iso3"`
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Highlighted bool    `json:"highlighted"`
}

type RankPayload struct {
	Indicator string      `json:"indicator"`
	Heading   string      `json:"heading"`
	TopN      int         `json:"top_n"`
	Entries   []RankEntry `json:"entries"`
}

// CorrelationPayload holds a Pearson matrix rounded to 2 decimals.
// Cells without enough paired observations are null.
type CorrelationPayload struct {
	Indicators []string     `json:"indicators"`
	Matrix     [][]*float64 `json:"matrix"`
}

type ParcoordsAxis struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Constraint []float64 `json:"constraint,omitempty"` // [lo, hi] when brushed
}

type ParcoordsPayload struct {
	Axes        []ParcoordsAxis `json:"axes"`
	ISO3        []string        `json:"iso3"`
	Names       []string        `json:"names"`
	Lines       [][]float64     `json:"lines"` // one row per country, axis order
	Highlighted []bool          `json:"highlighted"`
}

type BrushedRow struct {
	ISO3      string     `json:"iso3"`
	Name      string     `json:"name"`
	Continent string     `json:"continent"`
	Values    []*float64 `json:"values"`
}

// BrushedTablePayload is the linked table under the parallel
// coordinates plot. Active=false means no brush constraint is set,
// which is distinct from "every row matched".
type BrushedTablePayload struct {
	Active   bool         `json:"active"`
	Message  string       `json:"message,omitempty"`
	Columns  []string     `json:"columns"`
	Rows     []BrushedRow `json:"rows"`
	Matched  int          `json:"matched"`
	Shown    int          `json:"shown"`
	Selected []string     `json:"selected"`
}

type ProjectionPoint struct {
	ISO3        string  `json:"iso3"`
	Name        string  `json:"name"`
	PC1         float64 `json:"pc1"`
	PC2         float64 `json:"pc2"`
	Cluster     int     `json:"cluster"`
	Highlighted bool    `json:"highlighted"`
}

// ProjectionPayload is recomputed per request. Cluster IDs are
// arbitrary labels and are not stable across differing row sets.
type ProjectionPayload struct {
	Points     []ProjectionPoint `json:"points"`
	Clusters   int               `json:"clusters"`
	Indicators []string          `json:"indicators"`
}

type SplomPayload struct {
	Indicators []string    `json:"indicators"`
	ISO3       []string    `json:"iso3"`
	Names      []string    `json:"names"`
	Continents []string    `json:"continents"`
	Rows       [][]float64 `json:"rows"`
}

type ComparisonColumn struct {
	ISO3           string     `json:"iso3"`
	Name           string     `json:"name"`
	Continent      string     `json:"continent"`
	GovernmentType string     `json:"government_type"`
	Values         []*float64 `json:"values"`
}

type ComparisonPayload struct {
	Indicators []string           `json:"indicators"`
	Countries  []ComparisonColumn `json:"countries"`
}

// --- Interaction events ---

// ClickEvent is the tagged click payload from any view. Source is one
// of "map", "scatter", "rank", "pca"; all resolve to one ISO-3 toggle.
type ClickEvent struct {
	Source string `json:"source"`
	ISO3   string `json:"iso3"`
}

// BrushEvent sets or clears one axis constraint. A nil/empty Range
// clears the axis.
type BrushEvent struct {
	Indicator string    `json:"indicator"`
	Range     []float64 `json:"range,omitempty"`
}

type RegionEvent struct {
	Region string `json:"region"`
}
