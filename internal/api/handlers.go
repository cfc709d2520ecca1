package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"backend/internal/engine"
	"backend/internal/models"
)

// Handler serves the dashboard API. The store is nil until the
// background load finishes; until then every data route returns 503
// so the frontend can show a loading state.
type Handler struct {
	mu    sync.RWMutex
	store *engine.Store
	sel   *engine.SelectionState
	seed  int64
}

func NewHandler(store *engine.Store, seed int64) *Handler {
	return &Handler{store: store, sel: engine.NewSelectionState(), seed: seed}
}

// SetStore swaps in the freshly loaded datasets and prunes brush
// constraints whose axis is absent from the new active table.
func (h *Handler) SetStore(store *engine.Store) {
	h.mu.Lock()
	h.store = store
	h.mu.Unlock()
	if t := store.First(); t != nil {
		h.sel.PruneBrush(t.HasIndicator)
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/datasets", h.GetDatasets)
	api.GET("/selection", h.GetSelection)
	api.GET("/kpi", h.GetKPI)
	api.GET("/map", h.GetMap)
	api.GET("/scatter", h.GetScatter)
	api.GET("/rank", h.GetRank)
	api.GET("/correlation", h.GetCorrelation)
	api.GET("/parcoords", h.GetParcoords)
	api.GET("/brushed", h.GetBrushedTable)
	api.GET("/projection", h.GetProjection)
	api.GET("/splom", h.GetSplom)
	api.GET("/compare", h.GetComparison)

	api.POST("/events/click", h.PostClick)
	api.POST("/events/brush", h.PostBrush)
	api.POST("/events/region", h.PostRegion)
	api.POST("/events/reset", h.PostReset)
}

// --- helpers ---

// view resolves the active table and builds the filtered view for
// the current selection. Returns nil while data is still loading.
func (h *Handler) view(c echo.Context) (*engine.View, error) {
	h.mu.RLock()
	store := h.store
	h.mu.RUnlock()
	if store == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "data is still loading")
	}
	t := store.First()
	if name := c.QueryParam("dataset"); name != "" {
		if named := store.Get(name); named != nil {
			t = named
		}
	}
	if t == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "no dataset available")
	}
	return engine.BuildView(t, h.sel.Snapshot()), nil
}

// chart writes a builder result, degrading any builder failure to a
// placeholder payload so one broken chart never takes down the rest.
func chart(c echo.Context, payload interface{}, err error) error {
	if err != nil {
		return c.JSON(http.StatusOK, models.Placeholder{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, payload)
}

func splitParams(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *Handler) selectionSnapshot() models.SelectionSnapshot {
	snap := h.sel.Snapshot()
	out := models.SelectionSnapshot{
		Highlighted: snap.HighlightedSorted(),
		Brush:       make(map[string][]float64, len(snap.Brush)),
		Region:      snap.Region,
	}
	for ind, rng := range snap.Brush {
		out.Brush[ind] = []float64{rng[0], rng[1]}
	}
	return out
}

// --- meta ---

func (h *Handler) GetDatasets(c echo.Context) error {
	h.mu.RLock()
	store := h.store
	h.mu.RUnlock()
	if store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "data is still loading")
	}
	var infos []models.DatasetInfo
	for _, name := range store.Names() {
		t := store.Get(name)
		infos = append(infos, models.DatasetInfo{
			Name:       t.Name,
			Rows:       len(t.Rows),
			Indicators: t.Indicators,
			Unmatched:  t.Unmatched,
			Continents: t.Continents(),
		})
	}
	return c.JSON(http.StatusOK, infos)
}

func (h *Handler) GetSelection(c echo.Context) error {
	return c.JSON(http.StatusOK, h.selectionSnapshot())
}

// --- charts ---

func (h *Handler) GetKPI(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.BuildKPI(v, c.QueryParam("indicator")))
}

func (h *Handler) GetMap(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	logScale, _ := strconv.ParseBool(c.QueryParam("log"))
	payload, buildErr := engine.BuildMap(v, c.QueryParam("indicator"), logScale)
	return chart(c, payload, buildErr)
}

func (h *Handler) GetScatter(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	payload, buildErr := engine.BuildScatter(v, c.QueryParam("x"), c.QueryParam("y"))
	return chart(c, payload, buildErr)
}

func (h *Handler) GetRank(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	// invalid n falls back to the default, then gets clamped
	n, _ := strconv.Atoi(c.QueryParam("n"))
	payload, buildErr := engine.BuildRank(v, c.QueryParam("indicator"), n)
	return chart(c, payload, buildErr)
}

func (h *Handler) GetCorrelation(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	payload, buildErr := engine.BuildCorrelation(v, splitParams(c.QueryParam("params")))
	return chart(c, payload, buildErr)
}

func (h *Handler) GetParcoords(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	payload, buildErr := engine.BuildParcoords(v)
	return chart(c, payload, buildErr)
}

func (h *Handler) GetBrushedTable(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.BuildBrushedTable(v))
}

func (h *Handler) GetProjection(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	payload, buildErr := engine.Project(v, splitParams(c.QueryParam("params")), h.seed)
	return chart(c, payload, buildErr)
}

func (h *Handler) GetSplom(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	payload, buildErr := engine.BuildSplom(v)
	return chart(c, payload, buildErr)
}

func (h *Handler) GetComparison(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	payload, buildErr := engine.BuildComparison(v.Table, splitParams(c.QueryParam("countries")))
	return chart(c, payload, buildErr)
}

// --- interaction events ---

func (h *Handler) PostClick(c echo.Context) error {
	var ev models.ClickEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid click event")
	}
	iso, ok := engine.ResolveClick(ev)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown click source or empty iso3")
	}
	h.sel.ToggleHighlight(iso)
	return c.JSON(http.StatusOK, h.selectionSnapshot())
}

func (h *Handler) PostBrush(c echo.Context) error {
	var ev models.BrushEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brush event")
	}
	if ev.Indicator == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "brush event needs an indicator")
	}
	// empty range clears the axis
	if len(ev.Range) == 2 {
		h.sel.SetBrush(ev.Indicator, ev.Range[0], ev.Range[1])
	} else {
		h.sel.ClearBrush(ev.Indicator)
	}
	return c.JSON(http.StatusOK, h.selectionSnapshot())
}

func (h *Handler) PostRegion(c echo.Context) error {
	var ev models.RegionEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid region event")
	}
	h.sel.SetRegion(ev.Region)
	return c.JSON(http.StatusOK, h.selectionSnapshot())
}

func (h *Handler) PostReset(c echo.Context) error {
	h.sel.ResetBrush()
	return c.JSON(http.StatusOK, h.selectionSnapshot())
}
