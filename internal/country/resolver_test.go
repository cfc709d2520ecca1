package country

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFixTable(t *testing.T) {
	r := NewResolver()

	// Every raw name in the fix table must come back with the
	// configured canonical name, exactly.
	cases := map[string]string{
		"BAHAMAS, THE":     "Bahamas",
		"BURMA":            "Myanmar",
		"CABO VERDE":       "Cape Verde",
		"KOREA, SOUTH":     "South Korea",
		"TURKEY (TURKIYE)": "Turkey",
	}
	for raw, want := range cases {
		id := r.Resolve(raw)
		if id.Canonical != want {
			t.Errorf("Resolve(%q).Canonical = %q, want %q", raw, id.Canonical, want)
		}
		if !id.Matched() {
			t.Errorf("Resolve(%q) did not resolve an ISO code", raw)
		}
	}
}

func TestResolveTitleCaseFallback(t *testing.T) {
	r := NewResolver()
	id := r.Resolve("GERMANY")
	if id.Canonical != "Germany" {
		t.Errorf("Canonical = %q, want Germany", id.Canonical)
	}
	if id.ISO3 != "DEU" {
		t.Errorf("ISO3 = %q, want DEU", id.ISO3)
	}
	if id.Continent != Europe {
		t.Errorf("Continent = %q, want %q", id.Continent, Europe)
	}
}

func TestResolveContinentSplit(t *testing.T) {
	r := NewResolver()

	// The Americas must split into North and South.
	if got := r.Resolve("United States").Continent; got != NorthAmerica {
		t.Errorf("United States continent = %q, want %q", got, NorthAmerica)
	}
	if got := r.Resolve("Brazil").Continent; got != SouthAmerica {
		t.Errorf("Brazil continent = %q, want %q", got, SouthAmerica)
	}
}

func TestResolveISOOverrides(t *testing.T) {
	r := NewResolver()

	id := r.Resolve("Kosovo")
	if id.ISO3 != "XKX" {
		t.Errorf("Kosovo ISO3 = %q, want XKX", id.ISO3)
	}
	if id.Continent != Europe {
		t.Errorf("Kosovo continent = %q, want %q", id.Continent, Europe)
	}

	id = r.Resolve("KOREA, NORTH")
	if id.ISO3 != "PRK" {
		t.Errorf("North Korea ISO3 = %q, want PRK", id.ISO3)
	}
}

func TestResolveFuzzyFallback(t *testing.T) {
	r := NewResolver()

	// One edit away from the reference spelling.
	id := r.Resolve("Azerbaijen")
	if id.ISO3 != "AZE" {
		t.Errorf("fuzzy Resolve(Azerbaijen).ISO3 = %q, want AZE", id.ISO3)
	}
}

func TestResolveMiss(t *testing.T) {
	r := NewResolver()
	id := r.Resolve("Atlantis Research Station Qq")
	if id.Matched() {
		t.Errorf("expected unresolved identity, got ISO3=%q", id.ISO3)
	}
	if id.Continent != "" {
		t.Errorf("unresolved identity must have empty continent, got %q", id.Continent)
	}
}

func TestLoadOverrides(t *testing.T) {
	// 1. Write a small override file
	dir := t.TempDir()
	path := filepath.Join(dir, "fixes.yaml")
	content := []byte("name_fixes:\n  \"NARNIA, THE\": Narnia\niso_overrides:\n  Narnia: NRN\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// 2. Merge and resolve
	r := NewResolver()
	if err := r.LoadOverrides(path); err != nil {
		t.Fatal(err)
	}
	id := r.Resolve("NARNIA, THE")

	// 3. Assertions
	if id.Canonical != "Narnia" {
		t.Errorf("Canonical = %q, want Narnia", id.Canonical)
	}
	if id.ISO3 != "NRN" {
		t.Errorf("ISO3 = %q, want NRN", id.ISO3)
	}
	if id.Continent != "" {
		t.Errorf("made-up code must map to empty continent, got %q", id.Continent)
	}
}
