package country

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/biter777/countries"
	"gopkg.in/yaml.v3"
)

// Continent labels (the six inhabited ones). Polar and unresolvable
// codes collapse to the empty string.
const (
	Africa       = "Africa"
	Asia         = "Asia"
	Europe       = "Europe"
	NorthAmerica = "North America"
	SouthAmerica = "South America"
	Oceania      = "Oceania"
)

// Identity is the canonical form of a raw country-name string.
// ISO3 is empty when the name could not be resolved.
type Identity struct {
	Raw       string
	Canonical string
	ISO3      string
	Continent string
}

func (id Identity) Matched() bool { return id.ISO3 != "" }

// defaultNameFixes maps uppercased CIA spellings to canonical names
// the reference list understands.
var defaultNameFixes = map[string]string{
	"BAHAMAS, THE":                    "Bahamas",
	"BOSNIA AND HERZEGOVINA":          "Bosnia and Herzegovina",
	"BRUNEI":                          "Brunei",
	"BURMA":                           "Myanmar",
	"CABO VERDE":                      "Cape Verde",
	"CONGO, DEMOCRATIC REPUBLIC OF THE": "Congo, Democratic Republic of the",
	"CONGO, REPUBLIC OF THE":          "Congo, Republic of the",
	"COTE D'IVOIRE":                   "Cote d'Ivoire",
	"CZECHIA":                         "Czech Republic",
	"GAMBIA, THE":                     "Gambia",
	"KOREA, NORTH":                    "North Korea",
	"KOREA, SOUTH":                    "South Korea",
	"MACEDONIA":                       "North Macedonia",
	"MICRONESIA, FEDERATED STATES OF": "Micronesia",
	"NETHERLANDS, THE":                "Netherlands",
	"SYRIA":                           "Syria",
	"TURKEY (TURKIYE)":                "Turkey",
	"UNITED STATES":                   "United States",
}

// defaultISOOverrides pins canonical names whose reference lookup is
// known to be wrong or missing: disputed territories, fuzzy-match
// collisions, and split states.
var defaultISOOverrides = map[string]string{
	"Congo, Democratic Republic of the": "COD",
	"Congo, Republic of the":            "COG",
	"North Korea":                       "PRK",
	"South Korea":                       "KOR",
	"Jan Mayen":                         "SJM",
	"Curacao":                           "CUW",
	"Sint Maarten":                      "SXM",
	"Kosovo":                            "XKX",
	"Micronesia":                        "FSM",
	"Cote d'Ivoire":                     "CIV",
}

// overrideContinents supplies continents for ISO codes the reference
// list cannot resolve (XKX is not in ISO 3166).
var overrideContinents = map[string]string{
	"COD": Africa,
	"COG": Africa,
	"PRK": Asia,
	"KOR": Asia,
	"SJM": Europe,
	"CUW": NorthAmerica,
	"SXM": NorthAmerica,
	"XKX": Europe,
	"FSM": Oceania,
	"CIV": Africa,
}

// Overrides is the on-disk shape of a per-dataset override file.
type Overrides struct {
	NameFixes    map[string]string `yaml:"name_fixes"`
	ISOOverrides map[string]string `yaml:"iso_overrides"`
}

// Resolver maps raw country names to canonical identities. Exact
// reference lookup first, Levenshtein fuzzy match second, manual
// override tables on top of both.
type Resolver struct {
	fixes        map[string]string
	isoOverrides map[string]string
	refNames     []string
	refCodes     []countries.CountryCode
}

func NewResolver() *Resolver {
	r := &Resolver{
		fixes:        make(map[string]string, len(defaultNameFixes)),
		isoOverrides: make(map[string]string, len(defaultISOOverrides)),
	}
	for k, v := range defaultNameFixes {
		r.fixes[k] = v
	}
	for k, v := range defaultISOOverrides {
		r.isoOverrides[k] = v
	}
	for _, cc := range countries.All() {
		name := cc.String()
		if name == "" || cc == countries.Unknown {
			continue
		}
		r.refNames = append(r.refNames, strings.ToLower(name))
		r.refCodes = append(r.refCodes, cc)
	}
	return r
}

// LoadOverrides merges a YAML override file into the resolver's
// manual tables. File entries win over the built-in defaults.
func (r *Resolver) LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read overrides: %w", err)
	}
	var ov Overrides
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return fmt.Errorf("parse overrides: %w", err)
	}
	for k, v := range ov.NameFixes {
		r.fixes[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	for k, v := range ov.ISOOverrides {
		r.isoOverrides[k] = strings.ToUpper(v)
	}
	return nil
}

// Resolve maps a raw name to its canonical identity. A miss returns
// an Identity with empty ISO3; callers drop and count those rows.
func (r *Resolver) Resolve(raw string) Identity {
	name := strings.TrimSpace(raw)
	id := Identity{Raw: name}
	if name == "" {
		return id
	}

	// 1. Manual fix table on the uppercased raw name, title-case fallback.
	upper := strings.ToUpper(name)
	if fixed, ok := r.fixes[upper]; ok {
		id.Canonical = fixed
	} else {
		id.Canonical = titleCase(upper)
	}

	// 2. Exact reference lookup, 3. fuzzy fallback.
	cc := countries.ByName(id.Canonical)
	if cc == countries.Unknown {
		cc = r.fuzzyLookup(id.Canonical)
	}
	if cc != countries.Unknown {
		id.ISO3 = cc.Alpha3()
		id.Continent = continentOf(cc)
	}

	// 4. Manual ISO override for known-bad matches.
	if iso, ok := r.isoOverrides[id.Canonical]; ok {
		id.ISO3 = iso
		if cont, ok := overrideContinents[iso]; ok {
			id.Continent = cont
		} else if cc := countries.ByName(iso); cc != countries.Unknown {
			id.Continent = continentOf(cc)
		} else {
			id.Continent = ""
		}
	}
	return id
}

// fuzzyLookup finds the closest reference name by edit distance.
// Substring containment counts as a near-match so that short common
// names ("Micronesia") land on their long official forms. The best
// candidate must still clear a length-relative threshold.
func (r *Resolver) fuzzyLookup(name string) countries.CountryCode {
	query := strings.ToLower(name)
	best := countries.Unknown
	bestScore := -1
	for i, ref := range r.refNames {
		score := levenshtein.ComputeDistance(query, ref)
		if strings.Contains(ref, query) || strings.Contains(query, ref) {
			if d := abs(len(ref)-len(query)) / 2; d < score {
				score = d
			}
		}
		if bestScore < 0 || score < bestScore {
			bestScore = score
			best = r.refCodes[i]
		}
	}
	limit := len(query) / 3
	if limit < 2 {
		limit = 2
	}
	if bestScore < 0 || bestScore > limit {
		return countries.Unknown
	}
	return best
}

// continentOf maps a reference region code to one of the six
// inhabited continents. Antarctica and unknown regions collapse to "".
func continentOf(cc countries.CountryCode) string {
	switch cc.Region() {
	case countries.RegionAF:
		return Africa
	case countries.RegionAS:
		return Asia
	case countries.RegionEU:
		return Europe
	case countries.RegionNA:
		return NorthAmerica
	case countries.RegionSA:
		return SouthAmerica
	case countries.RegionOC:
		return Oceania
	default:
		return ""
	}
}

// titleCase uppercases the first rune of each word and lowercases the
// rest. Matches the loader's expectation for names absent from the
// fix table ("ALBANIA" -> "Albania").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		if len(runes) == 0 {
			continue
		}
		first := unicode.ToUpper(runes[0])
		if len(runes) == 1 {
			words[i] = string(first)
		} else {
			words[i] = string(first) + strings.ToLower(string(runes[1:]))
		}
	}
	return strings.Join(words, " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
