package trainstatus

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultStations lists the TRA stations used by the commute routes, including
// the traditional/simplified 台 variants and English names.
var DefaultStations = map[string]string{
	"台北": "1000", "臺北": "1000", "Taipei": "1000",
	"板橋": "1020", "Banqiao": "1020",
	"樹林": "1030", "Shulin": "1030",
	"桃園": "1040", "Taoyuan": "1040",
	"鶯歌": "1070", "Yingge": "1070",
	"中壢": "1080", "Zhongli": "1080",
	"新竹": "1210", "Hsinchu": "1210",
	"南港": "0990", "Nangang": "0990",
	"松山": "0980", "Songshan": "0980",
	"七堵": "0970", "Qidu": "0970",
}

// UnknownStationError is returned when a station name has no known code.
type UnknownStationError struct {
	Name      string
	Supported []string
}

func (e *UnknownStationError) Error() string {
	return fmt.Sprintf("unknown station %q (supported: %s)", e.Name, strings.Join(e.Supported, ", "))
}

// Directory resolves human station names to codes. It never guesses: a name that
// is not listed is rejected.
type Directory struct {
	codes   map[string]string // normalized name -> code
	display map[string]string // normalized name -> display name
}

// NewDirectory builds a directory from name -> code entries.
func NewDirectory(entries map[string]string) *Directory {
	d := &Directory{
		codes:   make(map[string]string),
		display: make(map[string]string),
	}
	for name, code := range entries {
		d.Add(name, code)
	}
	return d
}

// DefaultDirectory returns the built-in station table plus any extra entries.
func DefaultDirectory(extra map[string]string) *Directory {
	d := NewDirectory(DefaultStations)
	for name, code := range extra {
		d.Add(name, code)
	}
	return d
}

var titleCaser = cases.Title(language.English)

// Add registers a name. Latin names are title cased for display and matched
// case-insensitively.
func (d *Directory) Add(name, code string) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" || code == "" {
		return
	}
	display := name
	if isLatin(name) {
		display = titleCaser.String(name)
	}
	key := normalize(name)
	d.codes[key] = code
	d.display[key] = display
}

// Lookup resolves name to a Station.
func (d *Directory) Lookup(name string) (Station, error) {
	key := normalize(name)
	code, ok := d.codes[key]
	if !ok {
		return Station{}, &UnknownStationError{Name: strings.TrimSpace(name), Supported: d.Names()}
	}
	return Station{Name: d.display[key], Code: code}, nil
}

// Names returns every accepted display name, sorted.
func (d *Directory) Names() []string {
	names := make([]string, 0, len(d.display))
	for _, n := range d.display {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Stations groups the accepted names by code, ordered by code.
func (d *Directory) Stations() []StationAliases {
	byCode := make(map[string][]string)
	for key, code := range d.codes {
		byCode[code] = append(byCode[code], d.display[key])
	}

	result := make([]StationAliases, 0, len(byCode))
	for code, names := range byCode {
		sort.Strings(names)
		result = append(result, StationAliases{Code: code, Names: names})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// StationAliases is one station code with all names that resolve to it.
type StationAliases struct {
	Code  string   `json:"code"`
	Names []string `json:"names"`
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxLatin1 {
			return false
		}
	}
	return true
}
