package tools

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// YearData is one year of popularity data for a name.
type YearData struct {
	Year  int `json:"year"`
	Rank  int `json:"rank"`
	Count int `json:"count"`
}

// PopularityResult is the answer to a popularity query. Timeseries is nil
// when no data exists; Notes always explains the data's provenance or
// absence.
type PopularityResult struct {
	Timeseries []YearData `json:"timeseries,omitempty"`
	Notes      string     `json:"notes"`
}

var popularity struct {
	mu     sync.Mutex
	loaded bool
	byName map[string]map[int]*YearData
}

func popularityCSVPath() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return filepath.Join(dir, "baby-names.csv")
	}
	return filepath.Join("data", "baby-names.csv")
}

// loadPopularity reads the CSV once and computes per-year ranks from the
// counts. A missing file yields an empty dataset rather than an error; the
// researcher treats popularity as best-effort.
func loadPopularity() map[string]map[int]*YearData {
	popularity.mu.Lock()
	defer popularity.mu.Unlock()
	if popularity.loaded {
		return popularity.byName
	}
	popularity.loaded = true
	popularity.byName = make(map[string]map[int]*YearData)

	f, err := os.Open(popularityCSVPath())
	if err != nil {
		return popularity.byName
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return popularity.byName
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	yearIdx, nameIdx, pctIdx := col["year"], col["name"], col["percent"]

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(row) <= max(yearIdx, max(nameIdx, pctIdx)) {
			continue
		}
		year, yerr := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		name := strings.ReplaceAll(strings.TrimSpace(row[nameIdx]), `"`, "")
		pct, perr := strconv.ParseFloat(strings.TrimSpace(row[pctIdx]), 64)
		if yerr != nil || perr != nil || name == "" {
			continue
		}
		if popularity.byName[name] == nil {
			popularity.byName[name] = make(map[int]*YearData)
		}
		// The source gives percentages; scale to an approximate count.
		popularity.byName[name][year] = &YearData{Year: year, Count: int(pct * 100000)}
	}

	// Rank per year by descending count.
	years := make(map[int][]*YearData)
	for _, byYear := range popularity.byName {
		for y, d := range byYear {
			years[y] = append(years[y], d)
		}
	}
	for _, entries := range years {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
		for rank, d := range entries {
			d.Rank = rank + 1
		}
	}
	return popularity.byName
}

// GetPopularity looks up popularity data for a name. Only US data exists.
func GetPopularity(name, region string) PopularityResult {
	if region != "US" {
		return PopularityResult{Notes: "Popularity data is only available for the US."}
	}
	byYear := loadPopularity()[name]
	if len(byYear) == 0 {
		return PopularityResult{Notes: "No popularity data found for this name."}
	}
	series := make([]YearData, 0, len(byYear))
	for _, d := range byYear {
		series = append(series, *d)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
	return PopularityResult{
		Timeseries: series,
		Notes:      "Popularity data is based on the top 1000 names from 1880 to 2009.",
	}
}

// ClearPopularityCache forces the next query to re-read the CSV. Used by
// tests that point DATA_DIR at fixtures.
func ClearPopularityCache() {
	popularity.mu.Lock()
	popularity.loaded = false
	popularity.byName = nil
	popularity.mu.Unlock()
}
