package panel

import (
	"sort"
)

// Panel is a normalized county-year table.
type Panel struct {
	Source   string
	Records  []Record
	Dropped  int
	Warnings []string

	header map[Column]bool
}

// New builds a panel from already normalized records. Every column that
// holds at least one value is treated as present in the header.
func New(records []Record) *Panel {
	p := &Panel{
		Records: records,
		header:  make(map[Column]bool),
	}
	for _, rec := range records {
		for _, col := range Columns {
			if _, ok := rec.Get(col); ok {
				p.header[col] = true
			}
		}
	}
	return p
}

// HasColumn reports whether the column appeared in the input header.
func (p *Panel) HasColumn(col Column) bool {
	return p.header[col]
}

// Available reports whether the column appeared in the header and holds at
// least one value.
func (p *Panel) Available(col Column) bool {
	if !p.header[col] {
		return false
	}
	for _, rec := range p.Records {
		if _, ok := rec.Get(col); ok {
			return true
		}
	}
	return false
}

// HeaderColumns returns the known columns present in the header in
// canonical order.
func (p *Panel) HeaderColumns() []Column {
	var cols []Column
	for _, col := range Columns {
		if p.header[col] {
			cols = append(cols, col)
		}
	}
	return cols
}

// ColumnValues returns every present value of col in record order.
func (p *Panel) ColumnValues(col Column) []float64 {
	var out []float64
	for _, rec := range p.Records {
		if v, ok := rec.Get(col); ok {
			out = append(out, v)
		}
	}
	return out
}

// Entities returns the distinct entities sorted ascending.
func (p *Panel) Entities() []string {
	seen := make(map[string]struct{})
	for _, rec := range p.Records {
		seen[rec.Entity] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct years recorded for entity, most recent first.
func (p *Panel) Years(entity string) []int {
	seen := make(map[int]struct{})
	for _, rec := range p.Records {
		if rec.Entity == entity {
			seen[rec.Year] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Lookup returns the first record for entity and year. Keys are not
// deduplicated, so later duplicates are only visible through Records.
func (p *Panel) Lookup(entity string, year int) (Record, bool) {
	for _, rec := range p.Records {
		if rec.Entity == entity && rec.Year == year {
			return rec, true
		}
	}
	return Record{}, false
}

// EnrollmentPoint is a single (year, headcount) observation.
type EnrollmentPoint struct {
	Year  int     `json:"year"`
	Count float64 `json:"count"`
}

// EnrollmentSeries returns the entity's enrollment observations in
// ascending year order. When a year repeats, the first record wins.
func (p *Panel) EnrollmentSeries(entity string) []EnrollmentPoint {
	byYear := make(map[int]float64)
	for _, rec := range p.Records {
		if rec.Entity != entity {
			continue
		}
		v, ok := rec.Get(Enrollment)
		if !ok {
			continue
		}
		if _, dup := byYear[rec.Year]; !dup {
			byYear[rec.Year] = v
		}
	}

	out := make([]EnrollmentPoint, 0, len(byYear))
	for y, v := range byYear {
		out = append(out, EnrollmentPoint{Year: y, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
