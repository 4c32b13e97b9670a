package finasync

import (
	"slices"
	"time"
)

// Category labels a finding.
type Category string

const (
	Expenses    Category = "expenses"
	Investments Category = "investments"
)

// KnownCategories are always present in a Snapshot.
var KnownCategories = []Category{Expenses, Investments}

// NoData is the summary reported for a known category that was never written.
const NoData = "No data yet."

// LastUpdatedKey is the reserved key holding the store-wide timestamp in
// persisted stores. It cannot be used as a category.
const LastUpdatedKey = "last_updated"

// TimeLayout is the layout of persisted timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Snapshot is the content of a store at a point in time.
type Snapshot struct {
	// Summaries maps every known category, and every other written category,
	// to its summary.
	Summaries map[Category]string
	// LastUpdated is the time of the last write to the store, zero if the store
	// was never written.
	LastUpdated time.Time
}

// NewSnapshot returns a snapshot where every known category holds NoData.
func NewSnapshot() Snapshot {
	s := Snapshot{Summaries: make(map[Category]string, len(KnownCategories))}
	for _, c := range KnownCategories {
		s.Summaries[c] = NoData
	}
	return s
}

// Get returns the summary for c, or NoData.
func (s Snapshot) Get(c Category) string {
	if v, ok := s.Summaries[c]; ok {
		return v
	}
	return NoData
}

// Has reports whether c holds real data.
func (s Snapshot) Has(c Category) bool {
	v, ok := s.Summaries[c]
	return ok && v != NoData
}

// Categories returns the snapshot categories, known ones first then the others
// in alphabetical order.
func (s Snapshot) Categories() []Category {
	res := slices.Clone(KnownCategories)
	var others []Category
	for c := range s.Summaries {
		if !slices.Contains(KnownCategories, c) {
			others = append(others, c)
		}
	}
	slices.Sort(others)
	return append(res, others...)
}

// Map returns the snapshot as a plain string map, as tools report it.
func (s Snapshot) Map() map[string]string {
	m := make(map[string]string, len(s.Summaries))
	for _, c := range s.Categories() {
		m[string(c)] = s.Get(c)
	}
	return m
}
