package scraper

import "time"

// NotFound is the sentinel stored in scalar summary fields the page did not provide.
const NotFound = "Not found"

// Page is the raw result of a single fetch.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Summary is the fixed-shape record built from one listing page.
type Summary struct {
	URL              string   `json:"url,omitempty"`
	PropertyName     string   `json:"property_name"`
	PropertyType     string   `json:"property_type"`
	Rooms            string   `json:"rooms"`
	Bathrooms        string   `json:"bathrooms"`
	GeneralAmenities []string `json:"general_amenities"`
	FamilyAmenities  []string `json:"family_amenities"`
	SafetyFeatures   []string `json:"safety_feats"`
}

// NewSummary returns a Summary for name with every optional field at its default.
func NewSummary(name string) Summary {
	return Summary{
		PropertyName:     name,
		PropertyType:     NotFound,
		Rooms:            NotFound,
		Bathrooms:        NotFound,
		GeneralAmenities: []string{},
		FamilyAmenities:  []string{},
		SafetyFeatures:   []string{},
	}
}

// Stats tracks per-run outcomes. Each worker owns one; the dispatcher merges them.
type Stats struct {
	Attempted int           `json:"attempted"`
	Rendered  int           `json:"rendered"`
	Failed    int           `json:"failed"`
	Failures  map[Kind]int  `json:"failures,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// RecordFailure counts one failed URL under kind.
func (s *Stats) RecordFailure(kind Kind) {
	s.Failed++
	if s.Failures == nil {
		s.Failures = make(map[Kind]int)
	}
	s.Failures[kind]++
}

// Merge folds other into s. Elapsed is left untouched.
func (s *Stats) Merge(other Stats) {
	s.Attempted += other.Attempted
	s.Rendered += other.Rendered
	for kind, n := range other.Failures {
		if s.Failures == nil {
			s.Failures = make(map[Kind]int)
		}
		s.Failures[kind] += n
	}
	s.Failed += other.Failed
}
