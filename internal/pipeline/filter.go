package pipeline

import (
	"log"
	"strings"

	"github.com/agungatd/daily-data-fetcher/internal/model"
)

// Matcher compares a record's category attribute with the filter criterion.
type Matcher struct {
	CategoryPath  string
	CaseSensitive bool
}

func (m Matcher) equal(a, b string) bool {
	if m.CaseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// Match reports whether rec carries a string category equal to criterion.
func (m Matcher) Match(rec model.Record, criterion string) bool {
	cat, ok := rec.LookupString(m.CategoryPath)
	return ok && m.equal(cat, criterion)
}

// Filter returns, in original order, the records of the named collection
// whose category matches criterion. A nil payload or a missing collection
// yields an empty slice and a warning, never an error.
func Filter(payload model.Payload, collection string, m Matcher, criterion string) []model.Record {
	records, ok := payload.Collection(collection)
	if !ok {
		log.Printf("filter: warning: no %s found in data", collection)
		return []model.Record{}
	}

	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if m.Match(rec, criterion) {
			out = append(out, rec)
		}
	}
	log.Printf("filter: %d of %d %s match category %q", len(out), len(records), collection, criterion)
	return out
}
