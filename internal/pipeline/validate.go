package pipeline

import (
	"fmt"
	"log"
	"strings"

	"github.com/agungatd/daily-data-fetcher/internal/model"
)

// Violation is one failed check on one record.
type Violation struct {
	Index  int
	Field  string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("record %d: field %q: %s", v.Index, v.Field, v.Reason)
}

// ValidationError carries every violation found in a single pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "validation failed: " + e.Violations[0].String()
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("validation failed with %d violations: %s", len(e.Violations), strings.Join(parts, "; "))
}

// Rules are the checks applied to every filtered record.
type Rules struct {
	RequiredFields []string
	Matcher        Matcher
}

// Validate scans all records and collects every violation before deciding.
// Each violation is logged on its own line. An empty input is valid.
func Validate(records []model.Record, rules Rules, criterion string) error {
	if len(records) == 0 {
		log.Printf("validate: warning: no records to validate for category %q", criterion)
		return nil
	}

	var violations []Violation
	for i, rec := range records {
		for _, field := range rules.RequiredFields {
			v, ok := rec.Lookup(field)
			switch {
			case !ok:
				violations = append(violations, Violation{Index: i, Field: field, Reason: "missing required field"})
			case isEmpty(v):
				violations = append(violations, Violation{Index: i, Field: field, Reason: "empty required field"})
			}
		}

		path := rules.Matcher.CategoryPath
		cat, ok := rec.LookupString(path)
		if !ok {
			violations = append(violations, Violation{Index: i, Field: path, Reason: "category attribute missing or not a string"})
		} else if !rules.Matcher.equal(cat, criterion) {
			violations = append(violations, Violation{Index: i, Field: path, Reason: fmt.Sprintf("category %q does not match %q", cat, criterion)})
		}
	}

	if len(violations) > 0 {
		for _, v := range violations {
			log.Printf("validate: error: %s", v)
		}
		return &ValidationError{Violations: violations}
	}
	log.Printf("validate: %d records passed validation for category %q", len(records), criterion)
	return nil
}

// isEmpty treats nil, "", false, 0, empty lists and empty objects as unset.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
