package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agungatd/daily-data-fetcher/internal/model"
)

// Sample data mimicking the Nobel Prize API structure
const nobelFixture = `{
  "count": 3,
  "nobelPrizes": [
    {"awardYear": "1901", "category": {"en": "Physics", "se": "Fysik"}, "categoryFullName": {"en": "The Nobel Prize in Physics"}, "laureates": [{"id": "1"}]},
    {"awardYear": "1901", "category": {"en": "Chemistry", "se": "Kemi"}, "categoryFullName": {"en": "The Nobel Prize in Chemistry"}, "laureates": [{"id": "160"}]},
    {"awardYear": "1902", "category": {"en": "physics", "se": "Fysik"}, "categoryFullName": {"en": "The Nobel Prize in Physics"}, "laureates": [{"id": "2"}]}
  ]
}`

var nobelMatcher = Matcher{CategoryPath: "category.en"}

func payloadFrom(t *testing.T, s string) model.Payload {
	t.Helper()
	var p model.Payload
	require.NoError(t, json.Unmarshal([]byte(s), &p))
	return p
}

func TestFilterCaseInsensitive(t *testing.T) {
	p := payloadFrom(t, nobelFixture)

	got := Filter(p, "nobelPrizes", nobelMatcher, "PHYSICS")
	require.Len(t, got, 2)
	assert.Equal(t, "1901", got[0]["awardYear"])
	assert.Equal(t, "1902", got[1]["awardYear"], "original order is kept")
}

func TestFilterCaseSensitive(t *testing.T) {
	p := payloadFrom(t, nobelFixture)

	got := Filter(p, "nobelPrizes", Matcher{CategoryPath: "category.en", CaseSensitive: true}, "Physics")
	require.Len(t, got, 1)
	assert.Equal(t, "1901", got[0]["awardYear"])
}

func TestFilterDifferentCategory(t *testing.T) {
	got := Filter(payloadFrom(t, nobelFixture), "nobelPrizes", nobelMatcher, "Chemistry")
	require.Len(t, got, 1)
	cat, _ := got[0].LookupString("category.en")
	assert.Equal(t, "Chemistry", cat)
}

func TestFilterNoMatch(t *testing.T) {
	got := Filter(payloadFrom(t, nobelFixture), "nobelPrizes", nobelMatcher, "Literature")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterEmptyAndAbsent(t *testing.T) {
	cases := map[string]model.Payload{
		"nil payload":        nil,
		"empty collection":   payloadFrom(t, `{"count": 0, "nobelPrizes": []}`),
		"missing collection": payloadFrom(t, `{"count": 0}`),
		"not a list":         payloadFrom(t, `{"nobelPrizes": {"en": "Physics"}}`),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			got := Filter(p, "nobelPrizes", nobelMatcher, "Physics")
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestFilterSkipsRecordsWithoutCategory(t *testing.T) {
	p := payloadFrom(t, `{"entries": [
		{"API": "Cats", "Category": "Animals"},
		{"API": "NoCat"},
		{"API": "Numeric", "Category": 7},
		"not-an-object",
		{"API": "Dogs", "Category": "animals"}
	]}`)

	got := Filter(p, "entries", Matcher{CategoryPath: "Category"}, "Animals")
	require.Len(t, got, 2)
	assert.Equal(t, "Cats", got[0]["API"])
	assert.Equal(t, "Dogs", got[1]["API"])
}

func TestFilterIdempotent(t *testing.T) {
	p := payloadFrom(t, nobelFixture)
	first := Filter(p, "nobelPrizes", nobelMatcher, "physics")
	second := Filter(p, "nobelPrizes", nobelMatcher, "physics")
	assert.Equal(t, first, second)
}
