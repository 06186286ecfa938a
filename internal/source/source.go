package source

import (
	"context"
	"fmt"

	"github.com/agungatd/daily-data-fetcher/internal/config"
	"github.com/agungatd/daily-data-fetcher/internal/model"
)

// Shape describes where the records live in a source payload and what a
// valid record looks like.
type Shape struct {
	URL            string
	Collection     string
	CategoryPath   string
	RequiredFields []string
	CaseSensitive  bool
}

type Source interface {
	Name() string
	Shape() Shape
	Fetch(ctx context.Context) (model.Payload, error)
}

var presets = map[string]Shape{
	"nobel": {
		URL:            "https://api.nobelprize.org/2.1/nobelPrizes",
		Collection:     "nobelPrizes",
		CategoryPath:   "category.en",
		RequiredFields: []string{"awardYear", "category", "categoryFullName"},
	},
	"publicapis": {
		URL:            "https://api.publicapis.org/entries",
		Collection:     "entries",
		CategoryPath:   "Category",
		RequiredFields: []string{"API", "Description", "Link", "Category"},
	},
}

// ResolveShape merges the preset for c.Type with the explicit values in c.
func ResolveShape(c config.SourceConfig) (Shape, error) {
	var s Shape
	switch c.Type {
	case "custom":
	default:
		p, ok := presets[c.Type]
		if !ok {
			return Shape{}, fmt.Errorf("unknown source type: %s", c.Type)
		}
		s = p
		s.RequiredFields = append([]string(nil), p.RequiredFields...)
	}
	if c.URL != "" {
		s.URL = c.URL
	}
	if c.Collection != "" {
		s.Collection = c.Collection
	}
	if c.CategoryPath != "" {
		s.CategoryPath = c.CategoryPath
	}
	if len(c.RequiredFields) > 0 {
		s.RequiredFields = append([]string(nil), c.RequiredFields...)
	}
	s.CaseSensitive = c.CaseSensitive

	if s.URL == "" || s.Collection == "" || s.CategoryPath == "" {
		return Shape{}, fmt.Errorf("source %q: url, collection and category_path are required", c.Type)
	}
	return s, nil
}

func NewFromConfig(c config.SourceConfig) (Source, error) {
	shape, err := ResolveShape(c)
	if err != nil {
		return nil, err
	}
	return NewHTTPSource(c.Type, shape, c.HTTP), nil
}
