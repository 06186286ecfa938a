package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Payload is the decoded JSON object returned by a source API.
type Payload map[string]any

// Record is one element of the source collection.
type Record map[string]any

// Collection returns the records under name. ok is false when the payload is
// nil, the field is absent, or it does not hold a list. Non-object elements
// are dropped.
func (p Payload) Collection(name string) (records []Record, ok bool) {
	if p == nil {
		return nil, false
	}
	raw, found := p[name]
	if !found {
		return nil, false
	}
	arr, isList := raw.([]any)
	if !isList {
		return nil, false
	}
	records = make([]Record, 0, len(arr))
	for _, it := range arr {
		if m, isMap := it.(map[string]any); isMap {
			records = append(records, Record(m))
		}
	}
	return records, true
}

// TotalCount reports the optional total advertised by the API, either a
// top-level "count" or "meta.count".
func (p Payload) TotalCount() (int, bool) {
	if p == nil {
		return 0, false
	}
	if n, ok := asInt(p["count"]); ok {
		return n, true
	}
	if meta, ok := p["meta"].(map[string]any); ok {
		return asInt(meta["count"])
	}
	return 0, false
}

// Lookup resolves a dotted path such as "category.en" against the record.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString is Lookup restricted to string values.
func (r Record) LookupString(path string) (string, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

// ReportMetrics is the optional counts block embedded in a report.
type ReportMetrics struct {
	RawEntryCount      int `json:"raw_entry_count"`
	FilteredEntryCount int `json:"filtered_entry_count"`
}

// Report is the document written at the end of a successful run. The record
// list is serialized under the source's collection name.
type Report struct {
	CategoryFilter string
	Count          int
	Metrics        *ReportMetrics
	Collection     string
	Records        []Record
}

// MarshalJSON keeps the key order category_filter, count, metrics, records.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := marshalRaw(key)
		if err != nil {
			return err
		}
		b, err := marshalRaw(v)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}

	if err := write("category_filter", r.CategoryFilter); err != nil {
		return nil, err
	}
	if err := write("count", r.Count); err != nil {
		return nil, err
	}
	if r.Metrics != nil {
		if err := write("metrics", r.Metrics); err != nil {
			return nil, err
		}
	}
	records := r.Records
	if records == nil {
		records = []Record{}
	}
	collection := r.Collection
	if collection == "" {
		collection = "records"
	}
	if err := write(collection, records); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw is json.Marshal without HTML escaping, so URLs and text in
// records come out as the source sent them.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
