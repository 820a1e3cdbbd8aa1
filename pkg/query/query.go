// Copyright (c) 2026 Trailforge. All rights reserved.

/*
Package query translates raw HTTP query strings into structured list-query
specifications (filter, sort, field projection, pagination).

Architecture:

  - Parse: converts url.Values into an immutable [Spec]. No I/O, no SQL.
  - Schema: a per-entity whitelist mapping exposed field names to SQL
    columns. Compiles a [Spec] into WHERE / ORDER BY fragments.
  - Projection: shapes response items down to the requested field set.

The four stages are always applied filter → sort → fields → paginate, and
each stage only narrows or shapes the same underlying query. The resulting
SQL is executed exactly once by the calling repository.

Security: field names coming from the query string never reach SQL text
directly. Unknown fields are dropped silently; only whitelisted column
names from the [Schema] are interpolated.
*/
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/kasunvp/trailforge/pkg/pagination"
)

// Op is a comparison operator recognized in query-string filters.
type Op string

const (
	OpEq  Op = "="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

// operators maps the literal query-string tokens to SQL comparison operators.
var operators = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

// reserved keys are consumed by the sort/fields/pagination stages and never
// interpreted as filters.
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// Filter is a single field comparison (e.g. price > 300).
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Sort is a single ordering key. Desc reports a leading '-' in the request.
type Sort struct {
	Field string
	Desc  bool
}

// Spec is the ephemeral, per-request list-query specification.
//
// It is built once from the URL query string and never persisted.
type Spec struct {
	Filters []Filter
	Sort    []Sort
	Fields  []string
	Page    pagination.Params
}

// Parse builds a [Spec] from a raw query string.
//
// # Filter stage
//
// Every non-reserved key becomes an equality filter. A key of the form
// "field[op]" with op ∈ {gt, gte, lt, lte} becomes a comparison filter
// (e.g. price[gt]=300 → price > 300). Numeric string values are coerced to
// numbers so comparisons run on numeric SQL types, not text.
//
// # Sort stage
//
// "sort" splits on commas into ordered keys; a leading '-' means
// descending. Order is preserved (primary, secondary, ...).
//
// # Fields stage
//
// "fields" splits on commas into the inclusion list.
//
// # Pagination stage
//
// "page" and "limit" are clamped by [pagination.FromValues].
func Parse(values url.Values) Spec {
	spec := Spec{Page: pagination.FromValues(values)}

	// Deterministic filter order regardless of map iteration.
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if reserved[key] {
			continue
		}

		field, op := splitOperator(key)
		raw := values.Get(key)

		spec.Filters = append(spec.Filters, Filter{
			Field: field,
			Op:    op,
			Value: coerce(raw),
		})
	}

	for _, part := range splitList(values.Get("sort")) {
		if strings.HasPrefix(part, "-") {
			spec.Sort = append(spec.Sort, Sort{Field: part[1:], Desc: true})
		} else {
			spec.Sort = append(spec.Sort, Sort{Field: part})
		}
	}

	spec.Fields = splitList(values.Get("fields"))

	return spec
}

// splitOperator decomposes "price[gt]" into ("price", OpGt).
// Keys without a recognized operator suffix are plain equality filters.
func splitOperator(key string) (string, Op) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}

	token := key[open+1 : len(key)-1]
	op, ok := operators[token]
	if !ok {
		return key, OpEq
	}

	return key[:open], op
}

// coerce converts numeric-looking strings to float64 so that the database
// compares numbers, not text. Everything else passes through unchanged.
func coerce(raw string) any {
	if raw == "" {
		return raw
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// splitList parses a single comma-separated query value into a trimmed
// slice of strings. Empty entries are dropped.
func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
