// Copyright (c) 2026 Trailforge. All rights reserved.

package query

import (
	"fmt"
	"strings"
)

// Schema is the per-entity whitelist that compiles a [Spec] into SQL
// fragments. Only fields present in Columns ever reach SQL text.
type Schema struct {
	// ID is the SQL identity column, always included in projections.
	ID string

	// Columns maps exposed (JSON) field names to SQL column names.
	Columns map[string]string

	// DefaultSort is the ORDER BY applied when the request has no sort key
	// (creation time descending, newest first).
	DefaultSort string
}

// Where compiles the filter stage into "AND col op $N" fragments.
//
// # Parameters
//   - spec: The parsed query specification.
//   - next: The first free placeholder index ($1-based); base queries may
//     already hold their own arguments.
//
// # Returns
//   - The SQL fragment (empty or leading with " AND").
//   - The bound argument values, in placeholder order.
//
// Unknown filter fields are dropped: clients probing with arbitrary keys
// get an unfiltered (never an errored) query.
func (s Schema) Where(spec Spec, next int) (string, []any) {
	var clauses strings.Builder
	var args []any

	for _, filter := range spec.Filters {
		column, ok := s.Columns[filter.Field]
		if !ok {
			continue
		}

		fmt.Fprintf(&clauses, " AND %s %s $%d", column, filter.Op, next)
		args = append(args, filter.Value)
		next++
	}

	return clauses.String(), args
}

// OrderBy compiles the sort stage into an ORDER BY clause.
//
// Sort keys are applied in request order (primary first). Keys not present
// in the schema are skipped. Without any usable key the default sort
// (creation time descending) applies.
func (s Schema) OrderBy(spec Spec) string {
	var keys []string

	for _, sorting := range spec.Sort {
		column, ok := s.Columns[sorting.Field]
		if !ok {
			continue
		}

		direction := "ASC"
		if sorting.Desc {
			direction = "DESC"
		}
		keys = append(keys, column+" "+direction)
	}

	if len(keys) == 0 {
		return " ORDER BY " + s.DefaultSort
	}

	return " ORDER BY " + strings.Join(keys, ", ")
}

// LimitOffset compiles the pagination stage into LIMIT/OFFSET placeholders
// and returns the two bound values (page size, skip).
func (s Schema) LimitOffset(spec Spec, next int) (string, []any) {
	fragment := fmt.Sprintf(" LIMIT $%d OFFSET $%d", next, next+1)
	return fragment, []any{spec.Page.Limit, spec.Page.Offset()}
}
