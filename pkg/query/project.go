// Copyright (c) 2026 Trailforge. All rights reserved.

package query

import "encoding/json"

// Project shapes a list of items down to the requested field set.
//
// # Database convention
//
// The identity field ("id") is always retained, mirroring how document
// stores return the primary key regardless of the projection. With an
// empty field list the items pass through unshaped (the repository already
// excludes internal columns from its SELECT).
//
// Shaping happens at the serialization boundary via the items' JSON tags,
// so hidden fields (password hashes, soft-delete flags) can never be
// projected back in: json:"-" fields do not survive the round trip.
func Project[T any](items []T, fields []string) any {
	if len(fields) == 0 {
		return items
	}

	keep := map[string]bool{"id": true}
	for _, field := range fields {
		keep[field] = true
	}

	shaped := make([]map[string]any, 0, len(items))
	for _, item := range items {
		flat, err := toMap(item)
		if err != nil {
			// Marshalling a domain entity cannot realistically fail;
			// fall back to the unshaped items rather than drop data.
			return items
		}

		for key := range flat {
			if !keep[key] {
				delete(flat, key)
			}
		}
		shaped = append(shaped, flat)
	}

	return shaped
}

// ProjectOne shapes a single item down to the requested field set, with the
// same conventions as [Project].
func ProjectOne[T any](item T, fields []string) any {
	if len(fields) == 0 {
		return item
	}

	shaped, ok := Project([]T{item}, fields).([]map[string]any)
	if !ok || len(shaped) != 1 {
		return item
	}
	return shaped[0]
}

// toMap flattens an entity into its JSON representation.
func toMap(item any) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}

	return flat, nil
}
