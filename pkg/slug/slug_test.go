// Copyright (c) 2026 Trailforge. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasunvp/trailforge/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple_name", "The Forest Hiker", "the_forest_hiker"},
		{"already_lowercase", "sea explorer", "sea_explorer"},
		{"accents_removed", "Côte d'Azur Trek", "cote_d_azur_trek"},
		{"repeated_spaces", "City   Wanderer", "city_wanderer"},
		{"leading_trailing", "  Snow Adventurer  ", "snow_adventurer"},
		{"digits_kept", "Top 5 Peaks", "top_5_peaks"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
