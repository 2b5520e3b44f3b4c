package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_CelsiusToFahrenheit(t *testing.T) {
	got, err := Convert("c_to_f", 25)
	require.NoError(t, err)
	assert.Equal(t, 77.0, got)
}

func TestConvert_Table(t *testing.T) {
	tests := []struct {
		key   string
		in    float64
		want  float64
		delta float64
	}{
		{"f_to_c", 77, 25, 1e-9},
		{"c_to_k", 0, 273.15, 1e-9},
		{"k_to_c", 273.15, 0, 1e-9},
		{"f_to_k", 32, 273.15, 1e-9},
		{"km_to_miles", 10, 6.21371, 1e-6},
		{"miles_to_km", 6.21371, 10, 1e-6},
		{"kg_to_lb", 1, 2.20462, 1e-6},
		{"l_to_gal", 10, 2.64172, 1e-6},
		{"ml_to_oz", 1000, 33.814, 1e-3},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := Convert(tt.key, tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestConvert_RoundTrips(t *testing.T) {
	pairs := [][2]string{
		{"km_to_miles", "miles_to_km"},
		{"kg_to_lb", "lb_to_kg"},
		{"l_to_gal", "gal_to_l"},
		{"c_to_f", "f_to_c"},
	}
	for _, p := range pairs {
		forward, err := Convert(p[0], 123.45)
		require.NoError(t, err)
		back, err := Convert(p[1], forward)
		require.NoError(t, err)
		assert.InDelta(t, 123.45, back, 1e-9, "%s then %s", p[0], p[1])
	}
}

func TestConvert_Unknown(t *testing.T) {
	_, err := Convert("furlongs_to_parsecs", 1)
	assert.Error(t, err)
}

func TestFindCategory(t *testing.T) {
	cat, err := FindCategory("temperature")
	require.NoError(t, err)
	assert.Equal(t, "Temperature", cat.Label)
	assert.Len(t, cat.Conversions, 6)

	_, err = FindCategory("sound")
	assert.Error(t, err)
}

func TestCategories_AllKeysUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, cat := range Categories {
		for _, c := range cat.Conversions {
			assert.False(t, seen[c.Key], "duplicate key %s", c.Key)
			seen[c.Key] = true
		}
	}
}
