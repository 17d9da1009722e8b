package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Basic(t *testing.T) {
	data := `[
		{"name": "Alice", "coordinates": {"x": 10, "y": -925.5}, "car": {"name": "Lada"},
		 "realHero": true, "mood": "CALM", "impactSpeed": 100, "minutesOfWaiting": 5, "weaponType": "BAT"},
		{"name": "Bob", "coordinates": {"x": 1, "y": 1}, "car": {"id": 3},
		 "realHero": false, "mood": null, "impactSpeed": 1, "minutesOfWaiting": 1}
	]`

	got, err := ParseJSON([]byte(data))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Alice", *got[0].Name)
	assert.InDelta(t, -925.5, *got[0].Coordinates.Y, 0.0001)
	assert.Equal(t, WeaponBat, *got[0].WeaponType)
	assert.Equal(t, MoodCalm, *got[0].Mood)

	assert.Nil(t, got[1].Mood)
	assert.Equal(t, int64(3), *got[1].Car.ID)
}

func TestParseJSON_EmptyArray(t *testing.T) {
	got, err := ParseJSON([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"object not array", `{"name": "Alice"}`},
		{"truncated", `[{"name": "Alice"}`},
		{"wrong type", `[{"name": 42}]`},
		{"unknown mood", `[{"name": "A", "mood": "HAPPY"}]`},
		{"trailing data", `[] []`},
		{"not json", `name,x,y`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, got)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, FormatJSON, pe.Format)
			assert.Equal(t, 0, pe.Line)
			assert.Contains(t, err.Error(), "invalid JSON format")
		})
	}
}
