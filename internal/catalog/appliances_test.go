package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
)

func TestAppliances(t *testing.T) {
	list := Appliances()
	require.Len(t, list, 11)
	assert.Equal(t, "Air Conditioner", list[0].Name)
	for _, a := range list {
		assert.True(t, a.Category.Valid(), a.Name)
		assert.Positive(t, a.DefaultWatts, a.Name)
	}

	list[0].DefaultWatts = 1
	assert.Equal(t, 1500, Appliances()[0].DefaultWatts)
}

func TestFind(t *testing.T) {
	geyser, ok := Find("Geyser")
	require.True(t, ok)
	assert.Equal(t, forecast.CategoryHeating, geyser.Category)
	assert.Equal(t, 2000, geyser.DefaultWatts)

	_, ok = Find("Jacuzzi")
	assert.False(t, ok)
}
