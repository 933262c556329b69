package region

import (
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryTable(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 36, r.Len())

	delhi, ok := r.Get("Delhi")
	require.True(t, ok)
	assert.Equal(t, 32.0, delhi.Temp)
	assert.Equal(t, 65.0, delhi.Humidity)
	assert.True(t, delhi.Tariff.Equal(decimal.RequireFromString("6.5")))
	assert.Equal(t, ClimateExtreme, delhi.Climate)

	ladakh, ok := r.Get("Ladakh")
	require.True(t, ok)
	assert.Equal(t, 10.0, ladakh.Temp)
	assert.Equal(t, ClimateCold, ladakh.Climate)
}

func TestLookupFallsBackToDefault(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"Atlantis", "", "delhi"} {
		t.Run(name, func(t *testing.T) {
			p := r.Lookup(name)
			assert.Equal(t, DefaultRegion, p.Name)
			assert.Equal(t, r.Default(), p)
		})
	}

	_, ok := r.Get("Atlantis")
	assert.False(t, ok)
}

func TestLookupIsStable(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, r.Lookup("Kerala"), r.Lookup("Kerala"))
	assert.Equal(t, "Kerala", r.Lookup("Kerala").Name)
}

func TestNamesSorted(t *testing.T) {
	names := Shared().Names()
	assert.Len(t, names, 36)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "Jammu & Kashmir")
}

func TestAllProfilesPopulated(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		p := r.Lookup(name)
		assert.Equal(t, name, p.Name)
		assert.True(t, p.Tariff.IsPositive(), name)
		assert.NotEmpty(t, p.Climate, name)
	}
}
