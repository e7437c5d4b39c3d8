package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-geosorter/internal/geo"
)

func TestBucket(t *testing.T) {
	for _, ca := range []struct {
		v         float64
		precision int
		want      string
	}{
		{52.0912345, 5, "52.09123"},
		{52.0912399, 5, "52.09124"},
		{52.0912345, 4, "52.0912"},
		{-74.006, 2, "-74.01"},
		{-0.000001, 5, "0.00000"},
		{0.000001, 5, "0.00000"},
		{-0.4, 0, "0"},
		{12.6, 0, "13"},
	} {
		assert.Equal(t, ca.want, Bucket(ca.v, ca.precision))
	}
}

func TestClassifyNewAndExisting(t *testing.T) {
	reg := NewRegistry()
	cl := Rounding{Precision: 5}

	a := geo.Coordinate{Lat: 52.0912345, Lon: 5.1089321}
	b := geo.Coordinate{Lat: 40.7128, Lon: -74.006}
	a2 := geo.Coordinate{Lat: 52.0912349, Lon: 5.1089324}

	i, isNew := cl.Classify(a, reg)
	assert.Equal(t, 0, i)
	assert.True(t, isNew)

	i, isNew = cl.Classify(b, reg)
	assert.Equal(t, 1, i)
	assert.True(t, isNew)

	i, isNew = cl.Classify(a2, reg)
	assert.Equal(t, 0, i)
	assert.False(t, isNew)

	require.Equal(t, 2, reg.Len())
	assert.Equal(t, a, reg.At(0))
	assert.Equal(t, b, reg.At(1))
}

func TestClassifyIdempotent(t *testing.T) {
	reg := NewRegistry()
	cl := Rounding{Precision: 3}
	c := geo.Coordinate{Lat: 48.85837, Lon: 2.294481}

	first, _ := cl.Classify(c, reg)
	for n := 0; n < 5; n++ {
		i, isNew := cl.Classify(c, reg)
		assert.Equal(t, first, i)
		assert.False(t, isNew)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestClassifyPrecisionBoundary(t *testing.T) {
	for precision := 0; precision <= 8; precision++ {
		reg := NewRegistry()
		cl := Rounding{Precision: precision}

		// differs only at precision+2 digits: same location
		base := geo.Coordinate{Lat: 10.1111111111, Lon: 20.1111111111}
		i, _ := cl.Classify(base, reg)
		step := 1.0
		for p := 0; p < precision+2; p++ {
			step /= 10
		}
		near := geo.Coordinate{Lat: base.Lat + step, Lon: base.Lon + step}
		j, isNew := cl.Classify(near, reg)
		assert.Equal(t, i, j, "precision %d", precision)
		assert.False(t, isNew, "precision %d", precision)

		// differs at the precision-th digit: new location
		step = 1.0
		for p := 0; p < precision; p++ {
			step /= 10
		}
		far := geo.Coordinate{Lat: base.Lat + step, Lon: base.Lon}
		k, isNew := cl.Classify(far, reg)
		assert.NotEqual(t, i, k, "precision %d", precision)
		assert.True(t, isNew, "precision %d", precision)
	}
}

func TestClassifyStraddlingBoundary(t *testing.T) {
	reg := NewRegistry()
	cl := Rounding{Precision: 5}

	i, _ := cl.Classify(geo.Coordinate{Lat: 52.0912345, Lon: 5.1089321}, reg)
	j, isNew := cl.Classify(geo.Coordinate{Lat: 52.0912399, Lon: 5.1089350}, reg)

	assert.NotEqual(t, i, j)
	assert.True(t, isNew)
}

func TestClassifyFirstMatchWins(t *testing.T) {
	reg := NewRegistry()
	reg.Append(geo.Coordinate{Lat: 1.001, Lon: 1.001})
	reg.Append(geo.Coordinate{Lat: 1.002, Lon: 1.002})

	i, isNew := Rounding{Precision: 1}.Classify(geo.Coordinate{Lat: 1.0, Lon: 1.0}, reg)
	assert.Equal(t, 0, i)
	assert.False(t, isNew)
}

func TestRegistryLocationsIsCopy(t *testing.T) {
	reg := NewRegistry()
	reg.Append(geo.Coordinate{Lat: 1, Lon: 2})

	locs := reg.Locations()
	locs[0].Lat = 99

	assert.Equal(t, 1.0, reg.At(0).Lat)
}

func TestFolderName(t *testing.T) {
	assert.Equal(t, "Location0", FolderName(0))
	assert.Equal(t, "Location12", FolderName(12))

	for _, ca := range []struct {
		name string
		idx  int
		ok   bool
	}{
		{"Location0", 0, true},
		{"Location17", 17, true},
		{"Location", 0, false},
		{"Location-1", 0, false},
		{"Location1a", 0, false},
		{"Location007", 0, false},
		{"Location01", 0, false},
		{"Location00", 0, false},
		{"Holiday", 0, false},
	} {
		idx, ok := ParseFolderName(ca.name)
		assert.Equal(t, ca.ok, ok, ca.name)
		assert.Equal(t, ca.idx, idx, ca.name)
	}
}
