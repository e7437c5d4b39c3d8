// Package cluster groups coordinates into locations.
//
// Two coordinates share a location when both their latitude and longitude
// are equal after rounding to a fixed number of decimal places. Buckets are
// squares of the absolute coordinate grid, so points straddling a rounding
// boundary land in different locations no matter how close they are.
package cluster

import (
	"strconv"
	"strings"

	"photo-geosorter/internal/geo"
)

// folderPrefix is the name prefix of every location folder.
const folderPrefix = "Location"

// Registry is the ordered list of known locations. Each entry is the
// coordinate that founded the location; entries are never recomputed or
// removed, so indices are stable for the lifetime of a run.
type Registry struct {
	locations []geo.Coordinate
}

// NewRegistry allocates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Len returns the number of known locations.
func (r *Registry) Len() int {
	return len(r.locations)
}

// At returns the founding coordinate of location i.
func (r *Registry) At(i int) geo.Coordinate {
	return r.locations[i]
}

// Locations returns a copy of all founding coordinates in insertion order.
func (r *Registry) Locations() []geo.Coordinate {
	out := make([]geo.Coordinate, len(r.locations))
	copy(out, r.locations)
	return out
}

// Append adds a new location and returns its index.
func (r *Registry) Append(c geo.Coordinate) int {
	r.locations = append(r.locations, c)
	return len(r.locations) - 1
}

// Classifier assigns a coordinate to a location of reg, appending a new
// location when none matches.
type Classifier interface {
	Classify(c geo.Coordinate, reg *Registry) (index int, isNew bool)
}

// Rounding is the rounding-then-equality Classifier.
type Rounding struct {
	Precision int
}

// Classify implements Classifier. The first matching location in insertion
// order wins.
func (cl Rounding) Classify(c geo.Coordinate, reg *Registry) (int, bool) {
	lat := Bucket(c.Lat, cl.Precision)
	lon := Bucket(c.Lon, cl.Precision)

	for i, loc := range reg.locations {
		if Bucket(loc.Lat, cl.Precision) == lat && Bucket(loc.Lon, cl.Precision) == lon {
			return i, false
		}
	}

	return reg.Append(c), true
}

// Bucket returns the decimal text of v rounded to precision places.
// Negative zero is reported as zero so that -0.000001 and 0.000001 share
// a bucket.
func Bucket(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s, "-0.") == "" {
		return s[1:]
	}
	return s
}

// FolderName returns the folder name of location index.
func FolderName(index int) string {
	return folderPrefix + strconv.Itoa(index)
}

// ParseFolderName reports the location index encoded in a folder name.
func ParseFolderName(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, folderPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	// FolderName never pads
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return i, true
}
