// Package geo converts raw GPS EXIF values into decimal coordinates.
package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// GPS tag names as reported by the metadata extractor.
const (
	TagLatitude     = "GPSLatitude"
	TagLatitudeRef  = "GPSLatitudeRef"
	TagLongitude    = "GPSLongitude"
	TagLongitudeRef = "GPSLongitudeRef"
)

// decimalPlaces is the rounding applied to every converted value.
const decimalPlaces = 10

var (
	// ErrMalformedDMS is returned when a degrees/minutes/seconds value
	// cannot be decomposed into three numerator/denominator pairs.
	ErrMalformedDMS = errors.New("malformed DMS value")

	// ErrIncompleteTags is returned when one of the four GPS tags is missing.
	ErrIncompleteTags = errors.New("incomplete GPS tags")
)

// Rational is one DMS component as stored in EXIF.
type Rational struct {
	Num int64
	Den int64
}

// Tag holds a normalized GPS tag: a DMS triple for GPSLatitude and
// GPSLongitude, a hemisphere letter for the reference tags.
type Tag struct {
	Rationals []Rational
	Ref       string
}

// Tags maps GPS tag names to their values. An empty map means the image
// carries no GPS data.
type Tags map[string]Tag

// Coordinate is a signed decimal-degree position.
type Coordinate struct {
	Lat float64
	Lon float64
}

// ParseRational parses a textual rational. Accepted forms are "num/den",
// "(num, den)", "num,den" and "num.den".
func ParseRational(s string) (Rational, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimSuffix(strings.TrimPrefix(v, "("), ")")

	sep := -1
	for _, c := range "/,." {
		if i := strings.IndexRune(v, c); i >= 0 {
			sep = i
			break
		}
	}
	if sep < 0 {
		return Rational{}, fmt.Errorf("%w: %q has no separator", ErrMalformedDMS, s)
	}

	num, err := strconv.ParseInt(strings.TrimSpace(v[:sep]), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("%w: %q: %v", ErrMalformedDMS, s, err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(v[sep+1:]), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("%w: %q: %v", ErrMalformedDMS, s, err)
	}

	return Rational{Num: num, Den: den}, nil
}

// positive substitutes 1 for zero or negative components so a zero
// denominator never divides.
func positive(v int64) float64 {
	if v <= 0 {
		return 1
	}
	return float64(v)
}

func (r Rational) value() float64 {
	return positive(r.Num) / positive(r.Den)
}

// DecimalFromDMS converts a degrees/minutes/seconds triple to signed decimal
// degrees, negated for the S and W hemispheres and rounded to 10 places.
func DecimalFromDMS(dms []Rational, ref string) (float64, error) {
	if len(dms) != 3 {
		return 0, fmt.Errorf("%w: expected 3 components, got %d", ErrMalformedDMS, len(dms))
	}

	degrees := dms[0].value()
	minutes := dms[1].value() / 60
	seconds := dms[2].value() / 3600

	v := degrees + minutes + seconds
	switch strings.TrimSpace(ref) {
	case "S", "W":
		v = -v
	}

	return round(v, decimalPlaces), nil
}

// CoordinatesFromTags converts the four GPS tags into a Coordinate. Partial
// GPS metadata is rejected rather than defaulted.
func CoordinatesFromTags(tags Tags) (Coordinate, error) {
	for _, key := range []string{TagLatitude, TagLatitudeRef, TagLongitude, TagLongitudeRef} {
		if _, ok := tags[key]; !ok {
			return Coordinate{}, fmt.Errorf("%w: missing %s", ErrIncompleteTags, key)
		}
	}

	lat, err := DecimalFromDMS(tags[TagLatitude].Rationals, tags[TagLatitudeRef].Ref)
	if err != nil {
		return Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := DecimalFromDMS(tags[TagLongitude].Rationals, tags[TagLongitudeRef].Ref)
	if err != nil {
		return Coordinate{}, fmt.Errorf("longitude: %w", err)
	}

	return Coordinate{Lat: lat, Lon: lon}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

var dmsGroup = regexp.MustCompile(`\(([^()]*)\)`)

// ParseDMS parses a textual DMS triple such as "52/1 5/1 284/100",
// "52/1, 5/1, 284/100" or "((52, 1), (5, 1), (284, 100))".
func ParseDMS(s string) ([]Rational, error) {
	var parts []string
	if groups := dmsGroup.FindAllStringSubmatch(s, -1); len(groups) > 0 {
		for _, g := range groups {
			parts = append(parts, g[1])
		}
	} else {
		parts = strings.FieldsFunc(s, func(r rune) bool {
			return r == ' ' || r == ';' || (r == ',' && strings.Contains(s, "/"))
		})
	}

	out := make([]Rational, 0, len(parts))
	for _, p := range parts {
		r, err := ParseRational(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
