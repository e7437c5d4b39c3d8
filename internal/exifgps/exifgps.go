// Package exifgps reads GPS tags from image EXIF metadata.
package exifgps

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"photo-geosorter/internal/geo"
)

var (
	dmsFields = []exif.FieldName{exif.GPSLatitude, exif.GPSLongitude}
	refFields = []exif.FieldName{exif.GPSLatitudeRef, exif.GPSLongitudeRef}
)

// Extractor reads GPS tags with goexif.
type Extractor struct {
	logger zerolog.Logger
}

// New allocates an Extractor.
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the GPS tags of the image at path. A file without EXIF
// metadata or without a GPS block yields empty tags and no error.
func (e *Extractor) Extract(path string) (geo.Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tags, err := e.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tags, nil
}

// Decode reads GPS tags from a JPEG, TIFF or raw EXIF stream.
func (e *Extractor) Decode(r io.Reader) (geo.Tags, error) {
	x, err := exif.Decode(r)
	if err != nil {
		if x == nil || exif.IsCriticalError(err) {
			e.logger.Debug().Err(err).Msg("No EXIF metadata found")
			return geo.Tags{}, nil
		}
		e.logger.Debug().Err(err).Msg("EXIF metadata partially decoded")
	}

	tags := geo.Tags{}

	for _, name := range dmsFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		rats, err := rationals(tag)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tags[string(name)] = geo.Tag{Rationals: rats}
	}

	for _, name := range refFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		ref, err := tag.StringVal()
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", name, geo.ErrMalformedDMS, err)
		}
		tags[string(name)] = geo.Tag{Ref: ref}
	}

	if len(tags) == 0 {
		e.logger.Debug().Msg("No EXIF geotags found")
	}

	return tags, nil
}

// rationals normalizes a DMS tag into typed rationals. Writers that store
// the triple as text are accepted too.
func rationals(tag *tiff.Tag) ([]geo.Rational, error) {
	switch tag.Format() {
	case tiff.RatVal:
		out := make([]geo.Rational, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", geo.ErrMalformedDMS, err)
			}
			out = append(out, geo.Rational{Num: num, Den: den})
		}
		return out, nil

	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", geo.ErrMalformedDMS, err)
		}
		return geo.ParseDMS(s)
	}

	return nil, fmt.Errorf("%w: unsupported tag format %v", geo.ErrMalformedDMS, tag.Format())
}
