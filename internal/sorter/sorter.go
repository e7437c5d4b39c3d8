// Package sorter copies geotagged images into one folder per location.
package sorter

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"photo-geosorter/internal/cluster"
	"photo-geosorter/internal/conf"
	"photo-geosorter/internal/fileops"
	"photo-geosorter/internal/geo"
)

// Finder lists candidate images below a root directory.
type Finder interface {
	Find(root string) ([]string, error)
}

// Extractor returns the GPS tags of an image; empty tags mean the image
// carries no GPS data.
type Extractor interface {
	Extract(path string) (geo.Tags, error)
}

// FileSystem performs the side effects of a run.
type FileSystem interface {
	EnsureDir(path string) error
	Copy(src, dst string) error
	Stat(path string) (int64, error)
}

// Kind is the outcome of sorting one file.
type Kind string

// outcomes.
const (
	KindSorted            Kind = "sorted"
	KindPlanned           Kind = "planned"
	KindDuplicate         Kind = "duplicate"
	KindNoMetadata        Kind = "no-metadata"
	KindUnreadable        Kind = "unreadable"
	KindIncompleteGeoTags Kind = "incomplete-geotags"
	KindMalformedDMS      Kind = "malformed-dms"
	KindDirectoryFailure  Kind = "directory-failure"
	KindCopyFailure       Kind = "copy-failure"
)

// Failed reports whether the outcome was logged as a warning.
func (k Kind) Failed() bool {
	switch k {
	case KindUnreadable, KindIncompleteGeoTags, KindMalformedDMS, KindDirectoryFailure, KindCopyFailure:
		return true
	}
	return false
}

// Result is the outcome of sorting one file.
type Result struct {
	Source      string
	Destination string
	Kind        Kind
	Location    int // -1 when the file was not classified
	Coordinate  geo.Coordinate
	Err         error
}

// Summary counts the outcomes of a run.
type Summary struct {
	Found      int
	Sorted     int
	Planned    int
	Duplicates int
	Skipped    int
	Failed     int
	Clusters   int
}

func (s *Summary) add(r Result) {
	switch {
	case r.Kind == KindSorted:
		s.Sorted++
	case r.Kind == KindPlanned:
		s.Planned++
	case r.Kind == KindDuplicate:
		s.Duplicates++
	case r.Kind == KindNoMetadata:
		s.Skipped++
	case r.Kind.Failed():
		s.Failed++
	}
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithClassifier replaces the rounding classifier.
func WithClassifier(c cluster.Classifier) Option {
	return func(s *Sorter) {
		s.classifier = c
	}
}

// Sorter runs the sorting pipeline. Files are processed one at a time in
// discovery order, since every classification depends on the locations
// registered by the files before it.
type Sorter struct {
	conf       conf.Conf
	finder     Finder
	extractor  Extractor
	fs         FileSystem
	classifier cluster.Classifier
	registry   *cluster.Registry
	logger     zerolog.Logger
}

// New allocates a Sorter with an empty location registry.
func New(c conf.Conf, finder Finder, extractor Extractor, fs FileSystem, logger zerolog.Logger, opts ...Option) *Sorter {
	s := &Sorter{
		conf:       c,
		finder:     finder,
		extractor:  extractor,
		fs:         fs,
		classifier: cluster.Rounding{Precision: c.Precision},
		registry:   cluster.NewRegistry(),
		logger:     logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Registry returns the locations registered so far.
func (s *Sorter) Registry() *cluster.Registry {
	return s.registry
}

// Run sorts every discovered image. Only a discovery failure is returned as
// an error; failures of single files are recorded in their Result.
func (s *Sorter) Run() (Summary, []Result, error) {
	files, err := s.finder.Find(s.conf.Root)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("unable to scan %s: %w", s.conf.Root, err)
	}

	s.logger.Info().Int("files", len(files)).Str("root", s.conf.Root).Msg("Found images")

	sum := Summary{Found: len(files)}
	results := make([]Result, 0, len(files))

	for _, path := range files {
		r := s.sortFile(path)
		sum.add(r)
		results = append(results, r)
	}

	sum.Clusters = s.registry.Len()
	return sum, results, nil
}

func (s *Sorter) sortFile(path string) Result {
	log := s.logger.With().Str("file", path).Logger()
	r := Result{Source: path, Location: -1}

	tags, err := s.extractor.Extract(path)
	if err != nil {
		r.Err = err
		r.Kind = KindUnreadable
		if errors.Is(err, geo.ErrMalformedDMS) {
			r.Kind = KindMalformedDMS
		}
		log.Warn().Err(err).Msg("Unable to read GPS metadata")
		return r
	}

	if len(tags) == 0 {
		r.Kind = KindNoMetadata
		log.Debug().Msg("No GPS metadata, skipping")
		return r
	}

	coord, err := geo.CoordinatesFromTags(tags)
	if err != nil {
		r.Err = err
		r.Kind = KindMalformedDMS
		if errors.Is(err, geo.ErrIncompleteTags) {
			r.Kind = KindIncompleteGeoTags
		}
		log.Warn().Err(err).Msg("Unusable GPS metadata, skipping")
		return r
	}
	r.Coordinate = coord

	index, isNew := s.classifier.Classify(coord, s.registry)
	r.Location = index

	dir := filepath.Join(s.conf.OutputDir(), cluster.FolderName(index))
	r.Destination = filepath.Join(dir, filepath.Base(path))

	if isNew {
		log.Info().
			Str("location", cluster.FolderName(index)).
			Float64("lat", coord.Lat).
			Float64("lon", coord.Lon).
			Msg("New location detected")
	} else {
		log.Debug().Str("location", cluster.FolderName(index)).Msg("Location already available")
	}

	dst, duplicate := s.destination(path, r.Destination)
	r.Destination = dst
	if duplicate {
		r.Kind = KindDuplicate
		log.Debug().Str("dest", dst).Msg("Already sorted, skipping")
		return r
	}

	if s.conf.DryRun {
		r.Kind = KindPlanned
		return r
	}

	if err := s.fs.EnsureDir(dir); err != nil {
		r.Err = err
		r.Kind = KindDirectoryFailure
		log.Warn().Err(err).Str("dir", dir).Msg("Unable to create location folder")
		return r
	}

	if err := s.fs.Copy(path, r.Destination); err != nil {
		r.Err = err
		r.Kind = KindCopyFailure
		log.Warn().Err(err).Str("dest", r.Destination).Msg("Copy failed")
		return r
	}

	r.Kind = KindSorted
	log.Debug().Str("dest", r.Destination).Msg("Copied")
	return r
}

// destination walks dst, dst_1, dst_2, ... and returns the first free name.
// It reports a duplicate when one of the taken names already holds a file
// of the source's size.
func (s *Sorter) destination(src, dst string) (string, bool) {
	var srcSize int64
	srcKnown := false

	for n := 0; ; n++ {
		p := fileops.Candidate(dst, n)
		size, err := s.fs.Stat(p)
		if err != nil {
			return p, false
		}
		if !srcKnown {
			if srcSize, err = s.fs.Stat(src); err == nil {
				srcKnown = true
			}
		}
		if srcKnown && size == srcSize {
			return p, true
		}
	}
}

// SortedFolders returns a discovery filter matching the location folders
// of output, so a recursive scan never re-sorts earlier copies.
func SortedFolders(output string) func(dir string) bool {
	output = filepath.Clean(output)
	return func(dir string) bool {
		if filepath.Dir(filepath.Clean(dir)) != output {
			return false
		}
		_, ok := cluster.ParseFolderName(filepath.Base(dir))
		return ok
	}
}
