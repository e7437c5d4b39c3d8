// Photo Geosorter - A tool to group photos by the place they were taken
//
// This tool scans a directory for JPEG photos, reads the GPS coordinates
// stored in their EXIF metadata, and copies photos taken at the same place
// into a shared folder (Location0/, Location1/, ...).
//
// Two photos share a place when their latitude and longitude are equal
// after rounding to --precision decimal places:
//
//	0  country or large region      5  individual trees, door entrance
//	1  large city or district       6  individual humans
//	2  town or village              7  commercial surveying
//	3  neighborhood, street         8  specialized surveying
//	4  individual street, parcel
//
// Usage:
//
//	photo-geosorter                      # Sort the current directory
//	photo-geosorter -n                   # Preview (dry-run)
//	photo-geosorter -r -p 3 /path        # Recurse, street-level places
//	photo-geosorter --config geosort.yml # Read options from YAML
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"photo-geosorter/internal/conf"
	"photo-geosorter/internal/discovery"
	"photo-geosorter/internal/exifgps"
	"photo-geosorter/internal/fileops"
	"photo-geosorter/internal/logger"
	"photo-geosorter/internal/report"
	"photo-geosorter/internal/sorter"
)

var cli struct {
	Config    kong.ConfigFlag `short:"c" help:"YAML configuration file."`
	Root      string          `arg:"" optional:"" type:"existingdir" help:"Directory to scan (default: current directory)."`
	Output    string          `short:"o" env:"GEOSORT_OUTPUT" help:"Directory receiving the Location folders (default: the scanned directory)."`
	Precision int             `short:"p" env:"GEOSORT_PRECISION" default:"5" help:"Decimal places compared when grouping coordinates (0-10)."`
	Recursive bool            `short:"r" env:"GEOSORT_RECURSIVE" help:"Scan subdirectories."`
	DryRun    bool            `short:"n" env:"GEOSORT_DRY_RUN" help:"Show what would be copied without touching any file."`
	Report    string          `env:"GEOSORT_REPORT" help:"Write a CSV report of the run to this path."`
	Debug     bool            `env:"GEOSORT_DEBUG" help:"Enable debug logging."`
	LogFormat string          `env:"GEOSORT_LOG_FORMAT" default:"console" enum:"console,json" help:"Log output format (console, json)."`
}

// =============================================================================
// Configuration
// =============================================================================

// loadConf builds the run configuration from the parsed command line.
// Paths are made absolute so location folders can be recognized during a
// recursive scan.
func loadConf() (conf.Conf, error) {
	root := cli.Root
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return conf.Conf{}, err
		}
	}

	c := conf.Default(root)
	c.Output = cli.Output
	c.Precision = cli.Precision
	c.Recursive = cli.Recursive
	c.DryRun = cli.DryRun
	c.Report = cli.Report
	c.Debug = cli.Debug
	c.LogFormat = cli.LogFormat

	var err error
	if c.Root, err = filepath.Abs(c.Root); err != nil {
		return conf.Conf{}, err
	}
	if c.Output != "" {
		if c.Output, err = filepath.Abs(c.Output); err != nil {
			return conf.Conf{}, err
		}
	}

	return c, c.Validate()
}

// =============================================================================
// Output
// =============================================================================

func printSummary(sum sorter.Summary, dryRun bool) {
	if dryRun {
		fmt.Printf("\n[DRY RUN] Would copy %d files into %d locations\n", sum.Planned, sum.Clusters)
	} else {
		fmt.Printf("\nCopied %d files into %d locations\n", sum.Sorted, sum.Clusters)
	}
	if sum.Duplicates > 0 {
		fmt.Printf("Skipped %d already sorted files\n", sum.Duplicates)
	}
	if sum.Skipped > 0 {
		fmt.Printf("Skipped %d files without GPS data\n", sum.Skipped)
	}
	if sum.Failed > 0 {
		fmt.Printf("Failed %d files (see warnings above)\n", sum.Failed)
	}
}

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("photo-geosorter"),
		kong.Description("Group photos into Location folders by their GPS coordinates."),
		kong.Configuration(conf.YAML),
		kong.UsageOnError())

	c, err := loadConf()
	ctx.FatalIfErrorf(err)

	log := logger.New(os.Stderr, c.LogFormat, c.Debug)

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("Photo Geosorter")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Scanning:  %s\n", c.Root)
	fmt.Printf("Output:    %s\n", c.OutputDir())
	fmt.Printf("Precision: %d decimal places\n", c.Precision)
	fmt.Println()

	if c.DryRun {
		fmt.Println("[DRY RUN MODE - no folder or file will be created]")
		fmt.Println()
	}

	finder := discovery.Finder{
		Recursive: c.Recursive,
		Exclude:   sorter.SortedFolders(c.OutputDir()),
	}
	s := sorter.New(c, finder, exifgps.New(log), fileops.New(), log)

	sum, results, err := s.Run()
	if err != nil {
		log.Error().Err(err).Msg("Sorting failed")
		os.Exit(1)
	}

	if sum.Found == 0 {
		fmt.Println("No images found")
	}

	if c.Report != "" {
		if err := report.WriteFile(c.Report, results, s.Registry().Locations()); err != nil {
			log.Error().Err(err).Str("report", c.Report).Msg("Unable to write report")
		} else {
			fmt.Printf("Report written to %s\n", c.Report)
		}
	}

	printSummary(sum, c.DryRun)
	fmt.Println("\nDone!")
}
