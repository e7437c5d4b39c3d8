// Package report writes the CSV record of a sorting run.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"photo-geosorter/internal/cluster"
	"photo-geosorter/internal/geo"
	"photo-geosorter/internal/sorter"
)

var headers = []string{
	"filename",           // Base filename
	"source",             // Path of the original image
	"destination",        // Path of the copy, empty when not classified
	"location",           // Location folder name
	"latitude",           // Decimal latitude of the image
	"longitude",          // Decimal longitude of the image
	"location_latitude",  // Latitude of the image that founded the location
	"location_longitude", // Longitude of the image that founded the location
	"status",             // Outcome of the file
	"error",              // Failure reason, if any
}

// Write writes one row per result to w.
func Write(w io.Writer, results []sorter.Result, locations []geo.Coordinate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			filepath.Base(r.Source),
			r.Source,
			r.Destination,
			"", "", "", "", "",
			string(r.Kind),
			"",
		}
		if r.Location >= 0 {
			row[3] = cluster.FolderName(r.Location)
			row[4] = formatDegrees(r.Coordinate.Lat)
			row[5] = formatDegrees(r.Coordinate.Lon)
			if r.Location < len(locations) {
				row[6] = formatDegrees(locations[r.Location].Lat)
				row[7] = formatDegrees(locations[r.Location].Lon)
			}
		}
		if r.Err != nil {
			row[9] = r.Err.Error()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path, replacing any previous report.
func WriteFile(path string, results []sorter.Result, locations []geo.Coordinate) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, results, locations); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
