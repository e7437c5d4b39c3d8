// Package discovery finds candidate images below a root directory.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// imageExts contains the extensions that can carry EXIF GPS data.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// skipFolders contains directory names that never hold user photos.
var skipFolders = map[string]bool{
	".stfolder":       true, // Syncthing
	".fseventsd":      true, // macOS filesystem events
	".Trashes":        true, // macOS trash
	".Spotlight-V100": true, // macOS Spotlight index
	"PRIVATE":         true, // Camera system folder
	"AVF_INFO":        true, // Sony AVCHD info
	"THMBNL":          true, // Sony thumbnails
}

// Finder lists image files.
type Finder struct {
	// Recursive enables descending into subdirectories.
	Recursive bool

	// Exclude, when set, reports directories whose whole subtree must be
	// skipped.
	Exclude func(dir string) bool
}

// IsImage reports whether path has a supported image extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Find returns the image files below root in lexical walk order.
// Unreadable entries below root are skipped; only a failure to read root
// itself is returned.
func (f Finder) Find(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if !f.Recursive || strings.HasPrefix(name, ".") || skipFolders[name] {
				return filepath.SkipDir
			}
			if f.Exclude != nil && f.Exclude(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		if !IsImage(path) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// follow links to files, never to directories
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)

		return nil
	})

	return files, err
}
