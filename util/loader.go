package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SourceExtensions lists the file extensions the enhancer accepts.
var SourceExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".dcm"}

// SourceFile is an enhanceable file found in a directory.
type SourceFile struct {
	// Path is the path to the file.
	Path string
	// Frame is the N of a "frame-N" file name, or -1.
	Frame int
}

// IsSourceFile reports whether name has a supported extension.
func IsSourceFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListSourceFiles lists supported files in dir. Numbered "frame-N" files
// come first in frame order, the rest follow by name.
//
// Arguments:
// - dir: Directory path containing source files.
//
// Returns:
// - []SourceFile: The files found, never including subdirectories.
// - error: Error if the directory cannot be read.
func ListSourceFiles(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []SourceFile
	for _, entry := range entries {
		if entry.IsDir() || !IsSourceFile(entry.Name()) {
			continue
		}
		files = append(files, SourceFile{
			Path:  filepath.Join(dir, entry.Name()),
			Frame: frameNumber(entry.Name()),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		fi, fj := files[i].Frame, files[j].Frame
		switch {
		case fi >= 0 && fj >= 0 && fi != fj:
			return fi < fj
		case fi >= 0 && fj < 0:
			return true
		case fi < 0 && fj >= 0:
			return false
		}
		return files[i].Path < files[j].Path
	})

	return files, nil
}

func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
