package domain

import (
	"path/filepath"
	"strings"
)

const CopcSuffix = ".copc.laz"

// IsPointCloudExtension reports whether ext names a LAS-family input.
func IsPointCloudExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".las", ".laz":
		return true
	default:
		return false
	}
}

// Stem returns the base name of path with its last extension removed.
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OutputPath returns where the COPC file for inputPath goes: inside outdir
// when set, otherwise next to the input.
func OutputPath(inputPath, outdir string) string {
	dir := outdir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, Stem(inputPath)+CopcSuffix)
}
