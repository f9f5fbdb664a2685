package ingest

import (
	"path/filepath"
	"strings"

	"github.com/cellarscan/cellarscan/constants"
)

// AllowedExt checks if a file extension is in the allowed capture set.
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// AllowedPath checks the extension of a full path.
func AllowedPath(path string) bool {
	return AllowedExt(filepath.Ext(path))
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
