package utils

import (
	"fmt"
	"path/filepath"

	"github.com/viant/afs/url"
)

// NormalizeLocation turns a plain OS path into a file:// URL for afs.
// Locations that already carry a scheme (s3://, gs://, mem://) pass through.
func NormalizeLocation(location string) (string, error) {
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		abs, err := filepath.Abs(norm)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", location, err)
		}
		norm = abs
	}
	if url.Scheme(norm, "") == "" && !url.IsRelative(norm) {
		norm = url.ToFileURL(norm)
	}
	return norm, nil
}
