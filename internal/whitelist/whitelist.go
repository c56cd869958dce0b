package whitelist

import (
	"path"
	"strings"

	"go.uber.org/zap"
)

// Checker provides functionality to check if submission file extensions are allowed
type Checker struct {
	extensions []string
	logger     *zap.Logger
}

// NewChecker creates a new extension allow-list checker.
// Entries are matched case-insensitively, with or without the leading dot.
func NewChecker(extensions []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized extension allow-list", zap.Strings("extensions", normalized))
	}

	return &Checker{
		extensions: normalized,
		logger:     logger,
	}
}

// IsAllowed checks if the file name carries an allowed extension.
// An empty allow-list admits every file.
func (c *Checker) IsAllowed(name string) bool {
	if len(c.extensions) == 0 {
		return true
	}

	ext := strings.ToLower(path.Ext(name))
	for _, allowed := range c.extensions {
		if allowed == ext {
			return true
		}
	}

	if c.logger != nil {
		c.logger.Debug("File extension not allowed",
			zap.String("file", name),
			zap.String("extension", ext))
	}
	return false
}
