// Package answerkey turns reference documents into core.AnswerKey values.
// It is the ingestion stage in front of grading; the matching core never
// sees document text.
package answerkey

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/mikey/exam-grader/internal/core"
	"github.com/viant/afs"
)

// Load downloads the key at URL and parses it according to its extension.
// Anything that is not YAML, JSON, TOML or XLSX is read as plain text.
func Load(ctx context.Context, fs afs.Service, URL string) (*core.AnswerKey, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer key %s: %w", URL, err)
	}

	var key *core.AnswerKey
	switch ext := strings.ToLower(path.Ext(URL)); ext {
	case ".yaml", ".yml", ".json", ".toml":
		key, err = ParseStructured(data, strings.TrimPrefix(ext, "."))
	case ".xlsx":
		key, err = ParseSpreadsheet(data)
	default:
		key, err = ParseText(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("answer key %s: %w", URL, err)
	}
	return key, nil
}
