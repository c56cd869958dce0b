// Package submission gathers recognized answer-sheet text into one
// core.Submission per student.
package submission

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"github.com/mikey/exam-grader/internal/whitelist"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"go.uber.org/zap"
)

var pageSuffixRe = regexp.MustCompile(`(?i)^(.+?)[\s_-]+(?:p|pg|page|pag|pagina|página)?[\s_-]*(\d+)$`)

// StudentID derives the student id and page number from a file name:
// maria_p2.txt is page 2 of maria. Names without a page suffix are page 0.
func StudentID(filename string) (string, int) {
	base := path.Base(filename)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.TrimSpace(base)
	if m := pageSuffixRe.FindStringSubmatch(base); m != nil {
		page, err := strconv.Atoi(m[2])
		if err == nil {
			return strings.TrimSpace(m[1]), page
		}
	}
	return base, 0
}

type page struct {
	number int
	name   string
	URL    string
	text   string
}

// Collector lists recognized-text files and concatenates each student's pages
type Collector struct {
	fs      afs.Service
	checker *whitelist.Checker
	logger  *zap.Logger
}

// NewCollector creates a collector reading through fs
func NewCollector(fs afs.Service, checker *whitelist.Checker, logger *zap.Logger) *Collector {
	return &Collector{
		fs:      fs,
		checker: checker,
		logger:  logger,
	}
}

// Collect returns one submission per student found at location, in the order
// students are first listed. Files directly under location are grouped by
// StudentID; a subdirectory holds the pages of the student it is named after.
func (c *Collector) Collect(ctx context.Context, location string) ([]core.Submission, error) {
	norm, err := utils.NormalizeLocation(location)
	if err != nil {
		return nil, err
	}

	var order []string
	pages := make(map[string][]page)
	add := func(student string, p page) {
		if _, seen := pages[student]; !seen {
			order = append(order, student)
		}
		pages[student] = append(pages[student], p)
	}

	objects, err := c.list(ctx, norm)
	if err != nil {
		return nil, err
	}
	for _, object := range objects {
		if object.IsDir() {
			student := object.Name()
			inner, err := c.list(ctx, url.Join(norm, student))
			if err != nil {
				return nil, err
			}
			for _, o := range inner {
				if o.IsDir() || !c.checker.IsAllowed(o.Name()) {
					continue
				}
				p, err := c.read(ctx, o)
				if err != nil {
					return nil, err
				}
				_, p.number = StudentID(o.Name())
				add(student, p)
			}
			continue
		}
		if !c.checker.IsAllowed(object.Name()) {
			continue
		}
		p, err := c.read(ctx, object)
		if err != nil {
			return nil, err
		}
		var student string
		student, p.number = StudentID(object.Name())
		add(student, p)
	}

	submissions := make([]core.Submission, 0, len(order))
	for _, student := range order {
		sp := pages[student]
		sort.SliceStable(sp, func(i, j int) bool {
			if sp[i].number != sp[j].number {
				return sp[i].number < sp[j].number
			}
			return sp[i].name < sp[j].name
		})
		texts := make([]string, len(sp))
		sources := make([]string, len(sp))
		for i, p := range sp {
			texts[i] = p.text
			sources[i] = p.URL
		}
		submissions = append(submissions, core.Submission{
			StudentID: student,
			Text:      strings.Join(texts, "\n"),
			Sources:   sources,
		})
	}

	c.logger.Info("Collected submissions",
		zap.String("location", norm),
		zap.Int("students", len(submissions)))
	return submissions, nil
}

// list returns the entries under dirURL without the directory itself
func (c *Collector) list(ctx context.Context, dirURL string) ([]storage.Object, error) {
	objects, err := c.fs.List(ctx, dirURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions at %s: %w", dirURL, err)
	}
	base := url.Path(dirURL)
	out := make([]storage.Object, 0, len(objects))
	for _, object := range objects {
		if object.IsDir() && url.Equals(url.Path(object.URL()), base) {
			continue
		}
		out = append(out, object)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (c *Collector) read(ctx context.Context, object storage.Object) (page, error) {
	data, err := c.fs.Download(ctx, object)
	if err != nil {
		return page{}, fmt.Errorf("failed to download %s: %w", object.URL(), err)
	}
	c.logger.Debug("Read submission page",
		zap.String("file", object.Name()),
		zap.Int("size", len(data)))
	return page{name: object.Name(), URL: object.URL(), text: utils.SanitizeString(string(data))}, nil
}
