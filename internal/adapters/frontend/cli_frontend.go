package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"go.uber.org/zap"
)

// CliFrontend implements a command-line interface for grading
type CliFrontend struct {
	service       *core.GradingService
	fs            afs.Service
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	verbose       bool
	out           io.Writer
}

// previewSize bounds the submission text echoed in verbose mode
const previewSize = 500

// NewCliFrontend creates a new CLI front end printing to stdout
func NewCliFrontend(service *core.GradingService, fs afs.Service, logger *zap.Logger, verbose bool) (*CliFrontend, error) {
	return &CliFrontend{
		service:       service,
		fs:            fs,
		logger:        logger,
		textProcessor: utils.NewTextProcessor(logger),
		verbose:       verbose,
		out:           os.Stdout,
	}, nil
}

// SetOutput redirects the printed summaries
func (f *CliFrontend) SetOutput(w io.Writer) {
	f.out = w
}

// ProcessSubmission grades a submission and displays the results
func (f *CliFrontend) ProcessSubmission(ctx context.Context, sub core.Submission) (*core.StudentReport, error) {
	f.logger.Debug("Processing submission", zap.String("student_id", sub.StudentID))

	f.printSubmission(sub)

	startTime := time.Now()
	report, err := f.service.Grade(ctx, sub)
	if err != nil {
		f.logger.Error("Failed to grade submission", zap.Error(err))
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return nil, err
	}
	f.printReport(report, time.Since(startTime))
	return report, nil
}

// ProcessBatch grades submissions in order and displays each result
func (f *CliFrontend) ProcessBatch(ctx context.Context, subs []core.Submission) []core.BatchResult {
	startTime := time.Now()
	results := f.service.GradeBatch(ctx, subs)
	duration := time.Since(startTime)

	passed := 0
	for i, res := range results {
		f.printSubmission(subs[i])
		if res.Err != nil {
			fmt.Fprintf(f.out, "Error: %v\n", res.Err)
			continue
		}
		if res.Report.Status == core.StatusPass {
			passed++
		}
		f.printReport(res.Report, 0)
	}

	fmt.Fprintf(f.out, "\n=== Batch ===\n")
	fmt.Fprintf(f.out, "Run: %s\n", f.service.RunID())
	fmt.Fprintf(f.out, "Submissions: %d\n", len(results))
	fmt.Fprintf(f.out, "Passed: %d\n", passed)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)
	return results
}

// WriteReports stores the reports of a batch as a JSON array at URL
func (f *CliFrontend) WriteReports(ctx context.Context, URL string, results []core.BatchResult) error {
	type entry struct {
		StudentID string              `json:"student_id"`
		Report    *core.StudentReport `json:"report,omitempty"`
		Error     string              `json:"error,omitempty"`
	}
	entries := make([]entry, len(results))
	for i, res := range results {
		entries[i] = entry{StudentID: res.StudentID, Report: res.Report}
		if res.Err != nil {
			entries[i].Error = res.Err.Error()
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	if err := f.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write reports to %s: %w", URL, err)
	}
	f.logger.Info("Reports written", zap.String("url", URL), zap.Int("reports", len(entries)))
	return nil
}

func (f *CliFrontend) printSubmission(sub core.Submission) {
	fmt.Fprintf(f.out, "\n=== Submission ===\n")
	fmt.Fprintf(f.out, "Student: %s\n", sub.StudentID)
	fmt.Fprintf(f.out, "Pages: %d\n", len(sub.Sources))
	fmt.Fprintf(f.out, "Text length: %d bytes\n", len(sub.Text))

	if f.verbose {
		preview := f.textProcessor.TruncateText(sub.Text, previewSize)
		fmt.Fprintf(f.out, "\nText preview:\n%s\n", preview)
	}
}

func (f *CliFrontend) printReport(report *core.StudentReport, duration time.Duration) {
	fmt.Fprintf(f.out, "\n=== Results ===\n")
	for _, q := range report.Questions {
		fmt.Fprintf(f.out, "%s: %.2f / %.2f\n", q.QuestionID, q.Achieved, q.Maximum)
	}
	if f.verbose {
		for _, s := range report.Steps {
			mark := "-"
			if s.Matched {
				mark = "+"
			}
			fmt.Fprintf(f.out, "  %s %s[%d] %q via %s (cached: %t)\n",
				mark, s.QuestionID, s.StepIndex, s.Expected, s.Strategy, s.Cached)
		}
	}
	fmt.Fprintf(f.out, "Total: %.2f / %.2f\n", report.TotalScore, report.MaxScore)
	fmt.Fprintf(f.out, "Final grade: %.2f\n", report.FinalGrade)
	fmt.Fprintf(f.out, "Status: %s\n", report.Status)
	if duration > 0 {
		fmt.Fprintf(f.out, "Processing time: %v\n", duration)
	}
}

// Start is a no-op for the CLI front end
func (f *CliFrontend) Start() error {
	return nil
}

// Stop is a no-op for the CLI front end
func (f *CliFrontend) Stop() error {
	return nil
}
