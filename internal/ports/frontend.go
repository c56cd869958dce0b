package ports

import (
	"context"

	"github.com/mikey/exam-grader/internal/core"
)

// GradingFrontend defines the interface for the surfaces that accept submissions
type GradingFrontend interface {
	// ProcessSubmission grades one submission and presents the report
	ProcessSubmission(ctx context.Context, sub core.Submission) (*core.StudentReport, error)

	// Start starts the front end
	Start() error

	// Stop stops the front end
	Stop() error
}
