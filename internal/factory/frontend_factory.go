package factory

import (
	"github.com/mikey/exam-grader/internal/adapters/frontend"
	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

// FrontendFactory creates grading front ends
type FrontendFactory struct {
	cfg     *config.Config
	fs      afs.Service
	logger  *zap.Logger
	service *core.GradingService
}

// NewFrontendFactory creates a new front end factory
func NewFrontendFactory(cfg *config.Config, fs afs.Service, logger *zap.Logger, service *core.GradingService) *FrontendFactory {
	return &FrontendFactory{
		cfg:     cfg,
		fs:      fs,
		logger:  logger,
		service: service,
	}
}

// CreateHTTPFrontend creates the HTTP front end from the server configuration
func (f *FrontendFactory) CreateHTTPFrontend() *frontend.HTTPFrontend {
	return frontend.NewHTTPFrontend(f.service, f.cfg.GetServer(), f.logger)
}

// CreateCliFrontend creates the CLI front end
func (f *FrontendFactory) CreateCliFrontend(verbose bool) (*frontend.CliFrontend, error) {
	return frontend.NewCliFrontend(f.service, f.fs, f.logger, verbose)
}
