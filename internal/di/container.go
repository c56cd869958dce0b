package di

import (
	"context"

	"github.com/viant/afs"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/factory"
	"github.com/mikey/exam-grader/internal/logging"
	"github.com/mikey/exam-grader/internal/ports"
	"github.com/mikey/exam-grader/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for the grading server
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.NewWithFile(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideShared(container); err != nil {
		return nil, err
	}

	// Register grading front end
	if err := container.Provide(func(f *factory.FrontendFactory) ports.GradingFrontend {
		return f.CreateHTTPFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideShared registers everything between configuration and the front end
func provideShared(container *dig.Container) error {
	// Register storage
	if err := container.Provide(func() afs.Service { return afs.New() }); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewJudgeFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewServiceFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return err
	}

	// Register prompt text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register remote judge, nil when disabled
	if err := container.Provide(func(f *factory.JudgeFactory) (core.EquivalenceJudge, error) {
		return f.CreateJudge(context.Background())
	}); err != nil {
		return err
	}

	// Register match cache
	if err := container.Provide(func(f *factory.CacheFactory) *core.MatchCache {
		return f.CreateMatchCache(context.Background())
	}); err != nil {
		return err
	}

	// Register answer key
	if err := container.Provide(func(f *factory.ServiceFactory) (*core.AnswerKey, error) {
		return f.LoadAnswerKey(context.Background())
	}); err != nil {
		return err
	}

	// Register grading service
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		key *core.AnswerKey,
		cache *core.MatchCache,
		judge core.EquivalenceJudge,
		logger *zap.Logger,
	) (*core.GradingService, error) {
		service, err := f.CreateGradingService(key, cache, judge)
		if err != nil {
			return nil, err
		}
		logger.Info("Grading service created", zap.String("run_id", service.RunID()))
		return service, nil
	}); err != nil {
		return err
	}

	return nil
}
