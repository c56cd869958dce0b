package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/di"
	"github.com/mikey/exam-grader/internal/factory"
	"github.com/mikey/exam-grader/internal/utils"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		if errors.Is(dig.RootCause(err), core.ErrMalformedAnswerKey) {
			fmt.Fprintf(os.Stderr, "Malformed answer key: %v\n", dig.RootCause(err))
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run grades every collected submission with all dependencies injected
func run(
	flags *di.CLIFlags,
	cfg *config.Config,
	logger *zap.Logger,
	service *core.GradingService,
	services *factory.ServiceFactory,
	frontends *factory.FrontendFactory,
	judge core.EquivalenceJudge,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli, err := frontends.CreateCliFrontend(flags.Verbose)
	if err != nil {
		return err
	}

	if flags.ClearCache {
		if err := service.ClearCache(ctx); err != nil {
			return fmt.Errorf("failed to clear match cache: %w", err)
		}
	}
	if err := service.Open(ctx); err != nil {
		return err
	}
	defer func() {
		// Flush with a fresh context so an interrupt still persists decisions
		if cerr := service.Close(context.Background()); cerr != nil {
			logger.Error("Failed to close grading service", zap.Error(cerr))
		}
		if closer, ok := judge.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				logger.Error("Failed to close remote judge", zap.Error(cerr))
			}
		}
	}()

	subs, err := collect(ctx, cfg, services, logger)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		logger.Warn("No submissions found")
		return nil
	}

	results := cli.ProcessBatch(ctx, subs)

	if flags.Output != "" {
		URL, err := utils.NormalizeLocation(flags.Output)
		if err != nil {
			return err
		}
		if err := cli.WriteReports(ctx, URL, results); err != nil {
			return err
		}
	}
	return nil
}

// collect reads submissions from the configured location, or one submission from stdin
func collect(ctx context.Context, cfg *config.Config, services *factory.ServiceFactory, logger *zap.Logger) ([]core.Submission, error) {
	location := cfg.GetSubmissions().Location
	if location != "" {
		return services.CreateCollector().Collect(ctx, location)
	}

	logger.Info("Reading submission from stdin")
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return []core.Submission{{StudentID: "stdin", Text: utils.SanitizeString(string(data))}}, nil
}
