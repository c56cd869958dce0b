package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/di"
	"github.com/mikey/exam-grader/internal/ports"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontend ports.GradingFrontend,
	service *core.GradingService,
	judge core.EquivalenceJudge,
) error {
	defer logger.Sync()

	if err := service.Open(context.Background()); err != nil {
		logger.Error("Failed to open grading service", zap.Error(err))
		return err
	}

	// Start the front end
	if err := frontend.Start(); err != nil {
		logger.Error("Failed to start front end", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the front end
	if err := frontend.Stop(); err != nil {
		logger.Error("Failed to stop front end", zap.Error(err))
	}

	// Persist match decisions
	if err := service.Close(context.Background()); err != nil {
		logger.Error("Failed to close grading service", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := judge.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close remote judge", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
