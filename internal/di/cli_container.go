package di

import (
	"flag"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Input flags
	ConfigFile  string
	AnswerKey   string
	Submissions string
	Output      string

	// Grading flags
	Strategies     string
	FuzzyThreshold float64
	PassMinimum    float64

	// Cache flags
	CacheType  string
	NoCache    bool
	ClearCache bool

	// Remote judge flags
	JudgeProvider string

	Verbose bool
	JSONLog bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	return ParseFlagSet(flag.CommandLine, nil)
}

// ParseFlagSet registers the CLI flags on fs and parses args.
// A nil args parses the process arguments.
func ParseFlagSet(fs *flag.FlagSet, args []string) *CLIFlags {
	flags := &CLIFlags{}

	// Input flags
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")
	fs.StringVar(&flags.AnswerKey, "key", "", "Answer key file (.txt, .yaml, .json, .toml, .xlsx)")
	fs.StringVar(&flags.Submissions, "submissions", "", "Directory or URL holding recognized submission text")
	fs.StringVar(&flags.Output, "output", "", "Write the JSON reports to this file")

	// Grading flags
	fs.StringVar(&flags.Strategies, "strategies", "", "Comma separated matching chain (symbolic,fuzzy,substring,judge)")
	fs.Float64Var(&flags.FuzzyThreshold, "threshold", 0, "Fuzzy similarity threshold in (0,1]")
	fs.Float64Var(&flags.PassMinimum, "pass-minimum", -1, "Minimum final grade to pass, on the 0-10 scale")

	// Cache flags
	fs.StringVar(&flags.CacheType, "cache", "", "Match cache store (memory, json, sqlite, mysql, postgres)")
	fs.BoolVar(&flags.NoCache, "no-cache", false, "Do not persist match decisions")
	fs.BoolVar(&flags.ClearCache, "clear-cache", false, "Drop cached match decisions before grading")

	// Remote judge flags
	fs.StringVar(&flags.JudgeProvider, "judge", "", "Enable the remote judge with this provider (bedrock, gemini, openai)")

	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	if args == nil {
		args = os.Args[1:]
	}
	_ = fs.Parse(args)
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewWithFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideShared(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration with the flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	if flags.AnswerKey != "" {
		cfg.Set("answer_key.path", flags.AnswerKey)
	}
	if flags.Submissions != "" {
		cfg.Set("submissions.location", flags.Submissions)
	}
	if flags.Strategies != "" {
		cfg.Set("grading.strategies", strings.Split(flags.Strategies, ","))
	}
	if flags.FuzzyThreshold != 0 {
		cfg.Set("grading.fuzzy_threshold", flags.FuzzyThreshold)
	}
	if flags.PassMinimum >= 0 {
		cfg.Set("grading.pass_minimum", flags.PassMinimum)
	}
	if flags.CacheType != "" {
		cfg.Set("cache.type", flags.CacheType)
	}
	if flags.NoCache {
		cfg.Set("cache.enabled", false)
	}
	if flags.JudgeProvider != "" {
		cfg.Set("judge.enabled", true)
		cfg.Set("judge.provider", flags.JudgeProvider)
	}
	if flags.Verbose {
		cfg.Set("logging.level", "debug")
	}
}
