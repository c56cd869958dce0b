package factory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/exam-grader/internal/adapters/cache"
	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

type stubJudge struct{}

func (stubJudge) Judge(context.Context, string, string) (*core.JudgeResult, error) {
	return &core.JudgeResult{Matched: true}, nil
}

func newConfig() *config.Config {
	return config.NewFromViper(config.NewEmptyViper())
}

func TestCreateVerdictStore(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	tests := []struct {
		name    string
		setup   func(cfg *config.Config)
		wantNil bool
		wantErr bool
	}{
		{name: "disabled", setup: func(cfg *config.Config) { cfg.Set("cache.enabled", false) }, wantNil: true},
		{name: "memory", setup: func(cfg *config.Config) { cfg.Set("cache.type", "memory") }},
		{name: "json", setup: func(cfg *config.Config) {
			cfg.Set("cache.json_path", filepath.Join(t.TempDir(), "cache.json"))
		}},
		{name: "unknown", setup: func(cfg *config.Config) { cfg.Set("cache.type", "redis") }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig()
			tt.setup(cfg)
			store, err := NewCacheFactory(cfg, afs.New(), logger).CreateVerdictStore(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (store == nil) != tt.wantNil {
				t.Errorf("store = %v, wantNil %v", store, tt.wantNil)
			}
		})
	}
}

func TestCreateMatchCacheFallsBackToMemory(t *testing.T) {
	cfg := newConfig()
	cfg.Set("cache.type", "redis")
	mc := NewCacheFactory(cfg, afs.New(), zap.NewNop()).CreateMatchCache(context.Background())
	if mc == nil {
		t.Fatalf("expected a memory-only cache")
	}
	mc.Record("x=1", "x=1", true, core.StrategySymbolic, "")
	if err := mc.Flush(context.Background()); err != nil {
		t.Errorf("memory-only flush should be a no-op: %v", err)
	}
}

func TestJudgeFactory(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	cfg := newConfig()
	judge, err := NewJudgeFactory(cfg, logger, nil).CreateJudge(ctx)
	if err != nil || judge != nil {
		t.Errorf("disabled judge = %v, %v", judge, err)
	}

	cfg.Set("judge.enabled", true)
	cfg.Set("judge.provider", "openai")
	if _, err := NewJudgeFactory(cfg, logger, nil).CreateJudge(ctx); err == nil {
		t.Errorf("expected error without an OpenAI API key")
	}

	cfg.Set("openai.api_key", "sk-test")
	judge, err = NewJudgeFactory(cfg, logger, nil).CreateJudge(ctx)
	if err != nil || judge == nil {
		t.Errorf("openai judge = %v, %v", judge, err)
	}

	cfg.Set("judge.provider", "watson")
	if _, err := NewJudgeFactory(cfg, logger, nil).CreateJudge(ctx); err == nil {
		t.Errorf("expected unsupported provider error")
	}
}

func TestCreateStrategies(t *testing.T) {
	logger := zap.NewNop()
	cfg := newConfig()
	f := NewServiceFactory(cfg, afs.New(), logger)

	strategies, err := f.CreateStrategies(nil)
	if err != nil || len(strategies) != 3 {
		t.Fatalf("default strategies = %d, %v", len(strategies), err)
	}

	strategies, err = f.CreateStrategies(stubJudge{})
	if err != nil || len(strategies) != 4 || strategies[3].Kind() != core.StrategyJudge {
		t.Fatalf("judge not appended: %d, %v", len(strategies), err)
	}

	cfg.Set("grading.strategies", []string{"fuzzy", "judge"})
	if _, err := f.CreateStrategies(nil); err == nil {
		t.Errorf("expected error for judge strategy without a judge")
	}

	cfg.Set("grading.fuzzy_threshold", 1.5)
	if _, err := f.CreateStrategies(nil); err == nil {
		t.Errorf("expected error for out-of-range threshold")
	}
}

func TestLoadAnswerKeyAndService(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	cfg := newConfig()
	f := NewServiceFactory(cfg, afs.New(), logger)

	if _, err := f.LoadAnswerKey(ctx); !errors.Is(err, core.ErrMalformedAnswerKey) {
		t.Errorf("expected ErrMalformedAnswerKey without a path, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "gabarito.txt")
	if err := os.WriteFile(path, []byte("Questão 1\n- x+1=2 (0,5)\n- x=1 (0,5)\n"), 0o644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	cfg.Set("answer_key.path", path)
	key, err := f.LoadAnswerKey(ctx)
	if err != nil {
		t.Fatalf("LoadAnswerKey: %v", err)
	}

	service, err := f.CreateGradingService(key, core.NewMatchCache(cache.NewMemoryStore(logger), logger), nil)
	if err != nil {
		t.Fatalf("CreateGradingService: %v", err)
	}
	report, err := service.Grade(ctx, core.Submission{StudentID: "ana", Text: `\(x+1=2\) \(x=1\)`})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if report.FinalGrade != 10 || report.Status != core.StatusPass {
		t.Errorf("unexpected report %+v", report)
	}
}
