package config

import (
	"fmt"
	"time"
)

// GradingConfig represents the matching and scoring configuration
type GradingConfig struct {
	FuzzyThreshold float64
	PassMinimum    float64
	Strategies     []string
}

// AnswerKeyConfig represents where the answer key is read from
type AnswerKeyConfig struct {
	Path string
}

// SubmissionsConfig represents where recognized submissions are read from
type SubmissionsConfig struct {
	Location   string
	Extensions []string
}

// CacheConfig represents the match cache configuration
type CacheConfig struct {
	Enabled     bool
	Type        string
	JSONPath    string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
}

// JudgeConfig represents the remote equivalence judge configuration
type JudgeConfig struct {
	Enabled       bool
	Provider      string
	MaxPromptSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxRequestSize  int64
}

// GetGrading returns the grading configuration, rejecting out-of-range values
func (c *Config) GetGrading() (GradingConfig, error) {
	g := GradingConfig{
		FuzzyThreshold: c.GetFloat64("grading.fuzzy_threshold"),
		PassMinimum:    c.GetFloat64("grading.pass_minimum"),
		Strategies:     c.GetStringSlice("grading.strategies"),
	}
	if g.FuzzyThreshold <= 0 || g.FuzzyThreshold > 1 {
		return g, fmt.Errorf("grading.fuzzy_threshold must be in (0,1], got %v", g.FuzzyThreshold)
	}
	if g.PassMinimum < 0 || g.PassMinimum > 10 {
		return g, fmt.Errorf("grading.pass_minimum must be in [0,10], got %v", g.PassMinimum)
	}
	return g, nil
}

// GetAnswerKey returns the answer key configuration
func (c *Config) GetAnswerKey() AnswerKeyConfig {
	return AnswerKeyConfig{
		Path: c.GetString("answer_key.path"),
	}
}

// GetSubmissions returns the submissions configuration
func (c *Config) GetSubmissions() SubmissionsConfig {
	return SubmissionsConfig{
		Location:   c.GetString("submissions.location"),
		Extensions: c.GetStringSlice("submissions.extensions"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Enabled:     c.GetBool("cache.enabled"),
		Type:        c.GetString("cache.type"),
		JSONPath:    c.GetString("cache.json_path"),
		SQLitePath:  c.GetString("cache.sqlite_path"),
		MySQLDSN:    c.GetString("cache.mysql_dsn"),
		PostgresDSN: c.GetString("cache.postgres_dsn"),
	}
}

// GetJudge returns the remote judge configuration
func (c *Config) GetJudge() JudgeConfig {
	return JudgeConfig{
		Enabled:       c.GetBool("judge.enabled"),
		Provider:      c.GetString("judge.provider"),
		MaxPromptSize: c.GetInt("judge.max_prompt_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetServer returns the HTTP server configuration. Unparseable durations fall back to defaults.
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		ReadTimeout:     c.durationOr("server.read_timeout", 30*time.Second),
		WriteTimeout:    c.durationOr("server.write_timeout", 5*time.Minute),
		ShutdownTimeout: c.durationOr("server.shutdown_timeout", 15*time.Second),
		MaxRequestSize:  c.GetInt64("server.max_request_size"),
	}
}

func (c *Config) durationOr(key string, fallback time.Duration) time.Duration {
	d, err := c.GetDuration(key)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
