package config

import (
	"fmt"
	"time"
)

// AnalysisConfig selects the analysis provider
type AnalysisConfig struct {
	Provider            string
	FallbackToHeuristic bool
}

// RewriteConfig selects the text generator used for rewrites
type RewriteConfig struct {
	Provider string
}

// HeuristicConfig represents the configuration for the local analyzer
type HeuristicConfig struct {
	Seed int64
}

// HuggingFaceConfig represents the configuration for the Hugging Face Spaces
type HuggingFaceConfig struct {
	APIKey      string
	AnalyzeURL  string
	RewriteURL  string
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI and compatible endpoints
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// ServerConfig represents the configuration for the HTTP API
type ServerConfig struct {
	ListenAddress   string
	Mode            string
	RateLimit       float64
	RateBurst       int
	ShutdownTimeout time.Duration
}

// SMTPHeaders names the headers the content filter adds
type SMTPHeaders struct {
	Tone       string
	Confidence string
	Sentiment  string
	Error      string
}

// PostfixConfig represents where filtered mail is re-injected
type PostfixConfig struct {
	Enabled bool
	Address string
	Port    int
}

// SMTPConfig represents the configuration for the SMTP content filter
type SMTPConfig struct {
	Enabled            bool
	ListenAddress      string
	Headers            SMTPHeaders
	Postfix            PostfixConfig
	TagSubjectTones    []string
	WhitelistedDomains []string
}

// CacheConfig represents the configuration for the analysis cache
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// GetAnalysis returns the analysis provider configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		Provider:            c.GetString("analysis.provider"),
		FallbackToHeuristic: c.GetBool("analysis.fallback_to_heuristic"),
	}
}

// GetRewrite returns the rewrite provider configuration
func (c *Config) GetRewrite() RewriteConfig {
	return RewriteConfig{
		Provider: c.GetString("rewrite.provider"),
	}
}

// GetHeuristic returns the heuristic analyzer configuration
func (c *Config) GetHeuristic() HeuristicConfig {
	return HeuristicConfig{
		Seed: c.GetInt64("heuristic.seed"),
	}
}

// GetHuggingFace returns the Hugging Face configuration
func (c *Config) GetHuggingFace() HuggingFaceConfig {
	return HuggingFaceConfig{
		APIKey:      c.GetString("huggingface.api_key"),
		AnalyzeURL:  c.GetString("huggingface.analyze_url"),
		RewriteURL:  c.GetString("huggingface.rewrite_url"),
		MaxBodySize: c.GetInt("huggingface.max_body_size"),
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
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
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
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		Mode:            c.GetString("server.mode"),
		RateLimit:       c.GetFloat64("server.rate_limit"),
		RateBurst:       c.GetInt("server.rate_burst"),
		ShutdownTimeout: timeout,
	}, nil
}

// GetSMTP returns the SMTP content filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:       c.GetBool("smtp.enabled"),
		ListenAddress: c.GetString("smtp.listen_address"),
		Headers: SMTPHeaders{
			Tone:       c.GetString("smtp.headers.tone"),
			Confidence: c.GetString("smtp.headers.confidence"),
			Sentiment:  c.GetString("smtp.headers.sentiment"),
			Error:      c.GetString("smtp.headers.error"),
		},
		Postfix: PostfixConfig{
			Enabled: c.GetBool("smtp.postfix.enabled"),
			Address: c.GetString("smtp.postfix.address"),
			Port:    c.GetInt("smtp.postfix.port"),
		},
		TagSubjectTones:    c.GetStringSlice("smtp.tag_subject_tones"),
		WhitelistedDomains: c.GetStringSlice("smtp.whitelisted_domains"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	if cleanup <= 0 {
		return CacheConfig{}, fmt.Errorf("cache.cleanup_frequency must be positive, got %s", cleanup)
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
	}, nil
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:  c.GetString("logging.level"),
		Format: c.GetString("logging.format"),
	}
}
