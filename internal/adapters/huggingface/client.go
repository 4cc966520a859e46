// Package huggingface talks to the hosted tone analysis and rewrite Spaces
// using their {"data": [...]} predict protocol.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/utils"
	"go.uber.org/zap"
)

const (
	// ProviderName is the name results from this client are reported under
	ProviderName = "huggingface"

	// DefaultAnalyzeURL is the predict endpoint of the tone analysis Space
	DefaultAnalyzeURL = "https://goks24-tone-analyser-backend.hf.space/run/predict"
	// DefaultRewriteURL is the predict endpoint of the rewrite Space
	DefaultRewriteURL = "https://Tone_Analyser_backend.hf.space/run/predict"

	// maxErrorBody bounds how much of a failed response is kept for logging
	maxErrorBody = 1024
)

// Client is an implementation of the AnalysisProvider and Rewriter interfaces backed by Hugging Face Spaces
type Client struct {
	apiKey        string
	analyzeURL    string
	rewriteURL    string
	httpClient    *http.Client
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewClient creates a new Hugging Face client
func NewClient(
	apiKey string,
	analyzeURL string,
	rewriteURL string,
	httpClient *http.Client,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) *Client {
	if analyzeURL == "" {
		analyzeURL = DefaultAnalyzeURL
	}
	if rewriteURL == "" {
		rewriteURL = DefaultRewriteURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:        apiKey,
		analyzeURL:    analyzeURL,
		rewriteURL:    rewriteURL,
		httpClient:    httpClient,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

type predictRequest struct {
	Data []string `json:"data"`
}

type predictResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Analyze sends text to the analysis Space. The reply data is
// [tone, confidence, oceanTraits] optionally followed by per-tone scores.
func (c *Client) Analyze(ctx context.Context, text string) (*core.ToneAnalysis, error) {
	if err := core.ValidateText(text); err != nil {
		return nil, err
	}

	data, err := c.predict(ctx, c.analyzeURL, c.textProcessor.Prepare(text))
	if err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: expected at least 2 values in analysis response, got %d", core.ErrUpstream, len(data))
	}

	analysis := &core.ToneAnalysis{ModelUsed: ProviderName}
	if err := json.Unmarshal(data[0], &analysis.Tone); err != nil {
		return nil, fmt.Errorf("%w: invalid tone in analysis response: %v", core.ErrUpstream, err)
	}
	analysis.Tone = strings.ToLower(strings.TrimSpace(analysis.Tone))
	if analysis.Tone == "" {
		return nil, fmt.Errorf("%w: analysis response has no tone", core.ErrUpstream)
	}
	if err := json.Unmarshal(data[1], &analysis.Confidence); err != nil {
		return nil, fmt.Errorf("%w: invalid confidence in analysis response: %v", core.ErrUpstream, err)
	}

	if len(data) > 2 && !isNull(data[2]) {
		var traits core.OceanTraits
		if err := json.Unmarshal(data[2], &traits); err != nil {
			c.logger.Warn("Ignoring malformed OCEAN traits", zap.Error(err))
		} else {
			analysis.OceanTraits = &traits
		}
	}

	if len(data) > 3 && !isNull(data[3]) {
		var tones []core.ToneScore
		if err := json.Unmarshal(data[3], &tones); err != nil {
			c.logger.Warn("Ignoring malformed tone scores", zap.Error(err))
		} else {
			analysis.AllTones = tones
		}
	}

	analysis.Clamp()
	return analysis, nil
}

// Rewrite sends text and the target tone to the rewrite Space
func (c *Client) Rewrite(ctx context.Context, req *core.RewriteRequest) (string, error) {
	if err := core.ValidateText(req.Text); err != nil {
		return "", err
	}

	data, err := c.predict(ctx, c.rewriteURL, c.textProcessor.Prepare(req.Text), req.TargetTone)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: rewrite response has no data", core.ErrUpstream)
	}

	var rewritten string
	if err := json.Unmarshal(data[0], &rewritten); err != nil {
		return "", fmt.Errorf("%w: invalid rewrite response: %v", core.ErrUpstream, err)
	}
	if strings.TrimSpace(rewritten) == "" {
		return "", fmt.Errorf("%w: rewrite response is empty", core.ErrUpstream)
	}
	return rewritten, nil
}

// predict performs one POST of inputs to url and returns the data array
func (c *Client) predict(ctx context.Context, url string, inputs ...string) ([]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, &core.ConfigurationError{Provider: ProviderName, Reason: "Hugging Face API key not configured"}
	}

	body, err := json.Marshal(predictRequest{Data: inputs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode predict request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create predict request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call Hugging Face: %w", core.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Hugging Face responded with an error",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(snippet)))
		return nil, fmt.Errorf("%w: Hugging Face responded with status %d", core.ErrUpstream, resp.StatusCode)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode Hugging Face response: %v", core.ErrUpstream, err)
	}
	return result.Data, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
