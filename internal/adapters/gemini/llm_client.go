package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/prompt"
	"github.com/mikey/email-tone-analyzer/internal/utils"
	"go.uber.org/zap"
)

// ProviderName is the name this adapter is selected by
const ProviderName = "gemini"

// ContentGenerator is the part of *genai.GenerativeModel the client uses
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient is an implementation of the AnalysisProvider and Rewriter interfaces using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         ContentGenerator
	modelName     string
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client around a configured model
func NewGeminiClient(
	client *genai.Client,
	model ContentGenerator,
	modelName string,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GeminiClient {
	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Name returns the provider name
func (c *GeminiClient) Name() string {
	return ProviderName
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Analyze asks Gemini for a JSON tone profile of text
func (c *GeminiClient) Analyze(ctx context.Context, text string) (*core.ToneAnalysis, error) {
	if err := core.ValidateText(text); err != nil {
		return nil, err
	}

	userPrompt, err := prompt.BuildAnalysisPrompt(c.textProcessor.Prepare(text))
	if err != nil {
		return nil, err
	}

	content, err := c.generate(ctx, prompt.AnalysisSystemPrompt+"\n\n"+userPrompt)
	if err != nil {
		return nil, err
	}

	analysis, err := prompt.ParseAnalysis(content)
	if err != nil {
		c.logger.Error("Failed to parse Gemini analysis", zap.Error(err))
		return nil, err
	}
	analysis.ModelUsed = c.modelName
	return analysis, nil
}

// Rewrite asks Gemini to rewrite the email toward the requested tone
func (c *GeminiClient) Rewrite(ctx context.Context, req *core.RewriteRequest) (string, error) {
	if err := core.ValidateText(req.Text); err != nil {
		return "", err
	}

	userPrompt, err := prompt.BuildRewritePrompt(req, c.textProcessor.Prepare(req.Text))
	if err != nil {
		return "", err
	}

	content, err := c.generate(ctx, prompt.RewriteSystemPrompt+"\n\n"+userPrompt)
	if err != nil {
		return "", err
	}
	return prompt.ParseRewrite(content)
}

// generate sends a single text prompt and joins the text parts of the first candidate
func (c *GeminiClient) generate(ctx context.Context, text string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate content with Gemini: %w", core.ErrUpstream, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response from Gemini", core.ErrUpstream)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no text in Gemini response", core.ErrUpstream)
	}
	return b.String(), nil
}
