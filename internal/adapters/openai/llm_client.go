package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/prompt"
	"github.com/mikey/email-tone-analyzer/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ProviderName is the name this adapter is selected by
const ProviderName = "openai"

// OpenAIClient is an implementation of the AnalysisProvider and Rewriter interfaces using OpenAI
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return ProviderName
}

// Analyze asks the chat model for a JSON tone profile of text
func (c *OpenAIClient) Analyze(ctx context.Context, text string) (*core.ToneAnalysis, error) {
	if err := core.ValidateText(text); err != nil {
		return nil, err
	}

	userPrompt, err := prompt.BuildAnalysisPrompt(c.textProcessor.Prepare(text))
	if err != nil {
		return nil, err
	}

	req := c.newRequest(prompt.AnalysisSystemPrompt, userPrompt)
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	content, id, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	analysis, err := prompt.ParseAnalysis(content)
	if err != nil {
		c.logger.Error("Failed to parse OpenAI analysis", zap.String("response_id", id), zap.Error(err))
		return nil, err
	}
	analysis.ModelUsed = c.modelName
	analysis.ProcessingID = id
	return analysis, nil
}

// Rewrite asks the chat model to rewrite the email toward the requested tone
func (c *OpenAIClient) Rewrite(ctx context.Context, req *core.RewriteRequest) (string, error) {
	if err := core.ValidateText(req.Text); err != nil {
		return "", err
	}

	userPrompt, err := prompt.BuildRewritePrompt(req, c.textProcessor.Prepare(req.Text))
	if err != nil {
		return "", err
	}

	content, _, err := c.complete(ctx, c.newRequest(prompt.RewriteSystemPrompt, userPrompt))
	if err != nil {
		return "", err
	}
	return prompt.ParseRewrite(content)
}

func (c *OpenAIClient) newRequest(system, user string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}
}

// complete runs one chat completion and returns the first choice and the response id
func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 401 {
			return "", "", &core.ConfigurationError{Provider: ProviderName, Reason: "OpenAI rejected the API key"}
		}
		return "", "", fmt.Errorf("%w: failed to create chat completion with OpenAI: %w", core.ErrUpstream, err)
	}

	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("%w: empty response from OpenAI", core.ErrUpstream)
	}

	return resp.Choices[0].Message.Content, resp.ID, nil
}
