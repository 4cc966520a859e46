package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/prompt"
	"github.com/mikey/email-tone-analyzer/internal/utils"
	"go.uber.org/zap"
)

// ProviderName is the name this adapter is selected by
const ProviderName = "bedrock"

// ModelInvoker is the part of *bedrockruntime.Client the client uses
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient is an implementation of the AnalysisProvider and Rewriter interfaces using Amazon Bedrock
type BedrockClient struct {
	client        ModelInvoker
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client ModelInvoker,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Name returns the provider name
func (c *BedrockClient) Name() string {
	return ProviderName
}

// Analyze asks the Bedrock model for a JSON tone profile of text
func (c *BedrockClient) Analyze(ctx context.Context, text string) (*core.ToneAnalysis, error) {
	if err := core.ValidateText(text); err != nil {
		return nil, err
	}

	userPrompt, err := prompt.BuildAnalysisPrompt(c.textProcessor.Prepare(text))
	if err != nil {
		return nil, err
	}

	content, err := c.invoke(ctx, prompt.AnalysisSystemPrompt+"\n\n"+userPrompt)
	if err != nil {
		return nil, err
	}

	analysis, err := prompt.ParseAnalysis(content)
	if err != nil {
		c.logger.Error("Failed to parse Bedrock analysis", zap.String("model_id", c.modelID), zap.Error(err))
		return nil, err
	}
	analysis.ModelUsed = c.modelID
	return analysis, nil
}

// Rewrite asks the Bedrock model to rewrite the email toward the requested tone
func (c *BedrockClient) Rewrite(ctx context.Context, req *core.RewriteRequest) (string, error) {
	if err := core.ValidateText(req.Text); err != nil {
		return "", err
	}

	userPrompt, err := prompt.BuildRewritePrompt(req, c.textProcessor.Prepare(req.Text))
	if err != nil {
		return "", err
	}

	content, err := c.invoke(ctx, prompt.RewriteSystemPrompt+"\n\n"+userPrompt)
	if err != nil {
		return "", err
	}
	return prompt.ParseRewrite(content)
}

// invoke sends prompt in the body format of the model family and returns the generated text
func (c *BedrockClient) invoke(ctx context.Context, text string) (string, error) {
	payload, err := c.buildPayload(text)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to invoke Bedrock model: %w", core.ErrUpstream, err)
	}

	return c.parseBody(resp.Body)
}

func (c *BedrockClient) buildPayload(text string) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + text + "\n\nAssistant:",
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": text,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      text,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
}

func (c *BedrockClient) parseBody(body []byte) (string, error) {
	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("%w: failed to unmarshal Claude response: %v", core.ErrUpstream, err)
		}
		return claudeResp.Completion, nil
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("%w: failed to unmarshal Titan response: %v", core.ErrUpstream, err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("%w: empty response from Titan model", core.ErrUpstream)
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("%w: failed to unmarshal generic response: %v", core.ErrUpstream, err)
		}
		for _, candidate := range []string{genericResp.Output, genericResp.Text, genericResp.Response} {
			if candidate != "" {
				return candidate, nil
			}
		}
		return string(body), nil
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
