package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"curachef/prompt"
)

const (
	// defaultModelID is the default model ID for Bedrock Claude.
	// It's an inference profile ID or ARN, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Controls the maximum number of tokens the model can generate in one response.
	// Plans and multi-recipe payloads run long, so the ceiling sits higher than a chat default.
	defaultMaxTokens = 4096

	// Controls the randomness of the model's output. Low temperature keeps outputs more deterministic and consistent, which is better for JSON and structured outputs.
	defaultTemperature = 0.2

	// Controls the diversity of the model's output. Low top_p keeps outputs more focused and less random, which is better for JSON and structured outputs.
	defaultTopP = 0.9
)

const systemPrompt = `You are CuraChef, a culinary and nutrition assistant.

FINAL OUTPUT FORMAT:
Return ONLY the JSON object conforming to the schema below - no explanations, no text before or after, no markdown formatting. Start immediately with { and end with }.
The JSON must be valid UTF-8, with no commentary, no markdown, and no trailing commas.
If any field has no content, use an empty array [] or "" appropriately.`

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
	ConverseStream(context.Context, *bedrockruntime.ConverseStreamInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error)
}

type LLMOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMClient struct {
	brc  bedrockRuntimeClient
	opts LLMOptions
}

func NewLLMClient(brc bedrockRuntimeClient, opts LLMOptions) *LLMClient {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &LLMClient{
		brc:  brc,
		opts: opts,
	}
}

// Generate submits one single-shot request and returns the model's text. An
// image, when present, is prepended to the content parts so the model
// considers it primary context alongside the text.
func (c *LLMClient) Generate(ctx context.Context, req prompt.Request, image []byte) (string, error) {
	sys, msgs, err := c.buildRequest(req, image)
	if err != nil {
		return "", err
	}

	in := &bedrockruntime.ConverseInput{
		ModelId:  &c.opts.ModelID,
		System:   sys,
		Messages: msgs,
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock Converse failed", "error", err)
		return "", err
	}

	slog.Info("LLM_CLIENT: Bedrock Converse succeeded",
		"stop_reason", out.StopReason,
		"latency_ms", aws.ToInt64(out.Metrics.LatencyMs),
		"input_tokens", aws.ToInt32(out.Usage.InputTokens),
		"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
	)

	switch out.StopReason {
	case types.StopReasonEndTurn, types.StopReasonStopSequence:
		return textFromOutput(out), nil

	case types.StopReasonMaxTokens:
		slog.Warn("LLM_CLIENT: Model hit MaxTokens limit; consider increasing MaxTokens")
		return "", fmt.Errorf("model hit MaxTokens limit; consider increasing MaxTokens")

	case types.StopReasonContentFiltered, types.StopReasonGuardrailIntervened:
		slog.Warn("LLM_CLIENT: Model response blocked by Bedrock safety filters")
		return "", fmt.Errorf("model response blocked by Bedrock safety filters")

	default:
		// Fallback if the model didn't specify a stop reason
		return textFromOutput(out), nil
	}
}

// GenerateStream submits the same request but consumes the response
// incrementally, appending text deltas to one buffer in arrival order. The
// buffer is returned only after the stream signals completion; partial JSON
// is never interpreted.
func (c *LLMClient) GenerateStream(ctx context.Context, req prompt.Request) (string, error) {
	sys, msgs, err := c.buildRequest(req, nil)
	if err != nil {
		return "", err
	}

	in := &bedrockruntime.ConverseStreamInput{
		ModelId:  &c.opts.ModelID,
		System:   sys,
		Messages: msgs,
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
	}

	out, err := c.brc.ConverseStream(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock ConverseStream failed", "error", err)
		return "", err
	}

	stream := out.GetStream()
	defer stream.Close()

	var buf strings.Builder
	var stopReason types.StopReason
	fragments := 0

	for event := range stream.Events() {
		switch e := event.(type) {
		case *types.ConverseStreamOutputMemberContentBlockDelta:
			if delta, ok := e.Value.Delta.(*types.ContentBlockDeltaMemberText); ok {
				buf.WriteString(delta.Value)
				fragments++
			}
		case *types.ConverseStreamOutputMemberMessageStop:
			stopReason = e.Value.StopReason
		}
	}

	if err := stream.Err(); err != nil {
		slog.Error("LLM_CLIENT: Bedrock stream errored", "error", err, "fragments", fragments)
		return "", err
	}

	slog.Info("LLM_CLIENT: Bedrock stream complete", "stop_reason", stopReason, "fragments", fragments, "buffer_len", buf.Len())

	if stopReason == types.StopReasonMaxTokens {
		return "", fmt.Errorf("model hit MaxTokens limit mid-stream; buffer is incomplete")
	}

	return buf.String(), nil
}

// buildRequest assembles the system blocks and the single user message. The
// output schema travels inside the system block since Converse has no native
// response-schema parameter.
func (c *LLMClient) buildRequest(req prompt.Request, image []byte) ([]types.SystemContentBlock, []types.Message, error) {
	schemaJSON, err := json.Marshal(req.Schema)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal output schema: %w", err)
	}

	sys := []types.SystemContentBlock{
		&types.SystemContentBlockMemberText{Value: systemPrompt + "\n\nJSON Schema:\n" + string(schemaJSON)},
	}

	msg := types.Message{Role: types.ConversationRoleUser}
	if len(image) > 0 {
		msg.Content = append(msg.Content, &types.ContentBlockMemberImage{
			Value: types.ImageBlock{
				Format: types.ImageFormatJpeg,
				Source: &types.ImageSourceMemberBytes{Value: image},
			},
		})
		slog.Info("LLM_CLIENT: Added image content", "image_bytes", len(image))
	}
	msg.Content = append(msg.Content, &types.ContentBlockMemberText{Value: req.Text})

	return sys, []types.Message{msg}, nil
}

// textFromOutput returns assistant text, preferring the last block that
// looks like a single JSON object (typical for structured final output).
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || len(msg.Value.Content) == 0 {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	if len(texts) == 0 {
		return ""
	}

	for i := len(texts) - 1; i >= 0; i-- {
		s := strings.TrimSpace(texts[i])
		if len(s) > 1 && s[0] == '{' && s[len(s)-1] == '}' {
			return s
		}
	}

	return strings.Join(texts, "\n")
}
