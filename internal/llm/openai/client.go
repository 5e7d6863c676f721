package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/internal/llm"
)

var _ llm.PositionExtractor = (*Client)(nil)

// ExtractPositions implements llm.PositionExtractor using text-only chat
// completions in JSON mode. The answer is validated against the LV schema;
// when that fails it is sanitized once and validated again.
func (c *Client) ExtractPositions(ctx context.Context, req llm.ExtractRequest) (llm.LVExtraction, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		zap.String("req_id", rid),
		zap.String("model", c.cfg.Model),
		zap.Float64("temp", c.cfg.Temperature),
		zap.Int("pages", len(req.Pages)),
		zap.String("filename", req.FilenameHint),
	)

	schema := llm.BuildLVJSONSchema()
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(llm.BuildSystemPrompt()),
			openai.UserMessage(llm.BuildUserPrompt(req)),
			openai.SystemMessage("JSON Schema:\n" + mustJSON(schema)),
		},
		Temperature: openai.Float(c.cfg.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = mapOpenAIError(err)
		c.log.Error("llm.extract.http_error",
			zap.String("req_id", rid), zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return llm.LVExtraction{}, nil, err
	}
	if len(resp.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			zap.String("req_id", rid),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return llm.LVExtraction{}, nil, fmt.Errorf("no choices in openai response")
	}
	rawContent := []byte(stripFence(resp.Choices[0].Message.Content))

	if err := llm.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		cleaned, dropped, sErr := llm.NormalizeAndSanitizeJSON(rawContent, c.log)
		if sErr != nil {
			c.log.Error("llm.extract.sanitize_failed",
				zap.String("req_id", rid), zap.Error(sErr),
				zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
			)
			return llm.LVExtraction{}, rawContent, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := llm.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.log.Error("llm.extract.schema_validation_failed",
				zap.String("req_id", rid), zap.Error(vErr),
				zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
			)
			return llm.LVExtraction{}, rawContent, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.log.Warn("llm.extract.lenient_sanitize_applied",
			zap.String("req_id", rid), zap.Int("dropped", len(dropped)),
		)
		rawContent = cleaned
	}

	var out llm.LVExtraction
	if err := json.Unmarshal(rawContent, &out); err != nil {
		return llm.LVExtraction{}, rawContent, fmt.Errorf("unmarshal positions: %w", err)
	}

	c.log.Info("llm.extract.ok",
		zap.String("req_id", rid),
		zap.Int("positions", len(out.Positions)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return out, rawContent, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("openai error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("openai error (status %d)", apiErr.StatusCode)
	}
	return err
}

// stripFence removes a ```json fence some models wrap around JSON mode output.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
