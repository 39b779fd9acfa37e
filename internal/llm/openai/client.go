package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
	"github.com/joseph-ayodele/medreport-summarizer/internal/llm"
)

var (
	_ llm.EntityRecognizer = (*Client)(nil)
	_ llm.Summarizer       = (*Client)(nil)
)

// RecognizeEntities implements llm.EntityRecognizer using chat/completions in JSON mode.
func (c *Client) RecognizeEntities(ctx context.Context, text string) ([]entity.Entity, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.entities.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(text),
	)

	schema, err := llm.EntitySchema()
	if err != nil {
		return nil, err
	}
	content, err := c.complete(ctx, rid, llm.BuildEntitySystemPrompt(), llm.BuildUserPrompt(text), llm.BuildEntityJSONSchema())
	if err != nil {
		c.log.Error("llm.entities.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	if err := schema.Validate(content); err != nil {
		if !c.cfg.LenientOptional {
			c.log.Error("llm.entities.schema_validation_failed", "req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds())
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, dropped, sErr := llm.NormalizeAndSanitizeEntities(content, c.log)
		if sErr != nil {
			c.log.Error("llm.entities.sanitize_failed", "req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds())
			return nil, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := schema.Validate(cleaned); vErr != nil {
			c.log.Error("llm.entities.schema_validation_failed", "req_id", rid, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds())
			return nil, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.log.Warn("llm.entities.lenient_sanitize_applied", "req_id", rid, "dropped", len(dropped))
		content = cleaned
	}

	var out struct {
		Entities []entity.Entity `json:"entities"`
	}
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, fmt.Errorf("unmarshal entities: %w", err)
	}
	ents := llm.ResolveSpans(text, out.Entities)

	c.log.Info("llm.entities.ok",
		"req_id", rid,
		"count", len(ents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ents, nil
}

// Summarize implements llm.Summarizer.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.summarize.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	schema, err := llm.SummarySchema()
	if err != nil {
		return "", err
	}
	content, err := c.complete(ctx, rid, llm.BuildSummarySystemPrompt(c.cfg.MaxSentences), llm.BuildUserPrompt(text), llm.BuildSummaryJSONSchema())
	if err != nil {
		c.log.Error("llm.summarize.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	if err := schema.Validate(content); err != nil {
		cleaned, sErr := llm.SanitizeSummary(content)
		if sErr != nil || !c.cfg.LenientOptional {
			c.log.Error("llm.summarize.schema_validation_failed", "req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds())
			return "", fmt.Errorf("schema validation failed: %w", err)
		}
		c.log.Warn("llm.summarize.lenient_sanitize_applied", "req_id", rid)
		content = cleaned
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(content, &out); err != nil {
		return "", fmt.Errorf("unmarshal summary: %w", err)
	}

	c.log.Info("llm.summarize.ok",
		"req_id", rid,
		"summary_len", len(out.Summary),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(out.Summary), nil
}

// complete runs one chat/completions call and returns the message content.
func (c *Client) complete(ctx context.Context, rid, system, user string, schema map[string]any) ([]byte, error) {
	if !c.Configured() {
		return nil, common.ModelUnavailable("openai", errors.New("OPENAI_API_KEY not set"))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openai response")
	}
	return []byte(llm.StripCodeFence(cc.Choices[0].Message.Content)), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
