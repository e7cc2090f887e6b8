package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible chat completions endpoint. Generation
// calls run through the resilience executor so a flapping model opens the
// breaker instead of hammering the API, but they are never retried: a failed
// lifecycle transition surfaces to the caller as-is.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	Executor *resilience.Executor
}

func New(options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	executor := options.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.GenerationConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		apiKey:     options.APIKey,
		model:      options.Model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

// analysisResult is the JSON shape the model is instructed to return for a
// denial letter.
type analysisResult struct {
	Insurer          string   `json:"insurer"`
	ClaimNumber      string   `json:"claim_number"`
	DenialReason     string   `json:"denial_reason"`
	Deadlines        []string `json:"deadlines"`
	PolicyReferences []string `json:"policy_references"`
	Summary          string   `json:"summary"`
}

func (c *Client) AnalyzeLetter(ctx context.Context, letterText string) (domain.Analysis, string, error) {
	respText, err := c.completeJSON(ctx, "openai.analyze", buildAnalysisPrompt(letterText))
	if err != nil {
		return domain.Analysis{}, "", err
	}

	var result analysisResult
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &result); err != nil {
		return domain.Analysis{}, "", fmt.Errorf("parse analysis json: %w", err)
	}
	if result.Deadlines == nil {
		result.Deadlines = []string{}
	}
	if result.PolicyReferences == nil {
		result.PolicyReferences = []string{}
	}

	analysis := domain.Analysis{
		Insurer:          result.Insurer,
		ClaimNumber:      result.ClaimNumber,
		DenialReason:     result.DenialReason,
		Deadlines:        result.Deadlines,
		PolicyReferences: result.PolicyReferences,
	}
	return analysis, strings.TrimSpace(result.Summary), nil
}

func (c *Client) GenerateAppeal(ctx context.Context, summary string, opts domain.StyleOptions) (string, error) {
	return c.completeText(ctx, "openai.appeal", buildAppealPrompt(summary, opts))
}

func (c *Client) completeJSON(ctx context.Context, operation, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":           c.model,
		"messages":        []map[string]string{{"role": "user", "content": prompt}},
		"response_format": map[string]string{"type": "json_object"},
	}
	return c.complete(ctx, operation, reqBody)
}

func (c *Client) completeText(ctx context.Context, operation, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":    c.model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
	}
	return c.complete(ctx, operation, reqBody)
}

func (c *Client) complete(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", reqBody, &response, operation)
	}
	if err := c.executor.Execute(ctx, operation, call, classifyOpenAIError); err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices in response", operation)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
