package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey   string
	Model    string // fast model: farming info and chat
	ProModel string // slower model: community answers and crop calendars
	BaseURL  string // optional API endpoint override
	Timeout  time.Duration
}

// GeminiClient generates replies with the Gemini API.
type GeminiClient struct {
	client     *genai.Client
	httpClient *http.Client
	model      string
	proModel   string
}

// qaThinkingBudget gives community answers room to reason before replying.
const qaThinkingBudget int32 = 32768

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.ProModel == "" {
		cfg.ProModel = "gemini-2.5-pro"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{
		client:     client,
		httpClient: httpClient,
		model:      cfg.Model,
		proModel:   cfg.ProModel,
	}, nil
}

// request builds the model name, contents and config for p.
func (c *GeminiClient) request(p Prompt) (string, []*genai.Content, *genai.GenerateContentConfig, error) {
	text, err := BuildPrompt(p)
	if err != nil {
		return "", nil, nil, err
	}
	config := &genai.GenerateContentConfig{}

	switch p.Kind {
	case KindFarmingInfo:
		return c.model, genai.Text(text), config, nil

	case KindCommunityQA:
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(qaThinkingBudget)}
		return c.proModel, genai.Text(text), config, nil

	case KindCropCalendar:
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = cropCalendarSchema
		return c.proModel, genai.Text(text), config, nil

	case KindChat:
		config.SystemInstruction = genai.NewContentFromText(ChatSystemInstruction(p.Language), genai.RoleUser)
		contents := make([]*genai.Content, 0, len(p.History)+1)
		for _, t := range p.History {
			contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
		}
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		return c.model, contents, config, nil
	}
	return "", nil, nil, fmt.Errorf("unknown kind %q", p.Kind)
}

// Generate returns the complete reply for p.
func (c *GeminiClient) Generate(ctx context.Context, p Prompt) (string, error) {
	model, contents, config, err := c.request(p)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", classifyError(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from gemini")
	}
	return text, nil
}

// Stream calls onDelta with each text chunk of the reply. An error after the
// first chunk is not retryable: the caller already holds partial output.
func (c *GeminiClient) Stream(ctx context.Context, p Prompt, onDelta func(string)) error {
	model, contents, config, err := c.request(p)
	if err != nil {
		return err
	}
	received := false
	for resp, err := range c.client.Models.GenerateContentStream(ctx, model, contents, config) {
		if err != nil {
			if received {
				return fmt.Errorf("gemini stream interrupted: %w", err)
			}
			return classifyError(err)
		}
		if delta := resp.Text(); delta != "" {
			received = true
			onDelta(delta)
		}
	}
	if !received {
		return errors.New("empty response from gemini")
	}
	return nil
}

// classifyError marks rate limits and server errors as retryable.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 {
			return &RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return fmt.Errorf("gemini api status %d: %s", apiErr.Code, truncate(apiErr.Message, 200))
	}
	return fmt.Errorf("gemini api: %w", err)
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// Close releases resources.
func (c *GeminiClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
