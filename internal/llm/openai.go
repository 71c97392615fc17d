package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/prompt"
	"github.com/ashprao/chatbox/pkg/logger"
)

const (
	chatCompletionsPath = "/v1/chat/completions"
	completionsPath     = "/v1/completions"
	modelsPath          = "/v1/models"
	doneMarker          = "[DONE]"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible hosts
type OpenAIProvider struct {
	httpClient *http.Client
	logger     *logger.Logger
}

// NewOpenAIProvider creates a provider with the default response timeout
func NewOpenAIProvider(logger *logger.Logger) *OpenAIProvider {
	return NewOpenAIProviderWithTimeout(constants.DefaultTimeoutSeconds, logger)
}

// NewOpenAIProviderWithTimeout creates a provider that gives up when the host
// has not started answering after timeoutSeconds. Streaming itself is not
// limited, so long replies are not cut off.
func NewOpenAIProviderWithTimeout(timeoutSeconds int, logger *logger.Logger) *OpenAIProvider {
	if timeoutSeconds <= 0 {
		timeoutSeconds = constants.DefaultTimeoutSeconds
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = time.Duration(timeoutSeconds) * time.Second

	return &OpenAIProvider{
		httpClient: &http.Client{Transport: transport},
		logger:     logger.WithComponent("openai-provider"),
	}
}

// GetName returns the provider name
func (p *OpenAIProvider) GetName() string {
	return "openai"
}

// ListModels retrieves the model ids served by the setting's API host
func (p *OpenAIProvider) ListModels(ctx context.Context, setting models.ModelSetting) ([]string, error) {
	p.logger.Info("Fetching available models", "api_host", setting.APIHost)

	cfg := openai.DefaultConfig(setting.APIKey)
	cfg.BaseURL = apiBase(setting.APIHost) + "/v1"
	cfg.HTTPClient = p.httpClient
	client := openai.NewClientWithConfig(cfg)

	list, err := client.ListModels(ctx)
	if err != nil {
		p.logger.Warn("Failed to fetch models", "api_host", setting.APIHost, "error", err)
		return []string{}, fmt.Errorf("failed to fetch models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		if m.Object == "model" {
			ids = append(ids, m.ID)
		}
	}

	p.logger.Info("Successfully fetched models", "count", len(ids))
	return ids, nil
}

type chatRequest struct {
	Model       string                         `json:"model"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
	MaxTokens   *int                           `json:"max_tokens,omitempty"`
	Temperature float64                        `json:"temperature"`
	Stream      bool                           `json:"stream"`
}

type completionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
	Stream      bool     `json:"stream"`
}

// streamEvent is the part of a data payload that signals an error
type streamEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// chunkFunc extracts the text carried by one data payload. ok is false when
// the payload is not valid JSON.
type chunkFunc func(data []byte) (text string, ok bool)

// Replay sends the windowed conversation and streams the reply
func (p *OpenAIProvider) Replay(ctx context.Context, setting models.ModelSetting, messages []models.Message, onText TextCallback) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}

	limit, unlimited := setting.ContextLimit()
	window := BuildContext(messages, limit, unlimited)

	var maxTokens *int
	if n, unlimitedReply := setting.ReplyLimit(); !unlimitedReply {
		maxTokens = &n
	}

	path, body, extract, err := p.buildRequest(setting, window, maxTokens)
	if err != nil {
		return "", err
	}

	p.logger.Info("Sending replay request",
		"model", setting.Name,
		"path", path,
		"messages", len(messages),
		"window", len(window))

	text, err := p.stream(ctx, setting, path, body, extract, onText)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			p.logger.Info("Replay canceled", "model", setting.Name, "received", len(text))
			return text, nil
		}
		p.logger.Error("Replay failed", "model", setting.Name, "error", err)
		return text, err
	}

	p.logger.Info("Successfully completed replay", "model", setting.Name, "length", len(text))
	return text, nil
}

// buildRequest chooses between the chat and the completions endpoint
func (p *OpenAIProvider) buildRequest(setting models.ModelSetting, window []models.Message, maxTokens *int) (string, []byte, chunkFunc, error) {
	if setting.NeedFormatPrompt {
		tmpl, ok := prompt.Lookup(setting.Name)
		switch {
		case !ok:
			p.logger.Warn("No prompt template for model, using chat endpoint", "model", setting.Name)
		case !tmpl.Chat:
			text, err := tmpl.GenerationPrompt(window)
			if err != nil {
				return "", nil, nil, fmt.Errorf("failed to format prompt: %w", err)
			}
			body, err := json.Marshal(completionRequest{
				Model:       setting.Name,
				Prompt:      text,
				MaxTokens:   maxTokens,
				Temperature: setting.Temperature,
				Stop:        tmpl.StopSequences(),
				Stream:      true,
			})
			if err != nil {
				return "", nil, nil, fmt.Errorf("failed to marshal request: %w", err)
			}
			return completionsPath, body, completionText, nil
		}
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(window))
	for _, m := range window {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	body, err := json.Marshal(chatRequest{
		Model:       setting.Name,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: setting.Temperature,
		Stream:      true,
	})
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return chatCompletionsPath, body, chatText, nil
}

func (p *OpenAIProvider) stream(ctx context.Context, setting models.ModelSetting, path string, body []byte, extract chunkFunc, onText TextCallback) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase(setting.APIHost)+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+setting.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(raw)}
	}
	if resp.Body == http.NoBody {
		return "", ErrNoBody
	}

	var full strings.Builder
	scanner := NewSSEScanner(resp.Body)
	for scanner.Next() {
		data := scanner.Event().Data
		if data == doneMarker {
			return full.String(), nil
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			p.logger.Debug("Skipping unparsable stream data", "data", data)
			continue
		}
		if event.Type == "error" {
			return full.String(), &StreamError{Partial: full.String(), Err: &APIError{Message: event.Message}}
		}

		text, ok := extract([]byte(data))
		if !ok || text == "" {
			continue
		}
		full.WriteString(text)
		if err := ctx.Err(); err != nil {
			return full.String(), &StreamError{Partial: full.String(), Err: err}
		}
		if onText != nil {
			onText(full.String())
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return full.String(), &StreamError{Partial: full.String(), Err: err}
	}
	return full.String(), nil
}

func chatText(data []byte) (string, bool) {
	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", true
	}
	return chunk.Choices[0].Delta.Content, true
}

func completionText(data []byte) (string, bool) {
	var chunk openai.CompletionResponse
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", true
	}
	return chunk.Choices[0].Text, true
}

// apiBase trims trailing slashes so paths can be appended
func apiBase(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return constants.DefaultAPIHost
	}
	return host
}
