package llm

import (
	"context"

	"github.com/ashprao/chatbox/internal/models"
)

// TextCallback receives the full reply text assembled so far. It is called
// after every streamed chunk.
type TextCallback func(text string)

// Provider defines the interface for chat completion backends
type Provider interface {
	// GetName returns the provider name
	GetName() string

	// ListModels returns the model ids offered by the setting's API host
	ListModels(ctx context.Context, setting models.ModelSetting) ([]string, error)

	// Replay sends the conversation and streams the reply through onText.
	// It returns the final reply text. When ctx is canceled the text
	// received so far is returned with a nil error.
	Replay(ctx context.Context, setting models.ModelSetting, messages []models.Message, onText TextCallback) (string, error)
}
