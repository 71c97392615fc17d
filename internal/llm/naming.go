package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashprao/chatbox/internal/models"
)

const namingSystemPrompt = "You are a expert in naming conversations based on the chat records"

const namingUserPrompt = `Please name the conversation based on the chat records.
Please provide a concise name, within 10 characters and without quotation marks.
Please use the speak language in the conversation.
You only need to answer with the name.

%s
`

// NameConversation builds the request asking a model to name a conversation.
// The first message, normally the system prompt, is left out of the transcript.
func NameConversation(messages []models.Message) []models.Message {
	speakers := [2]string{"user: ", "assistant: "}

	var lines []string
	if len(messages) > 1 {
		for i, m := range messages[1:] {
			lines = append(lines, speakers[i%2]+m.Content)
		}
	}

	return []models.Message{
		models.NewMessage(models.RoleSystem, namingSystemPrompt),
		models.NewMessage(models.RoleUser, fmt.Sprintf(namingUserPrompt, strings.Join(lines, "\n\n"))),
	}
}

// SuggestName asks the provider for a session name
func SuggestName(ctx context.Context, provider Provider, setting models.ModelSetting, messages []models.Message) (string, error) {
	reply, err := provider.Replay(ctx, setting, NameConversation(messages), nil)
	if err != nil {
		return "", fmt.Errorf("failed to name conversation: %w", err)
	}
	return cleanName(reply), nil
}

func cleanName(name string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "\"'`“”‘’「」『』"))
}
