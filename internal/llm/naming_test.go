package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashprao/chatbox/internal/models"
)

type fakeProvider struct {
	reply    string
	err      error
	received []models.Message
}

func (f *fakeProvider) GetName() string { return "fake" }

func (f *fakeProvider) ListModels(context.Context, models.ModelSetting) ([]string, error) {
	return nil, nil
}

func (f *fakeProvider) Replay(_ context.Context, _ models.ModelSetting, messages []models.Message, _ TextCallback) (string, error) {
	f.received = messages
	return f.reply, f.err
}

func TestNameConversation(t *testing.T) {
	messages := []models.Message{
		{Role: models.RoleSystem, Content: "system prompt"},
		{Role: models.RoleUser, Content: "What is Go?"},
		{Role: models.RoleAssistant, Content: "A language."},
		{Role: models.RoleUser, Content: "Thanks"},
	}

	req := NameConversation(messages)
	require.Len(t, req, 2)
	assert.Equal(t, models.RoleSystem, req[0].Role)
	assert.Equal(t, namingSystemPrompt, req[0].Content)
	assert.Equal(t, models.RoleUser, req[1].Role)
	assert.Contains(t, req[1].Content, "within 10 characters")
	assert.Contains(t, req[1].Content, "user: What is Go?\n\nassistant: A language.\n\nuser: Thanks\n")
	assert.NotContains(t, req[1].Content, "system prompt")
}

func TestNameConversation_OnlySystem(t *testing.T) {
	req := NameConversation([]models.Message{{Role: models.RoleSystem, Content: "s"}})
	require.Len(t, req, 2)
	assert.Contains(t, req[1].Content, "You only need to answer with the name.\n\n\n")
}

func TestSuggestName(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{reply: "Go Basics", want: "Go Basics"},
		{reply: "  \"Go Basics\"\n", want: "Go Basics"},
		{reply: "「Go入门」", want: "Go入门"},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			provider := &fakeProvider{reply: tt.reply}
			name, err := SuggestName(context.Background(), provider, models.DefaultModelSetting(), conversation())
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
			assert.Len(t, provider.received, 2)
		})
	}
}

func TestSuggestName_Error(t *testing.T) {
	provider := &fakeProvider{err: errors.New("offline")}
	_, err := SuggestName(context.Background(), provider, models.DefaultModelSetting(), conversation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
}
