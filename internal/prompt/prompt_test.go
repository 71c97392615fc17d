package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashprao/chatbox/internal/models"
)

func msg(role models.Role, content string) models.Message {
	return models.Message{Role: role, Content: content}
}

func mustLookup(t *testing.T, name string) *Template {
	t.Helper()
	tmpl, ok := Lookup(name)
	require.True(t, ok, "template %q not registered", name)
	return tmpl
}

func TestLookup(t *testing.T) {
	gpt := mustLookup(t, "gpt-4")
	assert.Equal(t, GPTTemplateName, gpt.Name)
	assert.True(t, gpt.Chat)

	llama := mustLookup(t, "llama-2")
	assert.False(t, llama.Chat)

	_, ok := Lookup("no-such-model")
	assert.False(t, ok)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	first := mustLookup(t, "llama-2")
	first.Sep = "changed"
	first.StopTokenIDs[0] = 99

	second := mustLookup(t, "llama-2")
	assert.Equal(t, " ", second.Sep)
	assert.Equal(t, []int{2}, second.StopTokenIDs)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "gpt")
	assert.Contains(t, names, "llama-2")
	assert.IsIncreasing(t, names)
}

func TestTemplate_Format(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		messages   []models.Message
		generation bool
		want       string
	}{
		{
			name:     "llama-2 with system",
			template: "llama-2",
			messages: []models.Message{
				msg(models.RoleSystem, "S"),
				msg(models.RoleUser, "hi"),
				msg(models.RoleAssistant, "hello"),
				msg(models.RoleUser, "again"),
			},
			generation: true,
			want:       "<s>[INST] <<SYS>>S<</SYS>>\n\nhi [/INST] hello </s><s>[INST] again [/INST]",
		},
		{
			name:       "llama-2 without system",
			template:   "llama-2",
			messages:   []models.Message{msg(models.RoleUser, "hi")},
			generation: true,
			want:       "[INST] hi [/INST]",
		},
		{
			name:     "vicuna alternates separators",
			template: "vicuna_v1.1",
			messages: []models.Message{
				msg(models.RoleSystem, "S"),
				msg(models.RoleUser, "hi"),
				msg(models.RoleAssistant, "hello"),
				msg(models.RoleUser, "bye"),
			},
			generation: true,
			want:       "S USER: hi ASSISTANT: hello</s>USER: bye ASSISTANT:",
		},
		{
			name:       "vicuna default system message",
			template:   "vicuna_v1.1",
			messages:   []models.Message{msg(models.RoleUser, "hi")},
			generation: false,
			want:       curiousUserSystem + " USER: hi ",
		},
		{
			name:     "chatglm2 rounds start at one",
			template: "chatglm2",
			messages: []models.Message{
				msg(models.RoleUser, "a"),
				msg(models.RoleAssistant, "b"),
				msg(models.RoleUser, "c"),
			},
			want: "[Round 1]\n\n问:a\n\n答:b\n\n[Round 2]\n\n问:c\n\n",
		},
		{
			name:     "chatml",
			template: "chatml",
			messages: []models.Message{
				msg(models.RoleSystem, "S"),
				msg(models.RoleUser, "hi"),
			},
			generation: true,
			want:       "<|im_start|>system\nS<|im_end|>\n<|im_start|>user\nhi<|im_end|>\n<|im_start|>assistant\n",
		},
		{
			name:     "rwkv collapses blank lines",
			template: "rwkv",
			messages: []models.Message{msg(models.RoleUser, "a\r\n\r\nb")},
			want:     "Bob: a\nb\n\n",
		},
		{
			name:     "dolly",
			template: "dolly_v2",
			messages: []models.Message{
				msg(models.RoleUser, "q"),
				msg(models.RoleAssistant, "r"),
			},
			want: instructionSystem + "\n\n### Instruction:\nq\n\n### Response:\nr### End\n\n",
		},
		{
			name:       "phoenix",
			template:   "phoenix",
			messages:   []models.Message{msg(models.RoleUser, "q")},
			generation: true,
			want:       curiousHumanSystem + "\n\nHuman: <s>q</s>Assistant: <s>",
		},
		{
			name:       "robin",
			template:   "robin",
			messages:   []models.Message{msg(models.RoleUser, "q")},
			generation: true,
			want:       curiousHumanSystem + "\n###Human:\nq\n###Assistant:\n",
		},
		{
			name:     "internlm",
			template: "internlm-chat",
			messages: []models.Message{
				msg(models.RoleUser, "q"),
				msg(models.RoleAssistant, "a"),
			},
			want: ":You are an AI assistant whose name is InternLM (书生·浦语).\n<s><|User|>:q<eoh>\n<|Bot|>:a<eoa>\n",
		},
		{
			name:       "oasst",
			template:   "oasst_pythia",
			messages:   []models.Message{msg(models.RoleUser, "q")},
			generation: true,
			want:       "<|prompter|>q<|endoftext|><|assistant|>",
		},
		{
			name:       "zero shot",
			template:   "zero_shot",
			messages:   []models.Message{msg(models.RoleUser, "q")},
			generation: true,
			want:       curiousHumanSystem + "\n### ### Human: q\n### ### Assistant:",
		},
		{
			name:     "raw roles without tags",
			template: "gpt",
			messages: []models.Message{
				msg(models.RoleUser, "hi"),
				msg(models.RoleAssistant, "yo"),
			},
			want: "hiassistant yo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := mustLookup(t, tt.template)

			var got string
			var err error
			if tt.generation {
				got, err = tmpl.GenerationPrompt(tt.messages)
			} else {
				got, err = tmpl.Format(tt.messages)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplate_FormatAdHocStyles(t *testing.T) {
	tests := []struct {
		name     string
		template Template
		messages []models.Message
		want     string
	}{
		{
			name:     "add colon space single keeps trailing space",
			template: Template{System: "SYS", Roles: [2]string{"U", "A"}, Style: AddColonSpaceSingle, Sep: "\n"},
			messages: []models.Message{msg(models.RoleUser, "q"), msg(models.RoleAssistant, "")},
			want:     "SYS\nU: q\nA: ",
		},
		{
			name:     "no colon two",
			template: Template{Roles: [2]string{"<u>", "<a>"}, Style: NoColonTwo, Sep: "|", Sep2: "||"},
			messages: []models.Message{
				msg(models.RoleUser, "q"),
				msg(models.RoleAssistant, "a"),
				msg(models.RoleUser, "q2"),
			},
			want: "<u>q|<a>a||<u>q2|",
		},
		{
			name:     "new line single with system",
			template: Template{System: "SYS", Roles: [2]string{"U", "A"}, Style: AddNewLineSingle, Sep: "\n"},
			messages: []models.Message{msg(models.RoleUser, "q"), msg(models.RoleAssistant, "a")},
			want:     "SYS\nU\nq\nA\na\n",
		},
		{
			name:     "new line single without system",
			template: Template{Roles: [2]string{"U", "A"}, Style: AddNewLineSingle, Sep: "\n"},
			messages: []models.Message{msg(models.RoleUser, "q")},
			want:     "U\nq\n",
		},
		{
			name:     "system message ignored without placeholder",
			template: Template{System: "fixed", Roles: [2]string{"U", "A"}, Style: AddColonSingle, Sep: "\n"},
			messages: []models.Message{msg(models.RoleSystem, "dropped"), msg(models.RoleUser, "q")},
			want:     "fixed\nU: q\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.template.Format(tt.messages)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplate_InvalidStyle(t *testing.T) {
	tmpl := Template{Name: "broken", Style: SeparatorStyle(99)}
	_, err := tmpl.Format([]models.Message{msg(models.RoleUser, "q")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SeparatorStyle(99)")
}

func TestTemplate_Helpers(t *testing.T) {
	chatml := mustLookup(t, "chatml")
	assert.Equal(t, []string{"<|im_end|>"}, chatml.StopSequences())
	assert.Equal(t, "chatml", chatml.Config()["template_name"])
	assert.Equal(t, chatml.System, chatml.Config()["system"])

	llama := mustLookup(t, "llama-2")
	assert.Nil(t, llama.StopSequences())

	assert.Equal(t, "chatml", ChatML.String())
}
