// Package prompt formats chat messages into single-string prompts for models
// served through the plain completions endpoint.
//
// Each Template describes how one model family expects a conversation to be
// laid out: a system prompt, two role tags and the separators placed between
// turns. Models served through the chat endpoint use the "gpt" template, which
// is never formatted.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ashprao/chatbox/internal/models"
)

// SystemPlaceholder is replaced by the system message content in Template.System
const SystemPlaceholder = "{{system_message_content}}"

// SeparatorStyle selects how turns are joined
type SeparatorStyle int

const (
	AddColonSingle SeparatorStyle = iota
	AddColonTwo
	AddColonSpaceSingle
	NoColonSingle
	NoColonTwo
	AddNewLineSingle
	Llama2
	ChatGLM
	ChatML
	ChatIntern
	Dolly
	RWKV
	Phoenix
	Robin
)

var styleNames = map[SeparatorStyle]string{
	AddColonSingle:      "add_colon_single",
	AddColonTwo:         "add_colon_two",
	AddColonSpaceSingle: "add_colon_space_single",
	NoColonSingle:       "no_colon_single",
	NoColonTwo:          "no_colon_two",
	AddNewLineSingle:    "add_new_line_single",
	Llama2:              "llama2",
	ChatGLM:             "chatglm",
	ChatML:              "chatml",
	ChatIntern:          "chatintern",
	Dolly:               "dolly",
	RWKV:                "rwkv",
	Phoenix:             "phoenix",
	Robin:               "robin",
}

func (s SeparatorStyle) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SeparatorStyle(%d)", int(s))
}

// Template is a conversation layout for one model family
type Template struct {
	// Name is the registry key, usually the model name
	Name string

	// System is the system prompt. It may contain SystemPlaceholder.
	System string

	// DefaultSystemMessage fills the placeholder when the conversation has
	// no system message of its own
	DefaultSystemMessage string

	// Roles are the tags for the user and assistant turns
	Roles [2]string

	// Chat is true for models reached through the chat endpoint
	Chat bool

	Style SeparatorStyle
	Sep   string
	Sep2  string

	// StopStr ends generation when produced by the model
	StopStr string

	// StopTokenIDs ends generation when any of these token ids is produced
	StopTokenIDs []int
}

// turn is a message after role mapping
type turn struct {
	role    string
	content string
}

// Format lays out messages according to the template. A leading system
// message fills the system prompt and is not rendered as a turn. A turn with
// empty content renders only its role tag, which is how the model is asked
// to continue.
func (t *Template) Format(messages []models.Message) (string, error) {
	systemPrompt, turns := t.prepare(messages)

	var b strings.Builder
	seps := [2]string{t.Sep, t.Sep2}

	switch t.Style {
	case AddColonSingle:
		b.WriteString(systemPrompt + t.Sep)
		for _, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + ": " + m.content + t.Sep)
			} else {
				b.WriteString(m.role + ":")
			}
		}

	case AddColonTwo:
		b.WriteString(systemPrompt + seps[0])
		for i, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + ": " + m.content + seps[i%2])
			} else {
				b.WriteString(m.role + ":")
			}
		}

	case AddColonSpaceSingle:
		b.WriteString(systemPrompt + t.Sep)
		for _, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + ": " + m.content + t.Sep)
			} else {
				b.WriteString(m.role + ": ")
			}
		}

	case NoColonSingle:
		b.WriteString(systemPrompt)
		for _, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + m.content + t.Sep)
			} else {
				b.WriteString(m.role)
			}
		}

	case NoColonTwo:
		b.WriteString(systemPrompt)
		for i, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + m.content + seps[i%2])
			} else {
				b.WriteString(m.role)
			}
		}

	case AddNewLineSingle:
		if systemPrompt != "" {
			b.WriteString(systemPrompt + t.Sep)
		}
		for _, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + "\n" + m.content + t.Sep)
			} else {
				b.WriteString(m.role + "\n")
			}
		}

	case RWKV:
		b.WriteString(systemPrompt)
		for _, m := range turns {
			if m.content != "" {
				content := strings.ReplaceAll(m.content, "\r\n", "\n")
				content = strings.ReplaceAll(content, "\n\n", "\n")
				b.WriteString(m.role + ": " + content + "\n\n")
			} else {
				b.WriteString(m.role + ":")
			}
		}

	case Llama2:
		if systemPrompt != "" {
			b.WriteString(systemPrompt)
		} else if t.Roles[0] != "" {
			b.WriteString(t.Roles[0] + " ")
		}
		for i, m := range turns {
			switch {
			case m.content == "":
				b.WriteString(m.role)
			case i == 0:
				// the system block already opened the first [INST], so the
				// first turn carries no role tag
				b.WriteString(m.content + t.Sep)
			default:
				b.WriteString(m.role + " " + m.content + seps[i%2])
			}
		}

	case ChatGLM:
		roundOffset := 0
		if t.Name == "chatglm2" {
			roundOffset = 1
		}
		if systemPrompt != "" {
			b.WriteString(systemPrompt + t.Sep)
		}
		for i, m := range turns {
			if i%2 == 0 {
				fmt.Fprintf(&b, "[Round %d]%s", i/2+roundOffset, t.Sep)
			}
			if m.content != "" {
				b.WriteString(m.role + ":" + m.content + t.Sep)
			} else {
				b.WriteString(m.role + ":")
			}
		}

	case ChatML:
		if systemPrompt != "" {
			b.WriteString(systemPrompt + t.Sep + "\n")
		}
		for _, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + "\n" + m.content + t.Sep + "\n")
			} else {
				b.WriteString(m.role + "\n")
			}
		}

	case ChatIntern:
		b.WriteString(systemPrompt)
		for i, m := range turns {
			if i%2 == 0 {
				b.WriteString("<s>")
			}
			if m.content != "" {
				b.WriteString(m.role + ":" + m.content + seps[i%2] + "\n")
			} else {
				b.WriteString(m.role + ":")
			}
		}

	case Dolly:
		b.WriteString(systemPrompt)
		for i, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + ":\n" + m.content + seps[i%2])
				if i%2 == 1 {
					b.WriteString("\n\n")
				}
			} else {
				b.WriteString(m.role + ":\n")
			}
		}

	case Phoenix:
		b.WriteString(systemPrompt)
		for _, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + ": <s>" + m.content + "</s>")
			} else {
				b.WriteString(m.role + ": <s>")
			}
		}

	case Robin:
		b.WriteString(systemPrompt + t.Sep)
		for _, m := range turns {
			if m.content != "" {
				b.WriteString(m.role + ":\n" + m.content + t.Sep)
			} else {
				b.WriteString(m.role + ":\n")
			}
		}

	default:
		return "", fmt.Errorf("invalid separator style: %s", t.Style)
	}

	return b.String(), nil
}

// GenerationPrompt formats messages followed by an empty assistant turn so
// the prompt ends where the model should start writing
func (t *Template) GenerationPrompt(messages []models.Message) (string, error) {
	withReply := make([]models.Message, 0, len(messages)+1)
	withReply = append(withReply, messages...)
	withReply = append(withReply, models.Message{Role: models.RoleAssistant})
	return t.Format(withReply)
}

// StopSequences returns the stop strings to send with a completion request
func (t *Template) StopSequences() []string {
	if t.StopStr == "" {
		return nil
	}
	return []string{t.StopStr}
}

// Clone returns an independent copy of the template
func (t *Template) Clone() *Template {
	c := *t
	if t.StopTokenIDs != nil {
		c.StopTokenIDs = append([]int(nil), t.StopTokenIDs...)
	}
	return &c
}

// Config returns the template name and raw system prompt
func (t *Template) Config() map[string]string {
	return map[string]string{
		"template_name": t.Name,
		"system":        t.System,
	}
}

// prepare splits off the system message and maps roles to template tags
func (t *Template) prepare(messages []models.Message) (string, []turn) {
	systemMessage := t.DefaultSystemMessage
	if len(messages) > 0 && messages[0].Role == models.RoleSystem {
		systemMessage = messages[0].Content
		messages = messages[1:]
	}

	systemPrompt := t.System
	if strings.Contains(systemPrompt, SystemPlaceholder) {
		if systemMessage == "" && t.Style == Llama2 {
			systemPrompt = ""
		} else {
			systemPrompt = strings.ReplaceAll(systemPrompt, SystemPlaceholder, systemMessage)
		}
	}

	turns := make([]turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, turn{role: t.roleTag(m.Role), content: m.Content})
	}
	return systemPrompt, turns
}

func (t *Template) roleTag(role models.Role) string {
	switch role {
	case models.RoleUser:
		if t.Roles[0] != "" {
			return t.Roles[0]
		}
	case models.RoleAssistant:
		if t.Roles[1] != "" {
			return t.Roles[1]
		}
	}
	return string(role)
}
