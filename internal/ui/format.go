package ui

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/i18n"
	"github.com/ashprao/chatbox/internal/llm"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/prompt"
	"github.com/ashprao/chatbox/internal/tokens"
)

var defaultNamePattern = regexp.MustCompile(`^` + regexp.QuoteMeta(constants.DefaultSessionName) + `( \(\d+\))?$`)

// isDefaultName reports whether name was generated for a new session and
// never changed by the user
func isDefaultName(name string) bool {
	return defaultNamePattern.MatchString(name)
}

// roleTitle is the card title for a message
func roleTitle(t *i18n.Translator, role models.Role) string {
	switch role {
	case models.RoleUser:
		return t.T("role_user")
	case models.RoleAssistant:
		return t.T("role_assistant")
	case models.RoleSystem:
		return t.T("role_system")
	}
	return string(role)
}

// messageFooter builds the counters shown under a message
func messageFooter(t *i18n.Translator, settings models.Settings, msg models.Message) string {
	var parts []string
	if settings.ShowWordCount && !msg.Generating {
		parts = append(parts, t.T("word_count", map[string]any{"Count": tokens.CountWords(msg.Content)}))
	}
	if settings.ShowTokenCount && !msg.Generating {
		parts = append(parts, t.T("token_count", map[string]any{"Count": tokens.Estimate(msg.Content)}))
	}
	if settings.ShowModelName && msg.Role == models.RoleAssistant && msg.Model != "" {
		parts = append(parts, msg.Model)
	}
	return strings.Join(parts, "  ")
}

// errorMarkdown renders a failed request as a fenced block appended to the
// reply
func errorMarkdown(t *i18n.Translator, err error, setting models.ModelSetting) string {
	var b strings.Builder
	b.WriteString("\n\n```\n")
	b.WriteString(err.Error())
	b.WriteString("\n```\n")

	var httpErr *llm.HTTPError
	if errors.As(err, &httpErr) && setting.APIHost != constants.DefaultAPIHost {
		b.WriteString("\n")
		b.WriteString(t.T("proxy_warning", map[string]any{"APIHost": setting.APIHost}))
		b.WriteString("\n")
	}
	return b.String()
}

// replyContent joins the streamed text with the error that ended it
func replyContent(t *i18n.Translator, text string, err error, setting models.ModelSetting) string {
	if err == nil {
		return text
	}
	var streamErr *llm.StreamError
	if errors.As(err, &streamErr) {
		text = streamErr.Partial
	}
	return text + errorMarkdown(t, err, setting)
}

// exportMarkdown renders a session as a markdown document
func exportMarkdown(t *i18n.Translator, session models.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", session.Name)
	for _, msg := range session.Messages {
		fmt.Fprintf(&b, "**%s**", roleTitle(t, msg.Role))
		if msg.Role == models.RoleAssistant && msg.Model != "" {
			fmt.Fprintf(&b, " (%s)", msg.Model)
		}
		b.WriteString(":\n\n")
		b.WriteString(msg.Content)
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

// exportFileName derives a file name from a session name
func exportFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) || r < 0x20 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = constants.DefaultSessionName
	}
	return name + ".md"
}

// withModel returns setting switched to model. Models with a registered
// completion template are sent formatted prompts.
func withModel(setting models.ModelSetting, model string) models.ModelSetting {
	setting.Name = model
	tmpl, ok := prompt.Lookup(model)
	setting.NeedFormatPrompt = ok && !tmpl.Chat
	return setting
}

// pickModel keeps current when it is offered, otherwise selects the first
// offered model. An empty offer keeps current.
func pickModel(current string, offered []string) string {
	if len(offered) == 0 {
		return current
	}
	for _, m := range offered {
		if m == current {
			return current
		}
	}
	return offered[0]
}

// themeModes lists the theme choices in menu order
var themeModes = []models.ThemeMode{models.ThemeLight, models.ThemeDark, models.ThemeSystem}

func themeLabel(t *i18n.Translator, mode models.ThemeMode) string {
	return t.T("theme_" + string(mode))
}

func themeByLabel(t *i18n.Translator, label string) models.ThemeMode {
	for _, mode := range themeModes {
		if themeLabel(t, mode) == label {
			return mode
		}
	}
	return models.ThemeSystem
}

const previewLength = 80

// messagePreview shortens content to one line for confirmation dialogs
func messagePreview(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i]) + "..."
	}
	if runes := []rune(line); len(runes) > previewLength {
		line = string(runes[:previewLength]) + "..."
	}
	return line
}
