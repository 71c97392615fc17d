// Package i18n translates UI strings. Catalogs for every supported language
// are embedded and loaded into a go-i18n bundle.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/ashprao/chatbox/internal/constants"
)

//go:embed locales/*.json
var localeFS embed.FS

// Language is a selectable UI language
type Language struct {
	Code        string
	DisplayName string
	tag         language.Tag
	file        string
}

// Languages lists the UI languages in menu order. Codes are the values
// stored in settings.
var Languages = []Language{
	{Code: "en", DisplayName: "English", tag: language.English, file: "locales/en.json"},
	{Code: "zh-Hans", DisplayName: "简体中文", tag: language.SimplifiedChinese, file: "locales/zh-Hans.json"},
	{Code: "zh-Hant", DisplayName: "繁體中文", tag: language.TraditionalChinese, file: "locales/zh-Hant.json"},
	{Code: "jp", DisplayName: "日本語", tag: language.Japanese, file: "locales/ja.json"},
}

// LanguageByCode finds a language by its settings code
func LanguageByCode(code string) (Language, bool) {
	for _, l := range Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// LanguageByDisplayName finds a language by the name shown in menus
func LanguageByDisplayName(name string) (Language, bool) {
	for _, l := range Languages {
		if l.DisplayName == name {
			return l, true
		}
	}
	return Language{}, false
}

// Translator looks up messages in the current language. It is safe for
// concurrent use.
type Translator struct {
	bundle *i18n.Bundle

	mu        sync.RWMutex
	code      string
	localizer *i18n.Localizer
}

// NewTranslator loads the embedded catalogs and selects code
func NewTranslator(code string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, l := range Languages {
		data, err := localeFS.ReadFile(l.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", l.file, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, l.tag.String()+".json"); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", l.file, err)
		}
	}

	t := &Translator{bundle: bundle}
	t.SetLanguage(code)
	return t, nil
}

// SetLanguage switches the current language. Unknown codes select English.
func (t *Translator) SetLanguage(code string) {
	l, ok := LanguageByCode(code)
	if !ok {
		l, _ = LanguageByCode(constants.DefaultLanguage)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.code = l.Code
	t.localizer = i18n.NewLocalizer(t.bundle, l.tag.String(), language.English.String())
}

// Language returns the current language code
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.code
}

// T returns the message for id, filled from data when given. Messages
// missing from the current catalog come from English; unknown ids are
// returned as is.
func (t *Translator) T(id string, data ...map[string]any) string {
	t.mu.RLock()
	localizer := t.localizer
	t.mu.RUnlock()

	cfg := &i18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	msg, err := localizer.Localize(cfg)
	if err != nil || msg == "" {
		return id
	}
	return msg
}
