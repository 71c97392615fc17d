package models

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ashprao/chatbox/internal/constants"
)

// GPTModels lists the chat models offered in the global settings dialog
var GPTModels = []string{
	"gpt-3.5-turbo",
	"gpt-3.5-turbo-0301",
	"gpt-4",
	"gpt-4-0314",
	"gpt-4-32k",
	"gpt-4-32k-0314",
}

// IsGPTModel reports whether name is one of the OpenAI chat models
func IsGPTModel(name string) bool {
	return slices.Contains(GPTModels, name)
}

// ThemeMode selects the color variant of the UI
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// ModelSetting holds everything needed to talk to one model on one API host.
// MaxContextSize and MaxTokens are decimal strings or "inf".
type ModelSetting struct {
	Name             string  `json:"name"`
	APIHost          string  `json:"apiHost"`
	APIKey           string  `json:"apiKey,omitempty"`
	MaxContextSize   string  `json:"maxContextSize"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        string  `json:"maxTokens"`
	NeedFormatPrompt bool    `json:"needFormatPrompt"`
	SystemMessage    string  `json:"systemMessage"`
}

// Settings holds the global user preferences
type Settings struct {
	ShowWordCount  bool         `json:"showWordCount"`
	ShowTokenCount bool         `json:"showTokenCount"`
	ShowModelName  bool         `json:"showModelName"`
	Theme          ThemeMode    `json:"theme"`
	Language       string       `json:"language"`
	FontSize       int          `json:"fontSize"`
	ModelSetting   ModelSetting `json:"modelSetting"`
}

// Config is the per-install identity
type Config struct {
	UUID string `json:"uuid"`
}

// DefaultModelSetting returns the model setting used for new installs
func DefaultModelSetting() ModelSetting {
	return ModelSetting{
		Name:           constants.DefaultModelName,
		APIHost:        constants.DefaultAPIHost,
		MaxContextSize: constants.DefaultMaxContextSize,
		Temperature:    constants.DefaultTemperature,
		MaxTokens:      constants.DefaultMaxTokens,
		SystemMessage:  constants.DefaultSystemMessage,
	}
}

// DefaultSettings returns the settings used for new installs
func DefaultSettings() Settings {
	return Settings{
		ShowWordCount:  false,
		ShowTokenCount: false,
		ShowModelName:  false,
		Theme:          ThemeSystem,
		Language:       constants.DefaultLanguage,
		FontSize:       constants.DefaultFontSize,
		ModelSetting:   DefaultModelSetting(),
	}
}

// IsZero reports whether the setting was never filled in. Sessions stored by
// older versions have no model setting at all.
func (m ModelSetting) IsZero() bool {
	return m == ModelSetting{}
}

// ContextLimit returns the context token budget. unlimited is true for "inf"
// and for values that are not numbers.
func (m ModelSetting) ContextLimit() (limit int, unlimited bool) {
	return parseTokenLimit(m.MaxContextSize)
}

// ReplyLimit returns the max_tokens value for a reply
func (m ModelSetting) ReplyLimit() (limit int, unlimited bool) {
	return parseTokenLimit(m.MaxTokens)
}

// parseTokenLimit accepts whole or fractional numbers and truncates them.
// Anything else is unlimited.
func parseTokenLimit(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == constants.TokenLimitInf {
		return 0, true
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 {
			return 0, true
		}
		return n, false
	}
	num, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) || num < 0 || num > math.MaxInt32 {
		return 0, true
	}
	return int(num), false
}
