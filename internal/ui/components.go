package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/i18n"
	"github.com/ashprao/chatbox/internal/validation"
)

// ComponentFactory provides reusable UI components
type ComponentFactory struct {
	translator *i18n.Translator
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(translator *i18n.Translator) *ComponentFactory {
	return &ComponentFactory{translator: translator}
}

// CreateIconButton creates a button with an icon and callback
func (cf *ComponentFactory) CreateIconButton(config ButtonConfig, callback func()) *widget.Button {
	return widget.NewButtonWithIcon(cf.translator.T(config.LabelID), config.Icon, callback)
}

// CreateStatusBar creates a status bar with label and optional cancel button
func (cf *ComponentFactory) CreateStatusBar(statusLabel *widget.Label, cancelButton *widget.Button) *fyne.Container {
	if cancelButton != nil {
		return container.NewBorder(nil, nil, nil, cancelButton, statusLabel)
	}
	return container.NewBorder(nil, nil, nil, nil, statusLabel)
}

// CreateButtonGroup creates a vertical group of buttons
func (cf *ComponentFactory) CreateButtonGroup(buttons ...*widget.Button) *fyne.Container {
	buttonObjs := make([]fyne.CanvasObject, len(buttons))
	for i, btn := range buttons {
		buttonObjs[i] = btn
	}
	return container.NewVBox(buttonObjs...)
}

// CreateInputArea creates an input area with text field and buttons
func (cf *ComponentFactory) CreateInputArea(inputField *widget.Entry, buttons *fyne.Container) *fyne.Container {
	return container.NewBorder(nil, nil, nil, buttons, inputField)
}

// CreateMessageCard creates a message card for chat display. The returned
// RichText is updated in place while a reply streams in.
func (cf *ComponentFactory) CreateMessageCard(title, footer, content string, actions ...fyne.CanvasObject) (*widget.Card, *widget.RichText) {
	richText := widget.NewRichTextFromMarkdown(content)
	richText.Wrapping = fyne.TextWrapWord

	body := fyne.CanvasObject(richText)
	if footer != "" || len(actions) > 0 {
		footerLabel := widget.NewLabel(footer)
		footerLabel.TextStyle.Italic = true
		body = container.NewBorder(nil, container.NewHBox(append([]fyne.CanvasObject{footerLabel}, actions...)...), nil, nil, richText)
	}
	return widget.NewCard(title, "", body), richText
}

// CreateLabelWithStyle creates a label with specified text style
func (cf *ComponentFactory) CreateLabelWithStyle(text string, bold, italic bool) *widget.Label {
	label := widget.NewLabel(text)
	label.TextStyle.Bold = bold
	label.TextStyle.Italic = italic
	return label
}

// CreateWarning creates a wrapped label for alerts inside dialogs
func (cf *ComponentFactory) CreateWarning(text string) *widget.Label {
	label := widget.NewLabel(text)
	label.Wrapping = fyne.TextWrapWord
	label.Importance = widget.WarningImportance
	return label
}

// CreateTemperatureField creates the temperature slider with its value label
func (cf *ComponentFactory) CreateTemperatureField(value float64, onChanged func(float64)) (*widget.Slider, fyne.CanvasObject) {
	valueLabel := widget.NewLabel(fmt.Sprintf("%.1f", value))
	slider := widget.NewSlider(0, 1)
	slider.Step = 0.1
	slider.Value = value
	slider.OnChanged = func(v float64) {
		valueLabel.SetText(fmt.Sprintf("%.1f", v))
		onChanged(v)
	}
	scale := container.NewBorder(nil, nil,
		widget.NewLabel(cf.translator.T("meticulous")),
		widget.NewLabel(cf.translator.T("creative")),
	)
	return slider, container.NewVBox(container.NewBorder(nil, nil, nil, valueLabel, slider), scale)
}

// TokenLimitField is a slider and a text entry editing the same token limit
type TokenLimitField struct {
	Slider *widget.Slider
	Entry  *widget.Entry

	value     string
	syncing   bool
	onChanged func(string)
}

// CreateTokenLimitField creates a token limit editor. The slider maximum
// means "inf"; the entry accepts numbers or "inf" and ignores anything else.
func (cf *ComponentFactory) CreateTokenLimitField(value string, onChanged func(string)) *TokenLimitField {
	f := &TokenLimitField{
		Slider:    widget.NewSlider(constants.TokenLimitMin, constants.TokenLimitMax),
		Entry:     widget.NewEntry(),
		onChanged: onChanged,
	}
	f.Slider.Step = constants.TokenLimitStep
	f.Entry.Validator = func(s string) error {
		if _, err := validation.NormalizeTokenLimit(s); err != nil {
			return errors.New(cf.translator.T("invalid_token_limit"))
		}
		return nil
	}
	f.SetValue(value)

	f.Slider.OnChanged = func(v float64) {
		if f.syncing {
			return
		}
		f.update(validation.SliderToTokenLimit(v), true)
	}
	f.Entry.OnChanged = func(s string) {
		if f.syncing {
			return
		}
		limit, err := validation.NormalizeTokenLimit(s)
		if err != nil {
			return
		}
		f.update(limit, false)
	}
	return f
}

// Value returns the current limit
func (f *TokenLimitField) Value() string {
	return f.value
}

// SetValue moves both widgets to value without reporting a change
func (f *TokenLimitField) SetValue(value string) {
	f.syncing = true
	defer func() { f.syncing = false }()
	f.value = value
	f.Slider.SetValue(validation.TokenLimitToSlider(value))
	f.Entry.SetText(value)
}

func (f *TokenLimitField) update(value string, fromSlider bool) {
	f.syncing = true
	f.value = value
	if fromSlider {
		f.Entry.SetText(value)
	} else {
		f.Slider.SetValue(validation.TokenLimitToSlider(value))
	}
	f.syncing = false
	if f.onChanged != nil {
		f.onChanged(value)
	}
}

// Container lays out the field
func (f *TokenLimitField) Container() fyne.CanvasObject {
	return container.NewBorder(nil, nil, nil, container.NewGridWrap(fyne.NewSize(90, f.Entry.MinSize().Height), f.Entry), f.Slider)
}

// StandardButtons provides standard button configurations
type StandardButtons struct {
	Send     ButtonConfig
	Stop     ButtonConfig
	Clear    ButtonConfig
	Export   ButtonConfig
	Settings ButtonConfig
	About    ButtonConfig
	NewChat  ButtonConfig
}

// ButtonConfig holds button configuration
type ButtonConfig struct {
	LabelID string
	Icon    fyne.Resource
}

// GetStandardButtons returns standard button configurations
func (cf *ComponentFactory) GetStandardButtons() StandardButtons {
	return StandardButtons{
		Send:     ButtonConfig{LabelID: "send", Icon: theme.MailSendIcon()},
		Stop:     ButtonConfig{LabelID: "stop_generating", Icon: theme.MediaStopIcon()},
		Clear:    ButtonConfig{LabelID: "clear_conversation", Icon: theme.DeleteIcon()},
		Export:   ButtonConfig{LabelID: "export", Icon: theme.DocumentSaveIcon()},
		Settings: ButtonConfig{LabelID: "settings", Icon: theme.SettingsIcon()},
		About:    ButtonConfig{LabelID: "about", Icon: theme.InfoIcon()},
		NewChat:  ButtonConfig{LabelID: "new_chat", Icon: theme.ContentAddIcon()},
	}
}
