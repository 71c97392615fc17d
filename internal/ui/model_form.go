package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ashprao/chatbox/internal/i18n"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/validation"
)

// modelSettingForm edits one ModelSetting. The global settings dialog and the
// per-session dialog both use it.
type modelSettingForm struct {
	factory    *ComponentFactory
	translator *i18n.Translator
	setting    models.ModelSetting

	systemPrompt *widget.Entry
	apiKey       *widget.Entry
	apiHost      *widget.Entry
	hostAlerts   *widget.Label
	modelSelect  *widget.Select
	temperature  *widget.Slider
	tempBox      fyne.CanvasObject
	contextLimit *TokenLimitField
	replyLimit   *TokenLimitField
}

func newModelSettingForm(factory *ComponentFactory, translator *i18n.Translator, setting models.ModelSetting, offered []string) *modelSettingForm {
	f := &modelSettingForm{
		factory:      factory,
		translator:   translator,
		setting:      setting,
		systemPrompt: widget.NewMultiLineEntry(),
		apiKey:       widget.NewPasswordEntry(),
		apiHost:      widget.NewEntry(),
		hostAlerts:   factory.CreateWarning(""),
	}
	f.systemPrompt.Wrapping = fyne.TextWrapWord
	f.systemPrompt.SetMinRowsVisible(3)
	f.systemPrompt.OnChanged = func(s string) { f.setting.SystemMessage = s }
	f.apiKey.OnChanged = func(s string) { f.setting.APIKey = strings.TrimSpace(s) }
	f.apiHost.OnChanged = func(s string) {
		f.setting.APIHost = strings.TrimSpace(s)
		f.refreshHostAlerts()
	}

	f.modelSelect = widget.NewSelect(nil, func(name string) {
		f.setting = withModel(f.setting, name)
	})
	f.modelSelect.PlaceHolder = f.translator.T("no_models")
	f.temperature, f.tempBox = factory.CreateTemperatureField(setting.Temperature, func(v float64) {
		f.setting.Temperature = v
	})
	f.contextLimit = factory.CreateTokenLimitField(setting.MaxContextSize, func(v string) {
		f.setting.MaxContextSize = v
	})
	f.replyLimit = factory.CreateTokenLimitField(setting.MaxTokens, func(v string) {
		f.setting.MaxTokens = v
	})

	f.modelSelect.Options = append([]string(nil), offered...)
	f.Reset(setting)
	return f
}

// SetModels replaces the model options. When the current model is not
// offered the first option is selected.
func (f *modelSettingForm) SetModels(offered []string) {
	options := append([]string(nil), offered...)
	f.modelSelect.Options = options
	f.modelSelect.Refresh()

	picked := pickModel(f.setting.Name, options)
	if picked != f.setting.Name {
		f.modelSelect.SetSelected(picked)
	}
}

// Reset moves every field to setting
func (f *modelSettingForm) Reset(setting models.ModelSetting) {
	f.setting = setting
	f.systemPrompt.SetText(setting.SystemMessage)
	f.apiKey.SetText(setting.APIKey)
	f.apiHost.SetText(setting.APIHost)
	f.modelSelect.SetSelected(setting.Name)
	f.temperature.SetValue(setting.Temperature)
	f.contextLimit.SetValue(setting.MaxContextSize)
	f.replyLimit.SetValue(setting.MaxTokens)
	// Selecting the model may have recomputed fields; keep the stored ones
	f.setting = setting
	f.refreshHostAlerts()
}

// Setting returns the edited setting
func (f *modelSettingForm) Setting() models.ModelSetting {
	return f.setting
}

// HostIssues checks the edited API host
func (f *modelSettingForm) HostIssues() []validation.HostIssue {
	return validation.CheckAPIHost(f.setting.APIHost)
}

func (f *modelSettingForm) refreshHostAlerts() {
	issues := f.HostIssues()
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, f.translator.T(issue.Code, map[string]any{"APIHost": f.setting.APIHost}))
	}
	f.hostAlerts.SetText(strings.Join(lines, "\n"))
	if len(lines) == 0 {
		f.hostAlerts.Hide()
	} else {
		f.hostAlerts.Show()
	}
}

// Credentials lays out the system prompt and the API key
func (f *modelSettingForm) Credentials() fyne.CanvasObject {
	return widget.NewForm(
		widget.NewFormItem(f.translator.T("system_prompt"), f.systemPrompt),
		widget.NewFormItem(f.translator.T("openai_api_key"), f.apiKey),
	)
}

// Proxy lays out the API host with its alerts. onReset is shown as a button
// when not nil.
func (f *modelSettingForm) Proxy(onReset func()) fyne.CanvasObject {
	row := fyne.CanvasObject(f.apiHost)
	if onReset != nil {
		row = container.NewBorder(nil, nil, nil, widget.NewButton(f.translator.T("reset"), onReset), f.apiHost)
	}
	return container.NewVBox(
		widget.NewForm(widget.NewFormItem(f.translator.T("api_host"), row)),
		f.hostAlerts,
	)
}

// ModelAndTokens lays out the model and token section. extra is appended
// below the sliders.
func (f *modelSettingForm) ModelAndTokens(onReset func(), extra ...fyne.CanvasObject) fyne.CanvasObject {
	warning := f.factory.CreateWarning(f.translator.T("settings_modify_warning") + " " + f.translator.T("please_make_sure"))
	objects := []fyne.CanvasObject{
		warning,
		widget.NewButton(f.translator.T("reset_to_defaults"), onReset),
		widget.NewForm(
			widget.NewFormItem(f.translator.T("model"), f.modelSelect),
			widget.NewFormItem(f.translator.T("temperature"), f.tempBox),
			widget.NewFormItem(f.translator.T("max_tokens_in_context"), f.contextLimit.Container()),
			widget.NewFormItem(f.translator.T("max_tokens_per_reply"), f.replyLimit.Container()),
		),
	}
	objects = append(objects, extra...)
	return widget.NewCard(f.translator.T("model_and_token"), "", container.NewVBox(objects...))
}
