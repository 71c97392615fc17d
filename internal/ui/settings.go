package ui

import (
	"errors"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/i18n"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/validation"
	"github.com/ashprao/chatbox/pkg/logger"
)

// AppInterface is the part of the application the dialogs call back into
type AppInterface interface {
	ApplySettings(settings models.Settings)
	OpenURL(rawURL string) error
}

// SettingsDialog edits the global settings
type SettingsDialog struct {
	logger     *logger.Logger
	translator *i18n.Translator
	factory    *ComponentFactory
	app        AppInterface
	window     fyne.Window
	onSave     func(models.Settings) error

	original models.Settings
	edited   models.Settings
	form     *modelSettingForm

	languageSelect *widget.Select
	themeRadio     *widget.RadioGroup
	fontSizeSelect *widget.Select
	showWordCount  *widget.Check
	showTokenCount *widget.Check
	showModelName  *widget.Check
}

// NewSettingsDialog creates a settings dialog for settings. onSave receives
// the edited settings when the user saves.
func NewSettingsDialog(window fyne.Window, settings models.Settings, translator *i18n.Translator, logger *logger.Logger, app AppInterface, onSave func(models.Settings) error) *SettingsDialog {
	factory := NewComponentFactory(translator)
	sd := &SettingsDialog{
		logger:     logger.WithComponent("settings-dialog"),
		translator: translator,
		factory:    factory,
		app:        app,
		window:     window,
		onSave:     onSave,
		original:   settings,
		edited:     settings,
		form:       newModelSettingForm(factory, translator, settings.ModelSetting, models.GPTModels),
	}

	languageNames := make([]string, 0, len(i18n.Languages))
	for _, l := range i18n.Languages {
		languageNames = append(languageNames, l.DisplayName)
	}
	sd.languageSelect = widget.NewSelect(languageNames, func(name string) {
		if l, ok := i18n.LanguageByDisplayName(name); ok {
			sd.edited.Language = l.Code
		}
	})
	if l, ok := i18n.LanguageByCode(settings.Language); ok {
		sd.languageSelect.SetSelected(l.DisplayName)
	}

	themeLabels := make([]string, 0, len(themeModes))
	for _, mode := range themeModes {
		themeLabels = append(themeLabels, themeLabel(translator, mode))
	}
	sd.themeRadio = widget.NewRadioGroup(themeLabels, nil)
	sd.themeRadio.Horizontal = true
	sd.themeRadio.SetSelected(themeLabel(translator, settings.Theme))
	sd.themeRadio.OnChanged = func(label string) {
		sd.edited.Theme = themeByLabel(translator, label)
		sd.preview()
	}

	sizes := make([]string, 0, constants.MaxFontSize-constants.MinFontSize+1)
	for size := constants.MinFontSize; size <= constants.MaxFontSize; size++ {
		sizes = append(sizes, strconv.Itoa(size))
	}
	sd.fontSizeSelect = widget.NewSelect(sizes, nil)
	sd.fontSizeSelect.SetSelected(strconv.Itoa(settings.FontSize))
	sd.fontSizeSelect.OnChanged = func(s string) {
		size, err := strconv.Atoi(s)
		if err != nil || validation.ValidateFontSize(size) != nil {
			return
		}
		sd.edited.FontSize = size
		sd.preview()
	}

	sd.showWordCount = widget.NewCheck(translator.T("show_word_count"), func(b bool) { sd.edited.ShowWordCount = b })
	sd.showWordCount.SetChecked(settings.ShowWordCount)
	sd.showTokenCount = widget.NewCheck(translator.T("show_token_count"), func(b bool) { sd.edited.ShowTokenCount = b })
	sd.showTokenCount.SetChecked(settings.ShowTokenCount)
	sd.showModelName = widget.NewCheck(translator.T("show_model_name"), func(b bool) { sd.edited.ShowModelName = b })
	sd.showModelName.SetChecked(settings.ShowModelName)

	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	display := widget.NewCard(sd.translator.T("settings"), "", container.NewVBox(
		widget.NewForm(
			widget.NewFormItem(sd.translator.T("language"), sd.languageSelect),
			widget.NewFormItem(sd.translator.T("theme"), sd.themeRadio),
			widget.NewFormItem(sd.translator.T("font_size"), sd.fontSizeSelect),
		),
		sd.showWordCount,
		sd.showTokenCount,
	))
	proxy := widget.NewCard(sd.translator.T("proxy"), "", sd.form.Proxy(sd.resetProxy))
	modelAndTokens := sd.form.ModelAndTokens(sd.resetModelSetting, sd.showModelName)

	content := container.NewVScroll(container.NewVBox(
		sd.form.Credentials(),
		display,
		proxy,
		modelAndTokens,
	))
	content.SetMinSize(fyne.NewSize(520, 560))

	dialog.ShowCustomConfirm(
		sd.translator.T("settings"),
		sd.translator.T("save"),
		sd.translator.T("cancel"),
		content,
		func(confirmed bool) {
			if !confirmed {
				sd.logger.Debug("Settings discarded")
				sd.app.ApplySettings(sd.original)
				return
			}
			if err := sd.save(); err != nil {
				sd.app.ApplySettings(sd.original)
				dialog.ShowError(err, sd.window)
			}
		},
		sd.window,
	)
}

// Settings returns the settings as currently edited
func (sd *SettingsDialog) Settings() models.Settings {
	settings := sd.edited
	settings.ModelSetting = sd.form.Setting()
	return settings
}

func (sd *SettingsDialog) save() error {
	settings := sd.Settings()
	if validation.HasErrors(validation.CheckAPIHost(settings.ModelSetting.APIHost)) {
		return errors.New(sd.translator.T("protocol_error"))
	}
	if err := sd.onSave(settings); err != nil {
		sd.logger.Error("Failed to save settings", "error", err)
		return err
	}
	sd.logger.Info("Settings saved", "language", settings.Language, "theme", settings.Theme, "model", settings.ModelSetting.Name)
	return nil
}

// preview applies the edited theme and font size without saving
func (sd *SettingsDialog) preview() {
	preview := sd.original
	preview.Theme = sd.edited.Theme
	preview.FontSize = sd.edited.FontSize
	sd.app.ApplySettings(preview)
}

func (sd *SettingsDialog) resetProxy() {
	sd.form.apiHost.SetText(constants.DefaultAPIHost)
}

func (sd *SettingsDialog) resetModelSetting() {
	sd.form.Reset(models.DefaultModelSetting())
	sd.showModelName.SetChecked(models.DefaultSettings().ShowModelName)
}
