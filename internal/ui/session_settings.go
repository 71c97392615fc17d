package ui

import (
	"context"
	"errors"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ashprao/chatbox/internal/i18n"
	"github.com/ashprao/chatbox/internal/llm"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/validation"
	"github.com/ashprao/chatbox/pkg/logger"
)

const listModelsTimeout = 15 * time.Second

// SessionSettingsDialog edits the model setting of one session
type SessionSettingsDialog struct {
	logger     *logger.Logger
	translator *i18n.Translator
	provider   llm.Provider
	window     fyne.Window
	onSave     func(models.ModelSetting) error

	session models.Session
	form    *modelSettingForm
	status  *widget.Label
	cancel  context.CancelFunc
}

// NewSessionSettingsDialog creates a dialog for session. onSave receives the
// edited setting when the user saves.
func NewSessionSettingsDialog(window fyne.Window, session models.Session, provider llm.Provider, translator *i18n.Translator, logger *logger.Logger, onSave func(models.ModelSetting) error) *SessionSettingsDialog {
	factory := NewComponentFactory(translator)
	return &SessionSettingsDialog{
		logger:     logger.WithComponent("session-settings-dialog").WithFields(map[string]interface{}{"session_id": session.ID}),
		translator: translator,
		provider:   provider,
		window:     window,
		onSave:     onSave,
		session:    session,
		form:       newModelSettingForm(factory, translator, session.Model, []string{session.Model.Name}),
		status:     widget.NewLabel(""),
	}
}

// Show displays the dialog and starts loading the models offered by the
// session's API host
func (sd *SessionSettingsDialog) Show() {
	sd.status.Wrapping = fyne.TextWrapWord
	sd.status.Hide()

	content := container.NewVScroll(container.NewVBox(
		sd.form.Credentials(),
		sd.form.Proxy(nil),
		sd.status,
		sd.form.ModelAndTokens(sd.resetModelSetting),
	))
	content.SetMinSize(fyne.NewSize(520, 520))

	d := dialog.NewCustomConfirm(
		sd.translator.T("per_chat_settings")+": "+sd.session.Name,
		sd.translator.T("save"),
		sd.translator.T("cancel"),
		content,
		func(confirmed bool) {
			if sd.cancel != nil {
				sd.cancel()
			}
			if !confirmed {
				return
			}
			if err := sd.save(); err != nil {
				dialog.ShowError(err, sd.window)
			}
		},
		sd.window,
	)
	d.Show()

	ctx, cancel := context.WithTimeout(context.Background(), listModelsTimeout)
	sd.cancel = cancel
	go sd.loadModels(ctx, sd.form.Setting())
}

func (sd *SessionSettingsDialog) loadModels(ctx context.Context, setting models.ModelSetting) {
	sd.logger.Info("Loading models for session settings", "api_host", setting.APIHost)
	names, err := sd.provider.ListModels(ctx, setting)
	if err != nil || len(names) == 0 {
		if err != nil && !errors.Is(err, context.Canceled) {
			sd.logger.Warn("Failed to list models, keeping current model", "error", err)
		}
		sd.status.SetText(sd.translator.T("models_unavailable"))
		sd.status.Show()
		return
	}

	sd.form.SetModels(names)
	sd.logger.Info("Successfully loaded models", "count", len(names), "selected", sd.form.Setting().Name)
}

func (sd *SessionSettingsDialog) save() error {
	setting := sd.form.Setting()
	if validation.HasErrors(validation.CheckAPIHost(setting.APIHost)) {
		return errors.New(sd.translator.T("protocol_error"))
	}
	if err := sd.onSave(setting); err != nil {
		sd.logger.Error("Failed to save session settings", "error", err)
		return err
	}
	sd.logger.Info("Session settings saved", "model", setting.Name)
	return nil
}

// resetModelSetting restores the defaults but keeps the session's
// credentials and host
func (sd *SessionSettingsDialog) resetModelSetting() {
	current := sd.form.Setting()
	defaults := models.DefaultModelSetting()
	defaults.APIKey = current.APIKey
	defaults.APIHost = current.APIHost
	defaults.SystemMessage = current.SystemMessage
	sd.form.Reset(defaults)
}
