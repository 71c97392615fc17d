package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ashprao/chatbox/internal/i18n"
	"github.com/ashprao/chatbox/internal/llm"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/state"
	"github.com/ashprao/chatbox/pkg/logger"
)

const namingTimeout = 30 * time.Second

// ChatUIConfig holds the window-level options of the chat UI
type ChatUIConfig struct {
	Version          string
	AutoNameSessions bool
	WindowWidth      int
	SidebarWidth     int
}

// ChatUI handles the main chat interface
type ChatUI struct {
	// Dependencies
	provider   llm.Provider
	store      *state.Store
	sessions   *state.Sessions
	translator *i18n.Translator
	logger     *logger.Logger
	app        AppInterface
	factory    *ComponentFactory

	// UI components
	window          fyne.Window
	split           *container.Split
	sessionList     *widget.List
	chatContainer   *fyne.Container
	scrollContainer *container.Scroll
	inputField      *widget.Entry
	statusLabel     *widget.Label
	sendButton      *widget.Button
	stopButton      *widget.Button
	clearButton     *widget.Button
	exportButton    *widget.Button
	starButton      *widget.Button

	// State
	mu              sync.Mutex
	settings        models.Settings
	config          ChatUIConfig
	sessionItems    sessionItems
	liveText        map[string]*widget.RichText
	cancelFunc      context.CancelFunc
	queryInProgress bool
	generatingID    string
}

// NewChatUI creates a new chat UI instance
func NewChatUI(window fyne.Window, provider llm.Provider, store *state.Store, sessions *state.Sessions, translator *i18n.Translator, logger *logger.Logger, app AppInterface, settings models.Settings, config ChatUIConfig) *ChatUI {
	ui := &ChatUI{
		provider:   provider,
		store:      store,
		sessions:   sessions,
		translator: translator,
		logger:     logger.WithComponent("chat-ui"),
		app:        app,
		factory:    NewComponentFactory(translator),
		window:     window,
		settings:   settings,
		config:     config,
		liveText:   make(map[string]*widget.RichText),
	}

	ui.logger.Info("Chat UI created")
	return ui
}

// Initialize sets up the UI components and shows the current session
func (ui *ChatUI) Initialize() error {
	ui.logger.Info("Initializing chat UI")

	ui.setupUI()
	ui.refreshSessionList()
	ui.renderMessages()

	ui.logger.Info("Chat UI initialized successfully", "sessions", ui.sessionItems.Len())
	return nil
}

// setupUI builds all components and sets the window content. It is called
// again when the language changes.
func (ui *ChatUI) setupUI() {
	ui.factory = NewComponentFactory(ui.translator)
	buttons := ui.factory.GetStandardButtons()

	ui.chatContainer = container.NewVBox()
	ui.scrollContainer = container.NewScroll(ui.chatContainer)
	ui.scrollContainer.SetMinSize(fyne.NewSize(400, 300))

	ui.inputField = widget.NewMultiLineEntry()
	ui.inputField.SetPlaceHolder(ui.translator.T("type_message"))
	ui.inputField.Wrapping = fyne.TextWrapWord
	ui.inputField.SetMinRowsVisible(3)
	ui.inputField.OnChanged = func(string) { ui.updateSendButtonState() }

	ui.sendButton = ui.factory.CreateIconButton(buttons.Send, ui.onSendButtonTapped)
	ui.sendButton.Importance = widget.HighImportance
	ui.stopButton = ui.factory.CreateIconButton(buttons.Stop, ui.onStopButtonTapped)
	ui.stopButton.Hide()
	ui.clearButton = ui.factory.CreateIconButton(buttons.Clear, ui.onClearButtonTapped)
	ui.exportButton = ui.factory.CreateIconButton(buttons.Export, ui.onExportButtonTapped)
	ui.statusLabel = widget.NewLabel("")

	statusArea := ui.factory.CreateStatusBar(ui.statusLabel, ui.stopButton)
	inputArea := ui.factory.CreateInputArea(ui.inputField, ui.factory.CreateButtonGroup(ui.sendButton, ui.clearButton, ui.exportButton))
	chatArea := container.NewBorder(statusArea, inputArea, nil, nil, ui.scrollContainer)

	ui.split = container.NewHSplit(ui.createSidebar(buttons), chatArea)
	ui.applySidebarOffset()

	ui.window.SetContent(ui.split)
	ui.updateSendButtonState()
}

// createSidebar builds the session list with its toolbars
func (ui *ChatUI) createSidebar(buttons StandardButtons) fyne.CanvasObject {
	ui.sessionList = widget.NewList(
		ui.sessionItems.Len,
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			session, ok := ui.sessionItems.At(id)
			if !ok {
				return
			}
			name := session.Name
			if session.Starred {
				name = "★ " + name
			}
			obj.(*widget.Label).SetText(name)
		},
	)
	ui.sessionList.OnSelected = ui.onSessionSelected

	header := container.NewBorder(nil, nil,
		ui.factory.CreateLabelWithStyle(ui.translator.T("chats"), true, false),
		ui.factory.CreateIconButton(buttons.NewChat, ui.onNewChatTapped),
	)

	ui.starButton = widget.NewButton(ui.translator.T("star"), ui.onStarTapped)
	sessionTools := container.NewGridWithColumns(2,
		ui.starButton,
		widget.NewButtonWithIcon(ui.translator.T("rename"), theme.DocumentCreateIcon(), ui.onRenameTapped),
		widget.NewButtonWithIcon(ui.translator.T("per_chat_settings"), theme.ListIcon(), ui.onSessionSettingsTapped),
		widget.NewButtonWithIcon(ui.translator.T("delete"), theme.DeleteIcon(), ui.onDeleteSessionTapped),
	)
	appTools := container.NewGridWithColumns(2,
		ui.factory.CreateIconButton(buttons.Settings, ui.onSettingsTapped),
		ui.factory.CreateIconButton(buttons.About, ui.onAboutTapped),
	)

	return container.NewBorder(header, container.NewVBox(sessionTools, widget.NewSeparator(), appTools), nil, nil, ui.sessionList)
}

// ApplySettings updates display options. The whole UI is rebuilt when the
// language changed.
func (ui *ChatUI) ApplySettings(settings models.Settings) {
	ui.mu.Lock()
	languageChanged := ui.settings.Language != settings.Language
	ui.settings = settings
	ui.mu.Unlock()

	if languageChanged {
		ui.logger.Info("Rebuilding UI for language", "language", settings.Language)
		ui.setupUI()
		ui.refreshSessionList()
	}
	ui.renderMessages()
}

// UpdateConfig applies window-level options reloaded from the config file
func (ui *ChatUI) UpdateConfig(config ChatUIConfig) {
	ui.mu.Lock()
	ui.config = config
	ui.mu.Unlock()
	ui.applySidebarOffset()
}

func (ui *ChatUI) applySidebarOffset() {
	config := ui.currentConfig()
	if ui.split == nil || config.WindowWidth <= 0 {
		return
	}
	ui.split.SetOffset(float64(config.SidebarWidth) / float64(config.WindowWidth))
}

// Session list

func (ui *ChatUI) refreshSessionList() {
	items := ui.sessions.List()
	ui.sessionItems.Set(items)
	current := ui.sessions.Current()

	ui.sessionList.Refresh()
	for i, s := range items {
		if s.ID == current.ID {
			ui.sessionList.Select(i)
			break
		}
	}

	if current.Starred {
		ui.starButton.SetText(ui.translator.T("unstar"))
	} else {
		ui.starButton.SetText(ui.translator.T("star"))
	}
}

func (ui *ChatUI) onSessionSelected(id widget.ListItemID) {
	selected, ok := ui.sessionItems.At(id)
	if !ok {
		return
	}
	if selected.ID == ui.sessions.Current().ID {
		return
	}
	if err := ui.sessions.Switch(selected.ID); err != nil {
		ui.logger.Error("Failed to switch session", "session_id", selected.ID, "error", err)
		dialog.ShowError(err, ui.window)
		return
	}
	ui.logger.Info("Switched session", "session_id", selected.ID)
	ui.refreshSessionList()
	ui.renderMessages()
	ui.scrollContainer.ScrollToBottom()
}

func (ui *ChatUI) onNewChatTapped() {
	session, err := ui.sessions.CreateEmpty(context.Background())
	if err != nil {
		ui.logger.Error("Failed to create session", "error", err)
		dialog.ShowError(err, ui.window)
		return
	}
	ui.logger.Info("New chat created", "session_id", session.ID, "name", session.Name)
	ui.refreshSessionList()
	ui.renderMessages()
	ui.window.Canvas().Focus(ui.inputField)
}

func (ui *ChatUI) onStarTapped() {
	current := ui.sessions.Current()
	if err := ui.sessions.ToggleStar(context.Background(), current.ID); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	ui.refreshSessionList()
}

func (ui *ChatUI) onRenameTapped() {
	current := ui.sessions.Current()
	entry := widget.NewEntry()
	entry.SetText(current.Name)

	dialog.ShowForm(ui.translator.T("rename"), ui.translator.T("save"), ui.translator.T("cancel"),
		[]*widget.FormItem{widget.NewFormItem(ui.translator.T("session_name"), entry)},
		func(confirmed bool) {
			name := strings.TrimSpace(entry.Text)
			if !confirmed || name == "" || name == current.Name {
				return
			}
			if err := ui.sessions.Rename(context.Background(), current.ID, name); err != nil {
				ui.logger.Error("Failed to rename session", "session_id", current.ID, "error", err)
				dialog.ShowError(err, ui.window)
				return
			}
			ui.refreshSessionList()
		}, ui.window)
}

func (ui *ChatUI) onDeleteSessionTapped() {
	current := ui.sessions.Current()
	message := ui.translator.T("confirm_delete_session", map[string]any{"Name": current.Name})
	dialog.ShowConfirm(ui.translator.T("delete"), message, func(confirmed bool) {
		if !confirmed {
			return
		}
		if ui.isGeneratingFor(current.ID) {
			ui.onStopButtonTapped()
		}
		if err := ui.sessions.Delete(context.Background(), current.ID); err != nil {
			ui.logger.Error("Failed to delete session", "session_id", current.ID, "error", err)
			dialog.ShowError(err, ui.window)
			return
		}
		ui.refreshSessionList()
		ui.renderMessages()
	}, ui.window)
}

func (ui *ChatUI) onSessionSettingsTapped() {
	current := ui.sessions.Current()
	NewSessionSettingsDialog(ui.window, current, ui.provider, ui.translator, ui.logger, func(setting models.ModelSetting) error {
		session, ok := ui.sessions.Get(current.ID)
		if !ok {
			return fmt.Errorf("%w: %s", state.ErrSessionNotFound, current.ID)
		}
		session.Model = setting
		if err := ui.sessions.Update(context.Background(), session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		ui.renderMessages()
		return nil
	}).Show()
}

func (ui *ChatUI) onSettingsTapped() {
	NewSettingsDialog(ui.window, ui.currentSettings(), ui.translator, ui.logger, ui.app, ui.saveSettings).Show()
}

func (ui *ChatUI) saveSettings(settings models.Settings) error {
	if err := ui.store.WriteSettings(context.Background(), settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ui.sessions.SetDefaultModelSetting(settings.ModelSetting)
	ui.app.ApplySettings(settings)
	return nil
}

func (ui *ChatUI) onAboutTapped() {
	NewAboutDialog(ui.window, ui.config.Version, ui.translator, ui.logger, ui.app).Show()
}

// Messages

func (ui *ChatUI) renderMessages() {
	session := ui.sessions.Current()
	settings := ui.currentSettings()
	generating := ui.isGenerating()

	live := make(map[string]*widget.RichText)
	objects := make([]fyne.CanvasObject, 0, len(session.Messages))
	for i, msg := range session.Messages {
		var actions []fyne.CanvasObject
		if !msg.Generating {
			actions = ui.messageActions(session.ID, i, msg, generating)
		}
		card, richText := ui.factory.CreateMessageCard(roleTitle(ui.translator, msg.Role), messageFooter(ui.translator, settings, msg), msg.Content, actions...)
		if msg.Generating {
			live[msg.ID] = richText
		}
		objects = append(objects, card)
	}

	ui.mu.Lock()
	ui.liveText = live
	ui.mu.Unlock()

	ui.chatContainer.Objects = objects
	ui.chatContainer.Refresh()
	ui.updateSendButtonState()
}

func (ui *ChatUI) messageActions(sessionID string, index int, msg models.Message, generating bool) []fyne.CanvasObject {
	copyButton := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		ui.window.Clipboard().SetContent(msg.Content)
	})
	editButton := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
		ui.editMessage(sessionID, msg)
	})
	deleteButton := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		dialog.ShowConfirm(ui.translator.T("delete_message"), messagePreview(msg.Content), func(confirmed bool) {
			if confirmed {
				ui.deleteMessage(sessionID, msg.ID)
			}
		}, ui.window)
	})
	actions := []fyne.CanvasObject{copyButton, editButton, deleteButton}

	if msg.Role == models.RoleAssistant {
		regenerate := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
			ui.regenerate(sessionID, index)
		})
		actions = append(actions, regenerate)
	}
	if generating {
		editButton.Disable()
		deleteButton.Disable()
		for _, a := range actions[3:] {
			a.(*widget.Button).Disable()
		}
	}
	return actions
}

func (ui *ChatUI) editMessage(sessionID string, msg models.Message) {
	entry := widget.NewMultiLineEntry()
	entry.Wrapping = fyne.TextWrapWord
	entry.SetMinRowsVisible(6)
	entry.SetText(msg.Content)

	d := dialog.NewForm(ui.translator.T("edit"), ui.translator.T("save"), ui.translator.T("cancel"),
		[]*widget.FormItem{widget.NewFormItem("", entry)},
		func(confirmed bool) {
			if !confirmed {
				return
			}
			msg.Content = entry.Text
			if err := ui.sessions.UpdateMessage(context.Background(), sessionID, msg); err != nil {
				ui.logger.Error("Failed to edit message", "message_id", msg.ID, "error", err)
				dialog.ShowError(err, ui.window)
				return
			}
			ui.renderMessages()
		}, ui.window)
	d.Resize(fyne.NewSize(520, 300))
	d.Show()
}

func (ui *ChatUI) deleteMessage(sessionID, messageID string) {
	session, ok := ui.sessions.Get(sessionID)
	if !ok || !session.RemoveMessage(messageID) {
		return
	}
	if err := ui.sessions.SetMessages(context.Background(), sessionID, session.Messages); err != nil {
		ui.logger.Error("Failed to delete message", "message_id", messageID, "error", err)
		dialog.ShowError(err, ui.window)
		return
	}
	ui.renderMessages()
}

func (ui *ChatUI) onClearButtonTapped() {
	current := ui.sessions.Current()
	dialog.ShowConfirm(ui.translator.T("clear_conversation"), ui.translator.T("confirm_clear"), func(confirmed bool) {
		if !confirmed {
			return
		}
		current.ClearConversation()
		if err := ui.sessions.SetMessages(context.Background(), current.ID, current.Messages); err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		ui.renderMessages()
		ui.logger.Info("Chat cleared", "session_id", current.ID)
	}, ui.window)
}

func (ui *ChatUI) onExportButtonTapped() {
	session := ui.sessions.Current()
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if _, err := writer.Write([]byte(exportMarkdown(ui.translator, session))); err != nil {
			ui.logger.Error("Failed to export chat", "error", err)
			dialog.ShowError(fmt.Errorf("failed to export chat: %w", err), ui.window)
			return
		}
		path := writer.URI().Path()
		ui.logger.Info("Chat exported to file", "session_id", session.ID, "path", path)
		dialog.ShowInformation(ui.translator.T("export"), ui.translator.T("exported", map[string]any{"Path": path}), ui.window)
	}, ui.window)
	save.SetFileName(exportFileName(session.Name))
	save.Show()
}

// Generation

func (ui *ChatUI) onSendButtonTapped() {
	query := strings.TrimSpace(ui.inputField.Text)
	if query == "" || ui.isGenerating() {
		return
	}

	session := ui.sessions.Current()
	session.AddMessage(models.NewMessage(models.RoleUser, query))
	history := append([]models.Message(nil), session.Messages...)

	reply := models.NewMessage(models.RoleAssistant, "")
	reply.Generating = true
	reply.Model = session.Model.Name
	session.AddMessage(reply)

	ui.inputField.SetText("")
	ui.startGeneration(session, history, reply)
}

// regenerate replaces the assistant message at index with a new reply to
// the messages before it
func (ui *ChatUI) regenerate(sessionID string, index int) {
	if ui.isGenerating() {
		return
	}
	session, ok := ui.sessions.Get(sessionID)
	if !ok || index >= len(session.Messages) {
		return
	}

	history := append([]models.Message(nil), session.Messages[:index]...)
	reply := session.Messages[index]
	reply.Content = ""
	reply.Generating = true
	reply.Model = session.Model.Name
	session.Messages[index] = reply

	ui.startGeneration(session, history, reply)
}

func (ui *ChatUI) startGeneration(session models.Session, history []models.Message, reply models.Message) {
	if err := ui.sessions.SetMessages(context.Background(), session.ID, session.Messages); err != nil {
		ui.logger.Error("Failed to store messages", "session_id", session.ID, "error", err)
		dialog.ShowError(err, ui.window)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ui.mu.Lock()
	ui.cancelFunc = cancel
	ui.queryInProgress = true
	ui.generatingID = session.ID
	ui.mu.Unlock()

	ui.showProcessingStatus()
	ui.renderMessages()
	ui.scrollContainer.ScrollToBottom()

	go ui.generate(ctx, session.ID, session.Model, history, reply)
}

// generate streams a reply into the card of reply and stores the result
func (ui *ChatUI) generate(ctx context.Context, sessionID string, setting models.ModelSetting, history []models.Message, reply models.Message) {
	log := ui.logger.WithFields(map[string]interface{}{"session_id": sessionID, "model": setting.Name})
	log.Info("Generating reply", "messages", len(history))

	text, err := ui.provider.Replay(ctx, setting, history, func(text string) {
		autoScroll := ui.shouldAutoScroll()
		if richText := ui.liveRichText(reply.ID); richText != nil {
			richText.ParseMarkdown(text)
		}
		if autoScroll {
			ui.scrollContainer.ScrollToBottom()
		}
	})
	canceled := ctx.Err() != nil

	reply.Content = replyContent(ui.translator, text, err, setting)
	reply.Generating = false
	switch {
	case err != nil:
		log.Error("Failed to generate reply", "error", err)
	case canceled:
		log.Info("Reply canceled", "length", len(text))
	default:
		log.Info("Successfully generated reply", "length", len(text))
	}

	if err := ui.sessions.UpdateMessage(context.Background(), sessionID, reply); err != nil {
		if errors.Is(err, state.ErrSessionNotFound) {
			log.Debug("Session deleted while generating")
		} else {
			log.Error("Failed to store reply", "error", err)
		}
	}

	ui.finishGeneration()
	ui.renderMessages()

	if err == nil && !canceled {
		ui.autoNameSession(sessionID)
	}
}

// autoNameSession asks the model for a name when the session still has a
// default one
func (ui *ChatUI) autoNameSession(sessionID string) {
	if !ui.currentConfig().AutoNameSessions {
		return
	}
	session, ok := ui.sessions.Get(sessionID)
	if !ok || !isDefaultName(session.Name) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), namingTimeout)
	defer cancel()

	name, err := llm.SuggestName(ctx, ui.provider, session.Model, session.Messages)
	if err != nil {
		ui.logger.Warn("Failed to name session", "session_id", sessionID, "error", err)
		return
	}
	if name == "" {
		return
	}
	if err := ui.sessions.Rename(context.Background(), sessionID, name); err != nil {
		ui.logger.Warn("Failed to rename session", "session_id", sessionID, "error", err)
		return
	}
	ui.logger.Info("Session named", "session_id", sessionID, "name", name)
	ui.refreshSessionList()
}

func (ui *ChatUI) onStopButtonTapped() {
	ui.mu.Lock()
	cancel := ui.cancelFunc
	ui.mu.Unlock()
	if cancel != nil {
		ui.logger.Info("Stopping generation")
		cancel()
	}
}

func (ui *ChatUI) finishGeneration() {
	ui.mu.Lock()
	if ui.cancelFunc != nil {
		ui.cancelFunc()
	}
	ui.cancelFunc = nil
	ui.queryInProgress = false
	ui.generatingID = ""
	ui.mu.Unlock()
	ui.clearProcessingStatus()
}

// Helper methods

func (ui *ChatUI) isGenerating() bool {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.queryInProgress
}

func (ui *ChatUI) isGeneratingFor(sessionID string) bool {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.queryInProgress && ui.generatingID == sessionID
}

func (ui *ChatUI) liveRichText(messageID string) *widget.RichText {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.liveText[messageID]
}

func (ui *ChatUI) currentSettings() models.Settings {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.settings
}

func (ui *ChatUI) currentConfig() ChatUIConfig {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.config
}

func (ui *ChatUI) updateSendButtonState() {
	if ui.isGenerating() || strings.TrimSpace(ui.inputField.Text) == "" {
		ui.sendButton.Disable()
	} else {
		ui.sendButton.Enable()
	}
	if ui.isGenerating() {
		ui.clearButton.Disable()
	} else {
		ui.clearButton.Enable()
	}
}

func (ui *ChatUI) shouldAutoScroll() bool {
	offset := ui.scrollContainer.Offset.Y
	maxOffset := ui.scrollContainer.Content.Size().Height - ui.scrollContainer.Size().Height
	return offset >= maxOffset-50
}

func (ui *ChatUI) showProcessingStatus() {
	ui.statusLabel.SetText(ui.translator.T("generating"))
	ui.stopButton.Show()
}

func (ui *ChatUI) clearProcessingStatus() {
	ui.statusLabel.SetText("")
	ui.stopButton.Hide()
}

// sessionItems is the snapshot shown by the session list. The list callbacks
// read it on the driver thread while replies refresh it from their goroutine.
type sessionItems struct {
	mu    sync.RWMutex
	items []models.Session
}

func (s *sessionItems) Set(items []models.Session) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *sessionItems) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *sessionItems) At(id int) (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 0 || id >= len(s.items) {
		return models.Session{}, false
	}
	return s.items[id], true
}
