package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/i18n"
	"github.com/ashprao/chatbox/pkg/logger"
)

const authorName = "Benn Huang"

// AboutDialog shows the version and the project links
type AboutDialog struct {
	logger     *logger.Logger
	translator *i18n.Translator
	app        AppInterface
	window     fyne.Window
	version    string
}

// NewAboutDialog creates an about dialog
func NewAboutDialog(window fyne.Window, version string, translator *i18n.Translator, logger *logger.Logger, app AppInterface) *AboutDialog {
	return &AboutDialog{
		logger:     logger.WithComponent("about-dialog"),
		translator: translator,
		app:        app,
		window:     window,
		version:    version,
	}
}

// Show displays the about dialog
func (ad *AboutDialog) Show() {
	factory := NewComponentFactory(ad.translator)
	title := factory.CreateLabelWithStyle(fmt.Sprintf("%s (v%s)", constants.AppName, ad.version), true, false)
	title.Alignment = fyne.TextAlignCenter

	author := widget.NewHyperlink(
		ad.translator.T("about_message", map[string]any{"Author": authorName}), nil)
	author.Alignment = fyne.TextAlignCenter
	author.OnTapped = func() { ad.open(constants.AuthorURL) }

	message := widget.NewLabel(ad.translator.T("author_message"))
	message.Wrapping = fyne.TextWrapWord

	links := container.NewHBox(
		widget.NewButton(ad.translator.T("donate"), func() { ad.open(constants.DonateURL) }),
		widget.NewButton(ad.translator.T("become_sponsor"), func() { ad.open(constants.SponsorURL) }),
	)

	content := container.NewVBox(
		title,
		author,
		widget.NewCard("", "", container.NewVBox(message, links)),
	)

	d := dialog.NewCustom(ad.translator.T("about_title"), ad.translator.T("close"), content, ad.window)
	d.Resize(fyne.NewSize(460, 0))
	d.Show()
}

func (ad *AboutDialog) open(format string) {
	link := projectLink(format, ad.translator.Language())
	if err := ad.app.OpenURL(link); err != nil {
		ad.logger.Error("Failed to open link", "url", link, "error", err)
		dialog.ShowError(err, ad.window)
	}
}

// projectLink fills the language into one of the project link formats
func projectLink(format, language string) string {
	return fmt.Sprintf(format, language)
}
