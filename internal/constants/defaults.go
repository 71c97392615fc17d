package constants

// Default values shared across the application
const (
	// Application identity
	AppName    = "Chatbox"
	AppID      = "github.com.ashprao.chatbox"
	AppVersion = "1.0.0"

	// Default model name for new sessions
	DefaultModelName = "gpt-3.5-turbo"

	// Default OpenAI-compatible API host (no /v1 suffix)
	DefaultAPIHost = "https://api.openai.com"

	// Default system message for new sessions
	DefaultSystemMessage = "You are a helpful assistant. You can help me by answering my questions. You can also ask me questions."

	// Default sampling temperature
	DefaultTemperature = 0.7

	// Default token limits, stored as strings so "inf" fits
	DefaultMaxContextSize = "4000"
	DefaultMaxTokens      = "2048"

	// Token limit bounds used by the settings sliders
	TokenLimitMin  = 64
	TokenLimitMax  = 8192
	TokenLimitStep = 64
	TokenLimitInf  = "inf"

	// Estimated per-message overhead when windowing the context
	MessageTokenOverhead = 200

	// Default timeout for API requests (in seconds)
	DefaultTimeoutSeconds = 120

	// Default session name and language
	DefaultSessionName = "Untitled"
	DefaultLanguage    = "en"

	// UI defaults
	DefaultWindowWidth  = 900
	DefaultWindowHeight = 700
	DefaultFontSize     = 13
	MinFontSize         = 12
	MaxFontSize         = 18
	DefaultSidebarWidth = 220

	// Storage defaults
	DefaultStorageType = "file"
	DefaultStoragePath = "data"

	// Date/time format for timestamps
	TimestampFormat = "Jan 2 15:04:05"
)

// Project links shown in the about dialog
const (
	HomepageURL = "https://chatboxai.app"
	AuthorURL   = "https://chatboxai.app/redirect_app/author/%s"
	DonateURL   = "https://chatboxai.app/redirect_app/donate/%s"
	SponsorURL  = "https://chatboxai.app/redirect_app/become_sponsor/%s"
)
