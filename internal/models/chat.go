package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ashprao/chatbox/internal/constants"
)

// Role is the author of a chat message as understood by the completion API
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a chat session
type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Name       string    `json:"name,omitempty"`
	Generating bool      `json:"generating,omitempty"`
	Model      string    `json:"model,omitempty"` // model that produced an assistant message
	Timestamp  time.Time `json:"timestamp"`
}

// Session represents a chat session with its own model setting
type Session struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Messages []Message    `json:"messages"`
	Starred  bool         `json:"starred,omitempty"`
	Model    ModelSetting `json:"model"`
}

// NewMessage creates a new message with a fresh id and the current timestamp
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewSession creates a session that starts with the setting's system message
func NewSession(name string, setting ModelSetting) Session {
	if name == "" {
		name = constants.DefaultSessionName
	}
	systemMessage := setting.SystemMessage
	if systemMessage == "" {
		systemMessage = constants.DefaultSystemMessage
	}
	return Session{
		ID:       uuid.NewString(),
		Name:     name,
		Messages: []Message{NewMessage(RoleSystem, systemMessage)},
		Model:    setting,
	}
}

// SystemMessage returns the leading system message, if any
func (s *Session) SystemMessage() (Message, bool) {
	if len(s.Messages) > 0 && s.Messages[0].Role == RoleSystem {
		return s.Messages[0], true
	}
	return Message{}, false
}

// LastMessage returns the most recent message, if any
func (s *Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// AddMessage appends a message to the session
func (s *Session) AddMessage(message Message) {
	s.Messages = append(s.Messages, message)
}

// SetMessage replaces the message with the same id. It reports whether a
// message was replaced.
func (s *Session) SetMessage(message Message) bool {
	for i := range s.Messages {
		if s.Messages[i].ID == message.ID {
			s.Messages[i] = message
			return true
		}
	}
	return false
}

// RemoveMessage deletes the message with the given id
func (s *Session) RemoveMessage(id string) bool {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// ClearConversation drops everything except the system message
func (s *Session) ClearConversation() {
	if system, ok := s.SystemMessage(); ok {
		s.Messages = []Message{system}
		return
	}
	s.Messages = []Message{}
}

// Clone returns a copy whose message slice can be modified independently
func (s Session) Clone() Session {
	messages := make([]Message, len(s.Messages))
	copy(messages, s.Messages)
	s.Messages = messages
	return s
}
