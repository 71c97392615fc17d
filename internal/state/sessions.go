package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/pkg/logger"
)

var (
	// ErrSessionNotFound is returned for ids that are not in the session list
	ErrSessionNotFound = errors.New("session not found")
	// ErrMessageNotFound is returned when a session has no message with the id
	ErrMessageNotFound = errors.New("message not found")
)

// Sessions manages the ordered session list and the current session.
// Every mutation writes the full list back to the store. It is safe for
// concurrent use.
type Sessions struct {
	store  *Store
	logger *logger.Logger

	mu        sync.RWMutex
	sessions  []models.Session
	currentID string
	defaults  models.ModelSetting
}

// NewSessions creates an empty manager. Call Load before use.
func NewSessions(store *Store, logger *logger.Logger) *Sessions {
	return &Sessions{
		store:    store,
		logger:   logger.WithComponent("sessions"),
		defaults: models.DefaultModelSetting(),
	}
}

// Load reads the stored sessions and makes the first one current
func (m *Sessions) Load(ctx context.Context, settings models.Settings) error {
	sessions, err := m.store.ReadSessions(ctx, settings)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = sessions
	m.currentID = sessions[0].ID
	m.defaults = settings.ModelSetting
	m.logger.Info("Loaded sessions", "count", len(sessions), "current", m.currentID)
	return nil
}

// SetDefaultModelSetting sets the model setting given to new sessions
func (m *Sessions) SetDefaultModelSetting(setting models.ModelSetting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = setting
}

// List returns copies of all sessions in order
func (m *Sessions) List() []models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Session, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s.Clone()
	}
	return out
}

// Get returns a copy of the session with id
func (m *Sessions) Get(id string) (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(id)
	if i < 0 {
		return models.Session{}, false
	}
	return m.sessions[i].Clone(), true
}

// Current returns a copy of the current session
func (m *Sessions) Current() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(m.currentID); i >= 0 {
		return m.sessions[i].Clone()
	}
	if len(m.sessions) > 0 {
		return m.sessions[0].Clone()
	}
	return models.Session{}
}

// Switch makes the session with id current
func (m *Sessions) Switch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.currentID = id
	return nil
}

// Create appends session and makes it current
func (m *Sessions) Create(ctx context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, session.Clone())
	m.currentID = session.ID
	m.logger.Info("Created session", "session_id", session.ID, "name", session.Name)
	return m.persist(ctx)
}

// CreateEmpty creates a session with the first free default name
func (m *Sessions) CreateEmpty(ctx context.Context) (models.Session, error) {
	m.mu.RLock()
	name := m.nonConflictName()
	setting := m.defaults
	m.mu.RUnlock()

	session := models.NewSession(name, setting)
	if err := m.Create(ctx, session); err != nil {
		return session, err
	}
	return session, nil
}

// Update replaces the session with the same id
func (m *Sessions) Update(ctx context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(session.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, session.ID)
	}
	m.sessions[i] = session.Clone()
	return m.persist(ctx)
}

// Delete removes the session with id. The list is never left empty: a new
// default session replaces the last one. Deleting the current session makes
// the first remaining session current.
func (m *Sessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	m.sessions = slices.Delete(m.sessions, i, i+1)
	if len(m.sessions) == 0 {
		m.sessions = append(m.sessions, models.NewSession(constants.DefaultSessionName, m.defaults))
	}
	if id == m.currentID {
		m.currentID = m.sessions[0].ID
	}

	m.logger.Info("Deleted session", "session_id", id, "remaining", len(m.sessions))
	return m.persist(ctx)
}

// SetMessages replaces the messages of the session with id
func (m *Sessions) SetMessages(ctx context.Context, id string, messages []models.Message) error {
	return m.mutate(ctx, id, func(s *models.Session) {
		s.Messages = slices.Clone(messages)
	})
}

// UpdateMessage replaces one message, matched by id, in the session with id.
// Nothing is written when the message is missing.
func (m *Sessions) UpdateMessage(ctx context.Context, id string, message models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if !m.sessions[i].SetMessage(message) {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, message.ID)
	}
	return m.persist(ctx)
}

// Rename sets the name of the session with id
func (m *Sessions) Rename(ctx context.Context, id, name string) error {
	return m.mutate(ctx, id, func(s *models.Session) {
		s.Name = name
	})
}

// ToggleStar flips the starred flag of the session with id
func (m *Sessions) ToggleStar(ctx context.Context, id string) error {
	return m.mutate(ctx, id, func(s *models.Session) {
		s.Starred = !s.Starred
	})
}

// FindNonConflictName returns "Untitled" or the first "Untitled (n)" that
// no session uses
func (m *Sessions) FindNonConflictName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nonConflictName()
}

func (m *Sessions) nonConflictName() string {
	names := make(map[string]bool, len(m.sessions))
	for _, s := range m.sessions {
		names[s.Name] = true
	}
	if !names[constants.DefaultSessionName] {
		return constants.DefaultSessionName
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s (%d)", constants.DefaultSessionName, i)
		if !names[name] {
			return name
		}
	}
}

func (m *Sessions) mutate(ctx context.Context, id string, fn func(*models.Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	fn(&m.sessions[i])
	return m.persist(ctx)
}

func (m *Sessions) indexOf(id string) int {
	return slices.IndexFunc(m.sessions, func(s models.Session) bool {
		return s.ID == id
	})
}

// persist writes the list; the caller holds the lock
func (m *Sessions) persist(ctx context.Context) error {
	return m.store.WriteSessions(ctx, m.sessions)
}
