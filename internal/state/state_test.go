package state

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/storage"
	"github.com/ashprao/chatbox/pkg/logger"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryStorage) {
	t.Helper()
	mem := storage.NewMemoryStorage()
	t.Cleanup(func() { mem.Close() })
	return NewStore(mem, logger.NewLoggerWithWriter(slog.LevelDebug, io.Discard)), mem
}

func TestReadSettings_Defaults(t *testing.T) {
	store, _ := newTestStore(t)
	settings, err := store.ReadSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestReadSettings_MergesOverDefaults(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	// data written by an older version without fontSize or maxTokens
	old := map[string]any{
		"showWordCount": true,
		"language":      "zh-Hans",
		"modelSetting": map[string]any{
			"name":    "gpt-4",
			"apiHost": "https://proxy.example.com",
		},
	}
	require.NoError(t, mem.Write(ctx, SettingsKey, old))

	settings, err := store.ReadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.ShowWordCount)
	assert.Equal(t, "zh-Hans", settings.Language)
	assert.Equal(t, constants.DefaultFontSize, settings.FontSize)
	assert.Equal(t, "gpt-4", settings.ModelSetting.Name)
	assert.Equal(t, "https://proxy.example.com", settings.ModelSetting.APIHost)
	assert.Equal(t, constants.DefaultMaxTokens, settings.ModelSetting.MaxTokens)
}

func TestWriteSettings_FillsEmptyHost(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.ModelSetting.APIHost = ""
	require.NoError(t, store.WriteSettings(ctx, settings))

	got, err := store.ReadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultAPIHost, got.ModelSetting.APIHost)
}

func TestReadConfig_CreatesOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.ReadConfig(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first.UUID)

	second, err := store.ReadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.UUID, second.UUID)
}

func TestReadSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		store, _ := newTestStore(t)
		settings := models.DefaultSettings()
		settings.ModelSetting.Name = "gpt-4"

		sessions, err := store.ReadSessions(ctx, settings)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, constants.DefaultSessionName, sessions[0].Name)
		assert.Equal(t, "gpt-4", sessions[0].Model.Name)
	})

	t.Run("empty list stored", func(t *testing.T) {
		store, mem := newTestStore(t)
		require.NoError(t, mem.Write(ctx, SessionsKey, []models.Session{}))

		sessions, err := store.ReadSessions(ctx, models.DefaultSettings())
		require.NoError(t, err)
		assert.Len(t, sessions, 1)
	})

	t.Run("missing model setting gets default", func(t *testing.T) {
		store, mem := newTestStore(t)
		legacy := []map[string]any{{"id": "s1", "name": "old", "messages": []any{}}}
		require.NoError(t, mem.Write(ctx, SessionsKey, legacy))

		settings := models.DefaultSettings()
		settings.ModelSetting.Name = "gpt-4"
		sessions, err := store.ReadSessions(ctx, settings)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "s1", sessions[0].ID)
		assert.Equal(t, models.DefaultModelSetting(), sessions[0].Model)
	})
}

func newTestSessions(t *testing.T) (*Sessions, *Store) {
	t.Helper()
	store, _ := newTestStore(t)
	m := NewSessions(store, logger.NewLoggerWithWriter(slog.LevelDebug, io.Discard))
	require.NoError(t, m.Load(context.Background(), models.DefaultSettings()))
	return m, store
}

func storedSessions(t *testing.T, store *Store) []models.Session {
	t.Helper()
	sessions, err := store.ReadSessions(context.Background(), models.DefaultSettings())
	require.NoError(t, err)
	return sessions
}

func TestSessions_LoadStartsWithOne(t *testing.T) {
	m, _ := newTestSessions(t)
	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, list[0].ID, m.Current().ID)
}

func TestSessions_CreateEmptyNames(t *testing.T) {
	m, store := newTestSessions(t)
	ctx := context.Background()

	first, err := m.CreateEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Untitled (1)", first.Name)
	assert.Equal(t, first.ID, m.Current().ID)

	second, err := m.CreateEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Untitled (2)", second.Name)

	require.NoError(t, m.Rename(ctx, first.ID, "Go questions"))
	assert.Equal(t, "Untitled (1)", m.FindNonConflictName())

	assert.Len(t, storedSessions(t, store), 3)
}

func TestSessions_FindNonConflictNameWithoutDefault(t *testing.T) {
	m, _ := newTestSessions(t)
	ctx := context.Background()
	require.NoError(t, m.Rename(ctx, m.Current().ID, "renamed"))
	assert.Equal(t, "Untitled", m.FindNonConflictName())
}

func TestSessions_Delete(t *testing.T) {
	m, store := newTestSessions(t)
	ctx := context.Background()

	original := m.Current()
	second, err := m.CreateEmpty(ctx)
	require.NoError(t, err)
	require.Equal(t, second.ID, m.Current().ID)

	require.NoError(t, m.Delete(ctx, second.ID))
	assert.Equal(t, original.ID, m.Current().ID, "current falls back to the first session")

	require.NoError(t, m.Delete(ctx, original.ID))
	list := m.List()
	require.Len(t, list, 1, "the list is never empty")
	assert.NotEqual(t, original.ID, list[0].ID)
	assert.Equal(t, list[0].ID, m.Current().ID)
	assert.Len(t, storedSessions(t, store), 1)

	assert.ErrorIs(t, m.Delete(ctx, "missing"), ErrSessionNotFound)
}

func TestSessions_DeleteOtherKeepsCurrent(t *testing.T) {
	m, _ := newTestSessions(t)
	ctx := context.Background()

	first := m.Current()
	second, err := m.CreateEmpty(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, first.ID))
	assert.Equal(t, second.ID, m.Current().ID)
}

func TestSessions_UpdateAndMessages(t *testing.T) {
	m, store := newTestSessions(t)
	ctx := context.Background()
	current := m.Current()

	reply := models.NewMessage(models.RoleAssistant, "")
	reply.Generating = true
	messages := append(current.Messages, models.NewMessage(models.RoleUser, "hi"), reply)
	require.NoError(t, m.SetMessages(ctx, current.ID, messages))

	reply.Content = "hello"
	reply.Generating = false
	require.NoError(t, m.UpdateMessage(ctx, current.ID, reply))

	got := m.Current()
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "hello", got.Messages[2].Content)
	assert.False(t, got.Messages[2].Generating)

	stored := storedSessions(t, store)
	assert.Equal(t, "hello", stored[0].Messages[2].Content)

	marker := m.List()
	marker[0].Name = "stored copy"
	require.NoError(t, store.WriteSessions(ctx, marker))
	err := m.UpdateMessage(ctx, current.ID, models.NewMessage(models.RoleUser, "ghost"))
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.Equal(t, "stored copy", storedSessions(t, store)[0].Name, "a missing message writes nothing")
	assert.ErrorIs(t, m.UpdateMessage(ctx, "missing", reply), ErrSessionNotFound)

	got.Model.Temperature = 0.2
	require.NoError(t, m.Update(ctx, got))
	assert.InDelta(t, 0.2, m.Current().Model.Temperature, 1e-9)

	assert.ErrorIs(t, m.Update(ctx, models.Session{ID: "missing"}), ErrSessionNotFound)
}

func TestSessions_ListReturnsCopies(t *testing.T) {
	m, _ := newTestSessions(t)
	list := m.List()
	list[0].Messages[0].Content = "tampered"
	list[0].Name = "tampered"

	current := m.Current()
	assert.NotEqual(t, "tampered", current.Messages[0].Content)
	assert.NotEqual(t, "tampered", current.Name)
}

func TestSessions_ToggleStarAndSwitch(t *testing.T) {
	m, _ := newTestSessions(t)
	ctx := context.Background()

	first := m.Current()
	require.NoError(t, m.ToggleStar(ctx, first.ID))
	got, ok := m.Get(first.ID)
	require.True(t, ok)
	assert.True(t, got.Starred)

	_, err := m.CreateEmpty(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Switch(first.ID))
	assert.Equal(t, first.ID, m.Current().ID)
	assert.ErrorIs(t, m.Switch("missing"), ErrSessionNotFound)
}

func TestSessions_NewSessionsUseDefaultSetting(t *testing.T) {
	m, _ := newTestSessions(t)
	setting := models.DefaultModelSetting()
	setting.Name = "gpt-4"
	setting.SystemMessage = "be terse"
	m.SetDefaultModelSetting(setting)

	session, err := m.CreateEmpty(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", session.Model.Name)
	assert.Equal(t, "be terse", session.Messages[0].Content)
}
