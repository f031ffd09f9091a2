package session

import (
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/jodytama/game/engine"
)

func createTestConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Messages: engine.Messages{
			Welcome: "Welcome!",
			Turn:    "Player %d",
			Victory: "Player %d wins (%s)",
		},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("explicit ID", func(t *testing.T) {
		sess, err := manager.Create("game-1", config)
		require.NoError(t, err)
		assert.Equal(t, "game-1", sess.ID)
		assert.Same(t, config, sess.Config)
		assert.NotNil(t, sess.Engine)
		assert.False(t, sess.CreatedAt.IsZero())
		assert.Equal(t, sess.CreatedAt, sess.LastAccessedAt)
	})

	t.Run("duplicate ID is rejected regardless of case", func(t *testing.T) {
		_, err := manager.Create("GAME-1", config)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", config)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := manager.Create("bad", &engine.GameConfig{})
		assert.Error(t, err)
		assert.Equal(t, 1, manager.Count())
	})

	t.Run("engine options are applied", func(t *testing.T) {
		a, err := manager.Create("seeded-a", config, engine.WithSeed(11))
		require.NoError(t, err)
		b, err := manager.Create("seeded-b", config, engine.WithSeed(11))
		require.NoError(t, err)
		assert.Equal(t, a.Engine.GetState().Hands, b.Engine.GetState().Hands)
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("Lookup", createTestConfig())
	require.NoError(t, err)

	for _, id := range []string{"Lookup", "lookup", "LOOKUP"} {
		sess, err := manager.Get(id)
		require.NoError(t, err, id)
		assert.Same(t, created, sess)
	}

	_, err = manager.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("shared", config)
	require.NoError(t, err)
	second, err := manager.GetOrCreate("shared", config)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, manager.Count())
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	_, err := manager.Create("doomed", createTestConfig())
	require.NoError(t, err)

	require.NoError(t, manager.Delete("DOOMED"))
	_, err = manager.Get("doomed")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, manager.Delete("doomed"), ErrSessionNotFound)
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return clock }

	for _, id := range []string{"c", "a", "b"} {
		_, err := manager.Create(id, createTestConfig())
		require.NoError(t, err)
		clock = clock.Add(time.Minute)
	}

	var ids []string
	for _, sess := range manager.List() {
		ids = append(ids, sess.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids, "sessions should be listed by creation time")
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	active, _ := manager.Create("active", config)
	expired, _ := manager.Create("expired", config)

	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	assert.Equal(t, 1, manager.CleanupExpiredSessions(time.Hour))

	_, err := manager.Get("expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get("active")
	assert.NoError(t, err)
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return clock }

	sess, err := manager.Create("access-test", createTestConfig())
	require.NoError(t, err)

	clock = clock.Add(5 * time.Minute)
	require.NoError(t, manager.UpdateLastAccessed("ACCESS-TEST"))
	assert.Equal(t, clock, sess.LastAccessedAt)
	assert.True(t, sess.LastAccessedAt.After(sess.CreatedAt))

	assert.ErrorIs(t, manager.UpdateLastAccessed("missing"), ErrSessionNotFound)
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", config, engine.WithSeed(3))
	session2, _ := manager.Create("iso-2", config, engine.WithSeed(3))

	require.True(t, session1.Engine.SelectPiece(4, 2))
	assert.True(t, session1.Engine.GetSelection().IsPiece())
	assert.False(t, session2.Engine.GetSelection().IsPiece(), "session 2 should not see session 1 selection")

	session1.Engine.Setup()
	assert.Empty(t, session2.Engine.GetMoveHistory())
	assert.Equal(t, engine.Player1, session2.Engine.CurrentPlayer())
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	format := regexp.MustCompile(`^[0-9a-f]{8}$`)

	generated := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, err := manager.Create("", config)
		require.NoError(t, err)
		assert.Regexp(t, format, sess.ID)
		assert.False(t, generated[sess.ID], "duplicate session ID %s", sess.ID)
		generated[sess.ID] = true
	}
	assert.Equal(t, 50, manager.Count())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("worker-%d", i%10)
			sess, err := manager.GetOrCreate(id, config)
			if assert.NoError(t, err) {
				assert.Equal(t, id, sess.ID)
			}
			manager.UpdateLastAccessed(id)
			manager.List()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, manager.Count())
}
