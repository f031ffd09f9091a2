package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/jodytama/game/engine"
	"github.com/wricardo/jodytama/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	mu       sync.Mutex
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig, opts ...engine.Option) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, opts...)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

// forwardDeck only holds cards that let player 1 step forward from the home rank
var forwardDeck = []string{"Crane", "Monkey", "Eel", "Goose", "Rooster", "Elephant"}

func NewMockConfigManager() *MockConfigManager {
	newConfig := func(name string) *engine.GameConfig {
		return &engine.GameConfig{
			Name:        name,
			Description: "Test configuration",
			Deck:        append([]string(nil), forwardDeck...),
			Messages: engine.Messages{
				Welcome: "Welcome!",
				Turn:    "Player %d to move",
				Victory: "Player %d wins: %s",
			},
		}
	}
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"default": newConfig("Default"),
			"test":    newConfig("Test"),
		},
		saved: make(map[string]*engine.GameConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for id, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    id + ".json",
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			DeckSize:    len(config.Deck),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ConfigID < result[j].ConfigID })
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.saved[name] = config
	return nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []service.GameEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, sessionID string, events []service.GameEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T, opts ...service.Option) service.GameService {
	t.Helper()
	opts = append([]service.Option{service.WithLogger(zaptest.NewLogger(t))}, opts...)
	return service.NewGameService(NewMockSessionManager(), NewMockConfigManager(), opts...)
}

func seed(v uint64) *uint64 { return &v }

// firstMove returns a legal move for the player to move
func firstMove(t *testing.T, svc service.GameService, id string) engine.Move {
	t.Helper()
	resp, err := svc.GetLegalMoves(context.Background(), id, service.LegalMovesQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Moves, "expected a legal move")
	return resp.Moves[0]
}

func moveRequest(m engine.Move) service.MoveRequest {
	return service.MoveRequest{FromRow: m.From.Row, FromCol: m.From.Col, ToRow: m.To.Row, ToCol: m.To.Col, Card: m.Card}
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name       string
		req        service.CreateSessionRequest
		wantConfig string
		wantErr    error
	}{
		{"create with default config", service.CreateSessionRequest{}, "default", nil},
		{"create with specific config", service.CreateSessionRequest{ConfigName: "test"}, "test", nil},
		{"create with seed", service.CreateSessionRequest{ConfigName: "test", Seed: seed(9)}, "test", nil},
		{"create with invalid config", service.CreateSessionRequest{ConfigName: "nonexistent"}, "", service.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, info.ID)
			assert.Equal(t, tt.wantConfig, info.ConfigName)
			assert.Equal(t, engine.Player1, info.GameState.CurrentPlayer)
			assert.Equal(t, "Welcome!", info.GameState.Message)
		})
	}

	t.Run("unknown config lists alternatives", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "ghost"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[default test]")
	})

	t.Run("same seed deals the same cards", func(t *testing.T) {
		a, err := svc.CreateSession(ctx, service.CreateSessionRequest{Seed: seed(4)})
		require.NoError(t, err)
		b, err := svc.CreateSession(ctx, service.CreateSessionRequest{Seed: seed(4)})
		require.NoError(t, err)
		assert.Equal(t, a.GameState.Hands, b.GameState.Hands)
	})
}

func TestGameService_GetSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "test"})
	require.NoError(t, err)

	info, err := svc.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, info.ID)
	assert.Equal(t, "test", info.ConfigName)
	assert.Equal(t, "Test", info.GameConfig.Name)

	_, err = svc.GetSession(ctx, "nonexistent")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	assert.True(t, service.IsNotFound(err))
}

func TestGameService_Selection(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(t, service.WithPublisher(pub))

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "test", Seed: seed(1)})
	require.NoError(t, err)
	id := info.ID

	t.Run("opponent piece", func(t *testing.T) {
		result, err := svc.SelectPiece(ctx, id, 0, 0)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, engine.SelectionNone, result.GameState.Selection.Kind)
	})

	t.Run("own piece", func(t *testing.T) {
		result, err := svc.SelectPiece(ctx, id, 4, 2)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.GameState.Selection.IsPiece())
		assert.NotEmpty(t, result.GameState.ValidMoves)
		require.Len(t, result.Events, 1)
		assert.Equal(t, service.EventSelect, result.Events[0].Type)
		assert.Equal(t, id, result.Events[0].SessionID)
	})

	t.Run("own card replaces piece selection", func(t *testing.T) {
		card := info.GameState.Hands.Player1[0]
		result, err := svc.SelectCard(ctx, id, card)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.GameState.Selection.IsCard())
		assert.Nil(t, result.GameState.Selection.Position)
		for _, m := range result.GameState.ValidMoves {
			assert.Equal(t, card, m.Card)
		}
	})

	t.Run("opponent card", func(t *testing.T) {
		result, err := svc.SelectCard(ctx, id, info.GameState.Hands.Player2[0])
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "not in player 1's hand")
	})

	t.Run("clear", func(t *testing.T) {
		result, err := svc.ClearSelection(ctx, id)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, engine.SelectionNone, result.GameState.Selection.Kind)
		assert.Empty(t, result.GameState.ValidMoves)
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := svc.SelectPiece(ctx, "nonexistent", 4, 2)
		assert.ErrorIs(t, err, service.ErrSessionNotFound)
	})

	assert.Equal(t, []string{service.EventSelect, service.EventSelect}, pub.types())
}

func TestGameService_ExecuteMove(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(t, service.WithPublisher(pub))

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "test", Seed: seed(2)})
	require.NoError(t, err)
	id := info.ID
	center := info.GameState.Hands.Center

	m := firstMove(t, svc, id)
	result, err := svc.ExecuteMove(ctx, id, moveRequest(m))
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)

	state := result.GameState
	assert.Equal(t, engine.Player2, state.CurrentPlayer)
	assert.Equal(t, m.Card, state.Hands.Center)
	assert.Contains(t, state.Hands.Player1, center)
	assert.NotContains(t, state.Hands.Player1, m.Card)
	assert.Len(t, state.History, 1)
	assert.Equal(t, "Player 2 to move", result.Message)

	require.Len(t, result.Events, 2)
	assert.Equal(t, service.EventMove, result.Events[0].Type)
	assert.Equal(t, &m, result.Events[0].Move)
	assert.Equal(t, service.EventCardExchange, result.Events[1].Type)
	assert.Equal(t, []string{service.EventMove, service.EventCardExchange}, pub.types())

	t.Run("illegal move is reported, not an error", func(t *testing.T) {
		before, err := svc.GetGameState(ctx, id)
		require.NoError(t, err)

		result, err := svc.ExecuteMove(ctx, id, service.MoveRequest{FromRow: 0, FromCol: 0, ToRow: 4, ToCol: 4, Card: before.Hands.Player2[0]})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Empty(t, result.Events)
		assert.Equal(t, before.Board, result.GameState.Board)
		assert.Equal(t, before.Hands, result.GameState.Hands)
	})

	t.Run("card not held", func(t *testing.T) {
		state, _ := svc.GetGameState(ctx, id)
		result, err := svc.ExecuteMove(ctx, id, service.MoveRequest{FromRow: 0, FromCol: 2, ToRow: 1, ToCol: 2, Card: state.Hands.Center})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "does not hold card")
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := svc.ExecuteMove(ctx, "nonexistent", moveRequest(m))
		assert.ErrorIs(t, err, service.ErrSessionNotFound)
	})
}

func TestGameService_PublisherErrorsDoNotFailMoves(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, service.WithPublisher(pub))

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{Seed: seed(3)})
	require.NoError(t, err)

	result, err := svc.ExecuteMove(ctx, info.ID, moveRequest(firstMove(t, svc, info.ID)))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, pub.types())
}

func TestGameService_GetLegalMoves(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{Seed: seed(5)})
	require.NoError(t, err)
	id := info.ID
	hand := info.GameState.Hands.Player1
	row, col := 4, 2

	all, err := svc.GetLegalMoves(ctx, id, service.LegalMovesQuery{})
	require.NoError(t, err)
	assert.Equal(t, engine.Player1, all.Player)
	assert.Equal(t, len(all.Moves), all.Count)

	piece, err := svc.GetLegalMoves(ctx, id, service.LegalMovesQuery{Row: &row, Col: &col})
	require.NoError(t, err)
	for _, m := range piece.Moves {
		assert.Equal(t, engine.Position{Row: 4, Col: 2}, m.From)
	}

	byCard, err := svc.GetLegalMoves(ctx, id, service.LegalMovesQuery{Card: hand[0]})
	require.NoError(t, err)
	for _, m := range byCard.Moves {
		assert.Equal(t, hand[0], m.Card)
	}

	both, err := svc.GetLegalMoves(ctx, id, service.LegalMovesQuery{Row: &row, Col: &col, Card: hand[1]})
	require.NoError(t, err)
	for _, m := range both.Moves {
		assert.Equal(t, hand[1], m.Card)
		assert.Equal(t, engine.Position{Row: 4, Col: 2}, m.From)
	}
	assert.Equal(t, len(all.Moves), len(byCard.Moves)+countCard(all.Moves, hand[1]))

	opponent, err := svc.GetLegalMoves(ctx, id, service.LegalMovesQuery{Card: info.GameState.Hands.Player2[0]})
	require.NoError(t, err)
	assert.Empty(t, opponent.Moves)
	assert.NotNil(t, opponent.Moves)

	_, err = svc.GetLegalMoves(ctx, id, service.LegalMovesQuery{Row: &row})
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	state, err := svc.GetGameState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, engine.SelectionNone, state.Selection.Kind, "querying moves must not select")
}

func countCard(moves []engine.Move, card string) int {
	n := 0
	for _, m := range moves {
		if m.Card == card {
			n++
		}
	}
	return n
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "test", Seed: seed(6)})
	require.NoError(t, err)

	played := 0
	for i := 0; i < 5; i++ {
		state, _ := svc.GetGameState(ctx, info.ID)
		if state.GameOver {
			break
		}
		resp, err := svc.GetLegalMoves(ctx, info.ID, service.LegalMovesQuery{})
		require.NoError(t, err)
		if len(resp.Moves) == 0 {
			break
		}
		result, err := svc.ExecuteMove(ctx, info.ID, moveRequest(resp.Moves[0]))
		require.NoError(t, err)
		require.True(t, result.Success)
		played++
	}
	require.GreaterOrEqual(t, played, 2)

	tests := []struct {
		name      string
		sessionID string
		opts      service.HistoryOptions
		wantSize  int
		wantFirst int
		wantErr   bool
	}{
		{"default options", info.ID, service.HistoryOptions{}, played, played, false},
		{"ascending page", info.ID, service.HistoryOptions{Page: 1, Limit: 1, Order: "asc"}, 1, 1, false},
		{"second descending page", info.ID, service.HistoryOptions{Page: 2, Limit: 1, Order: "desc"}, 1, played - 1, false},
		{"page past the end", info.ID, service.HistoryOptions{Page: 50, Limit: 10}, 0, 0, false},
		{"page far past the end", info.ID, service.HistoryOptions{Page: 1 << 62, Limit: 20}, 0, 0, false},
		{"invalid session", "nonexistent", service.HistoryOptions{}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetMoveHistory(ctx, tt.sessionID, tt.opts)
			if tt.wantErr {
				assert.ErrorIs(t, err, service.ErrSessionNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, played, result.TotalMoves)
			require.Len(t, result.Moves, tt.wantSize)
			assert.NotNil(t, result.Moves)
			if tt.wantSize > 0 {
				assert.Equal(t, tt.wantFirst, result.Moves[0].MoveNumber)
			}
		})
	}

	capped, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, service.MaxHistoryLimit, capped.PageSize)

	paged, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.True(t, paged.HasNext)
	assert.False(t, paged.HasPrevious)
	assert.Equal(t, played, paged.TotalPages)
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "test"})
		require.NoError(t, err)
	}

	sessionList, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessionList, 3)
}

func TestGameService_DeleteSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, info.ID))
	assert.ErrorIs(t, svc.DeleteSession(ctx, info.ID), service.ErrSessionNotFound)
	_, err = svc.GetGameState(ctx, info.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(t, service.WithPublisher(pub))

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "test", Seed: seed(7)})
	require.NoError(t, err)

	_, err = svc.ExecuteMove(ctx, info.ID, moveRequest(firstMove(t, svc, info.ID)))
	require.NoError(t, err)

	state, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	assert.Empty(t, state.History)
	assert.Equal(t, engine.Player1, state.CurrentPlayer)
	assert.Equal(t, info.GameState.Board, state.Board)
	assert.Contains(t, pub.types(), service.EventReset)

	_, err = svc.Reset(ctx, "nonexistent")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_GetStats(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx, info.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.GamesPlayed)
	assert.NotNil(t, stats.CardUsage)
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	configs := NewMockConfigManager()
	svc := service.NewGameService(NewMockSessionManager(), configs)

	list, err := svc.ListConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	cfg, err := svc.LoadConfig(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, "Test", cfg.Name)

	_, err = svc.LoadConfig(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrConfigNotFound)

	custom := engine.DefaultGameConfig()
	custom.Name = "custom"
	require.NoError(t, svc.SaveConfig(ctx, "custom", custom))
	assert.Same(t, custom, configs.saved["custom"])

	invalid := engine.DefaultGameConfig()
	invalid.Description = ""
	assert.ErrorIs(t, svc.SaveConfig(ctx, "invalid", invalid), service.ErrInvalidRequest)
	assert.NotContains(t, configs.saved, "invalid")
}

func TestGameService_Cards(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cards, err := svc.ListCards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, engine.CatalogSize)
	assert.Equal(t, "Boar", cards[0].Name)

	tiger, err := svc.GetCard(ctx, "Tiger")
	require.NoError(t, err)
	assert.Equal(t, []engine.Offset{{DRow: 1, DCol: 0}}, tiger.Offsets)
	assert.Equal(t, "...\n.o.\n.x.", tiger.Diagram)

	_, err = svc.GetCard(ctx, "Unicorn")
	assert.ErrorIs(t, err, service.ErrCardNotFound)
}

func TestGameService_ConcurrentMoves(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{Seed: seed(8)})
	require.NoError(t, err)
	m := firstMove(t, svc, info.ID)

	// Only one of the racing submissions of the same move may land
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.ExecuteMove(ctx, info.ID, moveRequest(m))
			if assert.NoError(t, err) && result.Success {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}
