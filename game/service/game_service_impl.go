package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/jodytama/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	configs    ConfigManager
	publishers []EventPublisher
	logger     *zap.Logger
	now        func() time.Time
	mu         sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = logger }
}

// WithPublisher registers a sink for game events
func WithPublisher(p EventPublisher) Option {
	return func(s *gameServiceImpl) {
		if p != nil {
			s.publishers = append(s.publishers, p)
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	configID := req.ConfigName
	if configID != "" {
		var err error
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			return nil, s.configError(configID, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	var opts []engine.Option
	if req.Seed != nil {
		opts = append(opts, engine.WithSeed(*req.Seed))
	}

	sess, err := s.sessions.Create("", config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configID

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("config", configID),
		zap.Bool("seeded", req.Seed != nil),
	)

	return s.sessionInfo(sess), nil
}

// configError explains a failed config lookup, listing the alternatives when the name is unknown
func (s *gameServiceImpl) configError(name string, err error) error {
	if !strings.Contains(err.Error(), "not found") {
		return fmt.Errorf("failed to load config %s: %w", name, err)
	}
	available, listErr := s.configs.ListConfigs()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, cfg := range available {
			ids = append(ids, cfg.ConfigID)
		}
		return fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, name, ids)
	}
	return fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, name)
}

// getConfigID maps a display name back to the identifier used for session creation
func (s *gameServiceImpl) getConfigID(configName string) string {
	available, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range available {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// session fetches and touches a session. Callers hold s.mu for writing.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.logger.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}

// SelectPiece selects one of the current player's pieces
func (s *gameServiceImpl) SelectPiece(ctx context.Context, sessionID string, row, col int) (*ActionResult, error) {
	result, err := s.withSession(sessionID, func(sess *Session) *ActionResult {
		player := sess.Engine.CurrentPlayer()
		if !sess.Engine.SelectPiece(row, col) {
			return &ActionResult{
				Message: fmt.Sprintf("Cannot select (%d,%d): not a piece of player %d", row, col, player),
			}
		}
		moves := sess.Engine.GetValidMoves()
		pos := engine.Position{Row: row, Col: col}
		return &ActionResult{
			Success: true,
			Message: fmt.Sprintf("Selected piece at (%d,%d): %d legal moves", row, col, len(moves)),
			Events: []GameEvent{{
				Type:    EventSelect,
				Message: fmt.Sprintf("Player %d selected piece at (%d,%d)", player, pos.Row, pos.Col),
				Player:  player,
			}},
		}
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, sessionID, result.Events)
	return result, nil
}

// SelectCard selects one of the current player's cards
func (s *gameServiceImpl) SelectCard(ctx context.Context, sessionID, card string) (*ActionResult, error) {
	result, err := s.withSession(sessionID, func(sess *Session) *ActionResult {
		player := sess.Engine.CurrentPlayer()
		if !sess.Engine.SelectCard(card) {
			return &ActionResult{
				Message: fmt.Sprintf("Cannot select card %q: not in player %d's hand", card, player),
			}
		}
		moves := sess.Engine.GetValidMoves()
		return &ActionResult{
			Success: true,
			Message: fmt.Sprintf("Selected %s: %d legal moves", card, len(moves)),
			Events: []GameEvent{{
				Type:    EventSelect,
				Message: fmt.Sprintf("Player %d selected card %s", player, card),
				Player:  player,
				Card:    card,
			}},
		}
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, sessionID, result.Events)
	return result, nil
}

// ClearSelection drops the active selection
func (s *gameServiceImpl) ClearSelection(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.withSession(sessionID, func(sess *Session) *ActionResult {
		sess.Engine.ClearSelection()
		return &ActionResult{Success: true, Message: "Selection cleared"}
	})
}

// ExecuteMove plays a move and reports what it caused
func (s *gameServiceImpl) ExecuteMove(ctx context.Context, sessionID string, req MoveRequest) (*ActionResult, error) {
	result, err := s.withSession(sessionID, func(sess *Session) *ActionResult {
		eng := sess.Engine
		mover := eng.CurrentPlayer()
		center := eng.GetCenterCard()

		if !eng.ExecuteMove(req.FromRow, req.FromCol, req.ToRow, req.ToCol, req.Card) {
			s.logger.Debug("move rejected",
				zap.String("session_id", sessionID),
				zap.Int("player", int(mover)),
				zap.Any("move", req),
			)
			return &ActionResult{Message: rejectionMessage(eng, req)}
		}

		record := eng.GetLastMove()
		events := s.moveEvents(eng, record, center)

		fields := []zap.Field{
			zap.String("session_id", sessionID),
			zap.Int("player", int(mover)),
			zap.String("card", req.Card),
			zap.String("from", fmt.Sprintf("(%d,%d)", req.FromRow, req.FromCol)),
			zap.String("to", fmt.Sprintf("(%d,%d)", req.ToRow, req.ToCol)),
		}
		if outcome := eng.GetOutcome(); outcome != nil {
			fields = append(fields, zap.Int("winner", int(outcome.Winner)), zap.String("reason", outcome.Reason))
		}
		s.logger.Info("move executed", fields...)

		return &ActionResult{Success: true, Message: eng.GetState().Message, Events: events}
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, sessionID, result.Events)
	return result, nil
}

// moveEvents describes a successful move, its capture, the card exchange and any win
func (s *gameServiceImpl) moveEvents(eng *engine.GameEngine, record *engine.MoveRecord, previousCenter string) []GameEvent {
	move := engine.Move{From: record.From, To: record.To, Card: record.Card}
	events := []GameEvent{{
		Type: EventMove,
		Message: fmt.Sprintf("Player %d moved (%d,%d) -> (%d,%d) with %s",
			record.Player, record.From.Row, record.From.Col, record.To.Row, record.To.Col, record.Card),
		Player: record.Player,
		Move:   &move,
		Card:   record.Card,
	}}

	if record.Captured != nil {
		events = append(events, GameEvent{
			Type:     EventCapture,
			Message:  fmt.Sprintf("Player %d captured player %d's %s", record.Player, record.Captured.Owner, record.Captured.Kind),
			Player:   record.Player,
			Move:     &move,
			Captured: record.Captured,
		})
	}

	events = append(events, GameEvent{
		Type:    EventCardExchange,
		Message: fmt.Sprintf("Player %d passed %s to the center and took %s", record.Player, record.Card, previousCenter),
		Player:  record.Player,
		Card:    record.Card,
	})

	if outcome := eng.GetOutcome(); outcome != nil {
		events = append(events, GameEvent{
			Type:    EventGameOver,
			Message: eng.GetState().Message,
			Player:  outcome.Winner,
			Outcome: outcome,
		})
	}
	return events
}

// rejectionMessage names the first reason a move was refused
func rejectionMessage(eng *engine.GameEngine, req MoveRequest) string {
	if eng.IsGameOver() {
		return "Game is over; reset to play again"
	}
	player := eng.CurrentPlayer()
	held := false
	for _, c := range eng.GetPlayerCards(player) {
		if c == req.Card {
			held = true
		}
	}
	if !held {
		return fmt.Sprintf("Player %d does not hold card %q", player, req.Card)
	}
	board := eng.GetBoard()
	if p := board.At(req.FromRow, req.FromCol); p == nil || p.Owner != player {
		return fmt.Sprintf("No piece of player %d at (%d,%d)", player, req.FromRow, req.FromCol)
	}
	return fmt.Sprintf("Illegal move (%d,%d) -> (%d,%d) with %s", req.FromRow, req.FromCol, req.ToRow, req.ToCol, req.Card)
}

// withSession runs fn against a session under the write lock and attaches the resulting state
func (s *gameServiceImpl) withSession(sessionID string, fn func(*Session) *ActionResult) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := fn(sess)
	result.GameState = sess.Engine.GetState()
	now := s.now()
	for i := range result.Events {
		result.Events[i].SessionID = sess.ID
		result.Events[i].Timestamp = now
	}
	return result, nil
}

// Reset starts a new game in the session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	result, err := s.withSession(sessionID, func(sess *Session) *ActionResult {
		state := sess.Engine.Reset()
		return &ActionResult{
			Success: true,
			Message: state.Message,
			Events: []GameEvent{{
				Type:    EventReset,
				Message: "Game reset with a fresh deal",
			}},
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("game reset", zap.String("session_id", sessionID))
	s.publish(ctx, sessionID, result.Events)
	return result.GameState, nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetLegalMoves enumerates legal moves without changing the selection
func (s *gameServiceImpl) GetLegalMoves(ctx context.Context, sessionID string, query LegalMovesQuery) (*LegalMovesResponse, error) {
	if (query.Row == nil) != (query.Col == nil) {
		return nil, fmt.Errorf("%w: row and col must be given together", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	eng := sess.Engine

	var moves []engine.Move
	switch {
	case query.Row != nil && query.Card != "":
		for _, m := range eng.LegalMovesForPiece(*query.Row, *query.Col) {
			if m.Card == query.Card {
				moves = append(moves, m)
			}
		}
	case query.Row != nil:
		moves = eng.LegalMovesForPiece(*query.Row, *query.Col)
	case query.Card != "":
		moves = eng.LegalMovesForCard(query.Card)
	default:
		for _, card := range eng.GetPlayerCards(eng.CurrentPlayer()) {
			moves = append(moves, eng.LegalMovesForCard(card)...)
		}
	}
	if moves == nil {
		moves = []engine.Move{}
	}

	return &LegalMovesResponse{
		Player: eng.CurrentPlayer(),
		Moves:  moves,
		Count:  len(moves),
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = DefaultHistoryLimit
	}
	if opts.Limit > MaxHistoryLimit {
		opts.Limit = MaxHistoryLimit
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	if opts.Order == "desc" {
		for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
			history[i], history[j] = history[j], history[i]
		}
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	start, end := total, total
	if opts.Page <= totalPages {
		start = (opts.Page - 1) * opts.Limit
		end = min(start+opts.Limit, total)
	}

	return &HistoryResponse{
		Moves:       history[start:end],
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetStats returns the session's accumulated game statistics
func (s *gameServiceImpl) GetStats(ctx context.Context, sessionID string) (*engine.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	stats := sess.Engine.GetStats()
	return &stats, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configName)
		}
		return nil, err
	}
	return config, nil
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.configs.SaveConfig(configName, config); err != nil {
		if strings.Contains(err.Error(), "invalid") {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return err
	}
	s.logger.Info("config saved", zap.String("config", configName))
	return nil
}

// ListCards returns the full card catalog
func (s *gameServiceImpl) ListCards(ctx context.Context) ([]*CardInfo, error) {
	cards := engine.AllCards()
	out := make([]*CardInfo, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardInfo(c))
	}
	return out, nil
}

// GetCard returns one catalog card
func (s *gameServiceImpl) GetCard(ctx context.Context, name string) (*CardInfo, error) {
	card, ok := engine.LookupCard(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, name)
	}
	return cardInfo(card), nil
}

func cardInfo(c engine.Card) *CardInfo {
	return &CardInfo{
		Name:    c.Name,
		Pattern: c.Pattern,
		Offsets: c.Offsets(),
		Diagram: engine.FormatPattern(c.Pattern),
	}
}

// publish fans events out to every registered publisher; failures are logged, not returned
func (s *gameServiceImpl) publish(ctx context.Context, sessionID string, events []GameEvent) {
	if len(events) == 0 {
		return
	}
	for _, p := range s.publishers {
		if err := p.Publish(ctx, sessionID, events); err != nil {
			s.logger.Warn("failed to publish events",
				zap.String("session_id", sessionID),
				zap.Int("events", len(events)),
				zap.Error(err),
			)
		}
	}
}

// IsNotFound reports whether err means a session, config or card does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrCardNotFound)
}
