package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/jodytama/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("config not found")
	ErrCardNotFound    = errors.New("card not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SelectPiece(ctx context.Context, sessionID string, row, col int) (*ActionResult, error)
	SelectCard(ctx context.Context, sessionID, card string) (*ActionResult, error)
	ClearSelection(ctx context.Context, sessionID string) (*ActionResult, error)
	ExecuteMove(ctx context.Context, sessionID string, move MoveRequest) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetLegalMoves(ctx context.Context, sessionID string, query LegalMovesQuery) (*LegalMovesResponse, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetStats(ctx context.Context, sessionID string) (*engine.Stats, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Cards
	ListCards(ctx context.Context) ([]*CardInfo, error)
	GetCard(ctx context.Context, name string) (*CardInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, opts ...engine.Option) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// EventPublisher receives the events produced by game operations
type EventPublisher interface {
	Publish(ctx context.Context, sessionID string, events []GameEvent) error
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
