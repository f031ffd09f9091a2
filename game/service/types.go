package service

import (
	"time"

	"github.com/wricardo/jodytama/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CreateSessionRequest selects the rule variant and optionally fixes the shuffle
type CreateSessionRequest struct {
	ConfigName string  `json:"config_id,omitempty"`
	Seed       *uint64 `json:"seed,omitempty"`
}

// MoveRequest names a move by origin, destination and card
type MoveRequest struct {
	FromRow int    `json:"from_row"`
	FromCol int    `json:"from_col"`
	ToRow   int    `json:"to_row"`
	ToCol   int    `json:"to_col"`
	Card    string `json:"card"`
}

// ActionResult contains the result of a selection or move
type ActionResult struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// LegalMovesQuery filters legal move enumeration. With Row and Col set the
// moves of that piece are returned; with Card set the moves under that card.
// Both may be combined. Neither lists every move of the current player.
type LegalMovesQuery struct {
	Row  *int   `json:"row,omitempty"`
	Col  *int   `json:"col,omitempty"`
	Card string `json:"card,omitempty"`
}

// LegalMovesResponse lists the moves matching a query
type LegalMovesResponse struct {
	Player engine.PlayerID `json:"player"`
	Moves  []engine.Move   `json:"moves"`
	Count  int             `json:"count"`
}

// Event types
const (
	EventSelect       = "select"
	EventMove         = "move"
	EventCapture      = "capture"
	EventCardExchange = "card_exchange"
	EventGameOver     = "game_over"
	EventReset        = "reset"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Player    engine.PlayerID `json:"player,omitempty"`
	Move      *engine.Move    `json:"move,omitempty"`
	Captured  *engine.Piece   `json:"captured,omitempty"`
	Card      string          `json:"card,omitempty"`
	Outcome   *engine.Outcome `json:"outcome,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// History paging bounds
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveRecord `json:"moves"`
	TotalMoves  int                 `json:"total_moves"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename           string `json:"filename"`
	ConfigID           string `json:"config_id"` // The identifier to use for session creation
	Name               string `json:"name"`      // Display name
	Description        string `json:"description"`
	DeckSize           int    `json:"deck_size"`
	RotateSecondPlayer bool   `json:"rotate_second_player"`
	Seeded             bool   `json:"seeded"`
}

// CardInfo describes a catalog card for clients
type CardInfo struct {
	Name    string          `json:"name"`
	Pattern engine.Pattern  `json:"pattern"`
	Offsets []engine.Offset `json:"offsets"`
	Diagram string          `json:"diagram"`
}
