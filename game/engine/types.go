package engine

import "time"

// PlayerID identifies one of the two seats
type PlayerID int

const (
	NoPlayer PlayerID = 0
	Player1  PlayerID = 1
	Player2  PlayerID = 2
)

// Opponent returns the other seat
func (p PlayerID) Opponent() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Valid reports whether p is one of the two seats
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

// PieceKind distinguishes masters from apprentices
type PieceKind string

const (
	Master     PieceKind = "master"
	Apprentice PieceKind = "apprentice"
)

// Phase is the coarse game status
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// VictoryCondition classifies how a game ended
type VictoryCondition string

const (
	VictoryNone          VictoryCondition = "none"
	VictoryMasterCapture VictoryCondition = "master_capture"
	VictoryTemple        VictoryCondition = "temple"
)

// Outcome reasons reported to clients
const (
	ReasonMasterCaptured = "Master captured"
	ReasonTempleReached  = "Master reached temple"
)

const (
	// BoardSize is the edge length of the square board
	BoardSize = 5
	// HandSize is the number of cards each player holds
	HandSize = 2
	// DealSize is the number of cards active in one game
	DealSize = 2*HandSize + 1
	// PatternSize is the edge length of a card pattern
	PatternSize = 3
)

// Position is a board coordinate; row 0 is player 2's home rank
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Piece is a single piece on the board
type Piece struct {
	Kind  PieceKind `json:"kind"`
	Owner PlayerID  `json:"owner"`
}

// Move is a legal (origin, destination, card) triple
type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
	Card string   `json:"card"`
}

// MoveRecord is one entry in the game history
type MoveRecord struct {
	From       Position  `json:"from"`
	To         Position  `json:"to"`
	Card       string    `json:"card"`
	Player     PlayerID  `json:"player"`
	Captured   *Piece    `json:"captured,omitempty"`
	MoveNumber int       `json:"move_number"`
	Timestamp  time.Time `json:"timestamp"`
}

// Outcome is set once the game has a winner
type Outcome struct {
	Winner    PlayerID         `json:"winner"`
	Reason    string           `json:"reason"`
	Condition VictoryCondition `json:"condition"`
}

// SelectionKind tags the active selection
type SelectionKind string

const (
	SelectionNone  SelectionKind = "none"
	SelectionPiece SelectionKind = "piece"
	SelectionCard  SelectionKind = "card"
)

// Selection is either nothing, a piece on the board, or a card in hand.
// Only the payload matching Kind is meaningful.
type Selection struct {
	Kind     SelectionKind `json:"kind"`
	Position *Position     `json:"position,omitempty"`
	Card     string        `json:"card,omitempty"`
}

// IsPiece reports whether a piece is selected
func (s Selection) IsPiece() bool { return s.Kind == SelectionPiece }

// IsCard reports whether a card is selected
func (s Selection) IsCard() bool { return s.Kind == SelectionCard }

func noSelection() Selection { return Selection{Kind: SelectionNone} }

func pieceSelection(row, col int) Selection {
	return Selection{Kind: SelectionPiece, Position: &Position{Row: row, Col: col}}
}

func cardSelection(name string) Selection {
	return Selection{Kind: SelectionCard, Card: name}
}

// Hands holds the card assignment of one game
type Hands struct {
	Player1 []string `json:"player1"`
	Player2 []string `json:"player2"`
	Center  string   `json:"center"`
}

// GameState is a point-in-time snapshot of an engine, safe to hand to UI clients
type GameState struct {
	Board         [BoardSize][BoardSize]*Piece `json:"board"`
	CurrentPlayer PlayerID                     `json:"current_player"`
	Phase         Phase                        `json:"phase"`
	GameOver      bool                         `json:"game_over"`
	Selection     Selection                    `json:"selection"`
	ValidMoves    []Move                       `json:"valid_moves"`
	Hands         Hands                        `json:"hands"`
	History       []MoveRecord                 `json:"history"`
	Outcome       *Outcome                     `json:"outcome,omitempty"`
	Message       string                       `json:"message"`
	ConfigName    string                       `json:"config_name"`

	MoveCount  int       `json:"move_count"`
	TurnCount  int       `json:"turn_count"`
	StartedAt  time.Time `json:"started_at"`
	LastMoveAt time.Time `json:"last_move_at,omitempty"`
}

// Stats accumulates results across games played on one engine
type Stats struct {
	GamesPlayed       int            `json:"games_played"`
	Player1Wins       int            `json:"player1_wins"`
	Player2Wins       int            `json:"player2_wins"`
	TotalMoves        int            `json:"total_moves"`
	AverageGameLength float64        `json:"average_game_length"`
	CardUsage         map[string]int `json:"card_usage"`
}
