package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	Setup()
	Reset() *GameState

	// Game state
	GetState() *GameState
	GetBoard() Board
	CurrentPlayer() PlayerID
	Phase() Phase
	IsGameOver() bool
	GetOutcome() *Outcome
	CheckWinCondition() *Outcome

	// Selection
	SelectPiece(row, col int) bool
	SelectCard(name string) bool
	ClearSelection()
	GetSelection() Selection
	GetValidMoves() []Move

	// Movement
	LegalMovesForPiece(row, col int) []Move
	LegalMovesForCard(name string) []Move
	ExecuteMove(fromRow, fromCol, toRow, toCol int, card string) bool

	// Cards
	GetPlayerCards(player PlayerID) []string
	GetCenterCard() string

	// History and statistics
	GetMoveHistory() []MoveRecord
	GetLastMove() *MoveRecord
	GetStats() Stats
	ResetStats()

	// Configuration
	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers that share an engine must serialize access.
type GameEngine struct {
	config *GameConfig
	rng    *rand.Rand
	clock  Clock

	board         Board
	currentPlayer PlayerID
	phase         Phase
	selection     Selection
	validMoves    []Move
	hands         [2][]string
	center        string
	history       []MoveRecord
	outcome       *Outcome
	message       string
	turnCount     int
	startedAt     time.Time
	lastMoveAt    time.Time

	stats Stats
}

// Option customizes a GameEngine at construction
type Option func(*GameEngine)

// WithRand injects the random source used for shuffling
func WithRand(r *rand.Rand) Option {
	return func(e *GameEngine) { e.rng = r }
}

// WithSeed makes dealing deterministic
func WithSeed(seed uint64) Option {
	return func(e *GameEngine) { e.rng = NewSeededRand(seed) }
}

// WithClock injects the time source for history timestamps
func WithClock(c Clock) Option {
	return func(e *GameEngine) { e.clock = c }
}

// NewEngine creates a new game engine with the provided configuration and
// deals the first game.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config: config,
		clock:  RealClock{},
		stats:  Stats{CardUsage: make(map[string]int)},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		if config.Seed != nil {
			e.rng = NewSeededRand(*config.Seed)
		} else {
			e.rng = newRandomRand()
		}
	}

	e.Setup()
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), opts...)
	if err != nil {
		panic(fmt.Sprintf("engine: default config rejected: %v", err))
	}
	return e
}

// Setup clears the board, places both armies, and deals a fresh five-card draw
func (e *GameEngine) Setup() {
	e.board.setupStartingRanks()

	hands, err := Deal(e.config.Pool(), e.rng)
	if err != nil {
		// The pool size is checked by ValidateGameConfig.
		panic(fmt.Sprintf("engine: %v", err))
	}
	e.hands[0] = hands.Player1
	e.hands[1] = hands.Player2
	e.center = hands.Center

	e.currentPlayer = Player1
	e.phase = PhasePlaying
	e.selection = noSelection()
	e.validMoves = nil
	e.history = nil
	e.outcome = nil
	e.turnCount = 1
	e.startedAt = e.clock.Now()
	e.lastMoveAt = time.Time{}
	e.message = e.config.welcome()

	e.assertInvariants()
}

// Reset starts a new game with a fresh shuffle; statistics are kept
func (e *GameEngine) Reset() *GameState {
	e.Setup()
	return e.GetState()
}

// SelectPiece selects the current player's piece at (row, col) and computes
// its legal moves across both cards in hand.
func (e *GameEngine) SelectPiece(row, col int) bool {
	if e.phase != PhasePlaying {
		return false
	}
	piece := e.board.At(row, col)
	if piece == nil || piece.Owner != e.currentPlayer {
		return false
	}

	e.selection = pieceSelection(row, col)
	e.validMoves = e.LegalMovesForPiece(row, col)
	return true
}

// SelectCard selects one of the current player's cards and computes the
// legal moves of every friendly piece under it.
func (e *GameEngine) SelectCard(name string) bool {
	if e.phase != PhasePlaying || !e.holdsCard(e.currentPlayer, name) {
		return false
	}

	e.selection = cardSelection(name)
	e.validMoves = e.LegalMovesForCard(name)
	return true
}

// ClearSelection drops any active selection
func (e *GameEngine) ClearSelection() {
	e.selection = noSelection()
	e.validMoves = nil
}

// ExecuteMove plays the current player's piece from (fromRow, fromCol) to
// (toRow, toCol) using card. The move is validated against a freshly computed
// legal set; cached selection state is not consulted.
func (e *GameEngine) ExecuteMove(fromRow, fromCol, toRow, toCol int, card string) bool {
	if e.phase != PhasePlaying {
		return false
	}
	from := Position{Row: fromRow, Col: fromCol}
	to := Position{Row: toRow, Col: toCol}
	if !e.isLegal(from, to, card) {
		return false
	}

	now := e.clock.Now()
	mover := e.currentPlayer

	captured := e.board.move(from, to)
	e.history = append(e.history, MoveRecord{
		From:       from,
		To:         to,
		Card:       card,
		Player:     mover,
		Captured:   captured,
		MoveNumber: len(e.history) + 1,
		Timestamp:  now,
	})
	e.exchangeCard(mover, card)
	e.lastMoveAt = now
	e.stats.CardUsage[card]++

	if outcome := e.CheckWinCondition(); outcome != nil {
		e.finish(outcome)
	} else {
		e.currentPlayer = mover.Opponent()
		e.turnCount++
		e.message = e.config.turnMessage(e.currentPlayer)
	}
	e.ClearSelection()

	e.assertInvariants()
	return true
}

// exchangeCard rotates the used card through the center:
// hand -> center, center -> hand.
func (e *GameEngine) exchangeCard(player PlayerID, used string) {
	idx := int(player) - 1
	hand := e.hands[idx]
	next := make([]string, 0, HandSize)
	for _, name := range hand {
		if name != used {
			next = append(next, name)
		}
	}
	next = append(next, e.center)
	e.hands[idx] = next
	e.center = used
}

// CheckWinCondition evaluates the board. A missing master is checked before
// a master on the opposing temple.
func (e *GameEngine) CheckWinCondition() *Outcome {
	p1Master, p1Alive := e.board.FindMaster(Player1)
	p2Master, p2Alive := e.board.FindMaster(Player2)

	if !p1Alive {
		return &Outcome{Winner: Player2, Reason: ReasonMasterCaptured, Condition: VictoryMasterCapture}
	}
	if !p2Alive {
		return &Outcome{Winner: Player1, Reason: ReasonMasterCaptured, Condition: VictoryMasterCapture}
	}

	if p1Master == TempleOf(Player1) {
		return &Outcome{Winner: Player1, Reason: ReasonTempleReached, Condition: VictoryTemple}
	}
	if p2Master == TempleOf(Player2) {
		return &Outcome{Winner: Player2, Reason: ReasonTempleReached, Condition: VictoryTemple}
	}

	return nil
}

func (e *GameEngine) finish(outcome *Outcome) {
	e.outcome = outcome
	e.phase = PhaseGameOver
	e.message = e.config.victoryMessage(outcome)

	e.stats.GamesPlayed++
	e.stats.TotalMoves += len(e.history)
	switch outcome.Winner {
	case Player1:
		e.stats.Player1Wins++
	case Player2:
		e.stats.Player2Wins++
	}
	e.stats.AverageGameLength = float64(e.stats.TotalMoves) / float64(e.stats.GamesPlayed)
}

func (e *GameEngine) handOf(player PlayerID) []string {
	if !player.Valid() {
		return nil
	}
	return e.hands[int(player)-1]
}

func (e *GameEngine) holdsCard(player PlayerID, name string) bool {
	for _, c := range e.handOf(player) {
		if c == name {
			return true
		}
	}
	return false
}

// GetState returns a deep-copied snapshot of the game
func (e *GameEngine) GetState() *GameState {
	board := e.board.Clone()
	state := &GameState{
		Board:         board,
		CurrentPlayer: e.currentPlayer,
		Phase:         e.phase,
		GameOver:      e.phase == PhaseGameOver,
		Selection:     e.GetSelection(),
		ValidMoves:    e.GetValidMoves(),
		Hands: Hands{
			Player1: e.GetPlayerCards(Player1),
			Player2: e.GetPlayerCards(Player2),
			Center:  e.center,
		},
		History:    e.GetMoveHistory(),
		Outcome:    e.GetOutcome(),
		Message:    e.message,
		ConfigName: e.config.Name,
		MoveCount:  len(e.history),
		TurnCount:  e.turnCount,
		StartedAt:  e.startedAt,
		LastMoveAt: e.lastMoveAt,
	}
	return state
}

// GetBoard returns a copy of the board
func (e *GameEngine) GetBoard() Board {
	return e.board.Clone()
}

// CurrentPlayer returns the player to move
func (e *GameEngine) CurrentPlayer() PlayerID {
	return e.currentPlayer
}

// Phase returns whether the game is still being played
func (e *GameEngine) Phase() Phase {
	return e.phase
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.phase == PhaseGameOver
}

// GetOutcome returns the winner, or nil while the game is in progress
func (e *GameEngine) GetOutcome() *Outcome {
	if e.outcome == nil {
		return nil
	}
	o := *e.outcome
	return &o
}

// GetSelection returns the active selection
func (e *GameEngine) GetSelection() Selection {
	s := e.selection
	if s.Position != nil {
		p := *s.Position
		s.Position = &p
	}
	return s
}

// GetValidMoves returns the legal moves of the active selection
func (e *GameEngine) GetValidMoves() []Move {
	out := make([]Move, len(e.validMoves))
	copy(out, e.validMoves)
	return out
}

// GetPlayerCards returns the names of the cards player holds
func (e *GameEngine) GetPlayerCards(player PlayerID) []string {
	hand := e.handOf(player)
	out := make([]string, len(hand))
	copy(out, hand)
	return out
}

// GetCenterCard returns the card waiting in the center slot
func (e *GameEngine) GetCenterCard() string {
	return e.center
}

// GetMoveHistory returns the moves of the current game
func (e *GameEngine) GetMoveHistory() []MoveRecord {
	out := make([]MoveRecord, len(e.history))
	for i, rec := range e.history {
		if rec.Captured != nil {
			cp := *rec.Captured
			rec.Captured = &cp
		}
		out[i] = rec
	}
	return out
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveRecord {
	if len(e.history) == 0 {
		return nil
	}
	history := e.GetMoveHistory()
	return &history[len(history)-1]
}

// GetStats returns the accumulated results of finished games
func (e *GameEngine) GetStats() Stats {
	s := e.stats
	s.CardUsage = make(map[string]int, len(e.stats.CardUsage))
	for k, v := range e.stats.CardUsage {
		s.CardUsage[k] = v
	}
	return s
}

// ResetStats clears accumulated statistics. The game in progress is untouched.
func (e *GameEngine) ResetStats() {
	e.stats = Stats{CardUsage: make(map[string]int)}
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}
