// Package engine provides the core game logic for Jody-Tama, an
// Onitama-style strategy game.
//
// The engine package implements the game mechanics including:
//   - The 5x5 board with one master and four apprentices per side
//   - The static catalog of 17 movement cards
//   - Card-driven move generation and legality checking
//   - Move execution with the three-way card exchange through the center
//   - Win detection by master capture or by reaching the opposing temple
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a deep-copied snapshot handed to
// UI clients, while GameConfig defines a rule variant (card pool, pattern
// orientation, status messages) loaded from JSON or YAML files.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig(), engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cards := gameEngine.GetPlayerCards(engine.Player1)
//	if gameEngine.SelectCard(cards[0]) {
//		moves := gameEngine.GetValidMoves()
//		m := moves[0]
//		gameEngine.ExecuteMove(m.From.Row, m.From.Col, m.To.Row, m.To.Col, m.Card)
//	}
//
// Game Rules:
//
// Player 1 starts on row 4 and player 2 on row 0. On each turn the current
// player moves one piece by an offset shown on one of their two cards, then
// the used card goes to the center and the previous center card joins their
// hand. A player wins by capturing the opposing master or by moving their
// own master onto the opposing master's starting cell.
//
// Every mutator reports rejection with false and leaves state untouched.
// GameEngine is not safe for concurrent use.
package engine
