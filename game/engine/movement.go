package engine

// patternFor returns the card pattern as seen by player
func (e *GameEngine) patternFor(card Card, player PlayerID) Pattern {
	if player == Player2 && e.config != nil && e.config.RotateSecondPlayer {
		return card.Pattern.Rotated()
	}
	return card.Pattern
}

// movesForPieceWithCard enumerates the legal moves of the current player's
// piece at from under a single card.
func (e *GameEngine) movesForPieceWithCard(from Position, card Card) []Move {
	piece := e.board.At(from.Row, from.Col)
	if piece == nil || piece.Owner != e.currentPlayer {
		return nil
	}

	pattern := e.patternFor(card, e.currentPlayer)
	var moves []Move
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if pattern[dr+1][dc+1] == 0 {
				continue
			}
			to := Position{Row: from.Row + dr, Col: from.Col + dc}
			if !InBounds(to.Row, to.Col) {
				continue
			}
			if target := e.board[to.Row][to.Col]; target != nil && target.Owner == e.currentPlayer {
				continue
			}
			moves = append(moves, Move{From: from, To: to, Card: card.Name})
		}
	}
	return moves
}

// LegalMovesForPiece returns every legal move of the piece at (row, col)
// across both of the current player's cards.
func (e *GameEngine) LegalMovesForPiece(row, col int) []Move {
	if e.phase != PhasePlaying {
		return nil
	}
	piece := e.board.At(row, col)
	if piece == nil || piece.Owner != e.currentPlayer {
		return nil
	}

	from := Position{Row: row, Col: col}
	var moves []Move
	for _, name := range e.handOf(e.currentPlayer) {
		card, ok := LookupCard(name)
		if !ok {
			continue
		}
		moves = append(moves, e.movesForPieceWithCard(from, card)...)
	}
	return moves
}

// LegalMovesForCard returns every legal move any current-player piece can
// make with the named card. The card must be in the current player's hand.
func (e *GameEngine) LegalMovesForCard(name string) []Move {
	if e.phase != PhasePlaying || !e.holdsCard(e.currentPlayer, name) {
		return nil
	}
	card, ok := LookupCard(name)
	if !ok {
		return nil
	}

	var moves []Move
	for _, from := range e.board.PiecesOf(e.currentPlayer) {
		moves = append(moves, e.movesForPieceWithCard(from, card)...)
	}
	return moves
}

// isLegal recomputes the legal set for (from, card) and checks for the exact triple
func (e *GameEngine) isLegal(from, to Position, cardName string) bool {
	if !e.holdsCard(e.currentPlayer, cardName) {
		return false
	}
	card, ok := LookupCard(cardName)
	if !ok {
		return false
	}
	for _, m := range e.movesForPieceWithCard(from, card) {
		if m.To == to {
			return true
		}
	}
	return false
}

// ContainsMove reports whether moves contains the exact triple
func ContainsMove(moves []Move, from, to Position, card string) bool {
	for _, m := range moves {
		if m.From == from && m.To == to && m.Card == card {
			return true
		}
	}
	return false
}
