package engine

// Board is the 5x5 grid; nil cells are empty
type Board [BoardSize][BoardSize]*Piece

// Temple cells: each master wins by reaching the opponent's home-rank center
var (
	player1Temple = Position{Row: 0, Col: 2}
	player2Temple = Position{Row: BoardSize - 1, Col: 2}
)

// InBounds reports whether (row, col) lies on the board
func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// IsTemple reports whether (row, col) is either temple cell
func IsTemple(row, col int) bool {
	p := Position{Row: row, Col: col}
	return p == player1Temple || p == player2Temple
}

// TempleOf returns the cell the given player's master must reach
func TempleOf(player PlayerID) Position {
	if player == Player1 {
		return player1Temple
	}
	return player2Temple
}

// At returns the piece at (row, col), or nil when empty or off the board
func (b *Board) At(row, col int) *Piece {
	if !InBounds(row, col) {
		return nil
	}
	return b[row][col]
}

// Clear empties every cell
func (b *Board) Clear() {
	*b = Board{}
}

// setupStartingRanks places player 1 on the bottom rank and player 2 on the
// top rank, each with the master in the center column.
func (b *Board) setupStartingRanks() {
	b.Clear()
	for col := 0; col < BoardSize; col++ {
		kind := Apprentice
		if col == BoardSize/2 {
			kind = Master
		}
		b[BoardSize-1][col] = &Piece{Kind: kind, Owner: Player1}
		b[0][col] = &Piece{Kind: kind, Owner: Player2}
	}
}

// move relocates the piece at from to to and returns whatever occupied to
func (b *Board) move(from, to Position) *Piece {
	captured := b[to.Row][to.Col]
	b[to.Row][to.Col] = b[from.Row][from.Col]
	b[from.Row][from.Col] = nil
	return captured
}

// PiecesOf lists the positions of every piece owned by player, row-major
func (b *Board) PiecesOf(player PlayerID) []Position {
	var positions []Position
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b[row][col]; p != nil && p.Owner == player {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	}
	return positions
}

// FindMaster returns the position of player's master, if still on the board
func (b *Board) FindMaster(player PlayerID) (Position, bool) {
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b[row][col]; p != nil && p.Owner == player && p.Kind == Master {
				return Position{Row: row, Col: col}, true
			}
		}
	}
	return Position{}, false
}

// countMasters returns how many masters player has on the board
func (b *Board) countMasters(player PlayerID) int {
	n := 0
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b[row][col]; p != nil && p.Owner == player && p.Kind == Master {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy; pieces are copied so callers cannot mutate the engine
func (b *Board) Clone() Board {
	var out Board
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b[row][col]; p != nil {
				cp := *p
				out[row][col] = &cp
			}
		}
	}
	return out
}
