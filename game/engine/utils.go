package engine

import "strings"

// PieceChar renders a piece as a single character: M/A for player 1, m/a for player 2
func PieceChar(p *Piece) string {
	if p == nil {
		return "."
	}
	ch := "A"
	if p.Kind == Master {
		ch = "M"
	}
	if p.Owner == Player2 {
		ch = strings.ToLower(ch)
	}
	return ch
}

// FormatBoard renders the board as five lines, row 0 first
func FormatBoard(b Board) string {
	var sb strings.Builder
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			sb.WriteString(PieceChar(b[row][col]))
		}
		if row < BoardSize-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatPattern renders a card pattern with the piece shown as "o"
func FormatPattern(p Pattern) string {
	var sb strings.Builder
	for r := 0; r < PatternSize; r++ {
		for c := 0; c < PatternSize; c++ {
			switch {
			case p[r][c] != 0 && !(r == 1 && c == 1):
				sb.WriteString("x")
			case r == 1 && c == 1:
				sb.WriteString("o")
			default:
				sb.WriteString(".")
			}
		}
		if r < PatternSize-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// CountPieces returns how many pieces player has on the board
func CountPieces(b Board, player PlayerID) int {
	return len(b.PiecesOf(player))
}

// MovesFrom filters moves to those starting at from
func MovesFrom(moves []Move, from Position) []Move {
	var out []Move
	for _, m := range moves {
		if m.From == from {
			out = append(out, m)
		}
	}
	return out
}
