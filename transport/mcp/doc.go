// Package mcp exposes Jody-Tama as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON response is rendered as text for the caller.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board diagram, hands, selection and status
//   - select_piece, select_card: the selection protocol
//   - legal_moves: move enumeration filtered by piece and/or card
//   - execute_move: play (from_row, from_col, to_row, to_col, card)
//   - reset_game, move_history
//   - list_configs, list_cards, game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp, handled with GetMCPServer().HandleMessage
//
// The tools drive a game for an external client. Nothing here chooses moves.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
