package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/jodytama/game/engine"
	"github.com/wricardo/jodytama/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Jody-Tama",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Jody-Tama - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Two players each command a master (M) and four apprentices (A) on a 5x5
board. Player 1 pieces are upper case, player 2 lower case. Moves come from
movement cards: each player holds two, one sits in the center. Playing a card
swaps it with the center card.

AVAILABLE TOOLS:
- create_session, list_sessions, get_session: session management
- game_state: board, hands, selection and status
- select_piece, select_card: highlight the legal moves of a piece or card
- legal_moves: enumerate legal moves without changing the selection
- execute_move: play a move (from, to, card)
- reset_game: redeal and restart
- move_history: past moves
- list_configs, list_cards: rule variants and the card catalog
- game_instructions: full rules`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional rule variant and shuffle seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": stringProperty("Rule variant to use (optional, see list_configs)"),
				"seed":      intProperty("Seed for a reproducible deal (optional)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_piece",
		Description: "Select one of the current player's pieces and list its legal moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row":        intProperty("Row of the piece (0-4, row 0 is player 2's home rank)"),
				"col":        intProperty("Column of the piece (0-4)"),
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleSelectPiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_card",
		Description: "Select one of the current player's cards and list its legal moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"card":       stringProperty("Card name"),
			},
			Required: []string{"session_id", "card"},
		},
	}, c.handleSelectCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List legal moves of the current player, optionally filtered by piece and/or card",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row":        intProperty("Row of a piece to filter by (requires col)"),
				"col":        intProperty("Column of a piece to filter by (requires row)"),
				"card":       stringProperty("Card name to filter by"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "execute_move",
		Description: "Move a piece with one of the current player's cards",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"from_row":   intProperty("Origin row"),
				"from_col":   intProperty("Origin column"),
				"to_row":     intProperty("Destination row"),
				"to_col":     intProperty("Destination column"),
				"card":       stringProperty("Card used for the move"),
			},
			Required: []string{"session_id", "from_row", "from_col", "to_row", "to_col", "card"},
		},
	}, c.handleExecuteMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Redeal the cards and restart the game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page":       intProperty("Page number"),
				"limit":      intProperty("Items per page"),
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rule variants",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_cards",
		Description: "List the movement card catalog with move diagrams",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListCards)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the full game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	req := service.CreateSessionRequest{}
	req.ConfigName, _ = args["config_id"].(string)
	if seed, ok := intArg(args, "seed"); ok {
		if seed < 0 {
			return mcp.NewToolResultError("seed must not be negative"), nil
		}
		s := uint64(seed)
		req.Seed = &s
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", req, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.GameOver {
			status = "finished"
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSelectPiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	var result service.ActionResult
	body := map[string]int{"row": row, "col": col}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select-piece"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleSelectCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	card, _ := args["card"].(string)
	if card == "" {
		return mcp.NewToolResultError("card is required"), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select-card"), map[string]string{"card": card}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if row, ok := intArg(args, "row"); ok {
		params.Set("row", fmt.Sprint(row))
	}
	if col, ok := intArg(args, "col"); ok {
		params.Set("col", fmt.Sprint(col))
	}
	if card, _ := args["card"].(string); card != "" {
		params.Set("card", card)
	}

	path := sessionPath(sessionID, "/moves")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var moves service.LegalMovesResponse
	if err := c.apiCall(ctx, "GET", path, nil, &moves); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Legal moves for player %d (%d):\n", moves.Player, moves.Count)
	for _, m := range moves.Moves {
		b.WriteString("- " + formatMove(m) + "\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleExecuteMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var req service.MoveRequest
	var ok [4]bool
	req.FromRow, ok[0] = intArg(args, "from_row")
	req.FromCol, ok[1] = intArg(args, "from_col")
	req.ToRow, ok[2] = intArg(args, "to_row")
	req.ToCol, ok[3] = intArg(args, "to_col")
	req.Card, _ = args["card"].(string)
	if !(ok[0] && ok[1] && ok[2] && ok[3]) || req.Card == "" {
		return mcp.NewToolResultError("from_row, from_col, to_row, to_col and card are required"), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Deck: %d cards, Rotate for player 2: %t\n\n",
			config.Name, config.ConfigID, config.Description, config.DeckSize, config.RotateSecondPlayer)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var cards []service.CardInfo
	if err := c.apiCall(ctx, "GET", "/api/cards", nil, &cards); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Card Catalog (%d):\n", len(cards))
	for _, card := range cards {
		fmt.Fprintf(&b, "\n%s\n%s\n", card.Name, card.Diagram)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `JODY-TAMA RULES

BOARD:
- 5x5 grid, rows 0-4 top to bottom, columns 0-4 left to right
- Player 1 starts on row 4, player 2 on row 0
- Each side has a master (M/m) in column 2 and four apprentices (A/a)
- Player 1 pieces are upper case, player 2 pieces lower case
- Temples: (0,2) is player 1's goal, (4,2) is player 2's goal

CARDS:
- Five cards are dealt from the deck: two per player and one in the center
- A card is a 3x3 diagram centered on the piece (o); x marks a reachable square
- Diagrams are drawn from the board's point of view, row 0 at the top
- Some rule variants rotate the diagrams for player 2

TURN:
1. Pick one of your pieces and one of your two cards
2. Move the piece to a square marked on the card
3. You may not land on your own piece; landing on an opponent captures it
4. The card you used goes to the center and you take the old center card

VICTORY:
- Capture the opposing master, or
- Move your master onto the opposing temple
- Capture is checked first

TOOLS:
- select_piece / select_card highlight legal moves (selecting one clears the other)
- legal_moves lists moves without touching the selection
- execute_move plays from_row, from_col, to_row, to_col with a card
- An illegal move is rejected and the game state does not change`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatMove(m engine.Move) string {
	return fmt.Sprintf("(%d,%d) -> (%d,%d) with %s", m.From.Row, m.From.Col, m.To.Row, m.To.Col, m.Card)
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Player %d to move | Turn: %d | Moves: %d\n\n", state.CurrentPlayer, state.TurnCount, state.MoveCount)

	b.WriteString("  01234\n")
	for i, line := range strings.Split(engine.FormatBoard(state.Board), "\n") {
		fmt.Fprintf(&b, "%d %s\n", i, line)
	}

	fmt.Fprintf(&b, "\nPlayer 1 cards: %s\n", strings.Join(state.Hands.Player1, ", "))
	fmt.Fprintf(&b, "Player 2 cards: %s\n", strings.Join(state.Hands.Player2, ", "))
	fmt.Fprintf(&b, "Center card: %s\n", state.Hands.Center)

	switch {
	case state.Selection.IsPiece() && state.Selection.Position != nil:
		fmt.Fprintf(&b, "Selected piece: (%d,%d)\n", state.Selection.Position.Row, state.Selection.Position.Col)
	case state.Selection.IsCard():
		fmt.Fprintf(&b, "Selected card: %s\n", state.Selection.Card)
	}
	if len(state.ValidMoves) > 0 {
		b.WriteString("Highlighted moves:\n")
		for _, m := range state.ValidMoves {
			b.WriteString("  " + formatMove(m) + "\n")
		}
	}

	if state.GameOver && state.Outcome != nil {
		fmt.Fprintf(&b, "\nGAME OVER: player %d wins (%s)", state.Outcome.Winner, state.Outcome.Reason)
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	status := "✓"
	if !result.Success {
		status = "✗"
	}
	response := fmt.Sprintf("%s %s\n", status, result.Message)
	for _, ev := range result.Events {
		if ev.Type == service.EventCapture && ev.Captured != nil {
			response += fmt.Sprintf("Captured %s\n", engine.PieceChar(ev.Captured))
		}
	}
	return response + "\n" + formatGameState(result.GameState)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "%d. Player %d (%d,%d) -> (%d,%d) with %s",
			move.MoveNumber, move.Player, move.From.Row, move.From.Col, move.To.Row, move.To.Col, move.Card)
		if move.Captured != nil {
			fmt.Fprintf(&b, " captures %s", engine.PieceChar(move.Captured))
		}
		b.WriteString("\n")
	}

	return b.String()
}
