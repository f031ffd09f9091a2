// Package api provides HTTP REST API handlers for Jody-Tama.
//
// The api package implements:
//   - Session management endpoints
//   - Selection, legal move and move execution endpoints
//   - Move history and statistics
//   - Rule variant and card catalog endpoints
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic", "seed": 7})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/select-piece - {"row": 4, "col": 2}
//   - POST /api/sessions/{id}/select-card - {"card": "Crane"}
//   - POST /api/sessions/{id}/clear-selection
//   - GET /api/sessions/{id}/moves - Legal moves (?row=4&col=2 and/or ?card=Crane)
//   - POST /api/sessions/{id}/move - {"from_row": 4, "from_col": 2, "to_row": 3, "to_col": 2, "card": "Crane"}
//   - POST /api/sessions/{id}/reset
//   - GET /api/sessions/{id}/history - Paginated history (?page=1&limit=20&order=desc)
//   - GET /api/sessions/{id}/stats
//
// Configuration and Cards:
//   - GET /api/configs, POST /api/configs, GET /api/configs/{name}
//   - GET /api/cards, GET /api/cards/{name}
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - Spectator WebSocket
//
// An illegal selection or move is not an HTTP error: the response is 200
// with "success": false and a message. Errors are returned as JSON:
//
//	{
//	  "error": "session not found: abc123",
//	  "code": 404
//	}
//
// Missing sessions, configs and cards map to 404, malformed requests to 400.
package api
