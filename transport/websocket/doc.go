// Package websocket provides the spectator WebSocket transport for Jody-Tama.
//
// The websocket package implements:
//   - Session-scoped WebSocket connections
//   - Game state broadcasting after every state change
//   - Game event fan-out as a service.EventPublisher
//
// Architecture:
//
// A central Hub owns every connection. Registration, removal, broadcasting
// and client counting all run on the goroutine executing Run, so no lock
// guards the client table. Each connection gets a read pump and a write pump.
//
// Message Protocol:
//
// Clients only listen. Outgoing frames are JSON Message values:
//   - {"event": "state_update", "session_id": "...", "game_state": {...}}
//   - {"event": "game_events", "session_id": "...", "events": [...]}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// A client whose send buffer is full is dropped rather than stalling the hub.
package websocket
