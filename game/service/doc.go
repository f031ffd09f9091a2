// Package service provides the business logic layer for Jody-Tama.
//
// The service package implements:
//   - Multi-session game management
//   - Selection, move execution and legal move queries
//   - Paginated move history and per-session statistics
//   - Rule variant listing, loading and saving
//   - Game event fan-out to registered publishers
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages rule variant loading and validation.
// EventPublisher receives the GameEvents each operation produces; the
// websocket hub and the NATS bus both implement it.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. A single lock serializes every operation that touches a
// session, which is what makes the non-concurrent engine safe to share.
// Rejected selections and moves are not errors: they come back as an
// ActionResult with Success false and an explanatory Message.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithLogger(logger),
//		service.WithPublisher(hub),
//	)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.ExecuteMove(ctx, info.ID, service.MoveRequest{
//		FromRow: 4, FromCol: 2, ToRow: 3, ToCol: 2, Card: "Crane",
//	})
package service
