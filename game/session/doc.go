// Package session provides session management for Jody-Tama.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Each Session owns its own engine, so games in different sessions never
// share state. IDs are the first eight hex characters of a random UUID and
// are matched case-insensitively. Sessions are not persisted; a restart
// starts with an empty manager.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config, engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
