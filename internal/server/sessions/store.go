// Package sessions implements the server-side session table: opaque token →
// user id with a sliding idle timeout. The Store interface keeps the rest of
// the server independent of where the table lives, so the in-memory map can
// later be swapped for a distributed cache.
package sessions

import "context"

type Store interface {
	// Create registers a new session for userID and returns its token,
	// an unguessable random string handed to the client as an opaque
	// credential.
	Create(userID int64) (string, error)

	// Resolve returns the user id behind the token and refreshes its expiry
	// (sliding window). An absent or expired token yields ok=false; absence
	// is a normal unauthenticated result, not an error.
	Resolve(token string) (userID int64, ok bool)

	// Destroy removes the token unconditionally. Destroying an unknown token
	// is a no-op.
	Destroy(token string)

	// StartJanitor launches a background sweep of expired sessions that runs
	// until ctx is cancelled.
	StartJanitor(ctx context.Context)
}
