// Package directory defines the contract for the external member-identity
// surface: applying nickname rewrites and updating a channel's visible
// status label. Implementations wrap the chat platform and may fail with
// permission errors; the core reports such failures back to the acting user
// without changing its own state.
package directory

import "context"

// Directory applies member and channel mutations on the chat platform.
type Directory interface {
	// Rename sets a member's nickname within a channel's guild. An empty
	// nick clears the nickname so the member reverts to their handle.
	Rename(ctx context.Context, channelID, memberID, nick string) error

	// SetStatus sets the channel's visible status label. An empty status
	// clears it.
	SetStatus(ctx context.Context, channelID, status string) error
}
