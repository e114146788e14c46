/*
Package errs provides custom error types and application-level error code constants.

These error codes identify the error kinds named in the system's error
handling design (§7): capacity rejections, routing failures, and presence
lookups that come up empty.
*/
package errs

// 1xxx: Registry capacity errors
const (
	// ErrServerFull indicates the client registry has no free slot for REGISTER.
	ErrServerFull = 1001

	// ErrRoomLimitExceeded indicates JOIN named a new channel but the room table is full.
	ErrRoomLimitExceeded = 1002
)

// 2xxx: Presence / routing errors
const (
	// ErrUserNotOnline indicates a DM target handle has no registry entry.
	ErrUserNotOnline = 2001

	// ErrChannelNotFound indicates WHO named a channel with no room entry.
	ErrChannelNotFound = 2002

	// ErrNotInChannel indicates MSG or LEAVE was issued by a client with an empty current_channel.
	ErrNotInChannel = 2003
)

// 5xxx: Internal errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
