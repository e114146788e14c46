/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize the unicast error replies handlers send back to clients (§7).
*/
package errs

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the client-facing message.
var errorMap = map[int]CustomError{
	ErrServerFull:        {Code: ErrServerFull, Message: "Error: Server is full. Connection rejected."},
	ErrRoomLimitExceeded: {Code: ErrRoomLimitExceeded, Message: "Error: Channel limit reached. Could not create channel %q."},

	ErrUserNotOnline:   {Code: ErrUserNotOnline, Message: "Error: User %s is not online."},
	ErrChannelNotFound: {Code: ErrChannelNotFound, Message: "Error: Channel %s does not exist."},
	ErrNotInChannel:    {Code: ErrNotInChannel, Message: "Error: You are not currently in a channel."},

	ErrUnknown: {Code: ErrUnknown, Message: "An unexpected server error occurred."},
}
