/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in frames sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Session and Messaging Validation Errors.
// These are reported to the sender; the connection stays usable.
const (
	// ErrInvalidName rejects a join whose display name is empty after trimming.
	ErrInvalidName = 2001

	// ErrNotJoined rejects a message from a connection not currently joined to any room.
	ErrNotJoined = 2002

	// ErrEmptyBody rejects a message whose body is empty after trimming.
	ErrEmptyBody = 2003

	// ErrRoomMismatch rejects a message claiming a room other than the sender's
	// joined room, which would otherwise allow spoofed cross-room injection.
	ErrRoomMismatch = 2004

	// ErrAlreadyJoined rejects a join from a connection already joined to a different room.
	ErrAlreadyJoined = 2005

	// ErrInvalidRoom rejects a join whose room identifier is empty.
	ErrInvalidRoom = 2006

	// ErrRoomNotFound indicates the queried room does not currently exist.
	ErrRoomNotFound = 2007
)

// 3xxx: Connection State Errors
const (
	// ErrConnectionNotFound indicates a lookup or unregister of an unknown
	// connection id. Callers treat this as benign: the connection is already gone.
	ErrConnectionNotFound = 3001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
