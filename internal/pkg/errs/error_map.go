/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses, error frames, and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every
// application error code. Reason is the stable rejection token carried in
// error frames; Message is the human-readable description.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Reason: "InvalidParams", Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Reason: "UnsupportedMediaType", Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Reason: "InvalidJSON", Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Reason: "ExtraContent", Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Reason: "RateLimited", Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Session and Messaging Validation Errors
	ErrInvalidName:   {Code: ErrInvalidName, Reason: "InvalidName", Message: "Display name must not be empty."},
	ErrNotJoined:     {Code: ErrNotJoined, Reason: "NotJoined", Message: "Join a room before sending messages."},
	ErrEmptyBody:     {Code: ErrEmptyBody, Reason: "EmptyBody", Message: "Message body must not be empty."},
	ErrRoomMismatch:  {Code: ErrRoomMismatch, Reason: "RoomMismatch", Message: "Message does not belong to your room."},
	ErrAlreadyJoined: {Code: ErrAlreadyJoined, Reason: "AlreadyJoined", Message: "You are already in a room."},
	ErrInvalidRoom:   {Code: ErrInvalidRoom, Reason: "InvalidRoom", Message: "Invalid room identifier."},
	ErrRoomNotFound:  {Code: ErrRoomNotFound, Reason: "RoomNotFound", Message: "Chat room not found.", Status: http.StatusNotFound},

	// 3xxx: Connection State Errors
	ErrConnectionNotFound: {Code: ErrConnectionNotFound, Reason: "ConnectionNotFound", Message: "Connection is already gone.", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Reason: "Unknown", Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
