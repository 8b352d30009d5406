/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific request-handling or system errors both
internally and in responses sent to control-plane callers.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1001

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1002

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1003

	// ErrMissingField indicates that a required field was absent from the request body.
	ErrMissingField = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
