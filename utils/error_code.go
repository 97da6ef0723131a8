package utils

// Stable numeric codes attached to API error responses so clients can branch
// without string matching.
const (
	ErrorTokenAuthFail = 10001
	ErrorRateLimited   = 10002
	ErrorInvalidCursor = 10003
)
