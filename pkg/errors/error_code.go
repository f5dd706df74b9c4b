package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidFill          ErrorCode = 102
	ErrCodeInvalidTick          ErrorCode = 103
	ErrCodeInvalidOrderUpdate   ErrorCode = 104
	ErrCodeInvalidOrderIntent   ErrorCode = 105
	ErrCodeInvalidStepPolicy    ErrorCode = 106
	ErrCodeMissingParameter     ErrorCode = 107
	ErrCodeInvalidVersion       ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeConfigReadFailed ErrorCode = 201
	ErrCodeUnknownOrder     ErrorCode = 202

	// Engine errors (400-499)
	ErrCodeDuplicateOrderID ErrorCode = 400
	ErrCodeEngineStopped    ErrorCode = 401
	ErrCodeVersionMismatch  ErrorCode = 402

	// Trading errors (500-599)
	ErrCodeOrderFailed        ErrorCode = 500
	ErrCodeCancelFailed       ErrorCode = 501
	ErrCodeGatewayUnavailable ErrorCode = 502
	ErrCodeUnsupportedGateway ErrorCode = 503
	ErrCodeUserStreamFailed   ErrorCode = 504

	// Market data errors (700-799)
	ErrCodeFeedStartFailed  ErrorCode = 700
	ErrCodeFeedParseFailed  ErrorCode = 701
	ErrCodeUnsupportedFeed  ErrorCode = 702
	ErrCodeFeedDisconnected ErrorCode = 703
)
