package errors

// ErrorCode identifies the kind of failure behind an Error.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 105
	ErrCodeMissingParameter     ErrorCode = 109

	// Data errors (200-299)
	ErrCodeDataNotFound ErrorCode = 200
	ErrCodeQueryFailed  ErrorCode = 202

	// Trading errors (500-599)
	ErrCodeOrderFailed       ErrorCode = 500
	ErrCodeMarketDataMissing ErrorCode = 502

	// Fill errors (900-949)
	ErrCodeInvalidOrderTransition ErrorCode = 900
	ErrCodeUnsupportedOrderType   ErrorCode = 901
	ErrCodeOrderNotFound          ErrorCode = 902

	// Portfolio and cash errors (950-999)
	ErrCodeSecurityNotFound      ErrorCode = 950
	ErrCodeUnsupportedCurrency   ErrorCode = 951
	ErrCodeDuplicateSecurity     ErrorCode = 952
	ErrCodeInvalidSecurity       ErrorCode = 953
	ErrCodeEventLogFailed        ErrorCode = 954
	ErrCodeInvalidExerciseTarget ErrorCode = 955

	// Margin errors (1000-1049)
	ErrCodeInsufficientBuyingPower ErrorCode = 1000
	ErrCodeMarginCallUnresolved    ErrorCode = 1001

	// Brokerage errors (1050-1099)
	ErrCodeBrokerageRequestFailed ErrorCode = 1050
	ErrCodeBrokerageTimeout       ErrorCode = 1051
	ErrCodeDuplicateExecution     ErrorCode = 1052
	ErrCodeBrokerageUnavailable   ErrorCode = 1053
)
