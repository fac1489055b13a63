package domain

// ResultStatus is the outcome reported to the status collaborator.
type ResultStatus string

const (
	ResultSuccess          ResultStatus = "SUCCESS"
	ResultDuplicate        ResultStatus = "DUPLICATE"
	ResultBlockedSanctions ResultStatus = "BLOCKED_SANCTIONS"
	ResultProcessingError  ResultStatus = "PROCESSING_ERROR"
)

// Stable error codes carried on ProcessingResult. These are the only
// failure identifiers exposed outside the core.
const (
	CodeAccountNotFound   = "ACCOUNT_NOT_FOUND"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeCurrencyMismatch  = "CURRENCY_MISMATCH"
	CodeLockTimeout       = "LOCK_TIMEOUT"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeNotBlocked        = "NOT_BLOCKED"
	CodeReviewRejected    = "REVIEW_REJECTED"
	CodeInternal          = "INTERNAL"
)

// ProcessingResult is the structured outcome of one submission or
// review decision. Internal errors never leak raw; they are mapped to a
// code and message here.
type ProcessingResult struct {
	Status       ResultStatus `json:"status"`
	TransferID   string       `json:"transfer_id,omitempty"`
	ErrorCode    string       `json:"error_code,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
}
