package constants

// CompletionResult labels the outcome of a completion request
type CompletionResult string

const (
	CompletionAccepted  CompletionResult = "accepted"
	CompletionDuplicate CompletionResult = "duplicate"
	CompletionRejected  CompletionResult = "rejected"
	CompletionError     CompletionResult = "error"
)
