package usecase

// DomainError is a recoverable condition that resolves by returning control
// to the user for a decision.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError wraps a capability failure. The provider's message is kept
// verbatim so it can be reported to the user per affected item.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// Error codes surfaced by the workflows.
const (
	CodeIncompleteInput   = "INCOMPLETE_INPUT"
	CodeValidationFailure = "VALIDATION_FAILURE"
	CodeUnresolvedTarget  = "UNRESOLVED_TARGET"
	CodeCapabilityFailure = "CAPABILITY_FAILURE"
	CodeMissingApproval   = "MISSING_APPROVAL"
	CodeInvalidState      = "INVALID_STATE"
)

func incompleteInput(msg string) *DomainError {
	return &DomainError{Code: CodeIncompleteInput, Message: msg}
}

func invalidState(msg string) *DomainError {
	return &DomainError{Code: CodeInvalidState, Message: msg}
}

func missingApproval(msg string) *DomainError {
	return &DomainError{Code: CodeMissingApproval, Message: msg}
}

func unresolvedTarget(msg string) *DomainError {
	return &DomainError{Code: CodeUnresolvedTarget, Message: msg}
}

func capabilityFailure(msg string) *TechnicalError {
	return &TechnicalError{Code: CodeCapabilityFailure, Message: msg}
}
