package domain

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinel errors shared by the engine, service and API layers. Wrap them
// with fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	ErrInsufficientData = NewDomainError("INSUFFICIENT_DATA", "insufficient history for the requested operation")
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "invalid input provided")
	ErrNoStockOnHand    = NewDomainError("NO_STOCK_ON_HAND", "no stock on hand to assess")
	ErrNotFound         = NewDomainError("NOT_FOUND", "resource not found")
)
