package transform

import "fmt"

// ErrorCode classifies a processing failure at the pipeline boundary.
type ErrorCode string

const (
	ErrCodeTimeout             ErrorCode = "TIMEOUT"
	ErrCodeFileTooLarge        ErrorCode = "FILE_TOO_LARGE"
	ErrCodeInvalidFormat       ErrorCode = "INVALID_FORMAT"
	ErrCodeCorruptedFile       ErrorCode = "CORRUPTED_FILE"
	ErrCodeParsingError        ErrorCode = "PARSING_ERROR"
	ErrCodeNoMapping           ErrorCode = "NO_MAPPING"
	ErrCodeValidationError     ErrorCode = "VALIDATION_ERROR"
	ErrCodeTransformationError ErrorCode = "TRANSFORMATION_ERROR"
)

// Error is a single recorded failure, either fatal (returned to the caller)
// or accumulated in result metadata under a lenient error policy.
type Error struct {
	Code     ErrorCode
	RowIndex int
	Field    string
	Message  string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: row %d, field %s: %s", e.Code, e.RowIndex, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
