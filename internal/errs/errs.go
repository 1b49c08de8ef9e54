// Package errs classifies failures so retry policy can be decided where the
// error is handled rather than where it occurs.
package errs

import "fmt"

// Category determines how an error is treated by retrying callers.
type Category int

const (
	// Recoverable failures may succeed on retry: 5xx responses, timeouts,
	// connection resets.
	Recoverable Category = iota

	// Irrecoverable failures will not improve with retry: 4xx responses
	// other than 408/429, decode mismatches.
	Irrecoverable
)

func (c Category) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps an error with its retry category.
type ClassifiedError struct {
	Category   Category
	StatusCode int    // HTTP status, 0 for non-HTTP failures
	Body       string // response body, kept for diagnostics
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// FromStatus builds a classified error for a non-success HTTP response.
func FromStatus(statusCode int, body, operation string) *ClassifiedError {
	return &ClassifiedError{
		Category:   categoryFor(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: fmt.Errorf("%s: status %d", operation, statusCode),
	}
}

// Network builds a classified error for a transport-level failure. Transport
// failures are always considered transient.
func Network(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s: %w", operation, err),
	}
}

// IsIrrecoverable reports whether err should not be retried.
func IsIrrecoverable(err error) bool {
	if ce, ok := err.(*ClassifiedError); ok {
		return ce.Category == Irrecoverable
	}
	return false
}

func categoryFor(statusCode int) Category {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return Recoverable
		default:
			return Irrecoverable
		}
	default:
		// 5xx and anything unexpected: assume transient.
		return Recoverable
	}
}
