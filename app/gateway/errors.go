package gateway

import "fmt"

// Kind classifies a gateway API failure for the retry policy of the webhook
// ingestion pipeline.
type Kind string

const (
	KindConnection Kind = "connection"
	KindTimeout    Kind = "timeout"
	KindValidation Kind = "validation"
	KindVersion    Kind = "version"
	KindNotFound   Kind = "not_found"
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func NewError(kind Kind, status int, message string, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gateway %s error: status=%d %s", e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient and the caller may
// safely retry the whole operation.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindConnection, KindTimeout:
		return true
	default:
		return false
	}
}
