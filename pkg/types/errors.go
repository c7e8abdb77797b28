package types

import "errors"

// ErrorKind classifies a failure so callers can branch on category instead
// of message text.
type ErrorKind string

const (
	ErrorKindBlobNotFound       ErrorKind = "BlobNotFound"
	ErrorKindStorageUnavailable ErrorKind = "StorageUnavailable"
	ErrorKindNotFound           ErrorKind = "NotFound"
	ErrorKindPersistence        ErrorKind = "PersistenceError"
	ErrorKindMalformedRequest   ErrorKind = "MalformedRequest"
)

// Error is a categorized failure. Message is human readable; Err is the
// underlying cause, if any.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against a sentinel of the same kind, so
// errors.Is(err, ErrBlobNotFound) holds for any BlobNotFound error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrBlobNotFound       = &Error{Kind: ErrorKindBlobNotFound, Message: "blob not found"}
	ErrStorageUnavailable = &Error{Kind: ErrorKindStorageUnavailable, Message: "storage unavailable"}
	ErrEvidenceNotFound   = &Error{Kind: ErrorKindNotFound, Message: "evidence not found"}
	ErrPersistence        = &Error{Kind: ErrorKindPersistence, Message: "persistence error"}
	ErrMalformedRequest   = &Error{Kind: ErrorKindMalformedRequest, Message: "malformed request"}
)

func NewError(kind ErrorKind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first categorized error in err's chain,
// or "" when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
