package domain

import "fmt"

// NotFoundError represents a missing record key.
type NotFoundError struct {
	Key string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return "item not found"
	}
	return fmt.Sprintf("item %s not found", e.Key)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing records.
var ErrNotFound = NotFoundError{}

// InvalidArgumentError represents a create/replace call with missing
// required fields.
type InvalidArgumentError struct {
	Reason string
}

func (e InvalidArgumentError) Error() string {
	if e.Reason == "" {
		return "invalid argument"
	}
	return e.Reason
}

func (e InvalidArgumentError) Is(target error) bool {
	_, ok := target.(InvalidArgumentError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidArgumentError)
	return ok
}

var ErrInvalidArgument = InvalidArgumentError{}

// ConflictError represents a versioned replace that lost the race: the
// stored version advanced past the expected one.
type ConflictError struct {
	Key      string
	Expected int64
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s (expected %d)", e.Key, e.Expected)
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

var ErrConflict = ConflictError{}

// MalformedDocumentError marks a stored value that is not valid JSON.
// Listings skip such entries with a log line; only a direct read
// surfaces the error.
type MalformedDocumentError struct {
	Key string
}

func (e MalformedDocumentError) Error() string {
	if e.Key == "" {
		return "stored value is not valid JSON"
	}
	return fmt.Sprintf("stored value for %s is not valid JSON", e.Key)
}

func (e MalformedDocumentError) Is(target error) bool {
	_, ok := target.(MalformedDocumentError)
	if ok {
		return true
	}
	_, ok = target.(*MalformedDocumentError)
	return ok
}

var ErrMalformedDocument = MalformedDocumentError{}

// StoreUnavailableError wraps a transport or backing-store failure.
type StoreUnavailableError struct {
	Cause error
}

func (e StoreUnavailableError) Error() string {
	if e.Cause == nil {
		return "store unavailable"
	}
	return fmt.Sprintf("store unavailable: %v", e.Cause)
}

func (e StoreUnavailableError) Unwrap() error { return e.Cause }

func (e StoreUnavailableError) Is(target error) bool {
	_, ok := target.(StoreUnavailableError)
	if ok {
		return true
	}
	_, ok = target.(*StoreUnavailableError)
	return ok
}

var ErrStoreUnavailable = StoreUnavailableError{}
