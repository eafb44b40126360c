package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is the application error carried from the core layers up to the HTTP
// boundary. Code is a stable machine-readable identifier, Status the HTTP
// status the boundary should answer with. Err holds the underlying cause and
// is only ever exposed to clients in dev mode.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MissingFields reports statically-required form fields that were absent or blank.
func MissingFields(fields []string) *Error {
	return &Error{
		Code:    "MISSING_FIELDS",
		Message: "Missing required fields: " + strings.Join(fields, ", "),
		Status:  http.StatusBadRequest,
	}
}

// FileRequired reports an absent required file part.
func FileRequired(field string) *Error {
	return &Error{
		Code:    "FILE_REQUIRED",
		Message: fmt.Sprintf("Required file %q is missing", field),
		Status:  http.StatusBadRequest,
	}
}

// InvalidFileType reports a file whose extension or content failed the allow-list.
func InvalidFileType(field, detail string) *Error {
	return &Error{
		Code:    "INVALID_FILE_TYPE",
		Message: fmt.Sprintf("File %q has an unsupported type: %s", field, detail),
		Status:  http.StatusBadRequest,
	}
}

// FileTooLarge reports a file exceeding its per-role size ceiling.
func FileTooLarge(field string, size, max int64) *Error {
	return &Error{
		Code:    "FILE_TOO_LARGE",
		Message: fmt.Sprintf("File %q is %dMB, limit is %dMB", field, size>>20, max>>20),
		Status:  http.StatusBadRequest,
	}
}

// DateFormat reports an unparseable or out-of-range date string. The raw
// input is carried in the message so the client can see what was rejected.
func DateFormat(raw string) *Error {
	return &Error{
		Code:    "DATE_FORMAT",
		Message: fmt.Sprintf("Invalid date: %q", raw),
		Status:  http.StatusBadRequest,
	}
}

// Validation is the generic 400 for malformed field values.
func Validation(msg string) *Error {
	return &Error{
		Code:    "VALIDATION",
		Message: msg,
		Status:  http.StatusBadRequest,
	}
}

// StorageWrite wraps an object-store upload transport failure.
func StorageWrite(err error) *Error {
	return &Error{
		Code:    "STORAGE_WRITE",
		Message: "Failed to store uploaded file",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// StorageDelete wraps an object-store delete failure. Compensation paths log
// it and never escalate it; it only reaches a client from the hard-delete path.
func StorageDelete(err error) *Error {
	return &Error{
		Code:    "STORAGE_DELETE",
		Message: "Failed to delete stored file",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Persistence wraps a database write failure. Duplicate keys map to 409,
// everything else to 500.
func Persistence(err error) *Error {
	status := http.StatusInternalServerError
	code := "PERSISTENCE"
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint") {
			status = http.StatusConflict
			code = "DUPLICATE"
		}
	}
	return &Error{
		Code:    code,
		Message: "Failed to save submission",
		Status:  status,
		Err:     err,
	}
}

// NotFound reports a lookup that matched nothing.
func NotFound(msg string) *Error {
	if msg == "" {
		msg = "Not found"
	}
	return &Error{
		Code:    "NOT_FOUND",
		Message: msg,
		Status:  http.StatusNotFound,
	}
}

// Authorization reports an admin secret mismatch.
func Authorization() *Error {
	return &Error{
		Code:    "FORBIDDEN",
		Message: "Admin authorization failed",
		Status:  http.StatusForbidden,
	}
}

// From normalizes any error to an *Error. Unknown errors become opaque 500s.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{
		Code:    "INTERNAL",
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}
