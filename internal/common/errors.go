// Package common defines the error taxonomy shared by every layer of the
// gateway. Callers match these values with errors.Is.
package common

import "errors"

var (
	// Authentication errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")

	// Authorization errors.
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors.
	ErrTableNotFound      = errors.New("table not found")
	ErrColumnNotFound     = errors.New("column not found")
	ErrInvalidBackupName  = errors.New("invalid backup name")
	ErrInvalidRequestBody = errors.New("invalid request body")

	// Conflict errors.
	ErrDuplicateUser       = errors.New("user with this username or email already exists")
	ErrDuplicateBackupName = errors.New("backup with this name already exists")

	// Not-found errors.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrUnexpected covers every store or child-process failure that is not
	// classified above.
	ErrUnexpected = errors.New("an unexpected error occurred")
)

// Kind returns the taxonomy sentinel err belongs to. Unclassified errors map to
// ErrUnexpected, so the caller never sees internal detail.
func Kind(err error) error {
	for _, k := range known {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrUnexpected
}

var known = []error{
	ErrInvalidCredentials,
	ErrTokenExpired,
	ErrTokenInvalid,
	ErrUserNotFound,
	ErrPermissionDenied,
	ErrTableNotFound,
	ErrColumnNotFound,
	ErrInvalidBackupName,
	ErrInvalidRequestBody,
	ErrDuplicateUser,
	ErrDuplicateBackupName,
	ErrBackupNotFound,
	ErrUnexpected,
}
