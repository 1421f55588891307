package driven

import "errors"

// Error kinds adapters wrap remote failures into. The application layer
// branches on these with errors.Is without knowing transport details: the
// update router retries the other resource kind on ErrNotFound or
// ErrValidation, the resolve workflow downgrades ErrPermissionDenied to a
// soft failure, and callers apply one backoff policy to ErrRateLimited.
var (
	// ErrNotFound marks a target resource that does not exist or is not
	// visible to this token.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation marks a request the remote API rejected as semantically
	// invalid (422-class responses).
	ErrValidation = errors.New("request rejected by api")

	// ErrRateLimited marks a failure caused by primary or secondary rate
	// limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrPermissionDenied marks a token lacking the permission or
	// integration scope for the attempted action.
	ErrPermissionDenied = errors.New("permission denied")
)
