package accounts

import "errors"

var (
	// ErrBadCredentials is returned for unknown usernames and wrong
	// passwords alike.
	ErrBadCredentials = errors.New("invalid username or password")

	// ErrNotProfileOwner rejects profile updates by anyone but the owner.
	ErrNotProfileOwner = errors.New("only the profile owner may update it")
)

// ValidationError is a field-keyed input rejection, surfaced verbatim to the
// caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
