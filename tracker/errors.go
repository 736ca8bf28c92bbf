package tracker

import (
	"errors"
	"issue-tracker/orm"
)

// NotFoundError covers both absent resources and resources the actor may not
// read. The two are indistinguishable to the caller so existence never leaks
// to non-members.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ForbiddenError rejects a mutation of a resource the actor can see but does
// not own.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// ValidationError is a field-keyed input rejection.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// DuplicateMembershipError reports a second add of the same (user, project)
// pair.
type DuplicateMembershipError struct{}

func (e *DuplicateMembershipError) Error() string {
	return "This user is already a contributor of the project."
}

// LastAuthorProtectedError guards the sole remaining author-contributor of a
// project.
type LastAuthorProtectedError struct{}

func (e *LastAuthorProtectedError) Error() string {
	return "Cannot remove the project author while they are the only contributor."
}

// asNotFound collapses a storage-level missing record into the existence-
// hiding NotFoundError; other errors pass through untouched.
func asNotFound(err error, resource string) error {
	if err == nil {
		return nil
	}

	var notFoundErr *orm.NotFoundError
	if errors.As(err, &notFoundErr) {
		return &NotFoundError{Resource: resource}
	}

	return err
}
