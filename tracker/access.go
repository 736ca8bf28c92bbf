package tracker

import (
	"context"
	"issue-tracker/orm"

	"github.com/google/uuid"
)

// Verb classifies an operation for access decisions. Read covers GET-class
// requests, Write covers every mutation.
type Verb int

const (
	Read Verb = iota + 1
	Write
)

// Resource is anything whose access is decided by its owning project: a
// project resolves to itself, an issue through its project, a comment
// through its issue's project.
type Resource interface {
	ProjectScope() uuid.UUID
	CreatedBy() uint
}

// CanAccess decides whether the actor may apply the verb to the resource.
// Read access is membership-gated, write access additionally requires
// authorship.
func (s *Service) CanAccess(
	ctx context.Context,
	actor *orm.User,
	res Resource,
	verb Verb,
) (bool, error) {
	member, err := s.db.IsContributor(ctx, actor.ID, res.ProjectScope())
	if err != nil {
		return false, err
	}

	if !member {
		return false, nil
	}

	if verb == Read {
		return true, nil
	}

	return res.CreatedBy() == actor.ID, nil
}

// requireReadable gates a fetched resource behind membership. A failed check
// reports the resource as missing, never as forbidden.
func (s *Service) requireReadable(
	ctx context.Context,
	actor *orm.User,
	res Resource,
	resource string,
) error {
	readable, err := s.CanAccess(ctx, actor, res, Read)
	if err != nil {
		return err
	}

	if !readable {
		return &NotFoundError{Resource: resource}
	}

	return nil
}

// requireWritable gates a mutation on a resource the actor can already read.
func (s *Service) requireWritable(
	ctx context.Context,
	actor *orm.User,
	res Resource,
	reason string,
) error {
	writable, err := s.CanAccess(ctx, actor, res, Write)
	if err != nil {
		return err
	}

	if !writable {
		return &ForbiddenError{Reason: reason}
	}

	return nil
}
