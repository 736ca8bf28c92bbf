package tracker

import (
	"context"
	"errors"
	"issue-tracker/orm"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ProjectInput struct {
	Name        string
	Description string
	Type        string
}

// CreateProject persists the project together with the creator's
// author-contributor row in a single transaction.
func (s *Service) CreateProject(
	ctx context.Context,
	actor *orm.User,
	in ProjectInput,
) (*orm.Project, error) {
	if !orm.ValidProjectType(in.Type) {
		return nil, &ValidationError{
			Field:   "type",
			Message: "Type must be one of back-end, front-end, iOS, Android.",
		}
	}

	project := &orm.Project{
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		AuthorID:    actor.ID,
	}

	err := s.db.CreateProjectWithAuthor(ctx, project)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("project_id", project.ID.String()).
		Uint("author_id", actor.ID).
		Msg("Project created")

	return s.db.GetProject(ctx, project.ID)
}

// GetProject fetches a project the actor may read. Non-members learn nothing
// beyond "not found".
func (s *Service) GetProject(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
) (*orm.Project, error) {
	project, err := s.db.GetProject(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "project")
	}

	if err := s.requireReadable(ctx, actor, project, "project"); err != nil {
		return nil, err
	}

	return project, nil
}

// ListProjects returns the actor's visible projects: exactly those where the
// actor holds a contributor row.
func (s *Service) ListProjects(
	ctx context.Context,
	actor *orm.User,
	limit, offset int,
) ([]orm.Project, int64, error) {
	count, err := s.db.CountProjectsForUser(ctx, actor.ID)
	if err != nil {
		return nil, 0, err
	}

	projects, err := s.db.ProjectsForUser(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return projects, count, nil
}

type ProjectUpdate struct {
	Name        *string
	Description *string
	Type        *string
}

func (s *Service) UpdateProject(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
	upd ProjectUpdate,
) (*orm.Project, error) {
	project, err := s.GetProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	err = s.requireWritable(ctx, actor, project,
		"Only the project author may modify it.")
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	if upd.Type != nil {
		if !orm.ValidProjectType(*upd.Type) {
			return nil, &ValidationError{
				Field:   "type",
				Message: "Type must be one of back-end, front-end, iOS, Android.",
			}
		}
		project.Type = *upd.Type
	}

	err = s.db.SaveProject(ctx, project)
	if err != nil {
		return nil, err
	}

	return project, nil
}

func (s *Service) DeleteProject(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
) error {
	project, err := s.GetProject(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.requireWritable(ctx, actor, project,
		"Only the project author may delete it.")
	if err != nil {
		return err
	}

	err = s.db.DeleteProject(ctx, project)
	if err != nil {
		return err
	}

	log.Info().
		Str("project_id", project.ID.String()).
		Uint("actor_id", actor.ID).
		Msg("Project deleted")

	return nil
}

// AddContributor adds a member to a project. Any current contributor may do
// so, not only the author. Duplicate memberships are rejected by the storage
// uniqueness constraint, closing the concurrent double-add race.
func (s *Service) AddContributor(
	ctx context.Context,
	actor *orm.User,
	projectID uuid.UUID,
	userID uint,
) (*orm.Contributor, error) {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	target, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		var notFoundErr *orm.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, &ValidationError{
				Field:   "user_id",
				Message: "User not found.",
			}
		}

		return nil, err
	}

	contributor := &orm.Contributor{
		UserID:    target.ID,
		ProjectID: project.ID,
		Role:      orm.RoleContributor,
	}

	err = s.db.CreateContributor(ctx, contributor)
	if err != nil {
		var conflictErr *orm.ConflictError
		if errors.As(err, &conflictErr) {
			return nil, &DuplicateMembershipError{}
		}

		return nil, err
	}

	log.Info().
		Str("project_id", project.ID.String()).
		Uint("user_id", target.ID).
		Uint("actor_id", actor.ID).
		Msg("Contributor added")

	contributor.User = *target

	return contributor, nil
}

// RemoveContributor deletes a membership. The sole remaining
// author-contributor of a project may not be removed; the departing user's
// assignments within the project degrade to null.
func (s *Service) RemoveContributor(
	ctx context.Context,
	actor *orm.User,
	projectID uuid.UUID,
	userID uint,
) error {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return err
	}

	contributor, err := s.db.GetContributor(ctx, userID, project.ID)
	if err != nil {
		return asNotFound(err, "contributor")
	}

	if contributor.Role == orm.RoleAuthor {
		count, err := s.db.CountContributors(ctx, project.ID)
		if err != nil {
			return err
		}

		if count <= 1 {
			return &LastAuthorProtectedError{}
		}
	}

	err = s.db.RemoveContributor(ctx, contributor)
	if err != nil {
		return err
	}

	log.Info().
		Str("project_id", project.ID.String()).
		Uint("user_id", userID).
		Uint("actor_id", actor.ID).
		Msg("Contributor removed")

	return nil
}
