package tracker

import (
	"context"
	"issue-tracker/orm"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type IssueInput struct {
	Title       string
	Description string
	Priority    string
	Tag         string
	Status      string
	AssigneeID  *uint
}

// AssigneeChange distinguishes "set assignee" from "clear assignee" on an
// update. A nil UserID clears the field.
type AssigneeChange struct {
	UserID *uint
}

// CreateIssue files an issue in a project the actor contributes to. The
// author is always the actor, never client-supplied. A failed assignee
// validation persists nothing.
func (s *Service) CreateIssue(
	ctx context.Context,
	actor *orm.User,
	projectID uuid.UUID,
	in IssueInput,
) (*orm.Issue, error) {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	issue := &orm.Issue{
		ProjectID:   project.ID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    orm.PriorityMedium,
		Tag:         orm.TagTask,
		Status:      orm.StatusToDo,
		AuthorID:    actor.ID,
	}

	if in.Priority != "" {
		if !orm.ValidPriority(in.Priority) {
			return nil, &ValidationError{
				Field:   "priority",
				Message: "Priority must be one of LOW, MEDIUM, HIGH.",
			}
		}
		issue.Priority = in.Priority
	}

	if in.Tag != "" {
		if !orm.ValidTag(in.Tag) {
			return nil, &ValidationError{
				Field:   "tag",
				Message: "Tag must be one of BUG, FEATURE, TASK.",
			}
		}
		issue.Tag = in.Tag
	}

	if in.Status != "" {
		if !orm.ValidStatus(in.Status) {
			return nil, &ValidationError{
				Field:   "status",
				Message: "Status must be one of To Do, In Progress, Finished.",
			}
		}
		issue.Status = in.Status
	}

	if in.AssigneeID != nil {
		err = s.validateAssignee(ctx, *in.AssigneeID, project.ID)
		if err != nil {
			return nil, err
		}
		issue.AssigneeID = in.AssigneeID
	}

	err = s.db.CreateIssue(ctx, issue)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("issue_id", issue.ID.String()).
		Str("project_id", project.ID.String()).
		Uint("author_id", actor.ID).
		Msg("Issue created")

	return s.db.GetIssue(ctx, issue.ID)
}

func (s *Service) GetIssue(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
) (*orm.Issue, error) {
	issue, err := s.db.GetIssue(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "issue")
	}

	if err := s.requireReadable(ctx, actor, issue, "issue"); err != nil {
		return nil, err
	}

	return issue, nil
}

// ListIssues returns the project's issues for contributors and an empty set
// for everyone else.
func (s *Service) ListIssues(
	ctx context.Context,
	actor *orm.User,
	projectID uuid.UUID,
	limit, offset int,
) ([]orm.Issue, int64, error) {
	member, err := s.db.IsContributor(ctx, actor.ID, projectID)
	if err != nil {
		return nil, 0, err
	}

	if !member {
		return []orm.Issue{}, 0, nil
	}

	count, err := s.db.CountIssuesForProject(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}

	issues, err := s.db.IssuesForProject(ctx, projectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return issues, count, nil
}

type IssueUpdate struct {
	Title       *string
	Description *string
	Priority    *string
	Tag         *string
	Status      *string
	Assignee    *AssigneeChange
}

// UpdateIssue mutates an issue. Only the issue author may do so; project and
// author are immutable; any assignee change re-runs the contributor check.
func (s *Service) UpdateIssue(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
	upd IssueUpdate,
) (*orm.Issue, error) {
	issue, err := s.GetIssue(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	err = s.requireWritable(ctx, actor, issue,
		"Only the issue author may modify it.")
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		issue.Title = *upd.Title
	}
	if upd.Description != nil {
		issue.Description = *upd.Description
	}
	if upd.Priority != nil {
		if !orm.ValidPriority(*upd.Priority) {
			return nil, &ValidationError{
				Field:   "priority",
				Message: "Priority must be one of LOW, MEDIUM, HIGH.",
			}
		}
		issue.Priority = *upd.Priority
	}
	if upd.Tag != nil {
		if !orm.ValidTag(*upd.Tag) {
			return nil, &ValidationError{
				Field:   "tag",
				Message: "Tag must be one of BUG, FEATURE, TASK.",
			}
		}
		issue.Tag = *upd.Tag
	}
	if upd.Status != nil {
		// No state-machine ordering: any status may follow any other.
		if !orm.ValidStatus(*upd.Status) {
			return nil, &ValidationError{
				Field:   "status",
				Message: "Status must be one of To Do, In Progress, Finished.",
			}
		}
		issue.Status = *upd.Status
	}

	clearAssignee := false
	if upd.Assignee != nil {
		if upd.Assignee.UserID != nil {
			err = s.validateAssignee(ctx, *upd.Assignee.UserID, issue.ProjectID)
			if err != nil {
				return nil, err
			}
			issue.AssigneeID = upd.Assignee.UserID
		} else {
			clearAssignee = true
		}
	}

	// Field changes and an assignee clear commit together or not at all.
	err = s.db.Transaction(func(tx orm.DB) error {
		if err := tx.SaveIssue(ctx, issue); err != nil {
			return err
		}

		if clearAssignee {
			return tx.ClearAssignee(ctx, issue)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.db.GetIssue(ctx, issue.ID)
}

func (s *Service) DeleteIssue(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
) error {
	issue, err := s.GetIssue(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.requireWritable(ctx, actor, issue,
		"Only the issue author may delete it.")
	if err != nil {
		return err
	}

	err = s.db.DeleteIssue(ctx, issue)
	if err != nil {
		return err
	}

	log.Info().
		Str("issue_id", issue.ID.String()).
		Uint("actor_id", actor.ID).
		Msg("Issue deleted")

	return nil
}

// validateAssignee enforces that an assignee holds a contributor row on the
// issue's project at the time of the check.
func (s *Service) validateAssignee(
	ctx context.Context,
	userID uint,
	projectID uuid.UUID,
) error {
	member, err := s.db.IsContributor(ctx, userID, projectID)
	if err != nil {
		return err
	}

	if !member {
		return &ValidationError{
			Field:   "assignee",
			Message: "The assignee must be a contributor of the project.",
		}
	}

	return nil
}
