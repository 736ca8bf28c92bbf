package tracker

import (
	"context"
	"issue-tracker/orm"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CreateComment adds a comment to an issue the actor can read. The author is
// always the actor and is immutable afterwards.
func (s *Service) CreateComment(
	ctx context.Context,
	actor *orm.User,
	issueID uuid.UUID,
	description string,
) (*orm.Comment, error) {
	issue, err := s.GetIssue(ctx, actor, issueID)
	if err != nil {
		return nil, err
	}

	comment := &orm.Comment{
		IssueID:     issue.ID,
		Description: description,
		AuthorID:    actor.ID,
	}

	err = s.db.CreateComment(ctx, comment)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("comment_id", comment.ID.String()).
		Str("issue_id", issue.ID.String()).
		Uint("author_id", actor.ID).
		Msg("Comment created")

	return s.db.GetComment(ctx, comment.ID)
}

func (s *Service) GetComment(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
) (*orm.Comment, error) {
	comment, err := s.db.GetComment(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "comment")
	}

	if err := s.requireReadable(ctx, actor, comment, "comment"); err != nil {
		return nil, err
	}

	return comment, nil
}

// ListComments returns the issue's comments for contributors of its project
// and an empty set for everyone else.
func (s *Service) ListComments(
	ctx context.Context,
	actor *orm.User,
	issueID uuid.UUID,
	limit, offset int,
) ([]orm.Comment, int64, error) {
	issue, err := s.db.GetIssue(ctx, issueID)
	if err != nil {
		return nil, 0, asNotFound(err, "issue")
	}

	member, err := s.db.IsContributor(ctx, actor.ID, issue.ProjectID)
	if err != nil {
		return nil, 0, err
	}

	if !member {
		return []orm.Comment{}, 0, nil
	}

	count, err := s.db.CountCommentsForIssue(ctx, issue.ID)
	if err != nil {
		return nil, 0, err
	}

	comments, err := s.db.CommentsForIssue(ctx, issue.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return comments, count, nil
}

func (s *Service) UpdateComment(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
	description string,
) (*orm.Comment, error) {
	comment, err := s.GetComment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	err = s.requireWritable(ctx, actor, comment,
		"Only the comment author may modify it.")
	if err != nil {
		return nil, err
	}

	comment.Description = description

	err = s.db.SaveComment(ctx, comment)
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *Service) DeleteComment(
	ctx context.Context,
	actor *orm.User,
	id uuid.UUID,
) error {
	comment, err := s.GetComment(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.requireWritable(ctx, actor, comment,
		"Only the comment author may delete it.")
	if err != nil {
		return err
	}

	err = s.db.DeleteComment(ctx, comment)
	if err != nil {
		return err
	}

	log.Info().
		Str("comment_id", comment.ID.String()).
		Uint("actor_id", actor.ID).
		Msg("Comment deleted")

	return nil
}
