package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (db DB) CreateComment(ctx context.Context, comment *Comment) error {
	if comment.IssueID == uuid.Nil || comment.AuthorID == 0 {
		return &BadInputError{Reason: "comment without an issue or author"}
	}

	err := gorm.G[Comment](db.dbGorm).Create(ctx, comment)
	if err != nil {
		return wrapError(
			err,
			"create comment",
			fmt.Sprintf("issue=%s, author=%d", comment.IssueID, comment.AuthorID),
		)
	}

	return nil
}

// GetComment preloads the owning issue so the comment can resolve its
// project scope.
func (db DB) GetComment(ctx context.Context, id uuid.UUID) (*Comment, error) {
	var comment Comment
	err := db.dbGorm.WithContext(ctx).
		Preload("Issue").
		Preload("Author").
		First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, wrapError(
			err,
			"get comment",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &comment, nil
}

func (db DB) CommentsForIssue(
	ctx context.Context,
	issueID uuid.UUID,
	limit, offset int,
) ([]Comment, error) {
	var comments []Comment
	err := db.dbGorm.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Issue").
		Preload("Author").
		Find(&comments).Error
	if err != nil {
		return nil, wrapError(
			err,
			"list comments for issue",
			fmt.Sprintf("issue=%s", issueID),
		)
	}

	return comments, nil
}

func (db DB) CountCommentsForIssue(
	ctx context.Context,
	issueID uuid.UUID,
) (int64, error) {
	count, err := gorm.G[Comment](db.dbGorm).
		Where("issue_id = ?", issueID).
		Count(ctx, "*")
	if err != nil {
		return 0, wrapError(
			err,
			"count comments for issue",
			fmt.Sprintf("issue=%s", issueID),
		)
	}

	return count, nil
}

func (db DB) SaveComment(ctx context.Context, comment *Comment) error {
	return wrapError(
		db.dbGorm.WithContext(ctx).Omit(clause.Associations).Save(comment).Error,
		"save comment",
		fmt.Sprintf("id=%s", comment.ID),
	)
}

func (db DB) DeleteComment(ctx context.Context, comment *Comment) error {
	_, err := gorm.G[Comment](db.dbGorm).
		Where("id = ?", comment.ID).
		Delete(ctx)

	return wrapError(
		err,
		"delete comment",
		fmt.Sprintf("id=%s", comment.ID),
	)
}
