package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (db DB) CreateIssue(ctx context.Context, issue *Issue) error {
	if issue.ProjectID == uuid.Nil || issue.AuthorID == 0 {
		return &BadInputError{Reason: "issue without a project or author"}
	}

	err := gorm.G[Issue](db.dbGorm).Create(ctx, issue)
	if err != nil {
		return wrapError(
			err,
			"create issue",
			fmt.Sprintf("project=%s, title=%q", issue.ProjectID, issue.Title),
		)
	}

	return nil
}

func (db DB) GetIssue(ctx context.Context, id uuid.UUID) (*Issue, error) {
	var issue Issue
	err := db.dbGorm.WithContext(ctx).
		Preload("Author").
		Preload("Assignee").
		Preload("Comments.Author").
		First(&issue, "id = ?", id).Error
	if err != nil {
		return nil, wrapError(
			err,
			"get issue",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &issue, nil
}

func (db DB) IssuesForProject(
	ctx context.Context,
	projectID uuid.UUID,
	limit, offset int,
) ([]Issue, error) {
	var issues []Issue
	err := db.dbGorm.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Author").
		Preload("Assignee").
		Preload("Comments").
		Find(&issues).Error
	if err != nil {
		return nil, wrapError(
			err,
			"list issues for project",
			fmt.Sprintf("project=%s", projectID),
		)
	}

	return issues, nil
}

func (db DB) CountIssuesForProject(
	ctx context.Context,
	projectID uuid.UUID,
) (int64, error) {
	count, err := gorm.G[Issue](db.dbGorm).
		Where("project_id = ?", projectID).
		Count(ctx, "*")
	if err != nil {
		return 0, wrapError(
			err,
			"count issues for project",
			fmt.Sprintf("project=%s", projectID),
		)
	}

	return count, nil
}

func (db DB) SaveIssue(ctx context.Context, issue *Issue) error {
	return wrapError(
		db.dbGorm.WithContext(ctx).Omit(clause.Associations).Save(issue).Error,
		"save issue",
		fmt.Sprintf("id=%s", issue.ID),
	)
}

// ClearAssignee nulls the assignee directly; Save would skip the zeroed
// pointer field.
func (db DB) ClearAssignee(ctx context.Context, issue *Issue) error {
	issue.AssigneeID = nil
	issue.Assignee = nil

	err := db.dbGorm.WithContext(ctx).
		Model(issue).
		Update("assignee_id", nil).Error

	return wrapError(
		err,
		"clear issue assignee",
		fmt.Sprintf("id=%s", issue.ID),
	)
}

func (db DB) DeleteIssue(ctx context.Context, issue *Issue) error {
	_, err := gorm.G[Issue](db.dbGorm).
		Where("id = ?", issue.ID).
		Delete(ctx)

	return wrapError(
		err,
		"delete issue",
		fmt.Sprintf("id=%s", issue.ID),
	)
}
