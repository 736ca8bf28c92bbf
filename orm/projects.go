package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateProjectWithAuthor persists a project and its author-contributor row
// in one transaction. A project is never visible without that row.
func (db DB) CreateProjectWithAuthor(ctx context.Context, project *Project) error {
	if project.AuthorID == 0 {
		return &BadInputError{Reason: "project without an author"}
	}

	detailString := fmt.Sprintf(
		"name=%q, author=%d",
		project.Name,
		project.AuthorID,
	)

	err := db.Transaction(func(tx DB) error {
		err := gorm.G[Project](tx.dbGorm).Create(ctx, project)
		if err != nil {
			return wrapError(err, "create project", detailString)
		}

		err = gorm.G[Contributor](tx.dbGorm).Create(ctx, &Contributor{
			UserID:    project.AuthorID,
			ProjectID: project.ID,
			Role:      RoleAuthor,
		})
		if err != nil {
			return wrapError(err, "create author contributor", detailString)
		}

		return nil
	})

	//nolint:wrapcheck // Error already wrapped
	return err
}

func (db DB) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	err := db.dbGorm.WithContext(ctx).
		Preload("Author").
		Preload("Contributors.User").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, wrapError(
			err,
			"get project",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &project, nil
}

// ProjectsForUser returns the projects where the user holds a contributor
// row, newest first. This is the only way project lists are derived.
func (db DB) ProjectsForUser(
	ctx context.Context,
	userID uint,
	limit, offset int,
) ([]Project, error) {
	var projects []Project
	err := db.dbGorm.WithContext(ctx).
		Joins("JOIN contributors ON contributors.project_id = projects.id").
		Where("contributors.user_id = ?", userID).
		Order("projects.created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Author").
		Preload("Contributors.User").
		Find(&projects).Error
	if err != nil {
		return nil, wrapError(
			err,
			"list projects for user",
			fmt.Sprintf("user=%d", userID),
		)
	}

	return projects, nil
}

func (db DB) CountProjectsForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := db.dbGorm.WithContext(ctx).
		Model(&Project{}).
		Joins("JOIN contributors ON contributors.project_id = projects.id").
		Where("contributors.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, wrapError(
			err,
			"count projects for user",
			fmt.Sprintf("user=%d", userID),
		)
	}

	return count, nil
}

func (db DB) SaveProject(ctx context.Context, project *Project) error {
	return wrapError(
		db.dbGorm.WithContext(ctx).Omit(clause.Associations).Save(project).Error,
		"save project",
		fmt.Sprintf("id=%s", project.ID),
	)
}

func (db DB) DeleteProject(ctx context.Context, project *Project) error {
	_, err := gorm.G[Project](db.dbGorm).
		Where("id = ?", project.ID).
		Delete(ctx)

	return wrapError(
		err,
		"delete project",
		fmt.Sprintf("id=%s", project.ID),
	)
}

// IsContributor reports whether the user holds a contributor row on the
// project. Every read-access decision reduces to this check.
func (db DB) IsContributor(
	ctx context.Context,
	userID uint,
	projectID uuid.UUID,
) (bool, error) {
	count, err := gorm.G[Contributor](db.dbGorm).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(ctx, "*")
	if err != nil {
		return false, wrapError(
			err,
			"check contributor",
			fmt.Sprintf("user=%d, project=%s", userID, projectID),
		)
	}

	return count > 0, nil
}

func (db DB) GetContributor(
	ctx context.Context,
	userID uint,
	projectID uuid.UUID,
) (*Contributor, error) {
	contributor, err := gorm.G[Contributor](db.dbGorm).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(ctx)
	if err != nil {
		return nil, wrapError(
			err,
			"get contributor",
			fmt.Sprintf("user=%d, project=%s", userID, projectID),
		)
	}

	return &contributor, nil
}

// CreateContributor relies on the unique (user, project) index to reject
// duplicates: a second add surfaces as a ConflictError.
func (db DB) CreateContributor(ctx context.Context, contributor *Contributor) error {
	err := gorm.G[Contributor](db.dbGorm).Create(ctx, contributor)
	if err != nil {
		return wrapError(
			err,
			"create contributor",
			fmt.Sprintf(
				"user=%d, project=%s",
				contributor.UserID,
				contributor.ProjectID,
			),
		)
	}

	return nil
}

func (db DB) CountContributors(ctx context.Context, projectID uuid.UUID) (int64, error) {
	count, err := gorm.G[Contributor](db.dbGorm).
		Where("project_id = ?", projectID).
		Count(ctx, "*")
	if err != nil {
		return 0, wrapError(
			err,
			"count contributors",
			fmt.Sprintf("project=%s", projectID),
		)
	}

	return count, nil
}

// RemoveContributor deletes the membership and nulls the departing user's
// assignments within the project in the same transaction, so an assignee is
// a contributor at all times.
func (db DB) RemoveContributor(ctx context.Context, contributor *Contributor) error {
	detailString := fmt.Sprintf(
		"user=%d, project=%s",
		contributor.UserID,
		contributor.ProjectID,
	)

	err := db.Transaction(func(tx DB) error {
		_, err := gorm.G[Contributor](tx.dbGorm).
			Where("id = ?", contributor.ID).
			Delete(ctx)
		if err != nil {
			return wrapError(err, "delete contributor", detailString)
		}

		err = tx.dbGorm.WithContext(ctx).
			Model(&Issue{}).
			Where("project_id = ? AND assignee_id = ?",
				contributor.ProjectID, contributor.UserID).
			Update("assignee_id", nil).Error
		if err != nil {
			return wrapError(err, "unassign removed contributor", detailString)
		}

		return nil
	})

	//nolint:wrapcheck // Error already wrapped
	return err
}
