package api

import (
	"encoding/json"
	"fmt"
	"time"

	"issue-tracker/orm"

	"github.com/google/uuid"
)

// userRef is the trimmed user shape embedded in other resources.
type userRef struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func newUserRef(u orm.User) userRef {
	return userRef{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func newUserRefPtr(u *orm.User) *userRef {
	if u == nil {
		return nil
	}
	ref := newUserRef(*u)

	return &ref
}

type userDetail struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Age             int       `json:"age"`
	CanBeContacted  bool      `json:"can_be_contacted"`
	CanDataBeShared bool      `json:"can_data_be_shared"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newUserDetail(u *orm.User) userDetail {
	return userDetail{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Age:             u.Age,
		CanBeContacted:  u.CanBeContacted,
		CanDataBeShared: u.CanDataBeShared,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

type contributorResponse struct {
	ID          uuid.UUID `json:"id"`
	User        userRef   `json:"user"`
	ProjectID   uuid.UUID `json:"project_id"`
	Role        string    `json:"role"`
	CreatedTime time.Time `json:"created_time"`
}

func newContributorResponse(c orm.Contributor) contributorResponse {
	return contributorResponse{
		ID:          c.ID,
		User:        newUserRef(c.User),
		ProjectID:   c.ProjectID,
		Role:        c.Role,
		CreatedTime: c.CreatedAt,
	}
}

type projectSummary struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Author            userRef   `json:"author"`
	ContributorsCount int       `json:"contributors_count"`
	CreatedTime       time.Time `json:"created_time"`
}

func newProjectSummary(p orm.Project) projectSummary {
	return projectSummary{
		ID:                p.ID,
		Name:              p.Name,
		Type:              p.Type,
		Author:            newUserRef(p.Author),
		ContributorsCount: len(p.Contributors),
		CreatedTime:       p.CreatedAt,
	}
}

type projectDetail struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Type         string                `json:"type"`
	Author       userRef               `json:"author"`
	Contributors []contributorResponse `json:"contributors"`
	CreatedTime  time.Time             `json:"created_time"`
	UpdatedTime  time.Time             `json:"updated_time"`
}

func newProjectDetail(p *orm.Project) projectDetail {
	contributors := make([]contributorResponse, 0, len(p.Contributors))
	for _, c := range p.Contributors {
		contributors = append(contributors, newContributorResponse(c))
	}

	return projectDetail{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Author:       newUserRef(p.Author),
		Contributors: contributors,
		CreatedTime:  p.CreatedAt,
		UpdatedTime:  p.UpdatedAt,
	}
}

type commentResponse struct {
	UUID        uuid.UUID `json:"uuid"`
	IssueID     uuid.UUID `json:"issue_id"`
	Description string    `json:"description"`
	Author      userRef   `json:"author"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

func newCommentResponse(c orm.Comment) commentResponse {
	return commentResponse{
		UUID:        c.ID,
		IssueID:     c.IssueID,
		Description: c.Description,
		Author:      newUserRef(c.Author),
		CreatedTime: c.CreatedAt,
		UpdatedTime: c.UpdatedAt,
	}
}

type issueSummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Priority      string    `json:"priority"`
	Tag           string    `json:"tag"`
	Status        string    `json:"status"`
	Author        userRef   `json:"author"`
	Assignee      *userRef  `json:"assignee"`
	CommentsCount int       `json:"comments_count"`
	CreatedTime   time.Time `json:"created_time"`
}

func newIssueSummary(i orm.Issue) issueSummary {
	return issueSummary{
		ID:            i.ID,
		Title:         i.Title,
		Priority:      i.Priority,
		Tag:           i.Tag,
		Status:        i.Status,
		Author:        newUserRef(i.Author),
		Assignee:      newUserRefPtr(i.Assignee),
		CommentsCount: len(i.Comments),
		CreatedTime:   i.CreatedAt,
	}
}

type issueDetail struct {
	ID          uuid.UUID         `json:"id"`
	ProjectID   uuid.UUID         `json:"project_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Tag         string            `json:"tag"`
	Status      string            `json:"status"`
	Author      userRef           `json:"author"`
	Assignee    *userRef          `json:"assignee"`
	Comments    []commentResponse `json:"comments"`
	CreatedTime time.Time         `json:"created_time"`
	UpdatedTime time.Time         `json:"updated_time"`
}

func newIssueDetail(i *orm.Issue) issueDetail {
	comments := make([]commentResponse, 0, len(i.Comments))
	for _, c := range i.Comments {
		comments = append(comments, newCommentResponse(c))
	}

	return issueDetail{
		ID:          i.ID,
		ProjectID:   i.ProjectID,
		Title:       i.Title,
		Description: i.Description,
		Priority:    i.Priority,
		Tag:         i.Tag,
		Status:      i.Status,
		Author:      newUserRef(i.Author),
		Assignee:    newUserRefPtr(i.Assignee),
		Comments:    comments,
		CreatedTime: i.CreatedAt,
		UpdatedTime: i.UpdatedAt,
	}
}

// optionalUint distinguishes an absent JSON field from an explicit null, so
// a PATCH can clear an assignee without touching it on other updates.
type optionalUint struct {
	set   bool
	value *uint
}

func (o *optionalUint) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.value = nil

		return nil
	}

	var v uint
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parsing assignee id: %w", err)
	}
	o.value = &v

	return nil
}
