package orm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project types accepted by the API.
const (
	ProjectTypeBackend  = "back-end"
	ProjectTypeFrontend = "front-end"
	ProjectTypeIOS      = "iOS"
	ProjectTypeAndroid  = "Android"
)

// Contributor roles.
const (
	RoleAuthor      = "author"
	RoleContributor = "contributor"
)

// Issue priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Issue tags.
const (
	TagBug     = "BUG"
	TagFeature = "FEATURE"
	TagTask    = "TASK"
)

// Issue statuses. Transitions between them are unconstrained.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusFinished   = "Finished"
)

type User struct {
	ID              uint   `gorm:"primaryKey"                    json:"id"`
	Username        string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email           string `gorm:"size:254"                      json:"email"`
	FirstName       string `gorm:"size:150"                      json:"first_name"`
	LastName        string `gorm:"size:150"                      json:"last_name"`
	Age             int    `gorm:"not null"                      json:"age"`
	CanBeContacted  bool   `gorm:"not null;default:false"        json:"can_be_contacted"`
	CanDataBeShared bool   `gorm:"not null;default:false"        json:"can_data_be_shared"`
	PasswordHash    string `gorm:"size:128;not null"             json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null"    json:"name"`
	Description string    `gorm:"type:text"            json:"description"`
	Type        string    `gorm:"size:20;not null"     json:"type"`
	AuthorID    uint      `gorm:"not null"             json:"-"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`

	CreatedAt time.Time `json:"created_time"`
	UpdatedAt time.Time `json:"updated_time"`

	Contributors []Contributor `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"contributors,omitempty"`
	Issues       []Issue       `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	return nil
}

// Contributor links a user to a project. The (user, project) pair is unique
// at the storage level so concurrent duplicate adds collapse to a single row
// plus a conflict, never two rows.
type Contributor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_contributor_user_project" json:"-"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contributor_user_project" json:"project_id"`
	Role      string    `gorm:"size:20;not null;default:contributor" json:"role"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`

	CreatedAt time.Time `json:"created_time"`
}

func (c *Contributor) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	return nil
}

type Issue struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Title       string    `gorm:"size:255;not null"        json:"title"`
	Description string    `gorm:"type:text"                json:"description"`
	Priority    string    `gorm:"size:10;not null;default:MEDIUM"  json:"priority"`
	Tag         string    `gorm:"size:20;not null;default:TASK"    json:"tag"`
	Status      string    `gorm:"size:20;not null;default:'To Do'" json:"status"`
	AuthorID    uint      `gorm:"not null"                 json:"-"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`

	// An issue survives its assignee's departure.
	AssigneeID *uint `json:"-"`
	Assignee   *User `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee"`

	CreatedAt time.Time `json:"created_time"`
	UpdatedAt time.Time `json:"updated_time"`

	Comments []Comment `gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

func (i *Issue) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}

	return nil
}

type Comment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"     json:"uuid"`
	IssueID     uuid.UUID `gorm:"type:uuid;not null;index" json:"issue_id"`
	Issue       Issue     `gorm:"foreignKey:IssueID"       json:"-"`
	Description string    `gorm:"type:text;not null"       json:"description"`
	AuthorID    uint      `gorm:"not null"                 json:"-"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`

	CreatedAt time.Time `json:"created_time"`
	UpdatedAt time.Time `json:"updated_time"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	return nil
}

// ProjectScope and CreatedBy give each resource variant an explicit owning
// project and author, so the access layer never inspects concrete types.

func (p *Project) ProjectScope() uuid.UUID { return p.ID }
func (p *Project) CreatedBy() uint         { return p.AuthorID }

func (i *Issue) ProjectScope() uuid.UUID { return i.ProjectID }
func (i *Issue) CreatedBy() uint         { return i.AuthorID }

// ProjectScope requires the comment's issue to be loaded; every comment query
// in this package preloads it.
func (c *Comment) ProjectScope() uuid.UUID { return c.Issue.ProjectID }
func (c *Comment) CreatedBy() uint         { return c.AuthorID }

func ValidProjectType(t string) bool {
	switch t {
	case ProjectTypeBackend, ProjectTypeFrontend, ProjectTypeIOS, ProjectTypeAndroid:
		return true
	}

	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}

	return false
}

func ValidTag(t string) bool {
	switch t {
	case TagBug, TagFeature, TagTask:
		return true
	}

	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusFinished:
		return true
	}

	return false
}
