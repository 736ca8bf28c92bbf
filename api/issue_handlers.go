package api

import (
	"net/http"

	"issue-tracker/orm"
	"issue-tracker/tracker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) listIssues(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}

	page, pageSize := pageParams(c)

	issues, count, err := s.tracker.ListIssues(
		c.Request.Context(), actorFrom(c), projectID, pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, err)

		return
	}

	results := make([]issueSummary, 0, len(issues))
	for _, issue := range issues {
		results = append(results, newIssueSummary(issue))
	}

	c.JSON(http.StatusOK, paginated(c, count, page, pageSize, results))
}

type createIssueRequest struct {
	Title       string `json:"title"       binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Tag         string `json:"tag"`
	Status      string `json:"status"`
	AssigneeID  *uint  `json:"assignee_id"`
}

func (s *Server) createIssue(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}

	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	issue, err := s.tracker.CreateIssue(
		c.Request.Context(), actorFrom(c), projectID, tracker.IssueInput{
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Tag:         req.Tag,
			Status:      req.Status,
			AssigneeID:  req.AssigneeID,
		})
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusCreated, newIssueDetail(issue))
}

// issueInProject fetches an issue and checks it actually sits under the
// project named in the path.
func (s *Server) issueInProject(
	c *gin.Context,
	projectID, issueID uuid.UUID,
) (*orm.Issue, bool) {
	issue, err := s.tracker.GetIssue(c.Request.Context(), actorFrom(c), issueID)
	if err != nil {
		respondError(c, err)

		return nil, false
	}

	if issue.ProjectID != projectID {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})

		return nil, false
	}

	return issue, true
}

func (s *Server) getIssue(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}
	issueID, ok := resourceID(c, "issueID")
	if !ok {
		return
	}

	issue, ok := s.issueInProject(c, projectID, issueID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newIssueDetail(issue))
}

type updateIssueRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Priority    *string      `json:"priority"`
	Tag         *string      `json:"tag"`
	Status      *string      `json:"status"`
	AssigneeID  optionalUint `json:"assignee_id"`
}

func (s *Server) updateIssue(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}
	issueID, ok := resourceID(c, "issueID")
	if !ok {
		return
	}

	if _, ok := s.issueInProject(c, projectID, issueID); !ok {
		return
	}

	var req updateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	upd := tracker.IssueUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tag:         req.Tag,
		Status:      req.Status,
	}
	if req.AssigneeID.set {
		upd.Assignee = &tracker.AssigneeChange{UserID: req.AssigneeID.value}
	}

	issue, err := s.tracker.UpdateIssue(
		c.Request.Context(), actorFrom(c), issueID, upd)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, newIssueDetail(issue))
}

// replaceIssueRequest is the full-payload shape bound on PUT. An absent
// assignee_id leaves the assignment untouched; an explicit null clears it.
type replaceIssueRequest struct {
	Title       string       `json:"title"       binding:"required"`
	Description string       `json:"description"`
	Priority    string       `json:"priority"    binding:"required"`
	Tag         string       `json:"tag"         binding:"required"`
	Status      string       `json:"status"      binding:"required"`
	AssigneeID  optionalUint `json:"assignee_id"`
}

func (s *Server) replaceIssue(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}
	issueID, ok := resourceID(c, "issueID")
	if !ok {
		return
	}

	if _, ok := s.issueInProject(c, projectID, issueID); !ok {
		return
	}

	var req replaceIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	upd := tracker.IssueUpdate{
		Title:       &req.Title,
		Description: &req.Description,
		Priority:    &req.Priority,
		Tag:         &req.Tag,
		Status:      &req.Status,
	}
	if req.AssigneeID.set {
		upd.Assignee = &tracker.AssigneeChange{UserID: req.AssigneeID.value}
	}

	issue, err := s.tracker.UpdateIssue(
		c.Request.Context(), actorFrom(c), issueID, upd)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, newIssueDetail(issue))
}

func (s *Server) deleteIssue(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}
	issueID, ok := resourceID(c, "issueID")
	if !ok {
		return
	}

	if _, ok := s.issueInProject(c, projectID, issueID); !ok {
		return
	}

	err := s.tracker.DeleteIssue(c.Request.Context(), actorFrom(c), issueID)
	if err != nil {
		respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}
