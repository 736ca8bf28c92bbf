package api

import (
	"net/http"
	"strconv"

	"issue-tracker/tracker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// resourceID parses an opaque identifier path parameter. Malformed tokens
// are indistinguishable from absent resources.
func resourceID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})

		return uuid.Nil, false
	}

	return id, true
}

func (s *Server) listProjects(c *gin.Context) {
	page, pageSize := pageParams(c)

	projects, count, err := s.tracker.ListProjects(
		c.Request.Context(), actorFrom(c), pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, err)

		return
	}

	results := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		results = append(results, newProjectSummary(p))
	}

	c.JSON(http.StatusOK, paginated(c, count, page, pageSize, results))
}

type createProjectRequest struct {
	Name        string `json:"name"        binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type"        binding:"required"`
}

func (s *Server) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	project, err := s.tracker.CreateProject(
		c.Request.Context(), actorFrom(c), tracker.ProjectInput{
			Name:        req.Name,
			Description: req.Description,
			Type:        req.Type,
		})
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusCreated, newProjectDetail(project))
}

func (s *Server) getProject(c *gin.Context) {
	id, ok := resourceID(c, "id")
	if !ok {
		return
	}

	project, err := s.tracker.GetProject(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, newProjectDetail(project))
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
}

func (s *Server) updateProject(c *gin.Context) {
	id, ok := resourceID(c, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	project, err := s.tracker.UpdateProject(
		c.Request.Context(), actorFrom(c), id, tracker.ProjectUpdate{
			Name:        req.Name,
			Description: req.Description,
			Type:        req.Type,
		})
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, newProjectDetail(project))
}

func (s *Server) deleteProject(c *gin.Context) {
	id, ok := resourceID(c, "id")
	if !ok {
		return
	}

	err := s.tracker.DeleteProject(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

type addContributorRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

func (s *Server) addContributor(c *gin.Context) {
	id, ok := resourceID(c, "id")
	if !ok {
		return
	}

	var req addContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	contributor, err := s.tracker.AddContributor(
		c.Request.Context(), actorFrom(c), id, req.UserID)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusCreated, newContributorResponse(*contributor))
}

func (s *Server) removeContributor(c *gin.Context) {
	id, ok := resourceID(c, "id")
	if !ok {
		return
	}

	rawUserID := c.Query("user_id")
	if rawUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"user_id": "This query parameter is required.",
		})

		return
	}

	userID, err := strconv.ParseUint(rawUserID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"user_id": "This query parameter must be an integer.",
		})

		return
	}

	err = s.tracker.RemoveContributor(
		c.Request.Context(), actorFrom(c), id, uint(userID))
	if err != nil {
		respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}
