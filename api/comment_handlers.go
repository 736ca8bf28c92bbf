package api

import (
	"net/http"

	"issue-tracker/orm"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) listComments(c *gin.Context) {
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

	page, pageSize := pageParams(c)

	comments, count, err := s.tracker.ListComments(
		c.Request.Context(), actorFrom(c), issueID, pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, err)

		return
	}

	results := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		results = append(results, newCommentResponse(comment))
	}

	c.JSON(http.StatusOK, paginated(c, count, page, pageSize, results))
}

type commentRequest struct {
	Description string `json:"description" binding:"required"`
}

func (s *Server) createComment(c *gin.Context) {
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

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	comment, err := s.tracker.CreateComment(
		c.Request.Context(), actorFrom(c), issueID, req.Description)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusCreated, newCommentResponse(*comment))
}

// commentInIssue fetches a comment and checks it sits under the issue named
// in the path.
func (s *Server) commentInIssue(
	c *gin.Context,
	issueID, commentID uuid.UUID,
) (*orm.Comment, bool) {
	comment, err := s.tracker.GetComment(c.Request.Context(), actorFrom(c), commentID)
	if err != nil {
		respondError(c, err)

		return nil, false
	}

	if comment.IssueID != issueID {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})

		return nil, false
	}

	return comment, true
}

func (s *Server) getComment(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}
	issueID, ok := resourceID(c, "issueID")
	if !ok {
		return
	}
	commentID, ok := resourceID(c, "commentID")
	if !ok {
		return
	}

	if _, ok := s.issueInProject(c, projectID, issueID); !ok {
		return
	}

	comment, ok := s.commentInIssue(c, issueID, commentID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newCommentResponse(*comment))
}

func (s *Server) updateComment(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}
	issueID, ok := resourceID(c, "issueID")
	if !ok {
		return
	}
	commentID, ok := resourceID(c, "commentID")
	if !ok {
		return
	}

	if _, ok := s.issueInProject(c, projectID, issueID); !ok {
		return
	}
	if _, ok := s.commentInIssue(c, issueID, commentID); !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	comment, err := s.tracker.UpdateComment(
		c.Request.Context(), actorFrom(c), commentID, req.Description)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, newCommentResponse(*comment))
}

func (s *Server) deleteComment(c *gin.Context) {
	projectID, ok := resourceID(c, "id")
	if !ok {
		return
	}
	issueID, ok := resourceID(c, "issueID")
	if !ok {
		return
	}
	commentID, ok := resourceID(c, "commentID")
	if !ok {
		return
	}

	if _, ok := s.issueInProject(c, projectID, issueID); !ok {
		return
	}
	if _, ok := s.commentInIssue(c, issueID, commentID); !ok {
		return
	}

	err := s.tracker.DeleteComment(c.Request.Context(), actorFrom(c), commentID)
	if err != nil {
		respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}
