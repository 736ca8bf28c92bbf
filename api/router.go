package api

import (
	"issue-tracker/accounts"
	"issue-tracker/auth"
	"issue-tracker/tracker"

	"github.com/gin-gonic/gin"
)

// Server holds the services behind the HTTP surface.
type Server struct {
	accounts *accounts.Service
	tracker  *tracker.Service
	tokens   *auth.Manager
}

func NewServer(
	accountsService *accounts.Service,
	trackerService *tracker.Service,
	tokens *auth.Manager,
) *Server {
	return &Server{
		accounts: accountsService,
		tracker:  trackerService,
		tokens:   tokens,
	}
}

// Router builds the /api/v1 resource tree. Registration and token issuance
// are the only open endpoints.
func (s *Server) Router(production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/token", s.token)
	authGroup.POST("/token/refresh", s.refreshToken)

	users := authGroup.Group("/users", s.authenticate())
	users.GET("", s.listUsers)
	users.GET("/profile", s.profile)
	users.GET("/:id", s.getUser)
	users.PUT("/:id", s.updateUser)

	projects := v1.Group("/projects", s.authenticate())
	projects.GET("", s.listProjects)
	projects.POST("", s.createProject)
	projects.GET("/:id", s.getProject)
	projects.PUT("/:id", s.updateProject)
	projects.DELETE("/:id", s.deleteProject)

	projects.POST("/:id/contributor", s.addContributor)
	projects.DELETE("/:id/contributor", s.removeContributor)

	projects.GET("/:id/issues", s.listIssues)
	projects.POST("/:id/issues", s.createIssue)
	projects.GET("/:id/issues/:issueID", s.getIssue)
	projects.PUT("/:id/issues/:issueID", s.replaceIssue)
	projects.PATCH("/:id/issues/:issueID", s.updateIssue)
	projects.DELETE("/:id/issues/:issueID", s.deleteIssue)

	projects.GET("/:id/issues/:issueID/comments", s.listComments)
	projects.POST("/:id/issues/:issueID/comments", s.createComment)
	projects.GET("/:id/issues/:issueID/comments/:commentID", s.getComment)
	projects.PUT("/:id/issues/:issueID/comments/:commentID", s.updateComment)
	projects.PATCH("/:id/issues/:issueID/comments/:commentID", s.updateComment)
	projects.DELETE("/:id/issues/:issueID/comments/:commentID", s.deleteComment)

	return router
}
