package api

import (
	"net/http"
	"strconv"

	"issue-tracker/accounts"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username        string `json:"username"         binding:"required"`
	Email           string `json:"email"            binding:"required,email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Age             int    `json:"age"              binding:"required"`
	Password        string `json:"password"         binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	CanBeContacted  bool   `json:"can_be_contacted"`
	CanDataBeShared bool   `json:"can_data_be_shared"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	user, err := s.accounts.Register(c.Request.Context(), accounts.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Age:             req.Age,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		CanBeContacted:  req.CanBeContacted,
		CanDataBeShared: req.CanDataBeShared,
	})
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusCreated, newUserDetail(user))
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	user, err := s.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)

		return
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, pair)
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (s *Server) refreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	access, err := s.tokens.Refresh(req.Refresh)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) profile(c *gin.Context) {
	c.JSON(http.StatusOK, newUserDetail(actorFrom(c)))
}

func (s *Server) listUsers(c *gin.Context) {
	page, pageSize := pageParams(c)

	users, count, err := s.accounts.ListUsers(
		c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, err)

		return
	}

	results := make([]userRef, 0, len(users))
	for _, u := range users {
		results = append(results, newUserRef(u))
	}

	c.JSON(http.StatusOK, paginated(c, count, page, pageSize, results))
}

func (s *Server) getUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})

		return
	}

	user, err := s.accounts.GetUser(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, newUserDetail(user))
}

type updateUserRequest struct {
	Email           *string `json:"email" binding:"omitempty,email"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	CanBeContacted  *bool   `json:"can_be_contacted"`
	CanDataBeShared *bool   `json:"can_data_be_shared"`
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})

		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)

		return
	}

	user, err := s.accounts.UpdateUser(
		c.Request.Context(),
		actorFrom(c),
		uint(id),
		accounts.ProfileUpdate{
			Email:           req.Email,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			CanBeContacted:  req.CanBeContacted,
			CanDataBeShared: req.CanDataBeShared,
		},
	)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, newUserDetail(user))
}
