package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"traderelay/internal/models"
	"traderelay/internal/service"
	"traderelay/utils"
)

// AdminMiddleware guards the provisioning endpoints with a shared key.
// An empty configured key leaves them open (dev mode).
func (s *Server) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.AdminKey == "" {
			c.Next()
			return
		}
		if !utils.SafeEqual(c.GetHeader("X-Admin-Key"), s.config.AdminKey) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid admin key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

type createUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Plan     string  `json:"plan"`
	TgChatID *string `json:"tg_chat_id"`
}

// CreateUser provisions a user, or returns the existing record for the
// email so the endpoint is safe to repeat.
func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email required"})
		return
	}

	user, created, err := s.service.ProvisionUser(c.Request.Context(), req.Email, req.Plan, req.TgChatID)
	if err != nil {
		s.logger.Errorf("Failed to provision user %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"created": created,
		"user_id": user.ID,
		"api_key": user.APIKey,
	})
}

type setPaidUntilRequest struct {
	Email string `json:"email" binding:"required,email"`
	Days  int    `json:"days"`
}

func (s *Server) SetPaidUntil(c *gin.Context) {
	var req setPaidUntilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email required"})
		return
	}
	if req.Days <= 0 {
		req.Days = 30
	}

	user, err := s.service.ExtendMembership(c.Request.Context(), req.Email, req.Days)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		s.logger.Errorf("Failed to extend membership for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"user_id":    user.ID,
		"paid_until": user.PaidUntil.UTC().Format(time.RFC3339),
	})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (s *Server) DisableUser(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email required"})
		return
	}

	_, err := s.service.DisableUser(c.Request.Context(), req.Email)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		s.logger.Errorf("Failed to disable user %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "disabled": req.Email})
}

func (s *Server) GetUser(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter required"})
		return
	}

	user, err := s.service.GetUserByEmail(c.Request.Context(), email)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		s.logger.Errorf("Failed to get user %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": userView(user)})
}

func userView(user *models.User) gin.H {
	var paidUntil interface{}
	if user.PaidUntil != nil {
		paidUntil = user.PaidUntil.UTC().Format(time.RFC3339)
	}
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"api_key":    user.APIKey,
		"is_active":  user.IsActive,
		"plan":       user.Plan,
		"paid_until": paidUntil,
		"tg_chat_id": user.TgChatID,
	}
}
