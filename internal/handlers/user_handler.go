package handlers

import (
	"errors"
	"net/http"

	"finance-tracker-api/internal/cache"
	"finance-tracker-api/internal/database"
	"finance-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserResponse is the safe projection of a user account
type UserResponse struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// GetAllUsers returns all user accounts (admin only)
// GET /api/users
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Order("username asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// GetCurrentUser returns the authenticated user's own account
// GET /api/me
func GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var user models.User
	if err := database.GetDB().Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateUserRoleRequest represents the payload for changing a user's role
type UpdateUserRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// UpdateUserRole handles PATCH /api/admin/users/:id/role (admin only)
func UpdateUserRole(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID := c.Param("id")
		if targetID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
			return
		}

		var req UpdateUserRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		switch req.Role {
		case models.RoleAdmin, models.RoleUser, models.RoleReadOnly:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}

		var user models.User
		if err := database.GetDB().Where("id = ?", targetID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
			}
			return
		}

		user.Role = req.Role
		if err := database.GetDB().Model(&user).Update("role", req.Role).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
			return
		}

		// Admin listings plus everything the target reads about themselves,
		// /api/me included.
		inv.ClearForDomain(c.Request.Context(), "/api/users", "")
		inv.ClearForPrincipal(c.Request.Context(), user.ID)

		c.JSON(http.StatusOK, toUserResponse(user))
	}
}
