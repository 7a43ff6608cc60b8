package users

import (
	"net/http"
	"strconv"

	"itinventory/internal/core/response"
	"itinventory/internal/repository"
	"itinventory/pkg/auditlog"
	"itinventory/pkg/models"
	"itinventory/pkg/roles"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type UsersHandler struct {
	Repository UserRepository
	AuditLog   auditlog.Logger
	logger     *zap.Logger
}

func NewHandler(r UserRepository, auditLog auditlog.Logger, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		Repository: r,
		AuditLog:   auditLog,
		logger:     logger,
	}
}

func (h *UsersHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/users", security.Authorize("admin"), h.RegisterUser)
	router.GET("/users", security.Authorize("moderator"), h.GetUserList)
	router.GET("/users/search", security.Authorize("moderator"), h.SearchUsers)
	router.GET("/users/:id", security.Authorize("user"), h.GetUser)
	router.PATCH("/users/:id", security.Authorize("user"), h.UpdateUser)
	router.POST("/users/:id/deactivate", security.Authorize("admin"), h.DeactivateUser)
	router.DELETE("/users/:id", security.Authorize("admin"), h.DeleteUser)
}

func (h *UsersHandler) RegisterUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Rejected user registration payload", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if _, err := roles.NewRole(string(req.Role)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role", "details": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	id, err := h.Repository.PersistUser(c.Request.Context(), req, hashedPassword)
	if err != nil {
		response.Error(c, err, "Failed to create user")
		return
	}

	h.logger.Info("User registered", zap.Int("user_id", id), zap.String("username", req.Username))
	h.AuditLog.Log(c.Request.Context(), "create", gin.H{"username": req.Username, "role": req.Role}, &models.User{ID: id})

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "id": id})
}

func (h *UsersHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	if !h.isAllowed(c, userID, "admin") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": "You are not allowed to access this resource"})
		return
	}

	// Only admins may change roles or the active flag, including their own.
	if (req.Role != nil || req.Active != nil) && !security.IsAllowed(c, "admin") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": "Only administrators can change roles or account state"})
		return
	}

	user, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err, "Unable to find user")
		return
	}

	changes := &models.UserChanges{
		Fullname:   req.Fullname,
		Email:      req.Email,
		Department: req.Department,
	}

	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < minPasswordLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters long"})
			return
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		passwordHash := string(hashedPassword)
		changes.PasswordHash = &passwordHash
	}

	if req.Role != nil && *req.Role != user.Role {
		role, err := roles.NewRole(string(*req.Role))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role", "details": err.Error()})
			return
		}
		value := string(role)
		changes.Role = &value
	}

	if req.Active != nil && *req.Active != user.Active {
		changes.Active = req.Active
	}

	if !changes.HasChanges() {
		c.JSON(http.StatusOK, user)
		return
	}

	if err := h.Repository.UpdateUser(c.Request.Context(), userID, changes); err != nil {
		response.Error(c, err, "Failed to update user")
		return
	}

	updatedUser, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err, "Failed to get updated user")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "update", gin.H{
		"fullname":         req.Fullname,
		"email":            req.Email,
		"department":       req.Department,
		"role":             changes.Role,
		"active":           changes.Active,
		"password_changed": changes.PasswordHash != nil,
	}, updatedUser)

	c.JSON(http.StatusOK, updatedUser)
}

func (h *UsersHandler) DeactivateUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	inactive := false
	if err := h.Repository.UpdateUser(c.Request.Context(), userID, &models.UserChanges{Active: &inactive}); err != nil {
		response.Error(c, err, "Failed to deactivate user")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "deactivate", nil, &models.User{ID: userID})

	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}

func (h *UsersHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	if current := security.CurrentUserID(c); current != nil && *current == userID {
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot delete your own account"})
		return
	}

	deleted, err := h.Repository.DeleteUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err, "Failed to delete user")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unable to find user", "code": "USER_NOT_FOUND"})
		return
	}

	h.logger.Info("User deleted", zap.Int("user_id", userID))
	h.AuditLog.Log(c.Request.Context(), "delete", nil, &models.User{ID: userID})

	c.Status(http.StatusNoContent)
}

func (h *UsersHandler) GetUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	if !h.isAllowed(c, userID, "moderator") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": "You are not allowed to access this resource"})
		return
	}

	user, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err, "Unable to find user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) GetUserList(c *gin.Context) {
	var pagination repository.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination", "details": err.Error()})
		return
	}

	users, total, err := h.Repository.GetUsers(c.Request.Context(), &pagination)
	if err != nil {
		response.Error(c, err, "Could not obtain list of users")
		return
	}

	c.JSON(http.StatusOK, repository.NewPage(users, pagination, total))
}

func (h *UsersHandler) SearchUsers(c *gin.Context) {
	var pagination repository.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination", "details": err.Error()})
		return
	}

	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search term is required"})
		return
	}

	users, total, err := h.Repository.SearchUsers(c.Request.Context(), term, &pagination)
	if err != nil {
		response.Error(c, err, "Could not search users")
		return
	}

	c.JSON(http.StatusOK, repository.NewPage(users, pagination, total))
}

// isAllowed passes when the caller is the user itself or holds userRole.
func (h *UsersHandler) isAllowed(c *gin.Context, userID int, userRole string) bool {
	authID := security.CurrentUserID(c)
	if authID == nil {
		return false
	}

	return *authID == userID || security.IsAllowed(c, userRole)
}
