package security

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"itinventory/internal/repository"
	"itinventory/pkg/models"
	"itinventory/pkg/roles"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveUser       = errors.New("user account is inactive")
)

var (
	settingsMu sync.RWMutex
	jwtSecret  []byte
	tokenTTL   = 120 * time.Hour
)

// Configure sets the signing secret and token lifetime. It is called once at
// start-up from the loaded configuration.
func Configure(secret string, ttl time.Duration) {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	jwtSecret = []byte(secret)
	if ttl > 0 {
		tokenTTL = ttl
	}
}

func secret() ([]byte, error) {
	settingsMu.RLock()
	defer settingsMu.RUnlock()

	if len(jwtSecret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}
	return jwtSecret, nil
}

func AuthenticateUser(ctx context.Context, username, password string, repo *repository.Repository) (*models.User, error) {
	var user models.User

	query := repo.GoquDBWrapper.
		Select("id", "username", "fullname", "password_hash", "role", "active").
		From("users").
		Where(goqu.Ex{"username": username})

	found, err := query.Executor().ScanStructContext(ctx, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !found {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrInactiveUser
	}

	return &user, nil
}

func GenerateJWT(userID string, role string, username string) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}

	settingsMu.RLock()
	ttl := tokenTTL
	settingsMu.RUnlock()

	claims := jwt.MapClaims{
		"userID":   userID,
		"role":     role,
		"username": username,
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}

// CurrentUserID returns the authenticated user's id, or nil for anonymous
// requests. Used to stamp history rows and audit entries.
func CurrentUserID(c *gin.Context) *int {
	raw, ok := c.Get("userID")
	if !ok {
		return nil
	}

	value, ok := raw.(string)
	if !ok {
		return nil
	}

	id, err := strconv.Atoi(value)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

// IsAllowed reports whether the caller's role is at least requiredRole.
func IsAllowed(c *gin.Context, requiredRole string) bool {
	raw, ok := c.Get("role")
	if !ok {
		return false
	}

	role, ok := raw.(string)
	if !ok {
		return false
	}

	return roles.Role(role).HasPermission(roles.Role(requiredRole))
}
