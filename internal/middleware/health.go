package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthStatus struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
}

// Pinger is implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var (
	healthMutex   sync.RWMutex
	startTime     = time.Now()
	version       = "1.0.0"
	lastStatus    *HealthStatus
	cacheDuration = 5 * time.Second
)

// HealthCheckMiddleware reports liveness and database reachability. Results are
// cached for a few seconds so frequent health checks do not hammer the database.
func HealthCheckMiddleware(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		healthMutex.RLock()
		cached := lastStatus
		healthMutex.RUnlock()

		if cached != nil && time.Since(cached.LastChecked) < cacheDuration {
			c.JSON(statusCode(cached), cached)
			return
		}

		status := &HealthStatus{
			Status:      "ok",
			Database:    "ok",
			LastChecked: time.Now(),
			Uptime:      time.Since(startTime).Round(time.Second).String(),
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status.Status = "degraded"
				status.Database = err.Error()
			}
		}

		healthMutex.Lock()
		status.Version = version
		lastStatus = status
		healthMutex.Unlock()

		c.JSON(statusCode(status), status)
	}
}

func SetVersion(v string) {
	healthMutex.Lock()
	defer healthMutex.Unlock()

	version = v
	lastStatus = nil
}

func statusCode(status *HealthStatus) int {
	if status.Status != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
