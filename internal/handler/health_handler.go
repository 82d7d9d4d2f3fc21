package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/database"
	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/response"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db *database.PostgresDB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness reports that the process is up
// GET /health
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}))
}

// Readiness reports whether the service can reach its dependencies
// GET /ready
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, response.ServiceUnavailable("database not connected"))
		return
	}
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, response.ServiceUnavailable("database ping failed"))
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ready"}))
}
