package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves liveness and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db      Pinger
	timeout time.Duration
}

// NewSystemHandler creates a new SystemHandler. db may be nil.
func NewSystemHandler(db Pinger, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: BaseHandler{logger: logger},
		db:          db,
		timeout:     2 * time.Second,
	}
}

// RegisterRoutes mounts /system/ping under rg.
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/ping", h.Ping)
}

// Health reports that the process is up.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ping checks the database connection.
func (h *SystemHandler) Ping(c *gin.Context) {
	if h.db == nil {
		h.Success(c, gin.H{"message": "pong"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log().Warn("database ping failed", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Database unavailable")
		return
	}
	h.Success(c, gin.H{"message": "pong", "database": "ok"})
}
