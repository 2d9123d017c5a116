package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	usagedomain "github.com/paperforge/paperforge/internal/usage/domain"
)

// GetQuota reports the caller's quota state for one metered resource.
func (s *Server) GetQuota(c *gin.Context) {
	resource := strings.TrimSpace(c.Param("resource"))
	if resource == "" {
		AbortWithError(c, usagedomain.ErrInvalidResource)
		return
	}

	ev, err := s.usageSvc.Evaluate(c.Request.Context(), resource)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ev})
}

// GetUsage returns the raw consumption counter, zero when untracked.
func (s *Server) GetUsage(c *gin.Context) {
	resource := strings.TrimSpace(c.Param("resource"))
	if resource == "" {
		AbortWithError(c, usagedomain.ErrInvalidResource)
		return
	}

	used, err := s.usageSvc.Get(c.Request.Context(), resource)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"resource": resource,
		"used":     used,
	}})
}

// ConsumeUsage enforces the quota gate and records one unit of consumption.
// Exhausted quotas reject with limit_reached before any work happens.
func (s *Server) ConsumeUsage(c *gin.Context) {
	resource := strings.TrimSpace(c.Param("resource"))
	if resource == "" {
		AbortWithError(c, usagedomain.ErrInvalidResource)
		return
	}

	ev, err := s.usageSvc.Consume(c.Request.Context(), resource)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ev})
}
