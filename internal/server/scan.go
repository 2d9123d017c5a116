package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunExpirationScan triggers one expiration warning cycle. The scheduler
// calls this; re-invocations over the same data send nothing new.
func (s *Server) RunExpirationScan(c *gin.Context) {
	report, err := s.scanSvc.Run(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
