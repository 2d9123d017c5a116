package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
)

type planRow struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Features    map[string]bool  `json:"features"`
	Limits      map[string]int64 `json:"limits"`
	SortOrder   int              `json:"sort_order"`
}

// ListPlans returns the purchasable plan catalog.
func (s *Server) ListPlans(c *gin.Context) {
	plans, err := s.planRepo.ListActive(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows := make([]planRow, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		row := planRow{
			ID:          p.ID.String(),
			Code:        p.Code,
			Name:        p.Name,
			Description: p.Description,
			Features:    p.FlagSet(),
			Limits:      map[string]int64{},
			SortOrder:   p.SortOrder,
		}
		if limits := p.Limits.Data(); limits != nil {
			row.Limits = limits
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ListPlanFeatures expands one plan's feature flags through the catalog
// into display names.
func (s *Server) ListPlanFeatures(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		AbortWithError(c, plandomain.ErrInvalidID)
		return
	}

	plan, err := s.planRepo.FindByID(c.Request.Context(), s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if plan == nil {
		AbortWithError(c, plandomain.ErrNotFound)
		return
	}

	names, err := s.featureSvc.EntitledNames(c.Request.Context(), plan.FlagSet())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"plan_id":  plan.ID.String(),
		"code":     plan.Code,
		"features": names,
	}})
}
