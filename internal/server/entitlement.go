package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type planSummary struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type subscriptionSummary struct {
	ID      string    `json:"id"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type entitlementResponse struct {
	Active       bool                 `json:"active"`
	Plan         *planSummary         `json:"plan,omitempty"`
	Subscription *subscriptionSummary `json:"subscription,omitempty"`
	Features     map[string]string    `json:"features"`
	Limits       map[string]int64     `json:"limits"`
	Usage        map[string]int64     `json:"usage"`
}

// GetEntitlement resolves the caller's governing subscription. A caller
// with no eligible subscription gets the free-tier shape, not an error.
func (s *Server) GetEntitlement(c *gin.Context) {
	ctx := c.Request.Context()

	ent, err := s.subscriptionSvc.ResolveActive(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := entitlementResponse{
		Features: map[string]string{},
		Limits:   map[string]int64{},
		Usage:    map[string]int64{},
	}

	if ent == nil {
		c.JSON(http.StatusOK, gin.H{"data": resp})
		return
	}

	names, err := s.featureSvc.EntitledNames(ctx, ent.Plan.FlagSet())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp.Active = true
	resp.Plan = &planSummary{
		ID:          ent.Plan.ID.String(),
		Code:        ent.Plan.Code,
		Name:        ent.Plan.Name,
		Description: ent.Plan.Description,
	}
	resp.Subscription = &subscriptionSummary{
		ID:      ent.Subscription.ID.String(),
		StartAt: ent.Subscription.StartAt,
		EndAt:   ent.Subscription.EndAt,
	}
	resp.Features = names
	if limits := ent.Plan.Limits.Data(); limits != nil {
		resp.Limits = limits
	}
	if usage := ent.Subscription.Usage.Data(); usage != nil {
		resp.Usage = usage
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
