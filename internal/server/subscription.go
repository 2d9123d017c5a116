package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type subscriptionRow struct {
	ID            string    `json:"id"`
	PlanID        string    `json:"plan_id"`
	PlanCode      string    `json:"plan_code,omitempty"`
	PlanName      string    `json:"plan_name,omitempty"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Active        bool      `json:"active"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListSubscriptions returns the caller's full subscription history.
func (s *Server) ListSubscriptions(c *gin.Context) {
	views, err := s.subscriptionSvc.ListAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows := make([]subscriptionRow, 0, len(views))
	for _, v := range views {
		row := subscriptionRow{
			ID:        v.Subscription.ID.String(),
			PlanID:    v.Subscription.PlanID.String(),
			StartAt:   v.Subscription.StartAt,
			EndAt:     v.Subscription.EndAt,
			Active:    v.Subscription.Active,
			CreatedAt: v.Subscription.CreatedAt,
		}
		if v.Plan != nil {
			row.PlanCode = v.Plan.Code
			row.PlanName = v.Plan.Name
		}
		if v.Payment != nil {
			row.PaymentStatus = string(v.Payment.Status)
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}
