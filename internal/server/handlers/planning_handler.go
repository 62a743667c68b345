package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/service/planning"
)

// SowingPlan returns the order-driven trays to sow on ?date (today by default).
func (h *FarmHandler) SowingPlan(c *gin.Context) {
	target, ok := h.dayQuery(c, "date", h.store.Now())
	if !ok {
		return
	}
	data := h.store.Snapshot()
	plan := planning.GenerateSowingPlan(planning.SowingPlanInput{
		Orders:     data.Orders,
		Varieties:  data.MicrogreenVarieties,
		Log:        data.HarvestingLog,
		TargetDate: target,
	})
	c.JSON(http.StatusOK, gin.H{"date": calendar.Format(target), "plan": plan})
}

// IntelligentPlan returns today's sowing tasks and seed purchases.
func (h *FarmHandler) IntelligentPlan(c *gin.Context) {
	data := h.store.Snapshot()
	plan := h.planner.Generate(c.Request.Context(), planning.IntelligentPlanInput{
		Orders:        data.Orders,
		Varieties:     data.MicrogreenVarieties,
		Log:           data.HarvestingLog,
		SeedInventory: data.SeedInventory,
	})
	c.JSON(http.StatusOK, plan)
}

// Suggestions returns AI sowing advice; an empty list when history is too short.
func (h *FarmHandler) Suggestions(c *gin.Context) {
	out, err := planning.Suggestions(c.Request.Context(), h.advisor, h.store.Snapshot())
	if err != nil {
		h.logger.Warn("sowing suggestions failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}
