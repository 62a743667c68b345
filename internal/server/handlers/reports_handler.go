package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/service/dataio"
	"github.com/mamadbah2/microgreens/internal/service/planning"
	"github.com/mamadbah2/microgreens/internal/service/reporting"
)

const (
	yieldWindowDays  = 90
	reportWindowDays = 30
)

// YieldReport returns boxes per tray by variety in [start, end], the trailing 90 days by default.
func (h *FarmHandler) YieldReport(c *gin.Context) {
	start, end, ok := h.rangeQuery(c, yieldWindowDays)
	if !ok {
		return
	}
	data := h.store.Snapshot()
	rows := planning.CalculateYieldRatios(data.Orders, data.HarvestingLog, start, end)
	h.respondTable(c, "yield", rows, func() dataio.Table { return reporting.YieldTable(rows) })
}

// SeedToSaleReport returns the funnel from seed purchased to boxes sold.
func (h *FarmHandler) SeedToSaleReport(c *gin.Context) {
	start, end, ok := h.rangeQuery(c, reportWindowDays)
	if !ok {
		return
	}
	data := h.store.Snapshot()
	rows := reporting.SeedToSale(reporting.FunnelInput{
		Start:          start,
		End:            end,
		PurchaseOrders: data.PurchaseOrders,
		SeedInventory:  data.SeedInventory,
		Orders:         data.Orders,
		Log:            data.HarvestingLog,
		Now:            h.store.Now(),
	})
	h.respondTable(c, "seed_to_sale", rows, func() dataio.Table { return reporting.FunnelTable(rows) })
}

// SummaryReport aggregates orders created in [start, end], the current week by default.
func (h *FarmHandler) SummaryReport(c *gin.Context) {
	today := calendar.StartOfDay(h.store.Now())
	start, ok := h.dayQuery(c, "start", calendar.MondayStart(today))
	if !ok {
		return
	}
	end, ok := h.dayQuery(c, "end", today)
	if !ok {
		return
	}
	if end.Before(start) {
		badRequest(c, "end must not be before start")
		return
	}
	c.JSON(http.StatusOK, reporting.SummarizePeriod(h.store.Orders(), start, end))
}

// LocationReport returns completed sales grouped by delivery location.
func (h *FarmHandler) LocationReport(c *gin.Context) {
	rows := reporting.SalesByLocation(h.store.Orders())
	h.respondTable(c, "locations", rows, func() dataio.Table { return reporting.LocationTable(rows) })
}

// EngagementReport flags clients who stopped or reduced ordering this month.
func (h *FarmHandler) EngagementReport(c *gin.Context) {
	report := reporting.EngagementAt(h.store.Orders(), h.store.Now())
	h.respondTable(c, "engagement", report, func() dataio.Table { return reporting.EngagementTable(report) })
}

// UpcomingHarvestsReport projects the sowing log over the next two weeks.
func (h *FarmHandler) UpcomingHarvestsReport(c *gin.Context) {
	data := h.store.Snapshot()
	days := reporting.UpcomingHarvests(data.HarvestingLog, data.MicrogreenVarieties, h.store.Now(), reporting.UpcomingWindowDays)
	h.respondTable(c, "upcoming_harvests", days, func() dataio.Table { return reporting.UpcomingTable(days) })
}
