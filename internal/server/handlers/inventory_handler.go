package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/dataio"
)

type varietyRequest struct {
	Name            string `json:"name"`
	GrowthCycleDays int    `json:"growthCycleDays"`
}

type deliveryModeRequest struct {
	Mode string `json:"mode"`
}

type sowingLogRequest struct {
	Date  string         `json:"date"`
	Trays map[string]int `json:"trays"`
}

type wasteRequest struct {
	Date        string `json:"date"`
	Variety     string `json:"variety"`
	TraysWasted int    `json:"traysWasted"`
	Reason      string `json:"reason"`
}

type expenseRequest struct {
	Date           string  `json:"date"`
	DeliveryPerson string  `json:"deliveryPerson"`
	Amount         float64 `json:"amount"`
	Remarks        string  `json:"remarks"`
}

// ListVarieties returns the variety registry.
func (h *FarmHandler) ListVarieties(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Varieties())
}

// CreateVariety registers a variety with an empty seed record.
func (h *FarmHandler) CreateVariety(c *gin.Context) {
	var req varietyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	variety, err := h.store.AddVariety(c.Request.Context(), req.Name, req.GrowthCycleDays)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, variety)
}

// DeleteVariety removes a variety no order references.
func (h *FarmHandler) DeleteVariety(c *gin.Context) {
	if err := h.store.DeleteVariety(c.Request.Context(), c.Param("name")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportVarieties adds varieties from a CSV body.
func (h *FarmHandler) ImportVarieties(c *gin.Context) {
	varieties, err := dataio.ParseVarietiesCSV(c.Request.Body, h.store.Varieties())
	if err != nil {
		h.respondError(c, err)
		return
	}
	n, err := h.store.ImportVarieties(c.Request.Context(), varieties)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Info("varieties imported", zap.Int("count", n))
	c.JSON(http.StatusCreated, gin.H{"imported": n, "varieties": h.store.Varieties()})
}

// ListDeliveryModes returns the registered delivery modes.
func (h *FarmHandler) ListDeliveryModes(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.DeliveryModes())
}

// CreateDeliveryMode registers a delivery mode.
func (h *FarmHandler) CreateDeliveryMode(c *gin.Context) {
	var req deliveryModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	modes, err := h.store.AddDeliveryMode(c.Request.Context(), req.Mode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, modes)
}

// ListSowingLog returns the sowing log entries by date, oldest first.
func (h *FarmHandler) ListSowingLog(c *gin.Context) {
	log := h.store.SowingLog()
	entries := make([]models.HarvestLogEntry, 0, len(log))
	for _, entry := range log {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	c.JSON(http.StatusOK, entries)
}

// SaveSowingLog records trays sown on a day, today by default.
func (h *FarmHandler) SaveSowingLog(c *gin.Context) {
	var req sowingLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	date, err := parseDay(req.Date, h.store.Location())
	if err != nil {
		badRequest(c, "date: %v", err)
		return
	}
	day := h.store.Now()
	if date != nil {
		day = *date
	}
	entry, err := h.store.SaveSowingLog(c.Request.Context(), day, req.Trays)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ListSeedInventory returns seed stock per variety.
func (h *FarmHandler) ListSeedInventory(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.SeedInventory())
}

// PatchSeedInventory edits a variety's seed record.
func (h *FarmHandler) PatchSeedInventory(c *gin.Context) {
	var patch models.SeedInventoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	item, err := h.store.UpdateSeedInventory(c.Request.Context(), c.Param("variety"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListWaste returns the waste log.
func (h *FarmHandler) ListWaste(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.WasteLog())
}

// CreateWaste records discarded trays.
func (h *FarmHandler) CreateWaste(c *gin.Context) {
	var req wasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	date, err := parseDay(req.Date, h.store.Location())
	if err != nil {
		badRequest(c, "date: %v", err)
		return
	}
	entry := models.WasteLogEntry{Variety: req.Variety, TraysWasted: req.TraysWasted, Reason: req.Reason}
	if date != nil {
		entry.Date = *date
	}
	saved, err := h.store.AddWaste(c.Request.Context(), entry)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteWaste removes a waste entry.
func (h *FarmHandler) DeleteWaste(c *gin.Context) {
	if err := h.store.DeleteWaste(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListExpenses returns delivery expenses.
func (h *FarmHandler) ListExpenses(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.DeliveryExpenses())
}

// CreateExpense records a payment to a delivery person.
func (h *FarmHandler) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	date, err := parseDay(req.Date, h.store.Location())
	if err != nil {
		badRequest(c, "date: %v", err)
		return
	}
	expense := models.DeliveryExpense{DeliveryPerson: req.DeliveryPerson, Amount: req.Amount, Remarks: req.Remarks}
	if date != nil {
		expense.Date = *date
	}
	saved, err := h.store.AddExpense(c.Request.Context(), expense)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteExpense removes a delivery expense.
func (h *FarmHandler) DeleteExpense(c *gin.Context) {
	if err := h.store.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
