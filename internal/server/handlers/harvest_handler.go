package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/service/harvest"
	"github.com/mamadbah2/microgreens/internal/service/printing"
)

type harvestRequest struct {
	Harvested map[string]int `json:"harvested"`
}

func (h *FarmHandler) pickLines() []printing.PickLine {
	data := h.store.Snapshot()
	picks := harvest.PickList(data.Orders, data.MicrogreenVarieties, h.store.Now())
	return printing.PickLines(picks, data.MicrogreenVarieties)
}

// PickList returns the boxes to pick per variety for orders due today.
func (h *FarmHandler) PickList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"date": calendar.Format(h.store.Now()), "items": h.pickLines()})
}

// PickListPDF renders the pick list for printing.
func (h *FarmHandler) PickListPDF(c *gin.Context) {
	var buf bytes.Buffer
	if err := printing.WritePickList(&buf, h.store.Now(), h.pickLines()); err != nil {
		h.respondError(c, err)
		return
	}
	h.sendPDF(c, "picklist", buf.Bytes())
}

// RecordHarvest allocates today's harvest to due orders, first come first served.
func (h *FarmHandler) RecordHarvest(c *gin.Context) {
	var req harvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	report, err := h.store.Harvest(c.Request.Context(), req.Harvested)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shortfall": report, "orders": h.store.Orders()})
}

// ManifestPDF renders dispatched orders grouped by delivery mode.
func (h *FarmHandler) ManifestPDF(c *gin.Context) {
	var buf bytes.Buffer
	groups := printing.GroupManifest(h.store.Orders())
	if err := printing.WriteManifest(&buf, h.store.Now(), groups); err != nil {
		h.respondError(c, err)
		return
	}
	h.sendPDF(c, "manifest", buf.Bytes())
}

func (h *FarmHandler) sendPDF(c *gin.Context, name string, body []byte) {
	filename := fmt.Sprintf("%s_%s.pdf", name, calendar.Format(h.store.Now()))
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
