package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/service/dataio"
)

// ExportData downloads the whole application state as JSON.
func (h *FarmHandler) ExportData(c *gin.Context) {
	filename := fmt.Sprintf("microgreens_backup_%s.json", calendar.Format(h.store.Now()))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := dataio.ExportSnapshot(c.Writer, h.store.Snapshot()); err != nil {
		h.logger.Error("failed writing export", zap.Error(err))
	}
}

// ImportData replaces the whole application state with an exported document.
func (h *FarmHandler) ImportData(c *gin.Context) {
	data, err := dataio.ImportSnapshot(c.Request.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.store.Replace(c.Request.Context(), data); err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Warn("application data replaced by import", zap.Int("orders", len(data.Orders)))
	c.JSON(http.StatusOK, h.status())
}

// ResetData restores the seeded defaults.
func (h *FarmHandler) ResetData(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Warn("application data reset to defaults")
	c.JSON(http.StatusOK, h.status())
}

func (h *FarmHandler) status() gin.H {
	body := gin.H{
		"orders":    len(h.store.Orders()),
		"varieties": len(h.store.Varieties()),
	}
	if err := h.store.PersistenceError(); err != nil {
		body["persistenceError"] = err.Error()
	}
	return body
}

// Health reports liveness and the outcome of the last persistence attempt.
func (h *FarmHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if err := h.store.PersistenceError(); err != nil {
		body["persistenceError"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
