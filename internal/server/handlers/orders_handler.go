package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/dataio"
	"github.com/mamadbah2/microgreens/internal/service/reporting"
	"github.com/mamadbah2/microgreens/internal/store"
)

type orderRequest struct {
	ClientName   string             `json:"clientName"`
	Items        []models.OrderItem `json:"items"`
	DeliveryDate string             `json:"deliveryDate"`
	Location     string             `json:"location"`
}

type dispatchRequest struct {
	DeliveryMode string `json:"deliveryMode"`
}

func (h *FarmHandler) bindOrder(c *gin.Context) (store.OrderInput, bool) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return store.OrderInput{}, false
	}
	date, err := parseDay(req.DeliveryDate, h.store.Location())
	if err != nil {
		badRequest(c, "deliveryDate: %v", err)
		return store.OrderInput{}, false
	}
	return store.OrderInput{
		ClientName:   req.ClientName,
		Items:        req.Items,
		DeliveryDate: date,
		Location:     req.Location,
	}, true
}

// ListOrders returns every order, newest first, or a CSV export with format=csv.
func (h *FarmHandler) ListOrders(c *gin.Context) {
	orders := h.store.Orders()
	h.respondTable(c, "orders", orders, func() dataio.Table { return reporting.OrdersTable(orders) })
}

// CreateOrder adds a Pending order.
func (h *FarmHandler) CreateOrder(c *gin.Context) {
	in, ok := h.bindOrder(c)
	if !ok {
		return
	}
	order, err := h.store.AddOrder(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// UpdateOrder edits a Pending order.
func (h *FarmHandler) UpdateOrder(c *gin.Context) {
	in, ok := h.bindOrder(c)
	if !ok {
		return
	}
	order, err := h.store.UpdateOrder(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder removes one order.
func (h *FarmHandler) DeleteOrder(c *gin.Context) {
	if err := h.store.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAllOrders clears the order book.
func (h *FarmHandler) DeleteAllOrders(c *gin.Context) {
	if err := h.store.DeleteAllOrders(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DispatchOrder assigns a delivery mode to a harvested order.
func (h *FarmHandler) DispatchOrder(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.store.Dispatch(c.Request.Context(), c.Param("id"), req.DeliveryMode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CompleteOrder records the delivery outcome.
func (h *FarmHandler) CompleteOrder(c *gin.Context) {
	var req store.CompletionInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	order, err := h.store.CompleteDelivery(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ImportOrders creates orders from a CSV body. The whole file is rejected on the first bad row.
func (h *FarmHandler) ImportOrders(c *gin.Context) {
	inputs, err := dataio.ParseOrdersCSV(c.Request.Body, h.store.Varieties(), h.store.Location())
	if err != nil {
		h.respondError(c, err)
		return
	}
	created, err := h.store.ImportOrders(c.Request.Context(), inputs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Info("orders imported", zap.Int("count", len(created)))
	c.JSON(http.StatusCreated, gin.H{"imported": len(created), "orders": created})
}
