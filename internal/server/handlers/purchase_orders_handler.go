package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/store"
)

// ListPurchaseOrders returns seed purchase orders, newest first.
func (h *FarmHandler) ListPurchaseOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.PurchaseOrders())
}

// CreatePurchaseOrder adds a Draft purchase order.
func (h *FarmHandler) CreatePurchaseOrder(c *gin.Context) {
	var in store.PurchaseOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	po, err := h.store.AddPurchaseOrder(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

// UpdatePurchaseOrder edits a Draft purchase order.
func (h *FarmHandler) UpdatePurchaseOrder(c *gin.Context) {
	var in store.PurchaseOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	po, err := h.store.UpdatePurchaseOrder(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// DeletePurchaseOrder removes a purchase order.
func (h *FarmHandler) DeletePurchaseOrder(c *gin.Context) {
	if err := h.store.DeletePurchaseOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkPurchaseOrdered moves a Draft to Ordered.
func (h *FarmHandler) MarkPurchaseOrdered(c *gin.Context) {
	h.transitionPurchase(c, h.store.MarkPurchaseOrdered)
}

// ReceivePurchaseOrder moves an Ordered purchase to Received and books the seed into stock.
func (h *FarmHandler) ReceivePurchaseOrder(c *gin.Context) {
	h.transitionPurchase(c, h.store.ReceivePurchaseOrder)
}

// CancelPurchaseOrder cancels a Draft or Ordered purchase.
func (h *FarmHandler) CancelPurchaseOrder(c *gin.Context) {
	h.transitionPurchase(c, h.store.CancelPurchaseOrder)
}

func (h *FarmHandler) transitionPurchase(c *gin.Context, transition func(context.Context, string) (models.PurchaseOrder, error)) {
	po, err := transition(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}
