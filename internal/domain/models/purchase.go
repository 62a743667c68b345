package models

import "time"

// PurchaseOrderStatus is the state of a seed purchase order.
type PurchaseOrderStatus string

const (
	PurchaseDraft     PurchaseOrderStatus = "Draft"
	PurchaseOrdered   PurchaseOrderStatus = "Ordered"
	PurchaseReceived  PurchaseOrderStatus = "Received"
	PurchaseCancelled PurchaseOrderStatus = "Cancelled"
)

// CanTransitionTo reports whether the status may move to target.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseDraft:
		return target == PurchaseOrdered || target == PurchaseCancelled
	case PurchaseOrdered:
		return target == PurchaseReceived || target == PurchaseCancelled
	default:
		return false
	}
}

// PurchaseOrderItem is a seed line, quantity in grams.
type PurchaseOrderItem struct {
	Variety      string   `bson:"variety" json:"variety"`
	Quantity     float64  `bson:"quantity" json:"quantity"`
	PricePerGram *float64 `bson:"price_per_gram,omitempty" json:"pricePerGram,omitempty"`
}

// PurchaseOrder is a seed order placed with a supplier.
type PurchaseOrder struct {
	ID           string              `bson:"id" json:"id"`
	SupplierName string              `bson:"supplier_name" json:"supplierName"`
	Items        []PurchaseOrderItem `bson:"items" json:"items"`
	Status       PurchaseOrderStatus `bson:"status" json:"status"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
	OrderedAt    *time.Time          `bson:"ordered_at,omitempty" json:"orderedAt,omitempty"`
	ReceivedAt   *time.Time          `bson:"received_at,omitempty" json:"receivedAt,omitempty"`
	CancelledAt  *time.Time          `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	TotalCost    *float64            `bson:"total_cost,omitempty" json:"totalCost,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Clone returns a deep copy of the purchase order.
func (po PurchaseOrder) Clone() PurchaseOrder {
	out := po
	if po.Items != nil {
		out.Items = make([]PurchaseOrderItem, len(po.Items))
		for i, item := range po.Items {
			out.Items[i] = item
			if item.PricePerGram != nil {
				p := *item.PricePerGram
				out.Items[i].PricePerGram = &p
			}
		}
	}
	out.OrderedAt = cloneTime(po.OrderedAt)
	out.ReceivedAt = cloneTime(po.ReceivedAt)
	out.CancelledAt = cloneTime(po.CancelledAt)
	if po.TotalCost != nil {
		c := *po.TotalCost
		out.TotalCost = &c
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
