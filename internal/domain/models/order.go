package models

import "time"

// OrderStatus enumerates the lifecycle states of a client order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderHarvested  OrderStatus = "Harvested"
	OrderShortfall  OrderStatus = "Shortfall"
	OrderDispatched OrderStatus = "Dispatched"
	OrderCompleted  OrderStatus = "Completed"
)

// AllOrderStatuses lists every status in lifecycle order.
var AllOrderStatuses = []OrderStatus{OrderPending, OrderHarvested, OrderShortfall, OrderDispatched, OrderCompleted}

// IsDispatchable reports whether an order in this status may be handed to a delivery mode.
func (s OrderStatus) IsDispatchable() bool {
	return s == OrderHarvested || s == OrderShortfall
}

// HasHarvest reports whether an order in this status has already been through a harvest run.
func (s OrderStatus) HasHarvest() bool {
	switch s {
	case OrderHarvested, OrderShortfall, OrderDispatched, OrderCompleted:
		return true
	default:
		return false
	}
}

// OrderItem is one line of an order, quantity in 50g boxes.
type OrderItem struct {
	Variety  string `bson:"variety" json:"variety"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// Order is a client order moving from intake through harvest, dispatch and delivery.
type Order struct {
	ID            string      `bson:"id" json:"id"`
	ClientName    string      `bson:"client_name" json:"clientName"`
	Items         []OrderItem `bson:"items" json:"items"`
	Status        OrderStatus `bson:"status" json:"status"`
	CreatedAt     time.Time   `bson:"created_at" json:"createdAt"`
	DeliveryDate  *time.Time  `bson:"delivery_date,omitempty" json:"deliveryDate,omitempty"`
	DeliveryMode  string      `bson:"delivery_mode,omitempty" json:"deliveryMode,omitempty"`
	ActualHarvest []OrderItem `bson:"actual_harvest,omitempty" json:"actualHarvest,omitempty"`
	CashReceived  *float64    `bson:"cash_received,omitempty" json:"cashReceived,omitempty"`
	Remarks       string      `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Location      string      `bson:"location,omitempty" json:"location,omitempty"`
}

// FulfilledItems returns the harvested lines when present, otherwise the requested lines.
func (o Order) FulfilledItems() []OrderItem {
	if o.ActualHarvest != nil {
		return o.ActualHarvest
	}
	return o.Items
}

// TotalBoxes sums the quantities of the given lines.
func TotalBoxes(items []OrderItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// ReferencesVariety reports whether any requested line uses the variety.
func (o Order) ReferencesVariety(name string) bool {
	for _, item := range o.Items {
		if item.Variety == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	out := o
	out.Items = cloneItems(o.Items)
	out.ActualHarvest = cloneItems(o.ActualHarvest)
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		out.DeliveryDate = &d
	}
	if o.CashReceived != nil {
		c := *o.CashReceived
		out.CashReceived = &c
	}
	return out
}

func cloneItems(items []OrderItem) []OrderItem {
	if items == nil {
		return nil
	}
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}

// ShortfallItem describes one order line that could not be fully allocated at harvest.
type ShortfallItem struct {
	OrderID    string `json:"orderId"`
	ClientName string `json:"clientName"`
	Variety    string `json:"variety"`
	Requested  int    `json:"requested"`
	Allocated  int    `json:"allocated"`
	Shortfall  int    `json:"shortfall"`
}

// ShortfallReport is regenerated on every harvest run and never persisted.
type ShortfallReport []ShortfallItem
