package models

import "time"

// WeeklySummary is the aggregate stored in MongoDB after each weekly report run.
type WeeklySummary struct {
	WeekStart      string         `bson:"week_start" json:"weekStart"`
	WeekEnd        string         `bson:"week_end" json:"weekEnd"`
	TotalOrders    int            `bson:"total_orders" json:"totalOrders"`
	TotalBoxes     int            `bson:"total_boxes" json:"totalBoxes"`
	ShortfallBoxes int            `bson:"shortfall_boxes" json:"shortfallBoxes"`
	CashReceived   float64        `bson:"cash_received" json:"cashReceived"`
	BoxesByVariety map[string]int `bson:"boxes_by_variety" json:"boxesByVariety"`
	TraysWasted    int            `bson:"trays_wasted" json:"traysWasted"`
	DeliverySpend  float64        `bson:"delivery_spend" json:"deliverySpend"`
	GeneratedAt    time.Time      `bson:"generated_at" json:"generatedAt"`
}
