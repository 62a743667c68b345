package models

import "time"

// MicrogreenVariety is a named cultivar with a fixed growth cycle.
type MicrogreenVariety struct {
	Name            string `bson:"name" json:"name"`
	GrowthCycleDays int    `bson:"growth_cycle_days" json:"growthCycleDays"`
}

// IndexVarieties keys varieties by name.
func IndexVarieties(varieties []MicrogreenVariety) map[string]MicrogreenVariety {
	index := make(map[string]MicrogreenVariety, len(varieties))
	for _, v := range varieties {
		index[v.Name] = v
	}
	return index
}

// VarietyNames returns the names in registry order.
func VarietyNames(varieties []MicrogreenVariety) []string {
	names := make([]string, 0, len(varieties))
	for _, v := range varieties {
		names = append(names, v.Name)
	}
	return names
}

// SeedInventoryItem tracks seed stock for one variety. Stock may go negative; it is only flagged.
type SeedInventoryItem struct {
	StockOnHand      float64 `bson:"stock_on_hand" json:"stockOnHand"`
	ReorderLevel     float64 `bson:"reorder_level" json:"reorderLevel"`
	GramsPerTray     float64 `bson:"grams_per_tray" json:"gramsPerTray"`
	SafetyStockBoxes float64 `bson:"safety_stock_boxes,omitempty" json:"safetyStockBoxes,omitempty"`
}

// BelowReorder reports whether stock is at or below the reorder level.
func (s SeedInventoryItem) BelowReorder() bool {
	return s.StockOnHand <= s.ReorderLevel
}

// SeedInventory is keyed by variety name.
type SeedInventory map[string]SeedInventoryItem

// SeedInventoryPatch carries a partial manual edit; nil fields are left untouched.
type SeedInventoryPatch struct {
	StockOnHand      *float64 `json:"stockOnHand,omitempty"`
	ReorderLevel     *float64 `json:"reorderLevel,omitempty"`
	GramsPerTray     *float64 `json:"gramsPerTray,omitempty"`
	SafetyStockBoxes *float64 `json:"safetyStockBoxes,omitempty"`
}

// Apply merges the patch into item.
func (p SeedInventoryPatch) Apply(item SeedInventoryItem) SeedInventoryItem {
	if p.StockOnHand != nil {
		item.StockOnHand = *p.StockOnHand
	}
	if p.ReorderLevel != nil {
		item.ReorderLevel = *p.ReorderLevel
	}
	if p.GramsPerTray != nil {
		item.GramsPerTray = *p.GramsPerTray
	}
	if p.SafetyStockBoxes != nil {
		item.SafetyStockBoxes = *p.SafetyStockBoxes
	}
	return item
}

// HarvestLogEntry records trays sown on one calendar day.
type HarvestLogEntry struct {
	Date  string         `bson:"date" json:"date"` // YYYY-MM-DD
	Trays map[string]int `bson:"trays" json:"trays"`
}

// HarvestLog is keyed by sow date (YYYY-MM-DD).
type HarvestLog map[string]HarvestLogEntry

// WasteLogEntry records trays discarded before harvest.
type WasteLogEntry struct {
	ID          string    `bson:"id" json:"id"`
	Date        time.Time `bson:"date" json:"date"`
	Variety     string    `bson:"variety" json:"variety"`
	TraysWasted int       `bson:"trays_wasted" json:"traysWasted"`
	Reason      string    `bson:"reason" json:"reason"`
}

// DeliveryExpense records money paid to a delivery person.
type DeliveryExpense struct {
	ID             string    `bson:"id" json:"id"`
	Date           time.Time `bson:"date" json:"date"`
	DeliveryPerson string    `bson:"delivery_person" json:"deliveryPerson"`
	Amount         float64   `bson:"amount" json:"amount"`
	Remarks        string    `bson:"remarks,omitempty" json:"remarks,omitempty"`
}
