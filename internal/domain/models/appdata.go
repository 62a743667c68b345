package models

// AppData is the whole application state, persisted and exported as one document.
type AppData struct {
	Orders              []Order             `bson:"orders" json:"orders"`
	MicrogreenVarieties []MicrogreenVariety `bson:"microgreen_varieties" json:"microgreenVarieties"`
	DeliveryModes       []string            `bson:"delivery_modes" json:"deliveryModes"`
	Inventory           map[string]int      `bson:"inventory" json:"inventory"`
	HarvestingLog       HarvestLog          `bson:"harvesting_log" json:"harvestingLog"`
	SeedInventory       SeedInventory       `bson:"seed_inventory" json:"seedInventory"`
	WasteLog            []WasteLogEntry     `bson:"waste_log" json:"wasteLog"`
	DeliveryExpenses    []DeliveryExpense   `bson:"delivery_expenses" json:"deliveryExpenses"`
	PurchaseOrders      []PurchaseOrder     `bson:"purchase_orders" json:"purchaseOrders"`
}

// DefaultAppData returns the seeded state used for a fresh install or a reset.
func DefaultAppData() AppData {
	return AppData{
		Orders: []Order{},
		MicrogreenVarieties: []MicrogreenVariety{
			{Name: "Sunflower", GrowthCycleDays: 8},
			{Name: "Radish", GrowthCycleDays: 7},
			{Name: "Peas", GrowthCycleDays: 10},
			{Name: "Broccoli", GrowthCycleDays: 9},
			{Name: "Mustard", GrowthCycleDays: 6},
		},
		DeliveryModes: []string{"Porter", "Swiggy Genie", "Tiffin"},
		Inventory:     map[string]int{},
		HarvestingLog: HarvestLog{},
		SeedInventory: SeedInventory{
			"Sunflower": {StockOnHand: 5000, ReorderLevel: 1000, GramsPerTray: 120, SafetyStockBoxes: 10},
			"Radish":    {StockOnHand: 2500, ReorderLevel: 500, GramsPerTray: 80, SafetyStockBoxes: 5},
			"Peas":      {StockOnHand: 8000, ReorderLevel: 2000, GramsPerTray: 200, SafetyStockBoxes: 8},
			"Broccoli":  {StockOnHand: 1500, ReorderLevel: 300, GramsPerTray: 30, SafetyStockBoxes: 5},
			"Mustard":   {StockOnHand: 1200, ReorderLevel: 300, GramsPerTray: 40},
		},
		WasteLog:         []WasteLogEntry{},
		DeliveryExpenses: []DeliveryExpense{},
		PurchaseOrders:   []PurchaseOrder{},
	}
}

// Normalize replaces nil collections with empty ones so older snapshots load cleanly.
func (d *AppData) Normalize() {
	if d.Orders == nil {
		d.Orders = []Order{}
	}
	if d.MicrogreenVarieties == nil {
		d.MicrogreenVarieties = []MicrogreenVariety{}
	}
	if d.DeliveryModes == nil {
		d.DeliveryModes = []string{}
	}
	if d.Inventory == nil {
		d.Inventory = map[string]int{}
	}
	if d.HarvestingLog == nil {
		d.HarvestingLog = HarvestLog{}
	}
	if d.SeedInventory == nil {
		d.SeedInventory = SeedInventory{}
	}
	if d.WasteLog == nil {
		d.WasteLog = []WasteLogEntry{}
	}
	if d.DeliveryExpenses == nil {
		d.DeliveryExpenses = []DeliveryExpense{}
	}
	if d.PurchaseOrders == nil {
		d.PurchaseOrders = []PurchaseOrder{}
	}
}

// Clone returns a deep copy so transitions never alias committed state.
func (d AppData) Clone() AppData {
	out := AppData{
		Orders:              make([]Order, len(d.Orders)),
		MicrogreenVarieties: append([]MicrogreenVariety{}, d.MicrogreenVarieties...),
		DeliveryModes:       append([]string{}, d.DeliveryModes...),
		Inventory:           make(map[string]int, len(d.Inventory)),
		HarvestingLog:       make(HarvestLog, len(d.HarvestingLog)),
		SeedInventory:       make(SeedInventory, len(d.SeedInventory)),
		WasteLog:            append([]WasteLogEntry{}, d.WasteLog...),
		DeliveryExpenses:    append([]DeliveryExpense{}, d.DeliveryExpenses...),
		PurchaseOrders:      make([]PurchaseOrder, len(d.PurchaseOrders)),
	}
	for i, o := range d.Orders {
		out.Orders[i] = o.Clone()
	}
	for k, v := range d.Inventory {
		out.Inventory[k] = v
	}
	for date, entry := range d.HarvestingLog {
		trays := make(map[string]int, len(entry.Trays))
		for v, n := range entry.Trays {
			trays[v] = n
		}
		out.HarvestingLog[date] = HarvestLogEntry{Date: entry.Date, Trays: trays}
	}
	for k, v := range d.SeedInventory {
		out.SeedInventory[k] = v
	}
	for i, po := range d.PurchaseOrders {
		out.PurchaseOrders[i] = po.Clone()
	}
	return out
}
