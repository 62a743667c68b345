package models

// YieldRatioData is the historical boxes-per-tray figure for one variety.
// YieldRatio is nil when no trays were sown in the window.
type YieldRatioData struct {
	Variety        string   `json:"variety"`
	TraysSown      int      `json:"traysSown"`
	BoxesHarvested int      `json:"boxesHarvested"`
	YieldRatio     *float64 `json:"yieldRatio"`
}

// SowingPlanItem is one line of the order-driven sowing plan.
type SowingPlanItem struct {
	Variety string `json:"variety"`
	Trays   int    `json:"trays"`
	Reason  string `json:"reason"`
}

// SeedStatus classifies seed sufficiency for a sowing task.
type SeedStatus string

const (
	SeedOK           SeedStatus = "OK"
	SeedLowStock     SeedStatus = "Low Stock"
	SeedInsufficient SeedStatus = "Insufficient"
)

// IntelligentSowingPlanItem is a sowing task for today with its seed check.
type IntelligentSowingPlanItem struct {
	Variety     string     `json:"variety"`
	TraysToSow  int        `json:"traysToSow"`
	Reason      string     `json:"reason"`
	SeedStatus  SeedStatus `json:"seedStatus"`
	GramsNeeded float64    `json:"gramsNeeded"`
}

// SeedPurchaseItem is a recommended seed purchase.
type SeedPurchaseItem struct {
	Variety    string  `json:"variety"`
	GramsToBuy float64 `json:"gramsToBuy"`
	Reason     string  `json:"reason"`
}

// IntelligentSowingPlan is the planner's output. ForecastError carries the oracle failure,
// if any; the plan is still computed without forecast demand in that case.
type IntelligentSowingPlan struct {
	Plan          []IntelligentSowingPlanItem `json:"plan"`
	PurchaseList  []SeedPurchaseItem          `json:"purchaseList"`
	ForecastUsed  bool                        `json:"forecastUsed"`
	ForecastError string                      `json:"forecastError,omitempty"`
}

// WeeklyForecastPrediction is a predicted demand for one variety.
type WeeklyForecastPrediction struct {
	Variety  string `json:"variety"`
	Quantity int    `json:"quantity"`
}

// WeeklyForecast groups predictions for one week, e.g. "Week 1".
type WeeklyForecast struct {
	Week        string                     `json:"week"`
	Predictions []WeeklyForecastPrediction `json:"predictions"`
}

// ForecastData is the ordered list of weekly forecasts.
type ForecastData []WeeklyForecast

// HistoricalSale is one completed-order line fed to the forecast oracle.
type HistoricalSale struct {
	Variety  string `json:"variety"`
	Quantity int    `json:"quantity"`
	Date     string `json:"date"`
}

// SowingSuggestion is an advisory action from the AI advisor.
type SowingSuggestion struct {
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

// FunnelRow is one variety of the seed-to-sale funnel.
type FunnelRow struct {
	Variety        string  `json:"variety"`
	SeedPurchased  float64 `json:"seedPurchased"`
	PotentialTrays float64 `json:"potentialTrays"`
	PotentialBoxes float64 `json:"potentialBoxes"`
	BoxesSold      int     `json:"boxesSold"`
	ConversionRate float64 `json:"conversionRate"`
}

// VarietySales is a variety's all-time completed box count.
type VarietySales struct {
	Variety        string `json:"variety"`
	TotalBoxesSold int    `json:"totalBoxesSold"`
}

// SuggestionContext summarises the farm for the AI advisor.
type SuggestionContext struct {
	TopSellers    []VarietySales      `json:"topSellers"`
	LowStockSeeds []string            `json:"lowStockSeeds"`
	Varieties     []MicrogreenVariety `json:"varieties"`
}
